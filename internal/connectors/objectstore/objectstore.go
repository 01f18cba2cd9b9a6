// Package objectstore collects subject documents from an S3-compatible bucket.
//
// Objects are expected under <prefix>/<identifier>/..., one folder per
// subject identifier value. Source settings:
//
//	bucket          bucket name (required)
//	prefix          key prefix, default none
//	include         comma-separated doublestar globs matched against the key
//	                below the identifier folder, default "**"
//	maxObjectBytes  per-object read cap, default 5 MiB
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"dsar/internal/connectors"
	detection "dsar/internal/detection/models"
	"dsar/internal/discovery/models"
	"dsar/internal/discovery/queryspec"
	"dsar/internal/identity"
)

const (
	Provider = "objectstore"

	defaultMaxObjectBytes = 5 << 20
)

// Options configure the default client.
type Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	UseSSL    bool
}

// Credentials are resolved from a source's SecretRef.
type Credentials struct {
	AccessKey string
	SecretKey string
}

// SecretResolver turns a SecretRef into credentials.
type SecretResolver interface {
	Resolve(ctx context.Context, ref models.SecretRef) (Credentials, error)
}

// bucketReader is the slice of the minio client the connector uses.
type bucketReader interface {
	List(ctx context.Context, bucket, prefix string) ([]minio.ObjectInfo, error)
	Read(ctx context.Context, bucket, key string, limit int64) ([]byte, error)
}

type Connector struct {
	opts    Options
	reader  bucketReader
	secrets SecretResolver
	logger  *slog.Logger

	mu      sync.Mutex
	clients map[string]bucketReader
}

type Option func(*Connector)

func WithSecretResolver(r SecretResolver) Option {
	return func(c *Connector) {
		c.secrets = r
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Connector) {
		c.logger = logger
	}
}

// New builds a connector whose default client uses the static credentials in
// opts. Sources with a SecretRef get their own client when a resolver is set.
func New(opts Options, options ...Option) (*Connector, error) {
	if opts.Endpoint == "" {
		return nil, errors.New("object store endpoint is required")
	}
	reader, err := newMinioReader(opts, Credentials{AccessKey: opts.AccessKey, SecretKey: opts.SecretKey})
	if err != nil {
		return nil, err
	}
	return newWithReader(opts, reader, options...), nil
}

func newWithReader(opts Options, reader bucketReader, options ...Option) *Connector {
	c := &Connector{
		opts:    opts,
		reader:  reader,
		clients: make(map[string]bucketReader),
	}
	for _, o := range options {
		o(c)
	}
	return c
}

// CollectData lists the subject's folders and returns the matching objects.
func (c *Connector) CollectData(ctx context.Context, cfg models.SourceConfig, secret models.SecretRef, spec queryspec.QuerySpec) (*models.CollectionResult, error) {
	bucket := strings.TrimSpace(cfg.Settings["bucket"])
	if bucket == "" {
		return failed(connectors.ErrorContractMismatch, "source has no bucket configured"), nil
	}
	include, err := includeGlobs(cfg.Settings["include"])
	if err != nil {
		return failed(connectors.ErrorContractMismatch, "invalid include glob"), nil
	}
	maxBytes := int64(defaultMaxObjectBytes)
	if raw := cfg.Settings["maxObjectBytes"]; raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			return failed(connectors.ErrorContractMismatch, "invalid maxObjectBytes"), nil
		}
		maxBytes = n
	}

	reader, err := c.readerFor(ctx, secret)
	if err != nil {
		return failed(connectors.ErrorAuthentication, "could not resolve source credentials"), nil
	}

	var (
		docs    []models.CollectedDocument
		folders int
		seen    = make(map[string]struct{})
	)
	maxItems := spec.Output.MaxItems
	for _, value := range subjectFolders(spec) {
		prefix := path.Join(cfg.Settings["prefix"], value) + "/"
		objects, err := reader.List(ctx, bucket, prefix)
		if err != nil {
			if res, ok := expectedFailure(err); ok {
				return res, nil
			}
			return nil, classify(err)
		}
		if len(objects) > 0 {
			folders++
		}
		sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })
		for _, obj := range objects {
			if _, dup := seen[obj.Key]; dup {
				continue
			}
			rel := strings.TrimPrefix(obj.Key, prefix)
			if !matchesAny(include, rel) {
				continue
			}
			seen[obj.Key] = struct{}{}
			if maxItems > 0 && len(docs) >= maxItems {
				break
			}
			doc, err := c.document(ctx, reader, bucket, obj, maxBytes, spec)
			if err != nil {
				if res, ok := expectedFailure(err); ok {
					return res, nil
				}
				return nil, classify(err)
			}
			docs = append(docs, doc)
		}
	}

	if len(docs) == 0 {
		return &models.CollectionResult{
			Success:         true,
			FindingsSummary: "no objects found for subject",
			ResultMetadata:  map[string]string{"bucket": bucket},
		}, nil
	}
	return &models.CollectionResult{
		Success:         true,
		RecordsFound:    len(docs),
		Documents:       docs,
		FindingsSummary: fmt.Sprintf("%d objects in %d subject folders", len(docs), folders),
		ResultMetadata: map[string]string{
			"bucket":  bucket,
			"folders": strconv.Itoa(folders),
		},
	}, nil
}

func (c *Connector) document(ctx context.Context, reader bucketReader, bucket string, obj minio.ObjectInfo, maxBytes int64, spec queryspec.QuerySpec) (models.CollectedDocument, error) {
	name := path.Base(obj.Key)
	mimeType := obj.ContentType
	if mimeType == "" || mimeType == "application/octet-stream" {
		if byExt := mime.TypeByExtension(path.Ext(name)); byExt != "" {
			mimeType = byExt
		}
	}
	doc := models.CollectedDocument{
		Location: "s3://" + bucket + "/" + obj.Key,
		Title:    name,
		FileName: name,
		MIMEType: mimeType,
	}
	if spec.Output.Mode == detection.ModeMetadataOnly {
		return doc, nil
	}
	body, err := reader.Read(ctx, bucket, obj.Key, maxBytes)
	if err != nil {
		return doc, err
	}
	if isText(mimeType) {
		doc.Text = string(body)
	} else {
		doc.Content = body
	}
	return doc, nil
}

func (c *Connector) readerFor(ctx context.Context, ref models.SecretRef) (bucketReader, error) {
	if ref.Name == "" || c.secrets == nil {
		return c.reader, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if r, ok := c.clients[ref.Name]; ok {
		return r, nil
	}
	creds, err := c.secrets.Resolve(ctx, ref)
	if err != nil {
		if c.logger != nil {
			c.logger.WarnContext(ctx, "secret resolution failed", "secret", ref.Name, "error", err)
		}
		return nil, err
	}
	r, err := newMinioReader(c.opts, creds)
	if err != nil {
		return nil, err
	}
	c.clients[ref.Name] = r
	return r, nil
}

// subjectFolders lists identifier values usable as folder names.
func subjectFolders(spec queryspec.QuerySpec) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(id identity.Identifier) {
		switch id.Type {
		case identity.TypeEmail, identity.TypeEmployeeID, identity.TypeUPN, identity.TypeObjectID:
		default:
			return
		}
		v := strings.Trim(id.Value, "/ ")
		if v == "" || strings.Contains(v, "..") || seen[v] {
			return
		}
		seen[v] = true
		out = append(out, v)
	}
	add(spec.Subject.Primary)
	for _, a := range spec.Subject.Alternatives {
		add(a)
	}
	return out
}

func includeGlobs(raw string) ([]string, error) {
	var globs []string
	for _, g := range strings.Split(raw, ",") {
		g = strings.TrimSpace(g)
		if g == "" {
			continue
		}
		if !doublestar.ValidatePattern(g) {
			return nil, fmt.Errorf("invalid glob %q", g)
		}
		globs = append(globs, g)
	}
	if len(globs) == 0 {
		globs = []string{"**"}
	}
	return globs, nil
}

func matchesAny(globs []string, key string) bool {
	for _, g := range globs {
		if ok, _ := doublestar.Match(g, key); ok {
			return true
		}
	}
	return false
}

func isText(mimeType string) bool {
	base, _, _ := strings.Cut(mimeType, ";")
	base = strings.TrimSpace(base)
	return strings.HasPrefix(base, "text/") ||
		base == "application/json" ||
		base == "application/xml" ||
		base == "message/rfc822"
}

func failed(category connectors.ErrorCategory, msg string) *models.CollectionResult {
	return &models.CollectionResult{
		Success: false,
		Error:   string(category) + ": " + msg,
	}
}

// expectedFailure maps S3 error codes that describe the source's state rather
// than a fault to an unsuccessful result.
func expectedFailure(err error) (*models.CollectionResult, bool) {
	switch minio.ToErrorResponse(err).Code {
	case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch", "ExpiredToken":
		return failed(connectors.ErrorAuthentication, "access to bucket denied"), true
	case "NoSuchBucket":
		return failed(connectors.ErrorNotFound, "bucket does not exist"), true
	}
	return nil, false
}

func classify(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return connectors.NewConnectorError(connectors.ErrorTimeout, Provider, "object store request timed out", err)
	case errors.Is(err, context.Canceled):
		return connectors.NewConnectorError(connectors.ErrorInternal, Provider, "object store request cancelled", err)
	}
	switch minio.ToErrorResponse(err).Code {
	case "SlowDown", "RequestLimitExceeded":
		return connectors.NewConnectorError(connectors.ErrorRateLimited, Provider, "object store throttled request", err)
	case "NoSuchKey":
		return connectors.NewConnectorError(connectors.ErrorBadData, Provider, "object vanished during listing", err)
	}
	return connectors.NewConnectorError(connectors.ErrorProviderOutage, Provider, "object store request failed", err)
}

type minioReader struct {
	client *minio.Client
}

func newMinioReader(opts Options, creds Credentials) (*minioReader, error) {
	cli, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(creds.AccessKey, creds.SecretKey, ""),
		Secure: opts.UseSSL,
		Region: opts.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create object store client: %w", err)
	}
	return &minioReader{client: cli}, nil
}

func (m *minioReader) List(ctx context.Context, bucket, prefix string) ([]minio.ObjectInfo, error) {
	var out []minio.ObjectInfo
	for obj := range m.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		if strings.HasSuffix(obj.Key, "/") {
			continue
		}
		out = append(out, obj)
	}
	return out, nil
}

func (m *minioReader) Read(ctx context.Context, bucket, key string, limit int64) ([]byte, error) {
	obj, err := m.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()
	return io.ReadAll(io.LimitReader(obj, limit))
}
