// Package fixture serves collected documents from a directory tree. It backs
// offline runs from the CLI and end-to-end tests.
//
// A source's settings name a directory ("dir") inside the connector's file
// system. Every file below it is a document, except source.yaml which may
// describe identifiers the source knows the subject by, or force an expected
// failure:
//
//	fail: "authentication: token expired"
//	identifiers:
//	  - {type: employeeId, value: E-1001, confidence: 0.9}
//	accounts:
//	  - {system: workday, id: "88213"}
//	metadata:
//	  region: eu-west-1
package fixture

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"path"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"dsar/internal/connectors"
	detection "dsar/internal/detection/models"
	"dsar/internal/discovery/models"
	"dsar/internal/discovery/queryspec"
	"dsar/internal/identity"
)

const (
	Provider     = "fixture"
	manifestName = "source.yaml"
)

type manifest struct {
	Fail        string            `yaml:"fail"`
	Identifiers []identifierSpec  `yaml:"identifiers"`
	Accounts    []accountSpec     `yaml:"accounts"`
	Metadata    map[string]string `yaml:"metadata"`
}

type identifierSpec struct {
	Type       string  `yaml:"type"`
	Value      string  `yaml:"value"`
	Confidence float64 `yaml:"confidence"`
}

type accountSpec struct {
	System     string  `yaml:"system"`
	ID         string  `yaml:"id"`
	Confidence float64 `yaml:"confidence"`
}

type Connector struct {
	fsys fs.FS
}

func New(fsys fs.FS) *Connector {
	return &Connector{fsys: fsys}
}

func (c *Connector) CollectData(ctx context.Context, cfg models.SourceConfig, _ models.SecretRef, spec queryspec.QuerySpec) (*models.CollectionResult, error) {
	dir := path.Clean(strings.TrimSpace(cfg.Settings["dir"]))
	if dir == "." || dir == "" || !fs.ValidPath(dir) {
		return failed(connectors.ErrorContractMismatch, "fixture source has no valid dir"), nil
	}
	include := strings.TrimSpace(cfg.Settings["include"])
	if include == "" {
		include = "**"
	}
	if !doublestar.ValidatePattern(include) {
		return failed(connectors.ErrorContractMismatch, "invalid include glob"), nil
	}

	m, err := c.manifest(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return failed(connectors.ErrorNotFound, "fixture directory does not exist"), nil
		}
		return nil, connectors.NewConnectorError(connectors.ErrorBadData, Provider, "unreadable source manifest", err)
	}
	if m.Fail != "" {
		return &models.CollectionResult{Success: false, Error: m.Fail}, nil
	}

	sub, err := fs.Sub(c.fsys, dir)
	if err != nil {
		return nil, connectors.NewConnectorError(connectors.ErrorInternal, Provider, "open fixture directory", err)
	}
	matches, err := doublestar.Glob(sub, include, doublestar.WithFilesOnly())
	if err != nil {
		return nil, connectors.NewConnectorError(connectors.ErrorInternal, Provider, "list fixture directory", err)
	}

	var docs []models.CollectedDocument
	for _, name := range matches {
		if err := ctx.Err(); err != nil {
			return nil, connectors.NewConnectorError(connectors.ErrorTimeout, Provider, "fixture read interrupted", err)
		}
		if name == manifestName {
			continue
		}
		if spec.Output.MaxItems > 0 && len(docs) >= spec.Output.MaxItems {
			break
		}
		doc, err := c.document(sub, dir, name, spec.Output.Mode)
		if err != nil {
			return nil, connectors.NewConnectorError(connectors.ErrorBadData, Provider, "unreadable fixture file", err)
		}
		docs = append(docs, doc)
	}

	res := &models.CollectionResult{
		Success:         true,
		RecordsFound:    len(docs),
		Documents:       docs,
		ResultMetadata:  map[string]string{"dir": dir, "files": strconv.Itoa(len(docs))},
		FindingsSummary: fmt.Sprintf("%d fixture documents", len(docs)),
	}
	for k, v := range m.Metadata {
		res.ResultMetadata[k] = v
	}
	for _, is := range m.Identifiers {
		res.DiscoveredIdentifiers = append(res.DiscoveredIdentifiers, identity.Identifier{
			Type:       identity.Type(is.Type),
			Value:      is.Value,
			Confidence: is.Confidence,
		})
	}
	for _, as := range m.Accounts {
		res.SystemAccounts = append(res.SystemAccounts, identity.SystemAccount{
			System:     as.System,
			AccountID:  as.ID,
			Confidence: as.Confidence,
		})
	}
	return res, nil
}

func (c *Connector) manifest(dir string) (manifest, error) {
	var m manifest
	if _, err := fs.Stat(c.fsys, dir); err != nil {
		return m, err
	}
	data, err := fs.ReadFile(c.fsys, path.Join(dir, manifestName))
	if errors.Is(err, fs.ErrNotExist) {
		return m, nil
	}
	if err != nil {
		return m, err
	}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("parse %s: %w", manifestName, err)
	}
	return m, nil
}

func (c *Connector) document(sub fs.FS, dir, name string, mode detection.ContentMode) (models.CollectedDocument, error) {
	base := path.Base(name)
	mimeType := mime.TypeByExtension(path.Ext(base))
	doc := models.CollectedDocument{
		Location: "fixture://" + path.Join(dir, name),
		Title:    base,
		FileName: base,
		MIMEType: mimeType,
	}
	if mode == detection.ModeMetadataOnly {
		return doc, nil
	}
	body, err := fs.ReadFile(sub, name)
	if err != nil {
		return doc, err
	}
	if mimeType == "" || strings.HasPrefix(mimeType, "text/") || strings.HasPrefix(mimeType, "application/json") {
		doc.Text = string(body)
	} else {
		doc.Content = body
	}
	return doc, nil
}

func failed(category connectors.ErrorCategory, msg string) *models.CollectionResult {
	return &models.CollectionResult{Success: false, Error: string(category) + ": " + msg}
}
