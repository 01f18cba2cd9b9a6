// Package engine runs the five-stage detection pipeline over one evidence item.
//
//	A  METADATA        always; MIME type, file name and source system hints
//	B  REGEX           CONTENT_SCAN and above; catalog patterns over the text
//	C  PDF_METADATA    whenever a document buffer is present
//	D  OCR             opt-in; text recognised from the document buffer
//	E  LLM_CLASSIFIER  opt-in; advisory categories, never the sole source of
//	                   a special category
//
// Every value that leaves the engine has been through masking.Mask.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"dsar/internal/detection/catalog"
	"dsar/internal/detection/metrics"
	"dsar/internal/detection/models"
	"dsar/internal/detection/ports"
)

const (
	DefaultMaxContentBytes      = 512_000
	DefaultMaxMatchesPerPattern = 500
	DefaultCacheEntries         = 256
)

// Input is everything the engine may look at for one evidence item.
type Input struct {
	Mode         models.ContentMode
	MIMEType     string
	FileName     string
	SourceSystem string
	Text         string
	Document     []byte
	EnableOCR    bool
	EnableLLM    bool
}

// Report is the combined output of all stages for one item.
type Report struct {
	Results                 []models.DetectionResult
	Categories              []models.DetectedCategory
	ContainsSpecialCategory bool
	SpecialCategories       []catalog.Category
	ThirdPartyDataSuspected bool
	Truncated               bool
}

// Engine is safe for concurrent use.
type Engine struct {
	patterns             []*catalog.Pattern
	maxContentBytes      int
	maxMatchesPerPattern int

	extractor  ports.MetadataExtractor
	recognizer ports.TextRecognizer
	classifier ports.CategoryClassifier
	cache      *resultCache

	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Engine)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithLimits overrides the content cap and per-pattern match cap. Values
// below one keep the defaults.
func WithLimits(maxContentBytes, maxMatchesPerPattern int) Option {
	return func(e *Engine) {
		if maxContentBytes > 0 {
			e.maxContentBytes = maxContentBytes
		}
		if maxMatchesPerPattern > 0 {
			e.maxMatchesPerPattern = maxMatchesPerPattern
		}
	}
}

func WithMetadataExtractor(x ports.MetadataExtractor) Option {
	return func(e *Engine) {
		e.extractor = x
	}
}

func WithTextRecognizer(r ports.TextRecognizer) Option {
	return func(e *Engine) {
		e.recognizer = r
	}
}

func WithCategoryClassifier(c ports.CategoryClassifier) Option {
	return func(e *Engine) {
		e.classifier = c
	}
}

// WithCache enables the report cache for inputs that skip stages D and E.
func WithCache(entries int) Option {
	return func(e *Engine) {
		if entries > 0 {
			e.cache = newResultCache(entries)
		}
	}
}

// New creates an engine over an immutable catalog.
func New(cat *catalog.Catalog, opts ...Option) (*Engine, error) {
	if cat == nil {
		return nil, errors.New("pattern catalog is required")
	}
	e := &Engine{
		patterns:             cat.Patterns(),
		maxContentBytes:      DefaultMaxContentBytes,
		maxMatchesPerPattern: DefaultMaxMatchesPerPattern,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.New(slog.DiscardHandler)
	}
	return e, nil
}

// Detect runs the pipeline. Stage failures are logged and skipped; an error is
// returned only for an unknown mode or a cancelled context.
func (e *Engine) Detect(ctx context.Context, in Input) (*Report, error) {
	switch in.Mode {
	case models.ModeMetadataOnly, models.ModeContentScan, models.ModeFullContent:
	default:
		return nil, errors.New("unknown content mode: " + string(in.Mode))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cacheable := e.cache != nil && !e.runsOCR(in) && !e.runsClassifier(in)
	var key uint64
	if cacheable {
		key = cacheKey(in)
		if r, ok := e.cache.get(key); ok {
			e.metrics.IncCacheLookup(true)
			return r.clone(), nil
		}
		e.metrics.IncCacheLookup(false)
	}

	report := &Report{}
	text := ""
	if in.Mode.ScansContent() {
		text, report.Truncated = truncateUTF8(in.Text, e.maxContentBytes)
		if report.Truncated {
			e.metrics.IncTruncation()
		}
	}

	e.stage(models.DetectorMetadata, func() {
		report.add(classifyMetadata(in))
	})

	if in.Mode.ScansContent() && text != "" {
		e.stage(models.DetectorRegex, func() {
			report.add(e.scanText(models.DetectorRegex, text, true))
		})
		report.ThirdPartyDataSuspected = suspectsThirdPartyData(text)
	}

	if len(in.Document) > 0 && e.extractor != nil {
		e.stage(models.DetectorPDFMetadata, func() {
			if res, ok := e.documentMetadata(ctx, in.Document); ok {
				report.add(res)
			}
		})
	}

	if e.runsOCR(in) {
		e.stage(models.DetectorOCR, func() {
			if res, ok := e.recognize(ctx, in); ok {
				report.add(res)
			}
		})
	}

	if e.runsClassifier(in) && text != "" {
		e.stage(models.DetectorLLMClassifier, func() {
			if res, ok := e.classify(ctx, text, report.deterministicCategories()); ok {
				report.add(res)
			}
		})
	}

	report.finish()
	if cacheable {
		e.cache.put(key, report.clone())
	}
	return report, nil
}

func (e *Engine) runsOCR(in Input) bool {
	return in.EnableOCR && e.recognizer != nil && in.Mode.ScansContent() && len(in.Document) > 0
}

func (e *Engine) runsClassifier(in Input) bool {
	return in.EnableLLM && e.classifier != nil && in.Mode.ScansContent()
}

func (e *Engine) stage(detector models.DetectorType, fn func()) {
	start := time.Now()
	fn()
	e.metrics.ObserveStage(string(detector), time.Since(start))
}

// documentMetadata is Stage C. It scans the extracted fields with the full
// pattern set regardless of the content mode.
func (e *Engine) documentMetadata(ctx context.Context, doc []byte) (models.DetectionResult, bool) {
	md, err := e.extractor.Extract(ctx, doc)
	if err != nil {
		e.metrics.IncStageError(string(models.DetectorPDFMetadata))
		e.logger.DebugContext(ctx, "document metadata extraction failed", "error", err)
		return models.DetectionResult{}, false
	}
	if md == nil {
		return models.DetectionResult{}, false
	}
	res := e.scanText(models.DetectorPDFMetadata, md.Text(), false)
	return res, !res.IsEmpty()
}

// recognize is Stage D.
func (e *Engine) recognize(ctx context.Context, in Input) (models.DetectionResult, bool) {
	text, err := e.recognizer.RecognizeText(ctx, in.Document, in.MIMEType)
	if err != nil {
		e.metrics.IncStageError(string(models.DetectorOCR))
		e.logger.WarnContext(ctx, "text recognition failed", "error", err)
		return models.DetectionResult{}, false
	}
	text, _ = truncateUTF8(text, e.maxContentBytes)
	res := e.scanText(models.DetectorOCR, text, false)
	return res, !res.IsEmpty()
}

// classify is Stage E. Suggested special categories survive only when a
// deterministic stage already reported them.
func (e *Engine) classify(ctx context.Context, text string, corroborated map[catalog.Category]bool) (models.DetectionResult, bool) {
	suggestions, err := e.classifier.Classify(ctx, text)
	if err != nil {
		e.metrics.IncStageError(string(models.DetectorLLMClassifier))
		e.logger.WarnContext(ctx, "category classifier failed", "error", err)
		return models.DetectionResult{}, false
	}

	best := make(map[catalog.Category]float64)
	for _, s := range suggestions {
		if !s.Category.IsValid() {
			continue
		}
		if catalog.IsSpecialCategory(s.Category) && !corroborated[s.Category] {
			e.logger.DebugContext(ctx, "uncorroborated special category suggestion ignored", "category", s.Category)
			continue
		}
		if c := clamp(s.Confidence); c > best[s.Category] {
			best[s.Category] = c
		}
	}
	res := models.DetectionResult{
		DetectorType: models.DetectorLLMClassifier,
		Categories:   categoriesFrom(best),
	}
	return res, !res.IsEmpty()
}

func (r *Report) add(res models.DetectionResult) {
	if res.IsEmpty() {
		return
	}
	r.Results = append(r.Results, res)
}

func (r *Report) deterministicCategories() map[catalog.Category]bool {
	out := make(map[catalog.Category]bool)
	for _, res := range r.Results {
		if res.DetectorType == models.DetectorLLMClassifier {
			continue
		}
		for _, c := range res.Categories {
			out[c.Category] = true
		}
	}
	return out
}

// finish derives the merged categories and the special-category summary.
func (r *Report) finish() {
	best := make(map[catalog.Category]float64)
	special := make(map[catalog.Category]struct{})
	for _, res := range r.Results {
		if res.ContainsSpecialCategorySuspected {
			r.ContainsSpecialCategory = true
		}
		for _, c := range res.Categories {
			if cur, seen := best[c.Category]; !seen || c.Confidence > cur {
				best[c.Category] = c.Confidence
			}
			if catalog.IsSpecialCategory(c.Category) && res.DetectorType != models.DetectorLLMClassifier {
				special[c.Category] = struct{}{}
			}
		}
	}
	r.Categories = categoriesFrom(best)
	r.SpecialCategories = make([]catalog.Category, 0, len(special))
	for c := range special {
		r.SpecialCategories = append(r.SpecialCategories, c)
	}
	sort.Slice(r.SpecialCategories, func(i, j int) bool { return r.SpecialCategories[i] < r.SpecialCategories[j] })
}

// HasCategory reports whether any stage detected c.
func (r *Report) HasCategory(c catalog.Category) bool {
	for _, dc := range r.Categories {
		if dc.Category == c {
			return true
		}
	}
	return false
}

func (r *Report) clone() *Report {
	out := *r
	out.Results = make([]models.DetectionResult, len(r.Results))
	for i, res := range r.Results {
		res.Elements = append([]models.DetectedElement(nil), res.Elements...)
		res.Categories = append([]models.DetectedCategory(nil), res.Categories...)
		out.Results[i] = res
	}
	out.Categories = append([]models.DetectedCategory(nil), r.Categories...)
	out.SpecialCategories = append([]catalog.Category(nil), r.SpecialCategories...)
	return &out
}
