package reader

import (
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/pdfref/pdfref/internal/extractor"
)

// BackendOptions controls one document pass.
type BackendOptions struct {
	// AnnotationsOnly skips text rendering and pattern scraping
	// entirely; only the annotation graph is walked. This is the
	// degraded mode used when full-text rendering exceeds its deadline.
	AnnotationsOnly bool
}

// Backend holds the reconciled result of one document pass: normalized
// metadata, the accumulated rendered text, and the two reference sets.
// The sets are never merged in storage; merging happens at query time
// and each query shape is computed once and cached. A backend is
// written once during construction and read afterwards; it is not safe
// for concurrent mutation.
type Backend struct {
	log *zap.Logger

	metadata map[string]any
	text     string
	lastPage int

	annotated refSet
	scraped   refSet

	// Query caches, one slot per sort flag.
	refList map[bool][]string
	refDict map[bool]map[string][]string
}

// NewBackend runs a full document pass over p: metadata merge, page
// iteration (text rendering plus annotation resolution), metadata
// normalization, then pattern scraping over the accumulated text.
// Scraped references are attributed to the last processed page; the
// true origin page is lost by scanning the concatenated text once.
func NewBackend(p Parser, opts BackendOptions, log *zap.Logger) (*Backend, error) {
	if log == nil {
		log = zap.NewNop()
	}
	b := newBackend(log)

	for k, v := range p.Info() {
		b.metadata[k] = v
	}
	for k, v := range p.EmbeddedMetadata() {
		b.metadata[k] = v
	}

	var text strings.Builder
	pages := 0
	for num := 1; num <= p.NumPages(); num++ {
		page := p.Page(num)
		if !opts.AnnotationsOnly {
			if err := page.RenderText(&text); err != nil {
				b.log.Warn("text rendering failed", zap.Int("page", num), zap.Error(err))
			}
		}
		pages++
		b.lastPage = pages

		annots, ok := page.Annotations()
		if !ok {
			continue
		}
		rs := &resolver{log: b.log, page: pages}
		refs, err := rs.resolve(annots, false)
		if err != nil {
			b.log.Error("annotation walk aborted", zap.Int("page", pages), zap.Error(err))
			return nil, fmt.Errorf("%w: page %d: %v", ErrAnnotationResolution, pages, err)
		}
		for _, r := range refs {
			b.annotated.add(r)
		}
	}

	b.metadata["Pages"] = pages
	NormalizeMetadata(b.metadata)

	if !opts.AnnotationsOnly {
		b.text = text.String()
		b.scrape(b.text, b.lastPage)
	}

	b.log.Debug("document pass complete",
		zap.Int("pages", pages),
		zap.Int("annotated", len(b.annotated)),
		zap.Int("scraped", len(b.scraped)))
	return b, nil
}

// NewTextBackend scrapes references from a plain-text stream. There is
// no annotation graph and no page structure, so every reference is
// text-scraped with page 0.
func NewTextBackend(r io.Reader, log *zap.Logger) (*Backend, error) {
	if log == nil {
		log = zap.NewNop()
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading text stream: %w", err)
	}
	b := newBackend(log)
	b.text = string(raw)
	b.scrape(b.text, 0)
	for _, id := range extractor.ArxivIDs(b.text) {
		b.scraped.add(NewReference(id, 0))
	}
	return b, nil
}

func newBackend(log *zap.Logger) *Backend {
	return &Backend{
		log:       log,
		metadata:  map[string]any{},
		annotated: refSet{},
		scraped:   refSet{},
		refList:   map[bool][]string{},
		refDict:   map[bool]map[string][]string{},
	}
}

func (b *Backend) scrape(text string, page int) {
	for _, u := range extractor.URLs(text) {
		b.scraped.add(NewReference(u, page))
	}
	for _, d := range extractor.DOIs(text) {
		b.scraped.add(NewReference("doi:"+d, page))
	}
}

// Metadata returns the normalized metadata mapping.
func (b *Backend) Metadata() map[string]any {
	return b.metadata
}

// Text returns the accumulated rendered text. Empty in annotation-only
// passes.
func (b *Backend) Text() string {
	return b.text
}

// References returns the deduplicated union of both reference sets,
// lexicographically sorted by token when sorted is true and in
// unspecified order otherwise. Computed once per sort flag.
func (b *Backend) References(sorted bool) []string {
	if cached, ok := b.refList[sorted]; ok {
		return cached
	}
	union := refSet{}
	for _, r := range b.annotated {
		union.add(r)
	}
	for _, r := range b.scraped {
		union.add(r)
	}
	out := union.tokens(sorted)
	b.refList[sorted] = out
	return out
}

// ReferencesAsDict returns the two reference sets keyed "annot" and
// "scrape". A key is omitted entirely when its set is empty. Computed
// once per sort flag.
func (b *Backend) ReferencesAsDict(sorted bool) map[string][]string {
	if cached, ok := b.refDict[sorted]; ok {
		return cached
	}
	out := map[string][]string{}
	if len(b.annotated) > 0 {
		out["annot"] = b.annotated.tokens(sorted)
	}
	if len(b.scraped) > 0 {
		out["scrape"] = b.scraped.tokens(sorted)
	}
	b.refDict[sorted] = out
	return out
}
