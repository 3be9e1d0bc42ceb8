// Package document opens a PDF from a local path or URL under optional
// deadlines and exposes the extracted references, metadata, and the
// original bytes.
//
// Construction walks a small state machine: acquire the byte stream
// (bounded by the read deadline), then build the reader backend
// (bounded by the text deadline). Callers that only need hyperlink
// annotations can opt into degradation: when the text deadline is
// blown, the backend is rebuilt in annotation-only mode instead of
// failing, and the handle reports itself degraded.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdfref/pdfref/internal/extractor"
	"github.com/pdfref/pdfref/internal/fetch"
	"github.com/pdfref/pdfref/internal/reader"
)

var (
	// ErrNotFound reports a local path with no file behind it.
	ErrNotFound = errors.New("file not found")

	// ErrDownloadFailed reports a failed remote fetch; it wraps the
	// transport cause.
	ErrDownloadFailed = errors.New("download failed")

	// ErrReadTimedOut reports that stream acquisition exceeded the read
	// deadline.
	ErrReadTimedOut = errors.New("read timed out")

	// ErrTextTimedOut reports that backend construction exceeded the
	// text deadline and the caller did not allow degradation.
	ErrTextTimedOut = errors.New("text extraction timed out")
)

// Options configures Open. Deadlines of zero or below disable
// enforcement entirely rather than timing out immediately.
type Options struct {
	// ReadTimeout bounds stream acquisition (file read or download).
	ReadTimeout time.Duration

	// TextTimeout bounds backend construction, which is dominated by
	// text rendering on large documents.
	TextTimeout time.Duration

	// DegradeOnTextTimeout retries construction in annotation-only
	// mode when TextTimeout is exceeded, instead of failing.
	DegradeOnTextTimeout bool

	// Password unlocks encrypted documents.
	Password string

	// StrictValidation switches the parser's up-front validation from
	// relaxed to strict.
	StrictValidation bool

	// FetchTimeout bounds the HTTP client used for remote URIs. Zero
	// means the fetch package default.
	FetchTimeout time.Duration

	Logger *zap.Logger
}

// Document is an opened PDF. It owns the original bytes and the backend
// built from them; neither is shared between documents.
type Document struct {
	uri      string
	name     string
	remote   bool
	degraded bool
	data     []byte
	backend  *reader.Backend
}

// Open acquires uri (a local path or a URL) and runs a full document
// pass over it, honoring the configured deadlines.
func Open(uri string, opts Options) (*Document, error) {
	return newOpener(opts).open(uri)
}

// opener carries the pipeline's collaborators so tests can substitute
// them.
type opener struct {
	opts  Options
	log   *zap.Logger
	fetch func(url string) ([]byte, error)
	build func(data []byte, annotOnly bool) (*reader.Backend, error)
}

func newOpener(opts Options) *opener {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	o := &opener{opts: opts, log: log}
	o.fetch = fetch.NewClient(opts.FetchTimeout).Fetch
	o.build = o.buildBackend
	return o
}

func (o *opener) open(uri string) (*Document, error) {
	remote := len(extractor.URLs(uri)) > 0

	data, ok, err := runTimed(o.opts.ReadTimeout, func() ([]byte, error) {
		return o.acquire(uri, remote)
	})
	if !ok {
		o.log.Debug("stream acquisition timed out", zap.String("uri", uri))
		return nil, ErrReadTimedOut
	}
	if err != nil {
		return nil, err
	}
	o.log.Debug("stream acquired", zap.String("uri", uri), zap.Int("bytes", len(data)))

	degraded := false
	backend, ok, err := runTimed(o.opts.TextTimeout, func() (*reader.Backend, error) {
		return o.build(data, false)
	})
	if !ok {
		if !o.opts.DegradeOnTextTimeout {
			o.log.Debug("backend construction timed out", zap.String("uri", uri))
			return nil, ErrTextTimedOut
		}
		// The abandoned build keeps running until it finishes on its
		// own; its result is discarded. The retry skips text layout
		// entirely, so it is bounded by the annotation graph alone.
		o.log.Info("text deadline exceeded, retrying annotation-only", zap.String("uri", uri))
		degraded = true
		backend, err = o.build(data, true)
	}
	if err != nil {
		return nil, err
	}

	return &Document{
		uri:      uri,
		name:     displayName(uri, remote),
		remote:   remote,
		degraded: degraded,
		data:     data,
		backend:  backend,
	}, nil
}

func (o *opener) acquire(uri string, remote bool) ([]byte, error) {
	if remote {
		data, err := o.fetch(uri)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDownloadFailed, err)
		}
		return data, nil
	}

	info, err := os.Stat(uri)
	if err != nil || info.IsDir() {
		return nil, fmt.Errorf("%w: not a file and not a URL: %q", ErrNotFound, uri)
	}
	data, err := os.ReadFile(uri)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", uri, err)
	}
	return data, nil
}

func (o *opener) buildBackend(data []byte, annotOnly bool) (*reader.Backend, error) {
	// Each build gets its own view of the immutable bytes, so an
	// abandoned timed-out build cannot race the retry.
	p, err := reader.NewParser(bytes.NewReader(data), int64(len(data)), reader.ParserOptions{
		Password: o.opts.Password,
		Strict:   o.opts.StrictValidation,
	})
	if err != nil {
		return nil, err
	}
	return reader.NewBackend(p, reader.BackendOptions{AnnotationsOnly: annotOnly}, o.log)
}

func displayName(uri string, remote bool) string {
	if remote {
		parts := strings.Split(uri, "/")
		return parts[len(parts)-1]
	}
	return filepath.Base(uri)
}

// URI returns the original location the document was opened from.
func (d *Document) URI() string { return d.uri }

// Name returns the display name: the filename part of the URI.
func (d *Document) Name() string { return d.name }

// Remote reports whether the document was fetched over the network.
func (d *Document) Remote() bool { return d.remote }

// Degraded reports whether text rendering was skipped because the text
// deadline was exceeded. A degraded document still carries
// annotation-derived references but no text-scraped ones.
func (d *Document) Degraded() bool { return d.degraded }

// Metadata returns the document's normalized metadata.
func (d *Document) Metadata() map[string]any { return d.backend.Metadata() }

// Text returns the rendered document text. Empty for degraded
// documents.
func (d *Document) Text() string { return d.backend.Text() }

// References returns the deduplicated union of annotation-derived and
// text-scraped reference tokens.
func (d *Document) References(sorted bool) []string {
	return d.backend.References(sorted)
}

// ReferencesAsDict returns references keyed by source ("annot",
// "scrape"); empty sources are omitted.
func (d *Document) ReferencesAsDict(sorted bool) map[string][]string {
	return d.backend.ReferencesAsDict(sorted)
}

// Size returns the document's size in bytes.
func (d *Document) Size() int64 { return int64(len(d.data)) }

// WriteTo copies the original document bytes to w, starting from
// offset 0 regardless of any prior reads.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(d.data)
	return int64(n), err
}

// Summary is the serializable digest of an opened document.
type Summary struct {
	Source     SourceInfo          `json:"source"`
	Metadata   map[string]any      `json:"metadata"`
	References map[string][]string `json:"references"`
	Degraded   bool                `json:"degraded,omitempty"`
}

// SourceInfo describes where a document came from.
type SourceInfo struct {
	Type     string `json:"type"`
	Location string `json:"location"`
	Filename string `json:"filename"`
}

// Summary builds the document's digest. sorted orders the reference
// lists lexicographically for stable output.
func (d *Document) Summary(sorted bool) Summary {
	typ := "file"
	if d.remote {
		typ = "url"
	}
	return Summary{
		Source: SourceInfo{
			Type:     typ,
			Location: d.uri,
			Filename: d.name,
		},
		Metadata:   d.Metadata(),
		References: d.ReferencesAsDict(sorted),
		Degraded:   d.degraded,
	}
}
