package reader

import (
	"fmt"
	"io"
	"sync"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/pdfref/pdfref/internal/pdfobj"
)

// Source is the byte stream a parser reads from. Both *os.File and
// *bytes.Reader satisfy it.
type Source interface {
	io.ReadSeeker
	io.ReaderAt
}

// Parser is the external-parser contract the backend consumes: the
// document info dictionary, the embedded metadata block, and per-page
// access to annotations and rendered text.
type Parser interface {
	Info() map[string]any
	EmbeddedMetadata() map[string]any
	NumPages() int
	Page(num int) PageData
}

// PageData is one page of a parsed document. Pages are numbered from 1.
type PageData interface {
	// Annotations returns the page's annotation list as an object graph
	// node, or false if the page has none.
	Annotations() (pdfobj.Node, bool)

	// RenderText renders the page's content into w. The sink
	// accumulates across pages; it is never reset per page.
	RenderText(w io.Writer) error
}

// ParserOptions configures parser construction. Strict switches pdfcpu
// validation from relaxed to strict mode; it is an explicit option
// here rather than process-wide state.
type ParserOptions struct {
	Password string
	Strict   bool
}

// pdfcpu reads its config dir on first use; disable that once so
// parsers are safe to build from multiple goroutines.
var disableConfigDir sync.Once

// NewParser validates the stream with pdfcpu and opens it with
// ledongthuc/pdf. A stream rejected by either surfaces as
// ErrInvalidDocument wrapping the underlying cause.
func NewParser(src Source, size int64, opts ParserOptions) (Parser, error) {
	disableConfigDir.Do(api.DisableConfigDir)

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if opts.Strict {
		conf.ValidationMode = model.ValidationStrict
	}
	if opts.Password != "" {
		conf.UserPW = opts.Password
	}

	ctx, err := api.ReadContext(src, conf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewinding stream: %w", err)
	}

	var r *pdf.Reader
	if opts.Password != "" {
		r, err = pdf.NewReaderEncrypted(src, size, func() string { return opts.Password })
	} else {
		r, err = pdf.NewReader(src, size)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return &pdfParser{r: r}, nil
}

type pdfParser struct {
	r *pdf.Reader
}

func (p *pdfParser) Info() map[string]any {
	md := map[string]any{}
	func() {
		// The underlying library panics on some malformed values;
		// metadata is best-effort.
		defer func() { _ = recover() }()
		info := p.r.Trailer().Key("Info")
		if info.IsNull() {
			return
		}
		for _, k := range info.Keys() {
			v := info.Key(k)
			switch v.Kind() {
			case pdf.String:
				md[k] = v.Text()
			case pdf.Name:
				md[k] = v.Name()
			}
		}
	}()
	return md
}

func (p *pdfParser) EmbeddedMetadata() map[string]any {
	var md map[string]any
	func() {
		defer func() { _ = recover() }()
		v := p.r.Trailer().Key("Root").Key("Metadata")
		if v.Kind() != pdf.Stream {
			return
		}
		rc := v.Reader()
		defer rc.Close()
		raw, err := io.ReadAll(rc)
		if err != nil {
			return
		}
		md = decodeXMP(raw)
	}()
	return md
}

func (p *pdfParser) NumPages() int {
	return p.r.NumPage()
}

func (p *pdfParser) Page(num int) PageData {
	return &pdfPage{page: p.r.Page(num), num: num}
}

type pdfPage struct {
	page pdf.Page
	num  int
}

func (pg *pdfPage) Annotations() (node pdfobj.Node, ok bool) {
	defer func() {
		if recover() != nil {
			node, ok = pdfobj.NullNode(), false
		}
	}()
	if pg.page.V.IsNull() {
		return pdfobj.NullNode(), false
	}
	annots := pg.page.V.Key("Annots")
	if annots.Kind() != pdf.Array || annots.Len() == 0 {
		return pdfobj.NullNode(), false
	}
	items := make([]pdfobj.Node, 0, annots.Len())
	for i := 0; i < annots.Len(); i++ {
		v := annots.Index(i)
		items = append(items, pdfobj.RefNode(func() (n pdfobj.Node, err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("dereferencing annotation: %v", r)
				}
			}()
			return convertValue(v, 0), nil
		}))
	}
	return pdfobj.ArrayNode(items...), true
}

func (pg *pdfPage) RenderText(w io.Writer) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("rendering page %d: %v", pg.num, r)
		}
	}()
	if pg.page.V.IsNull() {
		return nil
	}
	text, err := pg.page.GetPlainText(nil)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, text)
	return err
}

// maxConvertDepth bounds object-graph conversion. Link chains are
// shallow, but annotation dictionaries carry back-pointers into the
// page tree ("P", "Parent") that would otherwise recurse forever.
const maxConvertDepth = 8

func convertValue(v pdf.Value, depth int) pdfobj.Node {
	if depth >= maxConvertDepth {
		return pdfobj.NullNode()
	}
	switch v.Kind() {
	case pdf.String:
		return pdfobj.BytesNode([]byte(v.RawString()))
	case pdf.Name:
		return pdfobj.TextNode(v.Name())
	case pdf.Array:
		items := make([]pdfobj.Node, 0, v.Len())
		for i := 0; i < v.Len(); i++ {
			items = append(items, convertValue(v.Index(i), depth+1))
		}
		return pdfobj.ArrayNode(items...)
	case pdf.Dict, pdf.Stream:
		keys := v.Keys()
		m := make(map[string]pdfobj.Node, len(keys))
		for _, k := range keys {
			m[k] = convertValue(v.Key(k), depth+1)
		}
		return pdfobj.DictNode(m)
	default:
		return pdfobj.NullNode()
	}
}
