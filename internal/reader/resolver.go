package reader

import (
	"bytes"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/pdfref/pdfref/internal/pdfobj"
)

// resolver walks one page's annotation object graph and collects the
// hyperlink targets it can reach. The walk mirrors the shape of link
// annotations on disk: an array of indirect references to annotation
// dictionaries, whose action ("A") or URI entries eventually bottom
// out in a string.
type resolver struct {
	log  *zap.Logger
	page int
}

// resolve walks node and returns every reference reachable from it,
// already flattened, with unresolvable annotations skipped. nested is
// false only for the top-level annotation list entries; at that level
// anything other than an array or an indirect reference is a shape
// violation, which is logged and skipped rather than failed. Errors
// surface only for dereferences the parser itself rejects, and abort
// the page.
func (rs *resolver) resolve(node pdfobj.Node, nested bool) ([]Reference, error) {
	if node.Kind() == pdfobj.Array {
		var out []Reference
		for _, item := range node.Items() {
			refs, err := rs.resolve(item, true)
			if err != nil {
				return nil, err
			}
			out = append(out, refs...)
		}
		return out, nil
	}

	var resolved pdfobj.Node
	switch {
	case node.Kind() == pdfobj.Ref:
		v, err := node.Resolve()
		if err != nil {
			return nil, err
		}
		resolved = v
	case nested:
		resolved = node
	default:
		rs.log.Warn("top-level annotation is not an indirect reference",
			zap.Int("page", rs.page),
			zap.Stringer("kind", node.Kind()))
		return nil, nil
	}

	if resolved.Kind() == pdfobj.Bytes {
		resolved = pdfobj.TextNode(decodeText(resolved.Raw()))
	}

	if resolved.Kind() == pdfobj.Text {
		return []Reference{NewReference(resolved.Text(), rs.page)}, nil
	}

	if resolved.Kind() == pdfobj.Array {
		return rs.resolve(resolved, true)
	}

	if uri, ok := resolved.Key("URI"); ok {
		return rs.resolve(uri, true)
	}
	if action, ok := resolved.Key("A"); ok {
		return rs.resolve(action, true)
	}

	// No resolvable target; expected for non-link annotations.
	return nil, nil
}

// decodeText turns an annotation byte string into text. A single
// trailing NUL left behind by sloppy producers is stripped, then the
// bytes are decoded as UTF-8 with a Latin-1 fallback; Latin-1 accepts
// any byte, so decoding never fails.
func decodeText(raw []byte) string {
	raw = bytes.TrimSuffix(raw, []byte{0})
	if utf8.Valid(raw) {
		return string(raw)
	}
	runes := make([]rune, len(raw))
	for i, b := range raw {
		runes[i] = rune(b)
	}
	return string(runes)
}
