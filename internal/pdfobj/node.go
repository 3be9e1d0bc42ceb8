// Package pdfobj models the untyped PDF object graph that annotation
// lists are built from: byte strings, text strings, arrays,
// dictionaries, and indirect references. It is a tagged variant in the
// style of the Value type exposed by PDF readers, but restricted to
// the shapes a link-annotation walk can encounter, and with indirect
// references represented explicitly so the caller controls when a
// dereference happens.
package pdfobj

// Kind identifies the variant held by a Node.
type Kind int

const (
	Null Kind = iota
	Bytes
	Text
	Array
	Dict
	Ref
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bytes:
		return "bytes"
	case Text:
		return "text"
	case Array:
		return "array"
	case Dict:
		return "dict"
	case Ref:
		return "ref"
	}
	return "unknown"
}

// Node is one value in the object graph. The zero Node is Null.
type Node struct {
	kind  Kind
	raw   []byte
	text  string
	items []Node
	dict  map[string]Node
	deref func() (Node, error)
}

// NullNode returns the null value.
func NullNode() Node { return Node{} }

// BytesNode wraps an undecoded byte string.
func BytesNode(b []byte) Node { return Node{kind: Bytes, raw: b} }

// TextNode wraps an already-decoded text string.
func TextNode(s string) Node { return Node{kind: Text, text: s} }

// ArrayNode wraps a sequence of nodes.
func ArrayNode(items ...Node) Node { return Node{kind: Array, items: items} }

// DictNode wraps a dictionary of name/value pairs.
func DictNode(m map[string]Node) Node { return Node{kind: Dict, dict: m} }

// RefNode wraps an indirect reference. resolve is invoked by Resolve
// and supplies the referenced value, or the parser's error if the
// target cannot be decoded.
func RefNode(resolve func() (Node, error)) Node { return Node{kind: Ref, deref: resolve} }

// Kind reports the variant held by n.
func (n Node) Kind() Kind { return n.kind }

// IsNull reports whether n is the null value.
func (n Node) IsNull() bool { return n.kind == Null }

// Raw returns the undecoded bytes, or nil if n is not a byte string.
func (n Node) Raw() []byte {
	if n.kind != Bytes {
		return nil
	}
	return n.raw
}

// Text returns the decoded string, or "" if n is not a text string.
func (n Node) Text() string {
	if n.kind != Text {
		return ""
	}
	return n.text
}

// Items returns the array elements, or nil if n is not an array.
func (n Node) Items() []Node {
	if n.kind != Array {
		return nil
	}
	return n.items
}

// Key looks up name in a dictionary node. The second result is false
// if n is not a dictionary or the key is absent.
func (n Node) Key(name string) (Node, bool) {
	if n.kind != Dict {
		return Node{}, false
	}
	v, ok := n.dict[name]
	return v, ok
}

// Resolve dereferences an indirect reference. Calling Resolve on any
// other kind returns the node unchanged, so already-dereferenced
// values pass through.
func (n Node) Resolve() (Node, error) {
	if n.kind != Ref {
		return n, nil
	}
	return n.deref()
}
