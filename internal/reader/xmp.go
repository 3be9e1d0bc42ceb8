package reader

import (
	"bytes"
	"encoding/xml"
	"strings"
)

// decodeXMP extracts a flat key/value mapping from a raw XMP metadata
// packet. Every element below an rdf:Description that carries direct
// character data becomes a key named by its local element name;
// rdf:Seq/Bag/Alt containers become sequences of their rdf:li values.
// Malformed packets yield whatever was decodable before the error;
// nothing is reported, since embedded metadata is best-effort.
func decodeXMP(raw []byte) map[string]any {
	dec := xml.NewDecoder(bytes.NewReader(raw))
	md := map[string]any{}

	// Element name stack, so container items can be attributed to the
	// property that encloses them.
	var stack []string
	var items []string
	inContainer := false
	var property string

	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			name := t.Name.Local
			stack = append(stack, name)
			switch name {
			case "Seq", "Bag", "Alt":
				if len(stack) >= 2 {
					property = stack[len(stack)-2]
					inContainer = true
					items = nil
				}
			}
		case xml.EndElement:
			name := t.Name.Local
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			switch name {
			case "Seq", "Bag", "Alt":
				if inContainer && property != "" && len(items) > 0 {
					seq := make([]any, 0, len(items))
					for _, it := range items {
						seq = append(seq, it)
					}
					md[property] = seq
				}
				inContainer = false
				property = ""
			}
		case xml.CharData:
			text := strings.TrimSpace(string(t))
			if text == "" || len(stack) == 0 {
				continue
			}
			current := stack[len(stack)-1]
			if inContainer {
				if current == "li" {
					items = append(items, text)
				}
				continue
			}
			switch current {
			case "RDF", "Description", "xmpmeta", "xapmeta":
				continue
			}
			md[current] = text
		}
	}

	if len(md) == 0 {
		return nil
	}
	return md
}
