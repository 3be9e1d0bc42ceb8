// Package reader extracts references and metadata from one PDF
// document. A document pass collects two reference sets, one from the
// page annotation graph and one scraped from rendered text, and
// exposes a reconciled, cached view of both.
package reader

import (
	"fmt"
	"sort"
)

// Reference is one extracted reference: a canonical token and the page
// it was found on. Identity is the token alone; two references to the
// same token from different pages are the same reference.
type Reference struct {
	Token string
	Page  int
}

// NewReference builds a reference for token found on page. Sources
// without page context pass 0.
func NewReference(token string, page int) Reference {
	return Reference{Token: token, Page: page}
}

// Less orders references lexicographically by token.
func (r Reference) Less(other Reference) bool {
	return r.Token < other.Token
}

func (r Reference) String() string {
	return fmt.Sprintf("<ref: %s>", r.Token)
}

// refSet is a set of references keyed by token. Adding a token that is
// already present keeps the existing entry, so the first sighting's
// page wins.
type refSet map[string]Reference

func (s refSet) add(r Reference) {
	if _, ok := s[r.Token]; ok {
		return
	}
	s[r.Token] = r
}

// tokens returns the set's tokens, lexicographically sorted when
// sorted is true and in map order otherwise.
func (s refSet) tokens(sorted bool) []string {
	out := make([]string, 0, len(s))
	for tok := range s {
		out = append(out, tok)
	}
	if sorted {
		sort.Strings(out)
	}
	return out
}
