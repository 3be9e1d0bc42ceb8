// Package extractor finds URLs and bibliographic identifiers in plain text.
//
// All extractors are stateless regular-expression scans: they are
// deterministic, order-stable, and safe to run over arbitrary (even
// binary-looking) input, where they simply yield no matches. Duplicate
// occurrences of the same token are yielded each time they appear;
// deduplication is the caller's job.
package extractor

import (
	"regexp"
	"strings"
)

var (
	// urlPattern matches http(s) URLs and www-prefixed hosts. The final
	// character class keeps trailing sentence punctuation out of the match.
	urlPattern = regexp.MustCompile(`(?i)\b(?:https?://|www\d{0,3}\.)[^\s<>()\[\]{}"']+[^\s<>()\[\]{}"'.,;:!?]`)

	// doiPattern matches bare DOIs of the form 10.NNNN/suffix.
	doiPattern = regexp.MustCompile(`\b10\.\d{4,9}(?:\.\d+)*/[^"'&<>\s]+`)

	// arxivPattern matches arXiv identifiers written as "arXiv:ID".
	arxivPattern = regexp.MustCompile(`(?i)\barxiv:\s?([^\s,]+)`)
)

// URLs returns every URL found in text, in order of appearance.
func URLs(text string) []string {
	return urlPattern.FindAllString(text, -1)
}

// DOIs returns every DOI found in text, in order of appearance.
// Trailing sentence punctuation picked up by the open-ended suffix
// match is trimmed.
func DOIs(text string) []string {
	matches := doiPattern.FindAllString(text, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		m = strings.TrimRight(m, ".,;:")
		if m != "" {
			out = append(out, m)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// ArxivIDs returns every arXiv identifier found in text, in order of
// appearance, without the "arXiv:" prefix.
func ArxivIDs(text string) []string {
	matches := arxivPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1])
	}
	return out
}
