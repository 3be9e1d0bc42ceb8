package reader

import "strings"

// NormalizeMetadata cleans a merged metadata mapping in place and
// returns it. String values are whitespace-trimmed and dropped when
// empty; sequences have their string elements trimmed and nil or
// emptied entries removed, and are dropped when nothing remains;
// nested mappings are normalized by the same rule at any depth and
// dropped when they normalize to empty. Other scalars pass through
// unchanged. The pass is idempotent.
func NormalizeMetadata(md map[string]any) map[string]any {
	if md == nil {
		return nil
	}
	for k, v := range md {
		switch val := v.(type) {
		case string:
			trimmed := strings.TrimSpace(val)
			if trimmed == "" {
				delete(md, k)
			} else {
				md[k] = trimmed
			}
		case []any:
			cleaned := normalizeSequence(val)
			if len(cleaned) == 0 {
				delete(md, k)
			} else {
				md[k] = cleaned
			}
		case map[string]any:
			NormalizeMetadata(val)
			if len(val) == 0 {
				delete(md, k)
			}
		}
	}
	return md
}

func normalizeSequence(seq []any) []any {
	out := make([]any, 0, len(seq))
	for _, elem := range seq {
		switch val := elem.(type) {
		case nil:
			continue
		case string:
			trimmed := strings.TrimSpace(val)
			if trimmed != "" {
				out = append(out, trimmed)
			}
		case []any:
			if cleaned := normalizeSequence(val); len(cleaned) > 0 {
				out = append(out, cleaned)
			}
		case map[string]any:
			NormalizeMetadata(val)
			if len(val) > 0 {
				out = append(out, val)
			}
		default:
			out = append(out, elem)
		}
	}
	return out
}
