package storage

// costTokenFields duplicate what history.tokens already tracks.
var costTokenFields = []string{
	"input_tokens",
	"output_tokens",
	"total_tokens",
	"cache_read_tokens",
	"cache_write_tokens",
}

// sanitizeLatest returns a deep copy of payload suitable for the snapshot's
// latest field: token counters under the cost block are removed, then null
// values and empty objects or arrays are pruned.
func sanitizeLatest(payload map[string]any) map[string]any {
	if len(payload) == 0 {
		return nil
	}
	out := cloneObject(payload)
	for _, key := range []string{"cost", "sessionCost"} {
		if cost, ok := out[key].(map[string]any); ok {
			for _, f := range costTokenFields {
				delete(cost, f)
			}
		}
	}
	pruned, ok := pruneValue(out)
	if !ok {
		return nil
	}
	return pruned.(map[string]any)
}

func cloneObject(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneObject(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

// pruneValue drops nulls and empty containers. keep is false when v itself
// should be dropped by its parent.
func pruneValue(v any) (pruned any, keep bool) {
	switch t := v.(type) {
	case nil:
		return nil, false
	case map[string]any:
		for k, child := range t {
			p, ok := pruneValue(child)
			if !ok {
				delete(t, k)
				continue
			}
			t[k] = p
		}
		return t, len(t) > 0
	case []any:
		out := t[:0]
		for _, child := range t {
			if p, ok := pruneValue(child); ok {
				out = append(out, p)
			}
		}
		return out, len(out) > 0
	default:
		return v, true
	}
}
