// Package theme loads the site configuration document, overlays the
// light/dark variant and tracks which variant a visitor prefers.
package theme

// Tree is a decoded JSON configuration document.
type Tree = map[string]any

// Merge overlays override onto base and returns a new tree. Keys holding a
// mapping in both trees merge recursively; any other value present in
// override replaces the base value, arrays included. Keys only in base are
// kept. The result shares no mappings or slices with either input.
func Merge(base, override Tree) Tree {
	out := cloneTree(base)
	for k, ov := range override {
		om, oIsMap := ov.(map[string]any)
		bm, bIsMap := out[k].(map[string]any)
		if oIsMap && bIsMap {
			out[k] = Merge(bm, om)
			continue
		}
		out[k] = cloneValue(ov)
	}
	return out
}

func cloneTree(t Tree) Tree {
	out := make(Tree, len(t))
	for k, v := range t {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		return cloneTree(x)
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = cloneValue(e)
		}
		return out
	}
	return v
}
