package cfg

import "github.com/cfgscript/cfg/ast"

// MappingValue is a lazy view over a MappingNode: an ordered mapping of
// key string to unevaluated AST, plus a back-reference to the owning
// Config so nested lookups, includes, and references resolve in the
// right document context. It is never constructed directly by callers —
// obtain one via MappingValue.Get or ListValue.Get; Config.Get returns
// plain maps instead.
type MappingValue struct {
	config *Config
	node   *ast.MappingNode
	index  map[string]int // key -> index into node.Entries, last-wins under no_duplicates=false
}

func newMappingValue(c *Config, n *ast.MappingNode) (*MappingValue, error) {
	mv := &MappingValue{config: c, node: n, index: make(map[string]int, len(n.Entries))}
	for i, e := range n.Entries {
		key := e.Key.Text
		if prev, ok := mv.index[key]; ok {
			if c.options.NoDuplicates {
				prevLoc := n.Entries[prev].Key.Start
				return nil, newConfigError(e.Key.Start,
					"Duplicate key %s seen at %s (previously at %s)", key, e.Key.Start, prevLoc)
			}
		}
		mv.index[key] = i
	}
	return mv, nil
}

// BaseGet returns the raw, unevaluated AST for key, or (nil, false) if
// absent.
func (m *MappingValue) BaseGet(key string) (ast.Node, bool) {
	i, ok := m.index[key]
	if !ok {
		return nil, false
	}
	return m.node.Entries[i].Value, true
}

// Get evaluates and returns the value stored at key.
func (m *MappingValue) Get(key string) (any, error) {
	n, ok := m.BaseGet(key)
	if !ok {
		return nil, newConfigError(m.node.Loc, "Not found in configuration: %s", key)
	}
	return evalExpr(m.config, n)
}

// Keys returns the mapping's keys ordered by first occurrence position;
// when no_duplicates is off, a key repeated later keeps its first
// position in this ordering even though its last value wins on Get.
func (m *MappingValue) Keys() []string {
	keys := make([]string, 0, len(m.node.Entries))
	seen := make(map[string]bool, len(m.node.Entries))
	for _, e := range m.node.Entries {
		if seen[e.Key.Text] {
			continue
		}
		if i := m.index[e.Key.Text]; m.node.Entries[i].Key.Text == e.Key.Text {
			seen[e.Key.Text] = true
			keys = append(keys, e.Key.Text)
		}
	}
	return keys
}

// AsPlain recursively evaluates this mapping into a native
// map[string]any; nested mappings and lists are likewise unwrapped, and
// nested Configs (from includes) are unwrapped to their own AsDict.
func (m *MappingValue) AsPlain() (map[string]any, error) {
	out := make(map[string]any, len(m.index))
	for _, key := range m.Keys() {
		v, err := m.Get(key)
		if err != nil {
			return nil, err
		}
		plain, err := asPlainValue(v)
		if err != nil {
			return nil, err
		}
		out[key] = plain
	}
	return out, nil
}

// ListValue is the list counterpart of MappingValue: a lazy view over a
// ListNode's ordered elements.
type ListValue struct {
	config *Config
	node   *ast.ListNode
}

func newListValue(c *Config, n *ast.ListNode) *ListValue {
	return &ListValue{config: c, node: n}
}

// Len reports the number of elements.
func (l *ListValue) Len() int { return len(l.node.Elements) }

// BaseGet returns the raw AST at index i (already range-checked).
func (l *ListValue) BaseGet(i int) ast.Node { return l.node.Elements[i] }

// Get evaluates and returns the value at index i.
func (l *ListValue) Get(i int) (any, error) {
	return evalExpr(l.config, l.node.Elements[i])
}

// AsPlain recursively evaluates this list into a native []any.
func (l *ListValue) AsPlain() ([]any, error) {
	out := make([]any, 0, l.Len())
	for i := 0; i < l.Len(); i++ {
		v, err := l.Get(i)
		if err != nil {
			return nil, err
		}
		plain, err := asPlainValue(v)
		if err != nil {
			return nil, err
		}
		out = append(out, plain)
	}
	return out, nil
}

// asPlainValue recursively unwraps a MappingValue/ListValue/*Config
// (include result) into native Go structures; scalars pass through.
func asPlainValue(v any) (any, error) {
	switch t := v.(type) {
	case *MappingValue:
		return t.AsPlain()
	case *ListValue:
		return t.AsPlain()
	case *Config:
		return t.AsDict()
	default:
		return v, nil
	}
}
