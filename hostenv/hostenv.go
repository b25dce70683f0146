// Package hostenv implements a ready-to-use cfg.Host: a YAML-described
// ambient object graph that the Special-Value Converter's dotted-path
// pattern (spec §4.7.3) resolves attribute-by-attribute, with callable
// leaves backed by a goja JavaScript runtime invoked with no
// arguments when the final resolved value is callable.
//
// This mirrors vippsas-sqlcode/cli/cmd/config.go's YAML-driven
// Config/DatabaseConfig loading (yaml.Unmarshal into a structure,
// logrus threaded through for diagnostics), retargeted from "describes
// a database connection" to "describes an ambient object graph for
// dotted-path resolution".
package hostenv

import (
	"fmt"
	"os"
	"strings"

	"github.com/dop251/goja"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// scriptKey is the single map key that marks a YAML node as a callable
// leaf: its string value is JavaScript source, compiled and run with no
// arguments each time the node is the final step of a resolved path.
const scriptKey = "$js"

// Scope is a cfg.Host backed by a YAML document. The zero value is not
// useful; construct with Load or LoadFile.
type Scope struct {
	root map[string]any
	log  logrus.FieldLogger
}

// Option configures a Scope at construction.
type Option func(*Scope)

// WithLogger attaches a logrus.FieldLogger for script-evaluation
// diagnostics; the default is logrus.New().
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Scope) { s.log = l }
}

// Load parses data as a YAML document describing the ambient object
// graph.
func Load(data []byte, opts ...Option) (*Scope, error) {
	var root map[string]any
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("hostenv: %w", err)
	}
	s := &Scope{root: root, log: logrus.New()}
	for _, fn := range opts {
		fn(s)
	}
	return s, nil
}

// LoadFile reads and parses path as a YAML document.
func LoadFile(path string, opts ...Option) (*Scope, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("hostenv: unable to read %s: %w", path, err)
	}
	return Load(data, opts...)
}

// Resolve implements cfg.Host: walk attrs dot-by-dot through the YAML
// tree, then — if the final value is a callable leaf — invoke it with
// no arguments and return its result (spec §4.7.3). Any missing
// attribute along the way reports ok=false, which the Special-Value
// Converter treats as "leave the original text unchanged".
func (s *Scope) Resolve(dottedName string) (any, bool) {
	var cur any = s.root
	for _, part := range strings.Split(dottedName, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		v, ok := m[part]
		if !ok {
			return nil, false
		}
		cur = v
	}
	return s.materialize(cur)
}

// materialize checks whether v is a callable leaf — a single-key map
// `{$js: "<source>"}` — and if so compiles and runs it with no
// arguments in a fresh goja.Runtime, exporting the result back to
// native Go types. Any other value is returned as-is.
func (s *Scope) materialize(v any) (any, bool) {
	if m, ok := v.(map[string]any); ok {
		if src, ok := m[scriptKey].(string); ok && len(m) == 1 {
			return s.invoke(src)
		}
	}
	return v, true
}

func (s *Scope) invoke(src string) (any, bool) {
	vm := goja.New()
	val, err := vm.RunString(src)
	if err != nil {
		s.log.WithError(err).WithField("script", src).Warn("hostenv: script evaluation failed")
		return nil, false
	}
	return val.Export(), true
}
