package cfg

import (
	"encoding/json"

	"gopkg.in/yaml.v3"

	"github.com/cfgscript/cfg/ast"
	"github.com/cfgscript/cfg/token"
)

// AsYAML renders this document's fully evaluated form as YAML, useful
// for debugging and for diffing against a reference document in tests.
func (c *Config) AsYAML() (string, error) {
	m, err := c.AsDict()
	if err != nil {
		return "", err
	}
	out, err := yaml.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// AsJSON renders this document's fully evaluated form as JSON.
func (c *Config) AsJSON() (string, error) {
	m, err := c.AsDict()
	if err != nil {
		return "", err
	}
	out, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Dump pretty-prints this document's unevaluated AST, for debugging
// parse results independent of evaluation.
func (c *Config) Dump() string {
	return ast.Dump(c.root.node)
}

// TokenRepr returns the human-facing descriptor for a token kind (spec
// §6 free function `token_repr`), e.g. "identifier", "whole number",
// "end of input", or the literal punctuation spelling in single quotes.
func TokenRepr(k token.Kind) string { return token.Repr(k) }
