// Package cfg implements CFG, a textual configuration format that is a
// strict superset of JSON: comments, trailing commas, unquoted keys,
// dotted/bracketed path access, `${…}` cross-references, backtick
// special values, arithmetic and logical expressions, and `@`-include
// composition, evaluated lazily on demand.
//
// Load or LoadFile produce a *Config; Config.Get resolves either a
// literal top-level key or a path expression against it. Sub-packages
// token, lexer, ast, parser, and cfgpath implement the successive
// stages of the pipeline and are reusable independently of the
// evaluator in this package.
package cfg
