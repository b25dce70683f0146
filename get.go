package cfg

import (
	"github.com/cfgscript/cfg/ast"
	"github.com/cfgscript/cfg/cfgpath"
	"github.com/cfgscript/cfg/token"
)

// Get evaluates key_or_path against this document (spec §4.6 Entry):
// first as a literal top-level key, then — if it's not a single
// identifier — as a path expression walked from the root. If def is
// supplied, most failures return it instead of propagating; the three
// error kinds that always propagate are InvalidPathError, BadIndexError,
// and CircularReferenceError.
func (c *Config) Get(keyOrPath string, def ...any) (any, error) {
	hasDefault := len(def) > 0
	var defaultVal any
	if hasDefault {
		defaultVal = def[0]
	}

	if c.options.Cached {
		if v, ok := c.cache[keyOrPath]; ok {
			c.log.WithField("key", keyOrPath).Debug("cache hit")
			return v, nil
		}
	}

	c.session.reset()
	val, err := c.resolve(keyOrPath)
	c.session.reset()

	if err != nil {
		if hasDefault && !alwaysPropagates(err) {
			return defaultVal, nil
		}
		return nil, err
	}
	// Get's public contract returns unwrapped native values (spec §6):
	// mappings and lists as plain map[string]any/[]any, never the
	// internal MappingValue/ListValue/Config wrappers used mid-walk.
	plain, err := asPlainValue(val)
	if err != nil {
		if hasDefault && !alwaysPropagates(err) {
			return defaultVal, nil
		}
		return nil, err
	}
	if c.options.Cached {
		c.cache[keyOrPath] = plain
	}
	return plain, nil
}

func alwaysPropagates(err error) bool {
	switch err.(type) {
	case *InvalidPathError, *BadIndexError, *CircularReferenceError:
		return true
	}
	return false
}

func (c *Config) resolve(key string) (any, error) {
	if v, ok := c.root.BaseGet(key); ok {
		c.log.WithField("key", key).Trace("literal top-level key")
		return evalExpr(c, v)
	}
	if IsIdentifier(key) {
		return nil, newConfigError(token.Location{}, "Not found in configuration: %s", key)
	}
	node, err := cfgpath.ParsePath(key)
	if err != nil {
		return nil, err
	}
	c.log.WithField("path", key).Trace("walking path")
	return walkPath(c, node)
}

// walkPath performs the Path Engine's walk (spec §4.4, §4.6): the root
// identifier is looked up as a top-level key, then each subsequent
// DOT/LBRACK/COLON step is applied to the running value, switching
// evaluation context whenever the walk lands on a Config produced by an
// include.
func walkPath(ctx *Config, pathNode ast.Node) (any, error) {
	var current any
	first := true
	err := cfgpath.Iterate(pathNode, func(step cfgpath.Step) error {
		if first {
			first = false
			v, err := ctx.root.Get(step.RootTok.Text)
			if err != nil {
				return err
			}
			current = v
			return nil
		}
		loc := step.Loc
		switch step.Op {
		case '.':
			v, err := applyDot(current, step.Name, loc)
			if err != nil {
				return err
			}
			current = v
		case '[':
			idx, err := evalExpr(ctx, step.Index)
			if err != nil {
				return err
			}
			v, err := applyIndex(ctx, current, idx, loc)
			if err != nil {
				return err
			}
			current = v
		case ':':
			v, err := applySlice(ctx, current, step.Slice, loc)
			if err != nil {
				return err
			}
			current = v
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return current, nil
}
