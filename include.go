package cfg

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/cfgscript/cfg/ast"
	"github.com/cfgscript/cfg/parser"
)

// evalInclude implements `@ "path"` (spec §4.6 Include resolution): the
// operand must evaluate to a string; it is resolved first as given (if
// absolute), then relative to the including document's directory, then
// against each include_path entry in order, and last as given. The included file is
// parsed fresh and its mapping root wrapped in a child Config that
// shares this document's evaluation session, so a reference cycle
// spanning an include is still caught.
func evalInclude(ctx *Config, u *ast.UnaryNode) (any, error) {
	v, err := evalExpr(ctx, u.Operand)
	if err != nil {
		return nil, err
	}
	name, ok := v.(string)
	if !ok {
		return nil, newConfigError(u.Loc, "@ operand must be a string, but is %s", describeValue(v))
	}

	foundPath, err := locateInclude(ctx, name)
	if err != nil {
		return nil, newConfigError(u.Loc, "unable to locate %s", name)
	}
	data, err := readIncludeFile(ctx, foundPath)
	if err != nil {
		return nil, newConfigError(u.Loc, "unable to read %s", name)
	}

	ctx.log.WithField("include", foundPath).Debug("resolved include")

	p, err := parser.NewParser(string(data))
	if err != nil {
		return nil, err
	}
	n, err := p.ParseContainer()
	if err != nil {
		return nil, err
	}
	mn, ok := n.(*ast.MappingNode)
	if !ok {
		return nil, newConfigError(n.Start(), "Root of configuration must be a mapping")
	}
	return ctx.childConfig(includeDir(ctx, foundPath), mn)
}

// locateInclude finds the first existing candidate for name: as given
// (if absolute), relative to the including document's directory, then
// each include_path entry in order, and finally name as given (relative
// to the working directory, or to the root of ctx.options.FS). When
// ctx.options.FS is set, paths
// are resolved against that fs.FS using slash-separated joining instead
// of the OS filesystem (spec §9 "Host-object resolution" style
// injection, extended here to file access for testability).
func locateInclude(ctx *Config, name string) (string, error) {
	if ctx.options.FS == nil && filepath.IsAbs(name) {
		if fileExists(ctx, name) {
			return name, nil
		}
		return "", fmt.Errorf("not found")
	}
	if ctx.dir != "" {
		candidate := joinIncludePath(ctx, ctx.dir, name)
		if fileExists(ctx, candidate) {
			return candidate, nil
		}
	}
	for _, dir := range ctx.options.IncludePath {
		candidate := joinIncludePath(ctx, dir, name)
		if fileExists(ctx, candidate) {
			return candidate, nil
		}
	}
	if fileExists(ctx, name) {
		return name, nil
	}
	return "", fmt.Errorf("not found")
}

func joinIncludePath(ctx *Config, dir, name string) string {
	if ctx.options.FS != nil {
		return path.Join(dir, name)
	}
	return filepath.Join(dir, name)
}

func includeDir(ctx *Config, resolved string) string {
	if ctx.options.FS != nil {
		return path.Dir(resolved)
	}
	return filepath.Dir(resolved)
}

func fileExists(ctx *Config, name string) bool {
	if ctx.options.FS != nil {
		info, err := fs.Stat(ctx.options.FS, name)
		return err == nil && !info.IsDir()
	}
	info, err := os.Stat(name)
	return err == nil && !info.IsDir()
}

func readIncludeFile(ctx *Config, name string) ([]byte, error) {
	if ctx.options.FS != nil {
		return fs.ReadFile(ctx.options.FS, name)
	}
	return os.ReadFile(name)
}
