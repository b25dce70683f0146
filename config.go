package cfg

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/gofrs/uuid"
	"github.com/sirupsen/logrus"

	"github.com/cfgscript/cfg/ast"
	"github.com/cfgscript/cfg/parser"
	"github.com/cfgscript/cfg/token"
)

// Host resolves a dotted object-path against an embedder-supplied
// ambient scope (spec §4.7.3, §9 "Host-object resolution"). It is the
// single injected callback the core depends on instead of any
// particular reflection facility; invocation of a callable final
// attribute, if any, is the Host implementation's responsibility.
type Host interface {
	Resolve(dottedName string) (value any, ok bool)
}

// Options configures a Config's construction and evaluation behavior.
// The zero value is NOT valid — use DefaultOptions() or New's variadic
// option functions.
type Options struct {
	NoDuplicates      bool
	StrictConversions bool
	IncludePath       []string
	Context           map[string]any
	Cached            bool
	Logger            logrus.FieldLogger
	Host              Host
	FS                fs.FS
}

// DefaultOptions returns the spec-mandated defaults: no_duplicates and
// strict_conversions both on, no include path, empty context, caching
// off.
func DefaultOptions() Options {
	return Options{
		NoDuplicates:      true,
		StrictConversions: true,
		Context:           map[string]any{},
		Logger:            logrus.New(),
	}
}

// Option mutates an Options value, in the functional-option style.
type Option func(*Options)

func WithNoDuplicates(v bool) Option      { return func(o *Options) { o.NoDuplicates = v } }
func WithStrictConversions(v bool) Option { return func(o *Options) { o.StrictConversions = v } }
func WithIncludePath(dirs ...string) Option {
	return func(o *Options) { o.IncludePath = dirs }
}
func WithContext(ctx map[string]any) Option  { return func(o *Options) { o.Context = ctx } }
func WithCached(v bool) Option                { return func(o *Options) { o.Cached = v } }
func WithLogger(l logrus.FieldLogger) Option  { return func(o *Options) { o.Logger = l } }
func WithHost(h Host) Option                  { return func(o *Options) { o.Host = h } }

// WithFS routes file reads for LoadFS documents and their `@`-includes
// through fsys instead of the real filesystem (see internal/memfs for a
// test-oriented in-memory implementation).
func WithFS(fsys fs.FS) Option { return func(o *Options) { o.FS = fsys } }

// Config is a loaded CFG document: an evaluated-on-demand root mapping
// plus the options governing evaluation. Loading is eager (tokenize +
// parse to completion); evaluation of values is lazy. A Config is
// read-only after construction except for its evaluation cache and its
// transient refs-seen cycle-detection set.
type Config struct {
	root    *MappingValue
	dir     string // directory of the source document, for relative include resolution
	options Options
	cache   map[string]any
	traceID string
	session *evalSession

	log logrus.FieldLogger
}

// evalSession holds the transient "refs-seen" set used for circular-
// reference detection during a single outer Get call (spec §4.6, §9
// "Shared ownership" / §5 "refs_seen set is cleared at the start of
// each outer get"). Sub-Configs created by include share their parent's
// session so a cycle spanning an include is still caught.
type evalSession struct {
	refs map[string]token.Location
}

func newEvalSession() *evalSession {
	return &evalSession{refs: map[string]token.Location{}}
}

func (s *evalSession) reset() {
	for k := range s.refs {
		delete(s.refs, k)
	}
}

// New constructs an empty Config (no root mapping); only useful as a
// base for tests or as a context donor. Prefer Load/LoadFile for real
// documents.
func New(opts ...Option) *Config {
	o := DefaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	c := &Config{options: o, cache: map[string]any{}}
	c.finishConstruct()
	return c
}

// LoadFile reads and parses path as a CFG document.
func LoadFile(path string, opts ...Option) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cfg: unable to read %s: %w", path, err)
	}
	c, err := Load(string(data), opts...)
	if err != nil {
		return nil, err
	}
	c.dir = filepath.Dir(path)
	return c, nil
}

// LoadFS reads and parses name out of fsys as a CFG document; any
// relative `@`-includes it contains are resolved against fsys as well
// (see WithFS, internal/memfs).
func LoadFS(fsys fs.FS, name string, opts ...Option) (*Config, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("cfg: unable to read %s: %w", name, err)
	}
	opts = append(append([]Option{}, opts...), WithFS(fsys))
	c, err := Load(string(data), opts...)
	if err != nil {
		return nil, err
	}
	c.dir = path.Dir(name)
	return c, nil
}

// Load parses text as a CFG document.
func Load(text string, opts ...Option) (*Config, error) {
	o := DefaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	c := &Config{options: o, cache: map[string]any{}}
	c.finishConstruct()

	p, err := parser.NewParser(text)
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
	mv, err := newMappingValue(c, mn)
	if err != nil {
		return nil, err
	}
	c.root = mv
	return c, nil
}

func (c *Config) finishConstruct() {
	if c.options.Context == nil {
		c.options.Context = map[string]any{}
	}
	if c.options.Logger == nil {
		c.options.Logger = logrus.New()
	}
	id, err := uuid.NewV4()
	if err == nil {
		c.traceID = id.String()
	}
	c.log = c.options.Logger
	if c.traceID != "" {
		c.log = c.log.WithField("trace_id", c.traceID)
	}
	c.session = newEvalSession()
}

// childConfig builds a sub-Config for an @-include result, inheriting
// no_duplicates, strict_conversions, context, and include_path per
// spec §4.6.
func (parent *Config) childConfig(dir string, mn *ast.MappingNode) (*Config, error) {
	child := &Config{
		options: Options{
			NoDuplicates:      parent.options.NoDuplicates,
			StrictConversions: parent.options.StrictConversions,
			IncludePath:       parent.options.IncludePath,
			Context:           parent.options.Context,
			Cached:            parent.options.Cached,
			Logger:            parent.options.Logger,
			Host:              parent.options.Host,
			FS:                parent.options.FS,
		},
		dir:     dir,
		cache:   map[string]any{},
		traceID: parent.traceID,
		log:     parent.log,
		session: parent.session,
	}
	mv, err := newMappingValue(child, mn)
	if err != nil {
		return nil, err
	}
	child.root = mv
	return child, nil
}

// AsDict returns the fully evaluated plain mapping for this document.
func (c *Config) AsDict() (map[string]any, error) {
	return c.root.AsPlain()
}
