package cfg

import (
	"fmt"
	"math"
	"math/cmplx"
	"reflect"
	"sort"
	"strings"

	"github.com/cfgscript/cfg/ast"
	"github.com/cfgscript/cfg/cfgpath"
	"github.com/cfgscript/cfg/token"
)

// evalExpr is the expression Evaluator's entry point (spec §4.6): it
// dispatches on the AST node's concrete type, the way a tagged sum type
// is dispatched by exhaustive pattern match.
func evalExpr(ctx *Config, n ast.Node) (any, error) {
	switch v := n.(type) {
	case *ast.TokenNode:
		return evalToken(ctx, v)
	case *ast.UnaryNode:
		return evalUnary(ctx, v)
	case *ast.BinaryNode:
		switch v.Kind {
		case token.DOT, token.LBRACK, token.COLON:
			return evalTrailer(ctx, v)
		default:
			return evalBinaryOp(ctx, v)
		}
	case *ast.ListNode:
		return newListValue(ctx, v), nil
	case *ast.MappingNode:
		return newMappingValue(ctx, v)
	case *ast.SliceNode:
		return nil, newConfigError(v.Start(), "slice used outside of an index position")
	}
	return nil, newConfigError(n.Start(), "cannot evaluate node of type %T", n)
}

func evalToken(ctx *Config, t *ast.TokenNode) (any, error) {
	switch t.Tok.Kind {
	case token.INTEGER, token.FLOAT, token.COMPLEX, token.STRING:
		return t.Tok.Value, nil
	case token.TRUE:
		return true, nil
	case token.FALSE:
		return false, nil
	case token.NONE:
		return nil, nil
	case token.WORD:
		val, ok := ctx.options.Context[t.Tok.Text]
		if !ok {
			return nil, newConfigError(t.Tok.Start, "Unknown variable: %s", t.Tok.Text)
		}
		return val, nil
	case token.BACKTICK:
		s, _ := t.Tok.Value.(string)
		return ctx.ConvertString(s)
	}
	return nil, newConfigError(t.Tok.Start, "cannot evaluate token %s", t.Tok.Kind)
}

func evalUnary(ctx *Config, u *ast.UnaryNode) (any, error) {
	switch u.Kind {
	case token.NOT:
		v, err := evalExpr(ctx, u.Operand)
		if err != nil {
			return nil, err
		}
		return !truthy(v), nil
	case token.MINUS:
		v, err := evalExpr(ctx, u.Operand)
		if err != nil {
			return nil, err
		}
		switch n := v.(type) {
		case int64:
			return -n, nil
		case float64:
			return -n, nil
		case complex128:
			return -n, nil
		}
		return nil, newConfigError(u.Loc, "unable to negate %s", describeValue(v))
	case token.PLUS:
		v, err := evalExpr(ctx, u.Operand)
		if err != nil {
			return nil, err
		}
		if !isNumeric(v) {
			return nil, newConfigError(u.Loc, "unable to apply unary + to %s", describeValue(v))
		}
		return v, nil
	case token.TILDE:
		v, err := evalExpr(ctx, u.Operand)
		if err != nil {
			return nil, err
		}
		i, ok := v.(int64)
		if !ok {
			return nil, newConfigError(u.Loc, "unable to apply ~ to %s", describeValue(v))
		}
		return ^i, nil
	case token.AT:
		return evalInclude(ctx, u)
	case token.DOLLAR:
		return evalReference(ctx, u)
	}
	return nil, newConfigError(u.Loc, "unsupported unary operator %s", u.Kind)
}

// evalReference evaluates a `${…}` node: cycle-checks the reconstructed
// path source against the session's refs-seen set (spec §4.6 "Circular
// reference detection"), then walks the operand as a path from ctx's
// root.
func evalReference(ctx *Config, u *ast.UnaryNode) (any, error) {
	src := cfgpath.ToSource(u.Operand)
	if _, seen := ctx.session.refs[src]; seen {
		return nil, circularReferenceError(ctx.session.refs)
	}
	ctx.session.refs[src] = u.Loc
	defer delete(ctx.session.refs, src)
	ctx.log.WithField("ref", src).Trace("resolving reference")
	return walkPath(ctx, u.Operand)
}

func circularReferenceError(refs map[string]token.Location) error {
	entries := make([]CycleEntry, 0, len(refs))
	for src, loc := range refs {
		entries = append(entries, CycleEntry{Source: src, Loc: loc})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Source < entries[j].Source })
	return &CircularReferenceError{Entries: entries}
}

// evalTrailer evaluates a DOT/LBRACK/COLON BinaryNode in ordinary
// expression position (i.e. not reached through a parsed path string or
// a `${…}` reference) — e.g. `list_value[1]` written directly as a
// value. The leading identifier, if any, resolves as a context
// variable; this is what distinguishes it from walkPath's root lookup.
func evalTrailer(ctx *Config, bin *ast.BinaryNode) (any, error) {
	left, err := evalExpr(ctx, bin.Left)
	if err != nil {
		return nil, err
	}
	loc := bin.Left.Start()
	switch bin.Kind {
	case token.DOT:
		name := bin.Right.(*ast.TokenNode).Tok.Text
		return applyDot(left, name, loc)
	case token.LBRACK:
		idx, err := evalExpr(ctx, bin.Right)
		if err != nil {
			return nil, err
		}
		return applyIndex(ctx, left, idx, loc)
	case token.COLON:
		sl := bin.Right.(*ast.SliceNode)
		return applySlice(ctx, left, sl, loc)
	}
	return nil, newConfigError(bin.Start(), "unsupported trailer operator %s", bin.Kind)
}

// applyDot implements "(. name) on a MappingValue or Config" (spec
// §4.6 Path walk).
func applyDot(left any, name string, loc token.Location) (any, error) {
	switch v := left.(type) {
	case *MappingValue:
		if _, ok := v.BaseGet(name); !ok {
			return nil, newConfigError(loc, "Not found in configuration: %s", name)
		}
		return v.Get(name)
	case *Config:
		return applyDot(v.root, name, loc)
	case map[string]any:
		val, ok := v[name]
		if !ok {
			return nil, newConfigError(loc, "Not found in configuration: %s", name)
		}
		return val, nil
	default:
		return nil, newConfigError(loc, "Not found in configuration: %s", name)
	}
}

// applyIndex implements "([ idx) on a ListValue" (spec §4.6 Path walk).
func applyIndex(ctx *Config, left any, idx any, loc token.Location) (any, error) {
	i, ok := idx.(int64)
	if !ok {
		return nil, &BadIndexError{Loc: loc, Message: fmt.Sprintf("integer required, but found %s", describeValue(idx))}
	}
	switch lv := left.(type) {
	case *ListValue:
		n := int64(lv.Len())
		j := i
		if j < 0 {
			j += n
		}
		if j < 0 || j >= n {
			return nil, &BadIndexError{Loc: loc, Message: fmt.Sprintf("index out of range: is %d, must be between 0 and %d", i, n-1)}
		}
		return lv.Get(int(j))
	case []any:
		n := int64(len(lv))
		j := i
		if j < 0 {
			j += n
		}
		if j < 0 || j >= n {
			return nil, &BadIndexError{Loc: loc, Message: fmt.Sprintf("index out of range: is %d, must be between 0 and %d", i, n-1)}
		}
		return lv[j], nil
	default:
		return nil, &BadIndexError{Loc: loc, Message: fmt.Sprintf("cannot index %s", describeValue(left))}
	}
}

// applySlice implements "(: slice) on a ListValue" and the Python-like
// slice semantics of spec §4.6.
func applySlice(ctx *Config, left any, sl *ast.SliceNode, loc token.Location) (any, error) {
	getInt := func(n ast.Node) (*int64, error) {
		if n == nil {
			return nil, nil
		}
		v, err := evalExpr(ctx, n)
		if err != nil {
			return nil, err
		}
		i, ok := v.(int64)
		if !ok {
			return nil, &BadIndexError{Loc: loc, Message: fmt.Sprintf("integer required, but found %s", describeValue(v))}
		}
		return &i, nil
	}
	start, err := getInt(sl.SliceStart)
	if err != nil {
		return nil, err
	}
	stop, err := getInt(sl.Stop)
	if err != nil {
		return nil, err
	}
	step, err := getInt(sl.Step)
	if err != nil {
		return nil, err
	}
	if step != nil && *step == 0 {
		return nil, &BadIndexError{Loc: loc, Message: "slice step cannot be zero"}
	}

	var n int
	var get func(i int) (any, error)
	switch lv := left.(type) {
	case *ListValue:
		n = lv.Len()
		get = lv.Get
	case []any:
		n = len(lv)
		get = func(i int) (any, error) { return lv[i], nil }
	default:
		return nil, &BadIndexError{Loc: loc, Message: "slices can only operate on lists"}
	}

	idxs := pySliceIndices(n, start, stop, step)
	out := make([]any, 0, len(idxs))
	for _, i := range idxs {
		v, err := get(i)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// pySliceIndices computes the sequence of indices a Python-style slice
// yields (spec §4.6 "Slice semantics"), given list size n and optional
// start/stop/step (nil meaning absent).
func pySliceIndices(n int, start, stop, step *int64) []int {
	nn := int64(n)
	st := int64(1)
	if step != nil {
		st = *step
	}
	var idxs []int
	if st > 0 {
		s, e := int64(0), nn
		if start != nil {
			s = clamp(*start, nn, 0, nn)
		}
		if stop != nil {
			e = clamp(*stop, nn, 0, nn)
		}
		for i := s; i < e; i += st {
			idxs = append(idxs, int(i))
		}
		return idxs
	}
	s, e := nn-1, int64(-1)
	if start != nil {
		s = clamp(*start, nn, -1, nn-1)
	}
	if stop != nil {
		e = clamp(*stop, nn, -1, nn-1)
	}
	for i := s; i > e; i += st {
		idxs = append(idxs, int(i))
	}
	return idxs
}

func clamp(v, n, lo, hi int64) int64 {
	if v < 0 {
		v += n
	}
	if v < lo {
		v = lo
	}
	if v > hi {
		v = hi
	}
	return v
}

// evalBinaryOp evaluates arithmetic, bitwise, logical, and comparison
// binary operators (spec §4.6).
func evalBinaryOp(ctx *Config, n *ast.BinaryNode) (any, error) {
	switch n.Kind {
	case token.AND:
		l, err := evalExpr(ctx, n.Left)
		if err != nil {
			return nil, err
		}
		if !truthy(l) {
			return false, nil
		}
		r, err := evalExpr(ctx, n.Right)
		if err != nil {
			return nil, err
		}
		return truthy(r), nil
	case token.OR:
		l, err := evalExpr(ctx, n.Left)
		if err != nil {
			return nil, err
		}
		if truthy(l) {
			return true, nil
		}
		r, err := evalExpr(ctx, n.Right)
		if err != nil {
			return nil, err
		}
		return truthy(r), nil
	}

	left, err := evalExpr(ctx, n.Left)
	if err != nil {
		return nil, err
	}
	right, err := evalExpr(ctx, n.Right)
	if err != nil {
		return nil, err
	}
	loc := n.Left.Start()

	switch n.Kind {
	case token.LT, token.GT, token.LE, token.GE, token.EQ, token.NEQ, token.ALTNEQ, token.IS, token.ISNOT:
		return evalComparison(n.Kind, left, right, loc)
	case token.IN, token.NOTIN:
		return evalMembership(n.Kind, left, right, loc)
	case token.PLUS:
		return evalPlus(left, right, loc)
	case token.MINUS:
		return evalMinus(left, right, loc)
	case token.STAR, token.SLASH, token.SLASHSLASH, token.MODULO, token.POWER:
		return evalArith(n.Kind, left, right, loc)
	case token.BITOR:
		return evalBitOrMerge(left, right, loc)
	case token.BITAND, token.BITXOR, token.LSHIFT, token.RSHIFT:
		return evalBitwise(n.Kind, left, right, loc)
	}
	return nil, newConfigError(loc, "unsupported operator %s", n.Kind)
}

func arithOpName(k token.Kind) string {
	switch k {
	case token.PLUS:
		return "add"
	case token.MINUS:
		return "subtract"
	case token.STAR:
		return "multiply"
	case token.SLASH, token.SLASHSLASH:
		return "divide"
	case token.MODULO:
		return "modulo"
	case token.POWER:
		return "exponentiate"
	case token.BITAND:
		return "bitand"
	case token.BITXOR:
		return "bitxor"
	case token.BITOR:
		return "bitor"
	case token.LSHIFT:
		return "shift-left"
	case token.RSHIFT:
		return "shift-right"
	}
	return "evaluate"
}

func isNumeric(v any) bool {
	switch v.(type) {
	case int64, float64, complex128:
		return true
	}
	return false
}

func toFloat(v any) float64 {
	switch t := v.(type) {
	case int64:
		return float64(t)
	case float64:
		return t
	}
	return 0
}

func toComplex(v any) complex128 {
	switch t := v.(type) {
	case int64:
		return complex(float64(t), 0)
	case float64:
		return complex(t, 0)
	case complex128:
		return t
	}
	return 0
}

func intPow(base, exp int64) int64 {
	var result int64 = 1
	for i := int64(0); i < exp; i++ {
		result *= base
	}
	return result
}

func evalArith(kind token.Kind, l, r any, loc token.Location) (any, error) {
	failure := func() error {
		return newConfigError(loc, "unable to %s %s and %s", arithOpName(kind), describeValue(l), describeValue(r))
	}
	if !isNumeric(l) || !isNumeric(r) {
		return nil, failure()
	}
	_, lIsComplex := l.(complex128)
	_, rIsComplex := r.(complex128)
	if lIsComplex || rIsComplex {
		lc, rc := toComplex(l), toComplex(r)
		switch kind {
		case token.PLUS:
			return lc + rc, nil
		case token.MINUS:
			return lc - rc, nil
		case token.STAR:
			return lc * rc, nil
		case token.SLASH:
			if rc == 0 {
				return nil, failure()
			}
			return lc / rc, nil
		case token.POWER:
			return cmplx.Pow(lc, rc), nil
		default:
			return nil, failure()
		}
	}
	li, lIsInt := l.(int64)
	ri, rIsInt := r.(int64)
	if lIsInt && rIsInt {
		switch kind {
		case token.PLUS:
			return li + ri, nil
		case token.MINUS:
			return li - ri, nil
		case token.STAR:
			return li * ri, nil
		case token.SLASH:
			if ri == 0 {
				return nil, failure()
			}
			return float64(li) / float64(ri), nil
		case token.SLASHSLASH:
			if ri == 0 {
				return nil, failure()
			}
			q := li / ri
			if li%ri != 0 && (li < 0) != (ri < 0) {
				q--
			}
			return q, nil
		case token.MODULO:
			if ri == 0 {
				return nil, failure()
			}
			m := li % ri
			if m != 0 && (m < 0) != (ri < 0) {
				m += ri
			}
			return m, nil
		case token.POWER:
			if ri < 0 {
				return math.Pow(float64(li), float64(ri)), nil
			}
			return intPow(li, ri), nil
		}
	}
	lf, rf := toFloat(l), toFloat(r)
	switch kind {
	case token.PLUS:
		return lf + rf, nil
	case token.MINUS:
		return lf - rf, nil
	case token.STAR:
		return lf * rf, nil
	case token.SLASH:
		if rf == 0 {
			return nil, failure()
		}
		return lf / rf, nil
	case token.SLASHSLASH:
		if rf == 0 {
			return nil, failure()
		}
		return math.Floor(lf / rf), nil
	case token.MODULO:
		if rf == 0 {
			return nil, failure()
		}
		m := math.Mod(lf, rf)
		if m != 0 && (m < 0) != (rf < 0) {
			m += rf
		}
		return m, nil
	case token.POWER:
		return math.Pow(lf, rf), nil
	}
	return nil, failure()
}

func evalPlus(l, r any, loc token.Location) (any, error) {
	if ls, ok := l.(string); ok {
		if rs, ok := r.(string); ok {
			return ls + rs, nil
		}
	}
	if isNumeric(l) && isNumeric(r) {
		return evalArith(token.PLUS, l, r, loc)
	}
	if lm, ok := asPlainMapOperand(l); ok {
		if rm, ok := asPlainMapOperand(r); ok {
			return deepMerge(lm, rm), nil
		}
	}
	if ll, ok := asPlainListOperand(l); ok {
		if rl, ok := asPlainListOperand(r); ok {
			out := make([]any, 0, len(ll)+len(rl))
			out = append(out, ll...)
			out = append(out, rl...)
			return out, nil
		}
	}
	return nil, newConfigError(loc, "unable to add %s and %s", describeValue(l), describeValue(r))
}

func evalMinus(l, r any, loc token.Location) (any, error) {
	if isNumeric(l) && isNumeric(r) {
		return evalArith(token.MINUS, l, r, loc)
	}
	if lm, ok := asPlainMapOperand(l); ok {
		if rm, ok := asPlainMapOperand(r); ok {
			out := make(map[string]any, len(lm))
			for k, v := range lm {
				out[k] = v
			}
			for k := range rm {
				delete(out, k)
			}
			return out, nil
		}
	}
	return nil, newConfigError(loc, "unable to subtract %s and %s", describeValue(l), describeValue(r))
}

func evalBitOrMerge(l, r any, loc token.Location) (any, error) {
	if li, ok := l.(int64); ok {
		if ri, ok := r.(int64); ok {
			return li | ri, nil
		}
	}
	if lm, ok := asPlainMapOperand(l); ok {
		if rm, ok := asPlainMapOperand(r); ok {
			return deepMerge(lm, rm), nil
		}
	}
	return nil, newConfigError(loc, "unable to bitor %s and %s", describeValue(l), describeValue(r))
}

func evalBitwise(kind token.Kind, l, r any, loc token.Location) (any, error) {
	li, lok := l.(int64)
	ri, rok := r.(int64)
	if !lok || !rok {
		return nil, newConfigError(loc, "unable to %s %s and %s", arithOpName(kind), describeValue(l), describeValue(r))
	}
	switch kind {
	case token.BITAND:
		return li & ri, nil
	case token.BITXOR:
		return li ^ ri, nil
	case token.LSHIFT:
		return li << uint(ri), nil
	case token.RSHIFT:
		return li >> uint(ri), nil
	}
	return nil, newConfigError(loc, "unsupported operator %s", kind)
}

func deepMerge(a, b map[string]any) map[string]any {
	out := make(map[string]any, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		if am, ok := out[k].(map[string]any); ok {
			if bm, ok := v.(map[string]any); ok {
				out[k] = deepMerge(am, bm)
				continue
			}
		}
		out[k] = v
	}
	return out
}

func asPlainMapOperand(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case *MappingValue:
		m, err := t.AsPlain()
		return m, err == nil
	case *Config:
		m, err := t.AsDict()
		return m, err == nil
	}
	return nil, false
}

func asPlainListOperand(v any) ([]any, bool) {
	switch t := v.(type) {
	case []any:
		return t, true
	case *ListValue:
		l, err := t.AsPlain()
		return l, err == nil
	}
	return nil, false
}

func evalComparison(kind token.Kind, l, r any, loc token.Location) (any, error) {
	switch kind {
	case token.EQ, token.IS:
		return valuesEqual(l, r), nil
	case token.NEQ, token.ALTNEQ, token.ISNOT:
		return !valuesEqual(l, r), nil
	}
	cmp, ok := compareOrdered(l, r)
	if !ok {
		return nil, newConfigError(loc, "unable to compare %s and %s", describeValue(l), describeValue(r))
	}
	switch kind {
	case token.LT:
		return cmp < 0, nil
	case token.GT:
		return cmp > 0, nil
	case token.LE:
		return cmp <= 0, nil
	case token.GE:
		return cmp >= 0, nil
	}
	return nil, newConfigError(loc, "unsupported operator %s", kind)
}

func normalizeForCompare(v any) any {
	switch t := v.(type) {
	case *MappingValue:
		if p, err := t.AsPlain(); err == nil {
			return p
		}
	case *ListValue:
		if p, err := t.AsPlain(); err == nil {
			return p
		}
	case *Config:
		if p, err := t.AsDict(); err == nil {
			return p
		}
	}
	return v
}

func valuesEqual(l, r any) bool {
	l, r = normalizeForCompare(l), normalizeForCompare(r)
	if isNumeric(l) && isNumeric(r) {
		return toComplex(l) == toComplex(r)
	}
	return reflect.DeepEqual(l, r)
}

func compareOrdered(l, r any) (int, bool) {
	if isNumeric(l) && isNumeric(r) {
		if _, ok := l.(complex128); ok {
			return 0, false
		}
		if _, ok := r.(complex128); ok {
			return 0, false
		}
		lf, rf := toFloat(l), toFloat(r)
		switch {
		case lf < rf:
			return -1, true
		case lf > rf:
			return 1, true
		default:
			return 0, true
		}
	}
	ls, lok := l.(string)
	rs, rok := r.(string)
	if lok && rok {
		return strings.Compare(ls, rs), true
	}
	return 0, false
}

func evalMembership(kind token.Kind, l, r any, loc token.Location) (any, error) {
	found := false
	fail := func() (any, error) {
		return nil, newConfigError(loc, "unable to test membership of %s in %s", describeValue(l), describeValue(r))
	}
	switch rv := r.(type) {
	case string:
		ls, ok := l.(string)
		if !ok {
			return fail()
		}
		found = strings.Contains(rv, ls)
	case []any:
		for _, e := range rv {
			if valuesEqual(e, l) {
				found = true
				break
			}
		}
	case *ListValue:
		for i := 0; i < rv.Len(); i++ {
			v, err := rv.Get(i)
			if err != nil {
				return nil, err
			}
			if valuesEqual(v, l) {
				found = true
				break
			}
		}
	case map[string]any:
		ls, ok := l.(string)
		if !ok {
			return fail()
		}
		_, found = rv[ls]
	case *MappingValue:
		ls, ok := l.(string)
		if !ok {
			return fail()
		}
		_, found = rv.index[ls]
	default:
		return fail()
	}
	if kind == token.NOTIN {
		return !found, nil
	}
	return found, nil
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case int64:
		return t != 0
	case float64:
		return t != 0
	case complex128:
		return t != 0
	case string:
		return t != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	case *ListValue:
		return t.Len() > 0
	case *MappingValue:
		return len(t.index) > 0
	case undefinedType:
		return false
	}
	return true
}

// describeValue renders a value for error messages in roughly the form
// the tokenizer/parser use for tokens: strings quoted, nil as "null".
func describeValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return fmt.Sprintf("%q", t)
	case *MappingValue, map[string]any:
		return "a mapping"
	case *ListValue, []any:
		return "a list"
	case *Config:
		return "an included document"
	case undefinedType:
		return "undefined"
	default:
		return fmt.Sprintf("%v", t)
	}
}
