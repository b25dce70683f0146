package cfg

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/cfgscript/cfg/cfgpath"
	"github.com/cfgscript/cfg/token"
)

// undefinedType is the sentinel returned by an env-var lookup with no
// default and no value set in the environment (DESIGN.md Open Question
// 2). It is distinct from Go nil/native null so callers (and the
// string renderer) can tell "explicitly null" from "nothing to show"
// apart.
type undefinedType struct{}

// Undefined is the distinguished value produced by `` `$VAR` `` when VAR
// is unset and no `|default` was given.
var Undefined = undefinedType{}

var (
	isoDateTimeRe = regexp.MustCompile(
		`^(\d{4})-(\d{2})-(\d{2})(?:[ T](\d{2}):(\d{2}):(\d{2})(?:\.(\d{1,6}))?(?:([+-])(\d{2}):(\d{2})(?::(\d{2})(?:\.(\d{1,6}))?)?)?)?$`)
	envVarRe     = regexp.MustCompile(`^\$(\w+)(\|(.*))?$`)
	dottedPathRe = regexp.MustCompile(`^([A-Za-z_]\w*(\.[A-Za-z_]\w*)*)$`)
	placeholdRe  = regexp.MustCompile(`\$\{[^}]*\}`)
)

// ConvertString applies the Special-Value Converter (spec §4.7) to the
// decoded content of a backtick-string: ISO date-time, env-var-with-
// default, dotted host-path, then `${…}` interpolation, first match
// wins. With strict_conversions off, an unmatched input is returned
// unchanged.
func (c *Config) ConvertString(s string) (any, error) {
	if m := isoDateTimeRe.FindStringSubmatch(s); m != nil {
		return parseISODateTime(m)
	}
	if m := envVarRe.FindStringSubmatch(s); m != nil {
		return c.convertEnvVar(m)
	}
	if dottedPathRe.MatchString(s) {
		if c.options.Host != nil {
			if v, ok := resolveHostPath(c.options.Host, s); ok {
				return v, nil
			}
		}
		// spec §4.7 rule 3: a missing attribute (or no Host at all)
		// returns the original text unchanged, independent of strict
		// mode.
		return s, nil
	}
	if placeholdRe.MatchString(s) {
		return c.convertInterpolation(s)
	}
	if c.options.StrictConversions {
		return nil, newConfigError(token.Location{}, "unable to convert string '%s'", s)
	}
	return s, nil
}

func parseISODateTime(m []string) (any, error) {
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	if m[4] == "" {
		return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local), nil
	}
	hour, _ := strconv.Atoi(m[4])
	minute, _ := strconv.Atoi(m[5])
	sec, _ := strconv.Atoi(m[6])
	nsec := 0
	if m[7] != "" {
		frac := m[7]
		for len(frac) < 9 {
			frac += "0"
		}
		nsec, _ = strconv.Atoi(frac[:9])
	}
	loc := time.Local
	if m[8] != "" {
		offH, _ := strconv.Atoi(m[9])
		offM, _ := strconv.Atoi(m[10])
		offS := 0
		if m[11] != "" {
			offS, _ = strconv.Atoi(m[11])
		}
		offset := offH*3600 + offM*60 + offS
		if m[8] == "-" {
			offset = -offset
		}
		loc = time.FixedZone(fmt.Sprintf("%s%s:%s", m[8], m[9], m[10]), offset)
	}
	return time.Date(year, time.Month(month), day, hour, minute, sec, nsec, loc), nil
}

func (c *Config) convertEnvVar(m []string) (any, error) {
	name := m[1]
	hasDefault := m[2] != ""
	def := m[3]
	if v, ok := os.LookupEnv(name); ok {
		return v, nil
	}
	if hasDefault {
		return def, nil
	}
	if c.options.StrictConversions {
		return nil, newConfigError(token.Location{}, "unable to convert string '%s'", "$"+name)
	}
	return Undefined, nil
}

func resolveHostPath(h Host, s string) (any, bool) {
	return h.Resolve(s)
}

// convertInterpolation expands every `${…}` placeholder in s by parsing
// its contents as a path, evaluating it against c, and rendering the
// result with stringFor; failure of any placeholder fails the whole
// conversion.
func (c *Config) convertInterpolation(s string) (any, error) {
	var errOut error
	result := placeholdRe.ReplaceAllStringFunc(s, func(match string) string {
		if errOut != nil {
			return ""
		}
		inner := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		node, err := cfgpath.ParsePath(inner)
		if err != nil {
			errOut = err
			return ""
		}
		v, err := walkPath(c, node)
		if err != nil {
			errOut = err
			return ""
		}
		return stringFor(v)
	})
	if errOut != nil {
		return nil, errOut
	}
	return norm.NFC.String(result), nil
}

// stringFor renders an evaluated value for embedding into an
// interpolated string (spec §4.7.4): lists as `[x, y, …]`, mappings as
// `{k: v, …}`, scalars via their native string form.
func stringFor(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case undefinedType:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case complex128:
		return fmt.Sprintf("%v", t)
	case time.Time:
		return t.Format(time.RFC3339)
	case []any:
		parts := make([]string, len(t))
		for i, e := range t {
			parts[i] = stringFor(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *ListValue:
		plain, err := t.AsPlain()
		if err != nil {
			return ""
		}
		return stringFor(plain)
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = fmt.Sprintf("%s: %s", k, stringFor(t[k]))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case *MappingValue:
		plain, err := t.AsPlain()
		if err != nil {
			return ""
		}
		return stringFor(plain)
	case *Config:
		plain, err := t.AsDict()
		if err != nil {
			return ""
		}
		return stringFor(plain)
	default:
		return fmt.Sprintf("%v", t)
	}
}
