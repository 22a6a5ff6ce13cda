// Package filter evaluates user-entered filter expressions against single
// cell values.
//
// An expression is one of:
//
//	a..b        range, inclusive on both ends
//	>x <x >=x <=x
//	=x          exact, case-insensitive
//	x           numeric equality, or a case-insensitive glob where * matches
//	            any run of characters
//
// ValueFilters returns true when the value should be EXCLUDED. Negation with
// a leading ! is the caller's responsibility: strip it, evaluate, invert.
package filter

import (
	"log/slog"
	"math"
	"regexp"
	"strings"

	"github.com/Velocidex/ttlcache/v2"

	"github.com/opencadc/votv/pkg/value"
)

// DefaultCacheSize bounds the number of compiled glob patterns kept.
const DefaultCacheSize = 1000

var operatorCapture = regexp.MustCompile(`^\s?(>=|<=|=|>|<)?\s?(.*)`)

// Engine evaluates filter expressions. It is safe for concurrent use.
type Engine struct {
	anchored  bool
	cacheSize int
	logger    *slog.Logger
	patterns  *ttlcache.Cache
}

// Option configures an Engine.
type Option func(*Engine)

// WithAnchoredGlobs selects whether a glob containing * must match the
// whole value (true, the default) or any substring of it.
func WithAnchoredGlobs(anchored bool) Option {
	return func(e *Engine) {
		e.anchored = anchored
	}
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithCacheSize bounds the compiled pattern cache. Values <= 0 keep the
// default.
func WithCacheSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.cacheSize = n
		}
	}
}

// New creates an Engine. Call Close to release the pattern cache.
func New(opts ...Option) *Engine {
	e := &Engine{
		anchored:  true,
		cacheSize: DefaultCacheSize,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.patterns = ttlcache.NewCache()
	e.patterns.SetCacheSizeLimit(e.cacheSize)
	return e
}

// Close releases the pattern cache.
func (e *Engine) Close() error {
	if e.patterns == nil {
		return nil
	}
	return e.patterns.Close()
}

// Anchored reports whether * globs are anchored.
func (e *Engine) Anchored() bool {
	return e.anchored
}

// Operator returns the leading comparison operator of expr, or "".
func Operator(expr string) string {
	m := operatorCapture.FindStringSubmatch(expr)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// ValueFilters reports whether v fails expr and should be excluded.
// Malformed expressions never fail; they resolve towards keeping the value.
func (e *Engine) ValueFilters(expr string, v any) bool {
	expr = value.TrimSpace(expr)

	if i := strings.Index(expr, ".."); i > 0 {
		return rangeFilters(expr[:i], expr[i+2:], v)
	}

	op := Operator(expr)
	filter := value.TrimSpace(expr[len(op):])
	v = value.Normalize(v)
	if s, ok := v.(string); ok {
		v = value.TrimSpace(s)
	}

	if value.IsNumber(filter) && isAbsent(v) {
		return true
	}
	if op != "" && filter == "" {
		return false
	}

	switch op {
	case ">":
		return relational(v, filter, func(a, b float64) bool { return a <= b }, value.LessOrEqual)
	case "<":
		return relational(v, filter, func(a, b float64) bool { return a >= b }, value.GreaterOrEqual)
	case ">=":
		return relational(v, filter, func(a, b float64) bool { return a < b }, value.LessThan)
	case "<=":
		return relational(v, filter, func(a, b float64) bool { return a > b }, value.GreaterThan)
	case "=":
		return value.Upper(value.String(v)) != value.Upper(filter)
	}

	if value.AreNumbers(v, filter) {
		return value.Float(v) != value.ParseFloat(filter)
	}

	re := e.pattern(filter)
	if re == nil {
		return false
	}
	return !re.MatchString(value.String(v))
}

// rangeFilters drops v outside [left, right]. An open right end keeps
// everything.
func rangeFilters(left, right string, v any) bool {
	if right == "" {
		return false
	}
	if value.AreNumbers(v, left, right) {
		f := value.Float(v)
		return f < value.ParseFloat(left) || f > value.ParseFloat(right)
	}
	return value.LessThan(v, left) || value.GreaterThan(v, right)
}

// relational applies a dropping relation numerically when both sides are
// numbers, on upper-cased text when both are strings, and loosely otherwise.
func relational(v any, filter string, numeric func(a, b float64) bool, loose func(a, b any) bool) bool {
	if value.AreNumbers(v, filter) {
		return numeric(value.Float(v), value.ParseFloat(filter))
	}
	if s, ok := v.(string); ok {
		return loose(value.Upper(s), value.Upper(filter))
	}
	return loose(v, filter)
}

func isAbsent(v any) bool {
	switch t := v.(type) {
	case string:
		return t == "" || t == "NaN"
	case float64:
		return math.IsNaN(t)
	}
	return false
}

// pattern compiles filter as a case-insensitive glob. Everything except *
// matches literally.
func (e *Engine) pattern(filter string) *regexp.Regexp {
	if e.patterns != nil {
		if cached, err := e.patterns.Get(filter); err == nil {
			if re, ok := cached.(*regexp.Regexp); ok {
				return re
			}
		}
	}

	re, err := regexp.Compile(globExpr(filter, e.anchored))
	if err != nil {
		e.logger.Warn("cannot compile filter pattern, keeping value",
			slog.String("filter", filter), slog.String("error", err.Error()))
		return nil
	}

	if e.patterns != nil {
		_ = e.patterns.Set(filter, re)
	}
	return re
}

func globExpr(filter string, anchored bool) string {
	parts := strings.Split(filter, "*")
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	expr := strings.Join(parts, ".*")
	if anchored && len(parts) > 1 {
		expr = "^" + expr + "$"
	}
	return "(?i)" + expr
}
