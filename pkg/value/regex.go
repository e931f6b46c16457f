package value

import (
	"regexp"
	"strings"
)

// Regex is the regex domain value. It carries both an unanchored and
// a fully-anchored compiled form so Search and Match each run in one
// pass instead of re-anchoring the pattern on every call.
type Regex struct {
	source   string
	search   *regexp.Regexp
	match    *regexp.Regexp
}

// CompileRegex compiles a regular expression in the Go regexp/syntax
// dialect.
func CompileRegex(pattern string) (Regex, error) {
	search, err := regexp.Compile(pattern)
	if err != nil {
		return Regex{}, err
	}
	match, err := regexp.Compile(`\A(?:` + pattern + `)\z`)
	if err != nil {
		return Regex{}, err
	}
	return Regex{source: pattern, search: search, match: match}, nil
}

// MustCompileRegex is CompileRegex that panics on error; useful for
// constant-folding call sites that already validated the pattern.
func MustCompileRegex(pattern string) Regex {
	r, err := CompileRegex(pattern)
	if err != nil {
		panic(err)
	}
	return r
}

// GlobRegex lowers a glob pattern (`*` and `?` wildcards) to a regex,
// per the glossary's "Glob ... lowered to a regex."
func GlobRegex(glob string) (Regex, error) {
	var b strings.Builder
	b.WriteString("")
	for _, r := range glob {
		switch r {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	return CompileRegex(b.String())
}

// IsGlob reports whether a string uses glob wildcards, the crude
// `*`/`?` scan the compiler performs before deciding whether an
// event-name clause lowers to an equality test or a regex match.
func IsGlob(s string) bool {
	return strings.ContainsAny(s, "*?")
}

// Source returns the original pattern text, used for equality and
// display.
func (r Regex) Source() string { return r.source }

// Match reports whether r fully matches s (anchored at both ends).
func (r Regex) Match(s string) bool {
	if r.match == nil {
		return false
	}
	return r.match.MatchString(s)
}

// Search reports whether r matches anywhere within s (unanchored).
func (r Regex) Search(s string) bool {
	if r.search == nil {
		return false
	}
	return r.search.MatchString(s)
}
