package fsops

import (
	"regexp"
	"strings"
)

// Glob is a shell-style pattern matcher over slash-separated path strings,
// supporting `*` (any run of non-slash characters), `**` (any run of
// characters including slashes), `?` (a single non-slash character), and
// `[...]` character classes (spec.md §1's glob-matching collaborator).
//
// No example repo in the corpus vendors a `**`-capable glob library, so
// this translates the pattern to an anchored regexp instead of pulling one
// in, matching spec.md's own framing of glob matching as an external,
// swappable collaborator behind a `matches(path) -> bool` interface.
type Glob struct {
	re *regexp.Regexp
}

// NewGlob compiles pattern.
func NewGlob(pattern string) (*Glob, error) {
	re, err := regexp.Compile(translateGlob(pattern))
	if err != nil {
		return nil, err
	}
	return &Glob{re: re}, nil
}

// Match reports whether path satisfies the glob.
func (g *Glob) Match(path string) bool {
	return g.re.MatchString(path)
}

func translateGlob(pattern string) string {
	var b strings.Builder
	b.WriteByte('^')
	runes := []rune(pattern)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		switch c {
		case '*':
			if i+1 < len(runes) && runes[i+1] == '*' {
				b.WriteString(".*")
				i++
				continue
			}
			b.WriteString("[^/]*")
		case '?':
			b.WriteString("[^/]")
		case '[':
			j := i + 1
			for j < len(runes) && runes[j] != ']' {
				j++
			}
			if j >= len(runes) {
				b.WriteString(regexp.QuoteMeta(string(c)))
				continue
			}
			class := string(runes[i : j+1])
			b.WriteString(class)
			i = j
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	b.WriteByte('$')
	return b.String()
}
