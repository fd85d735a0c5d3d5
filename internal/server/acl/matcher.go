package acl

import (
	"fmt"
	"regexp"

	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultMatcherCacheSize = 512

// PathMatcher tests request paths against rule path patterns. Patterns are
// regular expressions with search semantics: a pattern matches if it matches
// any substring of the candidate path, so "/exam.*" matches "/exam123.txt"
// and everything nested below it.
//
// Compiled patterns are cached in an LRU keyed by the pattern text. Keying by
// text rather than rule id means rule updates and deletes need no explicit
// invalidation: a changed pattern is simply a different key.
type PathMatcher struct {
	cache *lru.Cache[string, *regexp.Regexp]
}

func NewPathMatcher() *PathMatcher {
	// lru.New only fails for a non-positive size
	cache, err := lru.New[string, *regexp.Regexp](defaultMatcherCacheSize)
	if err != nil {
		panic(err)
	}
	return &PathMatcher{cache: cache}
}

// Matches reports whether pattern matches path. Both sides are anchored at
// the root with NormPath before matching. A pattern that does not compile is
// an error, never a silent non-match.
func (m *PathMatcher) Matches(pattern string, path string) (bool, error) {
	re, err := m.compile(NormPath(pattern))
	if err != nil {
		return false, err
	}
	return re.MatchString(NormPath(path)), nil
}

func (m *PathMatcher) compile(pattern string) (*regexp.Regexp, error) {
	if re, ok := m.cache.Get(pattern); ok {
		return re, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	m.cache.Add(pattern, re)
	return re, nil
}
