package domain

import (
	"net/url"
	"strings"
)

// URLFilter decides which links may be summarized
type URLFilter struct {
	Whitelist []string // URL prefixes, empty means everything not blacklisted
	Blacklist []string // URL prefixes, always wins
}

// IsAllowed reports whether target is a well-formed URL that passes the lists
func (f *URLFilter) IsAllowed(target string) bool {
	stripped := strings.TrimSpace(target)
	parsed, err := url.Parse(stripped)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return false
	}

	for _, prefix := range f.Blacklist {
		if strings.HasPrefix(stripped, prefix) {
			return false
		}
	}

	if len(f.Whitelist) == 0 {
		return true
	}
	for _, prefix := range f.Whitelist {
		if strings.HasPrefix(stripped, prefix) {
			return true
		}
	}
	return false
}
