package notify

import (
	"sort"
	"strings"
)

// Directory resolves usernames to email addresses from the configured
// username -> email mapping.
type Directory struct {
	emails map[string]string
	// keys sorted ascending; the fallback scans walk them in this order so
	// resolution is stable when more than one key could match.
	keys []string
}

// NewDirectory builds a Directory from a configured mapping. The map is
// copied so later config mutation cannot race lookups.
func NewDirectory(emails map[string]string) *Directory {
	m := make(map[string]string, len(emails))
	keys := make([]string, 0, len(emails))
	for k, v := range emails {
		m[k] = v
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return &Directory{emails: m, keys: keys}
}

// ResolveEmail looks up the email for a username, tolerating casing and
// whitespace drift between the roster and the mapping. The cascade is:
// exact match, case-insensitive match, then case-insensitive substring match
// in either direction. Each fallback step returns the first match in sorted
// key order. The substring step can false-positive on short or overlapping
// names; that looseness is a long-standing behavior the data depends on, so
// tighten it only with a migration of the mapping itself.
func (d *Directory) ResolveEmail(username string) (string, bool) {
	name := strings.TrimSpace(username)
	if name == "" {
		return "", false
	}

	if email, ok := d.emails[name]; ok {
		return email, true
	}

	lower := strings.ToLower(name)
	for _, key := range d.keys {
		if strings.ToLower(key) == lower {
			return d.emails[key], true
		}
	}

	for _, key := range d.keys {
		keyLower := strings.ToLower(key)
		if strings.Contains(keyLower, lower) || strings.Contains(lower, keyLower) {
			return d.emails[key], true
		}
	}

	return "", false
}
