package comments

import (
	"regexp"
	"strings"
)

// mentionPattern matches "@" followed by one or more word characters.
// Note this also fires on the host part of bare email addresses embedded in
// comment text ("user@example.com" yields "example"); roster validation is
// what keeps such tokens from ever producing a notification.
var mentionPattern = regexp.MustCompile(`@(\w+)`)

// ExtractMentions returns the distinct mention tokens found in text, case
// preserved as written, without the leading "@". Purely lexical; no roster
// validation happens here.
func ExtractMentions(text string) []string {
	matches := mentionPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(matches))
	tokens := make([]string, 0, len(matches))
	for _, m := range matches {
		if !seen[m[1]] {
			seen[m[1]] = true
			tokens = append(tokens, m[1])
		}
	}
	return tokens
}

// ValidateMentions filters tokens against the roster of known usernames.
// Matching is case-insensitive and the roster's canonical casing is returned,
// so "@alice" resolves to "Alice" when that is how the account is registered.
func ValidateMentions(tokens []string, roster []string) []string {
	if len(tokens) == 0 || len(roster) == 0 {
		return nil
	}
	canonical := make(map[string]string, len(roster))
	for _, name := range roster {
		canonical[strings.ToLower(name)] = name
	}
	seen := make(map[string]bool, len(tokens))
	var valid []string
	for _, tok := range tokens {
		name, ok := canonical[strings.ToLower(tok)]
		if ok && !seen[name] {
			seen[name] = true
			valid = append(valid, name)
		}
	}
	return valid
}
