package notify

import "strings"

// Reasons a Recipient was selected; used for template choice and logging.
const (
	ReasonOwner   = "owner"
	ReasonMention = "mention"
)

// Recipient is one planned email send for a comment.
type Recipient struct {
	Username string
	Email    string
	Reason   string
}

// Gate decides who gets notified about a comment. It holds no request state;
// the author and targets are passed in explicitly.
type Gate struct {
	dir *Directory
}

// NewGate creates a Gate backed by the given directory.
func NewGate(dir *Directory) *Gate {
	return &Gate{dir: dir}
}

// OwnerEligible reports whether the file owner should be notified about a
// comment from author, and the address to use. Commenting on your own file
// never notifies, regardless of email configuration.
func (g *Gate) OwnerEligible(owner, author string) (string, bool) {
	if owner == "" || owner == author {
		return "", false
	}
	return g.dir.ResolveEmail(owner)
}

// MentionEligible reports whether one validated mention should be notified.
// Self-mentions are dropped.
func (g *Gate) MentionEligible(mentioned, author string) (string, bool) {
	if mentioned == "" || strings.EqualFold(mentioned, author) {
		return "", false
	}
	return g.dir.ResolveEmail(mentioned)
}

// Plan evaluates the owner and every validated mention for one comment and
// returns the final recipient list. Recipients are deduplicated by resolved
// email address (compared case-insensitively) so a mentioned owner gets one
// email, not two; the owner notification wins because it is planned first.
func (g *Gate) Plan(owner, author string, mentions []string) []Recipient {
	var out []Recipient
	seen := make(map[string]bool)

	if email, ok := g.OwnerEligible(owner, author); ok {
		out = append(out, Recipient{Username: owner, Email: email, Reason: ReasonOwner})
		seen[strings.ToLower(email)] = true
	}

	for _, name := range mentions {
		email, ok := g.MentionEligible(name, author)
		if !ok || seen[strings.ToLower(email)] {
			continue
		}
		seen[strings.ToLower(email)] = true
		out = append(out, Recipient{Username: name, Email: email, Reason: ReasonMention})
	}

	return out
}
