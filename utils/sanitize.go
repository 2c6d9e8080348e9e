package utils

import "github.com/microcosm-cc/bluemonday"

// ugcPolicy allows the benign markup users paste into comments and notes
// while stripping anything executable.
var ugcPolicy = bluemonday.UGCPolicy()

// Sanitize cleans user-supplied HTML before it is stored or echoed back.
func Sanitize(input string) string {
	return ugcPolicy.Sanitize(input)
}
