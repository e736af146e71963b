// internal/app/system/htmlsanitize/htmlsanitize.go
//
// Package htmlsanitize cleans user-supplied text before it is persisted.
// Detail entries and the global note allow basic markup; subjects and names
// are plain text.
package htmlsanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	ugc    = ugcPolicy()
	strict = bluemonday.StrictPolicy()
)

func ugcPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowTables()
	p.RequireNoFollowOnLinks(true)
	return p
}

// Sanitize keeps user-generated-content markup (paragraphs, emphasis, links,
// tables) and strips everything executable.
func Sanitize(s string) string {
	return ugc.Sanitize(s)
}

// PlainText strips all markup and trims surrounding whitespace. Used for
// subjects, responsible names and other single-line fields.
func PlainText(s string) string {
	return strings.TrimSpace(strict.Sanitize(s))
}
