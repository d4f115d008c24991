package utils

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var stripPolicy = bluemonday.StrictPolicy()

// StripMarkup removes any HTML a provider or model slipped into generated
// text; clients render plain strings only. The sanitizer entity-escapes the
// text it keeps, so quotes and apostrophes are unescaped back afterwards.
func StripMarkup(input string) string {
	return strings.TrimSpace(html.UnescapeString(stripPolicy.Sanitize(input)))
}
