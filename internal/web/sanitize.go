package web

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

// previewPolicy admits exactly the markup the note preview renderer emits.
func previewPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("h1", "h2", "h3", "p", "br", "strong", "em", "del", "code", "pre", "ul", "li", "blockquote", "hr", "a")
	p.AllowAttrs("href").OnElements("a")
	p.AllowAttrs("target").Matching(regexp.MustCompile(`^_blank$`)).OnElements("a")
	p.AllowURLSchemes("http", "https", "mailto")
	p.AllowRelativeURLs(true)
	p.RequireNoFollowOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}

func sanitizer() func(string) string {
	return previewPolicy().Sanitize
}
