package content

import (
	"html/template"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	policy     *bluemonday.Policy
	policyOnce sync.Once
)

func getPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		policy = bluemonday.UGCPolicy()

		// Data tables rendered from markdown copy
		policy.AllowElements("table", "thead", "tbody", "tfoot", "tr", "th", "td", "caption")
		policy.AllowAttrs("colspan", "rowspan", "scope").OnElements("th", "td")

		policy.AllowElements("sub", "sup", "mark", "abbr")
		policy.AllowAttrs("title").OnElements("abbr")
		policy.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("span", "strong", "p")
	})
	return policy
}

// Sanitize strips dangerous markup and returns HTML safe to embed.
func Sanitize(html string) template.HTML {
	if html == "" {
		return ""
	}
	return template.HTML(getPolicy().Sanitize(html))
}
