package content

import (
	"html"
	"html/template"
	"regexp"
	"strings"
)

var tokenPattern = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

type fragment struct {
	literal string
	token   string
}

// Template is copy with "{token}" placeholders. Literal fragments are
// authored markup; substituted values are always escaped, so a value can
// never introduce tags. The assembled output is sanitized once more.
type Template struct {
	fragments []fragment
}

func ParseTemplate(s string) Template {
	var frags []fragment
	last := 0
	for _, loc := range tokenPattern.FindAllStringSubmatchIndex(s, -1) {
		if loc[0] > last {
			frags = append(frags, fragment{literal: s[last:loc[0]]})
		}
		frags = append(frags, fragment{token: s[loc[2]:loc[3]]})
		last = loc[1]
	}
	if last < len(s) {
		frags = append(frags, fragment{literal: s[last:]})
	}
	return Template{fragments: frags}
}

// Tokens lists placeholder names in order of appearance.
func (t Template) Tokens() []string {
	var out []string
	for _, f := range t.fragments {
		if f.token != "" {
			out = append(out, f.token)
		}
	}
	return out
}

// Render substitutes vars. Unknown tokens are kept as literal text.
func (t Template) Render(vars map[string]string) template.HTML {
	var b strings.Builder
	for _, f := range t.fragments {
		if f.token == "" {
			b.WriteString(f.literal)
			continue
		}
		v, ok := vars[f.token]
		if !ok {
			v = "{" + f.token + "}"
		}
		b.WriteString(html.EscapeString(v))
	}
	return Sanitize(b.String())
}

// Text renders the template for plain-text surfaces (titles, CLI output),
// without escaping.
func (t Template) Text(vars map[string]string) string {
	var b strings.Builder
	for _, f := range t.fragments {
		if f.token == "" {
			b.WriteString(f.literal)
			continue
		}
		if v, ok := vars[f.token]; ok {
			b.WriteString(v)
		} else {
			b.WriteString("{" + f.token + "}")
		}
	}
	return b.String()
}
