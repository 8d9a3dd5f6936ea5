package pages

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed texts.yaml
var defaultTexts []byte

// Texts is a single-locale copy tree addressed by dotted paths such as
// "sections.overview.title".
type Texts struct {
	root map[string]interface{}
}

func DefaultTexts() *Texts {
	t, err := ParseTexts(defaultTexts)
	if err != nil {
		panic(fmt.Sprintf("embedded texts: %v", err))
	}
	return t
}

func ParseTexts(data []byte) (*Texts, error) {
	root := make(map[string]interface{})
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse texts: %w", err)
	}
	return &Texts{root: root}, nil
}

// Lookup returns the string at path, or false when the path is missing or
// does not end at a string.
func (t *Texts) Lookup(path string) (string, bool) {
	if t == nil || path == "" {
		return "", false
	}
	var node interface{} = t.root
	for _, part := range strings.Split(path, ".") {
		m, ok := node.(map[string]interface{})
		if !ok {
			return "", false
		}
		if node, ok = m[part]; !ok {
			return "", false
		}
	}
	s, ok := node.(string)
	return s, ok
}

// Get falls back to the key itself so missing copy stays visible.
func (t *Texts) Get(path string) string {
	if s, ok := t.Lookup(path); ok {
		return s
	}
	return path
}
