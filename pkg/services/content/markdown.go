// Package content loads dashboard copy from markdown files split into
// "## Heading" sections, and renders interpolated copy safely.
package content

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

const sectionLevel = 2

var ErrSectionNotFound = errors.New("section not found")

type Section struct {
	Title string
	Text  string
	HTML  string
}

func newMarkdown() goldmark.Markdown {
	return goldmark.New(goldmark.WithExtensions(extension.Table, extension.Strikethrough))
}

// ParseSections splits src on level-2 headings. Content before the first
// such heading is not part of any section.
func ParseSections(src []byte) ([]Section, error) {
	md := newMarkdown()
	doc := md.Parser().Parse(text.NewReader(src))

	var (
		sections []Section
		title    string
		body     *ast.Document
	)

	flush := func() error {
		if body == nil {
			return nil
		}
		var buf bytes.Buffer
		if err := md.Renderer().Render(&buf, src, body); err != nil {
			return fmt.Errorf("render section %q: %w", title, err)
		}
		sections = append(sections, Section{
			Title: title,
			Text:  strings.TrimSpace(plainText(body, src)),
			HTML:  string(Sanitize(buf.String())),
		})
		return nil
	}

	for n := doc.FirstChild(); n != nil; {
		next := n.NextSibling()
		if h, ok := n.(*ast.Heading); ok && h.Level == sectionLevel {
			if err := flush(); err != nil {
				return nil, err
			}
			title = strings.TrimSpace(plainText(h, src))
			body = ast.NewDocument()
		} else if body != nil {
			doc.RemoveChild(doc, n)
			body.AppendChild(body, n)
		}
		n = next
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return sections, nil
}

// FindSection returns the first section whose title matches,
// case-insensitively.
func FindSection(sections []Section, title string) (Section, bool) {
	for _, s := range sections {
		if strings.EqualFold(s.Title, strings.TrimSpace(title)) {
			return s, true
		}
	}
	return Section{}, false
}

func plainText(n ast.Node, src []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			if node.Kind() == ast.KindParagraph && b.Len() > 0 {
				b.WriteString("\n")
			}
			return ast.WalkContinue, nil
		}
		if t, ok := node.(*ast.Text); ok {
			b.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteString(" ")
			}
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

// Loader reads markdown files from a filesystem, typically os.DirFS of
// the configured content directory.
type Loader struct {
	fsys fs.FS
}

func NewLoader(fsys fs.FS) *Loader {
	return &Loader{fsys: fsys}
}

// Section loads one section of a file. name may omit the .md extension.
func (l *Loader) Section(ctx context.Context, name, title string) (Section, error) {
	sections, err := l.File(ctx, name)
	if err != nil {
		return Section{}, err
	}
	s, ok := FindSection(sections, title)
	if !ok {
		return Section{}, fmt.Errorf("%s/%s: %w", name, title, ErrSectionNotFound)
	}
	return s, nil
}

func (l *Loader) File(ctx context.Context, name string) ([]Section, error) {
	if path.Ext(name) == "" {
		name += ".md"
	}
	if !fs.ValidPath(name) {
		return nil, fmt.Errorf("invalid content path %q: %w", name, fs.ErrInvalid)
	}

	src, err := fs.ReadFile(l.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("read content %s: %w", name, err)
	}

	sections, err := ParseSections(src)
	if err != nil {
		return nil, err
	}
	zerolog.Ctx(ctx).Debug().Str("file", name).Int("sections", len(sections)).Msg("content loaded")
	return sections, nil
}
