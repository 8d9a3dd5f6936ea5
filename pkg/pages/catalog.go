// Package pages holds the page configurations and the copy they refer to.
package pages

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/de-tools/resp-atlas/pkg/models/domain"
	"gopkg.in/yaml.v3"
)

var ErrPageNotFound = errors.New("page not found")

// Catalog is an ordered set of pages. YAML pages override built-in pages
// with the same id.
type Catalog struct {
	mu    sync.RWMutex
	pages map[string]domain.Page
	order []string
}

func NewCatalog(pages ...domain.Page) (*Catalog, error) {
	c := &Catalog{pages: make(map[string]domain.Page)}
	for _, p := range pages {
		if err := c.Put(p); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Catalog) Put(p domain.Page) error {
	if err := p.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.pages[p.ID]; !exists {
		c.order = append(c.order, p.ID)
	}
	c.pages[p.ID] = p
	return nil
}

func (c *Catalog) Get(id string) (domain.Page, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	p, ok := c.pages[id]
	if !ok {
		return domain.Page{}, fmt.Errorf("%q: %w", id, ErrPageNotFound)
	}
	return p, nil
}

func (c *Catalog) List() []domain.Page {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.Page, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.pages[id])
	}
	return out
}

// LoadFile decodes one page from YAML. Unknown fields are rejected so a
// misspelled strategy field fails at load time instead of hydrating
// nothing.
func LoadFile(path string) (domain.Page, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.Page{}, fmt.Errorf("open page config: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)

	var p domain.Page
	if err := dec.Decode(&p); err != nil {
		return domain.Page{}, fmt.Errorf("decode page config %s: %w", filepath.Base(path), err)
	}
	if err := p.Validate(); err != nil {
		return domain.Page{}, fmt.Errorf("invalid page config %s: %w", filepath.Base(path), err)
	}
	return p, nil
}

// LoadDir adds every *.yaml / *.yml page in dir to the catalog, in file
// name order.
func (c *Catalog) LoadDir(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read pages dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		p, err := LoadFile(filepath.Join(dir, name))
		if err != nil {
			return 0, err
		}
		if err := c.Put(p); err != nil {
			return 0, err
		}
	}
	return len(names), nil
}
