package content

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"golang.org/x/mod/semver"

	"github.com/abhisek/adaptutor/internal/apperr"
	"github.com/abhisek/adaptutor/internal/proficiency"
	"github.com/abhisek/adaptutor/internal/quiz"
)

// SupportedFormatMajor is the catalog document major version this build reads.
const SupportedFormatMajor = "v1"

const defaultVariantKey = "default"

//go:embed catalog.json
var defaultCatalogJSON []byte

// Catalog is the read-only set of modules known to the tutor.
type Catalog struct {
	format  string
	modules map[string]*Module
	order   []string
}

// DefaultCatalog returns the built-in course catalog.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCatalogJSON)
}

// LoadCatalog reads and validates a catalog document from path.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(data)
}

// catalogDoc is the wire shape of a catalog document.
type catalogDoc struct {
	Format  string      `json:"format"`
	Modules []moduleDoc `json:"modules"`
}

type moduleDoc struct {
	ID       string             `json:"id"`
	Title    string             `json:"title"`
	Body     string             `json:"body"`
	Variants map[string]Variant `json:"variants"`
	Sections []Section          `json:"sections"`
	Quiz     []quiz.Question    `json:"quiz"`
}

// ParseCatalog validates a catalog document against the catalog schema,
// checks its format version and enforces the variant invariant: every
// module has a variant for each level or a default variant.
func ParseCatalog(data []byte) (*Catalog, error) {
	if err := validateCatalogSchema(data); err != nil {
		return nil, err
	}

	var doc catalogDoc
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	if !semver.IsValid(doc.Format) || semver.Major(doc.Format) != SupportedFormatMajor {
		return nil, apperr.InvalidValue("format", doc.Format,
			"unsupported catalog format (want %s.x.y)", SupportedFormatMajor)
	}

	c := &Catalog{format: doc.Format, modules: make(map[string]*Module, len(doc.Modules))}
	for _, md := range doc.Modules {
		if _, dup := c.modules[md.ID]; dup {
			return nil, apperr.InvalidValue("modules", md.ID, "duplicate module id %q", md.ID)
		}
		m, err := md.toModule()
		if err != nil {
			return nil, err
		}
		c.modules[m.ID] = m
		c.order = append(c.order, m.ID)
	}
	return c, nil
}

func (md moduleDoc) toModule() (*Module, error) {
	m := &Module{
		ID:       md.ID,
		Title:    md.Title,
		Body:     md.Body,
		Variants: make(map[proficiency.Level]Variant),
		Sections: md.Sections,
		Quiz:     quiz.Rubric{ModuleID: md.ID, Questions: md.Quiz},
	}

	for key, v := range md.Variants {
		if key == defaultVariantKey {
			m.Default = &v
			continue
		}
		level, err := proficiency.ParseLevel(key)
		if err != nil {
			return nil, apperr.InvalidValue("variants", key, "module %q: %v", md.ID, err)
		}
		m.Variants[level] = v
	}

	if m.Default == nil {
		for _, l := range proficiency.AllLevels() {
			if !m.HasVariant(l) {
				return nil, apperr.InvalidValue("variants", md.ID,
					"module %q has no %s variant and no default", md.ID, l)
			}
		}
	}

	seen := make(map[string]bool, len(md.Quiz))
	for _, q := range md.Quiz {
		if seen[q.ID] {
			return nil, apperr.InvalidValue("quiz", q.ID, "module %q: duplicate question id %q", md.ID, q.ID)
		}
		seen[q.ID] = true
	}
	return m, nil
}

// Format returns the catalog document version.
func (c *Catalog) Format() string {
	return c.format
}

// Module returns the module with the given id.
func (c *Catalog) Module(id string) (*Module, error) {
	m, ok := c.modules[id]
	if !ok {
		return nil, apperr.NotFound("module", id)
	}
	return m, nil
}

// Modules returns all modules in document order.
func (c *Catalog) Modules() []*Module {
	out := make([]*Module, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.modules[id])
	}
	return out
}

// IDs returns the module ids sorted alphabetically.
func (c *Catalog) IDs() []string {
	ids := append([]string(nil), c.order...)
	sort.Strings(ids)
	return ids
}
