// apps/go-server/internal/countries/countries.go
//
// Country name table: alpha-3 id ↔ display names.
//
// Responsibilities:
//   - Load the embedded countries.json (id, a2, English name, Japanese name).
//   - Name(id) for display, with the id itself as fallback.
//   - Lookup(input): resolve a typed answer (alpha-3, English or Japanese name).
//   - Suggest(input, limit): prefix autocomplete for the answer box.
//
// Matching is case-insensitive on trimmed input. The table is immutable after
// construction and safe for concurrent readers.

package countries

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/robalobadob/overland/apps/go-server/assets"
)

// DefaultSuggestions is the number of suggestions returned when limit <= 0.
const DefaultSuggestions = 5

// Country is one row of the name table.
type Country struct {
	ID       string `json:"id"` // ISO 3166-1 alpha-3
	A2       string `json:"a2"` // ISO 3166-1 alpha-2
	Name     string `json:"name"`
	Japanese string `json:"ja,omitempty"`
}

// Directory is the loaded name table.
type Directory struct {
	list []Country // sorted by ID
	byID map[string]Country
	// byKey maps every lower-cased alias (id, English, Japanese) to the id.
	byKey map[string]string
}

// Load builds a Directory from the embedded table.
func Load() (*Directory, error) {
	b, err := assets.Countries()
	if err != nil {
		return nil, fmt.Errorf("read embedded countries: %w", err)
	}
	var list []Country
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, fmt.Errorf("decode countries: %w", err)
	}
	return New(list)
}

// New builds a Directory from rows. Duplicate ids are an error.
func New(list []Country) (*Directory, error) {
	if len(list) == 0 {
		return nil, errors.New("countries: table is empty")
	}
	d := &Directory{
		byID:  make(map[string]Country, len(list)),
		byKey: make(map[string]string, len(list)*3),
	}
	for _, c := range list {
		c.ID = strings.ToUpper(strings.TrimSpace(c.ID))
		if c.ID == "" {
			continue
		}
		if _, dup := d.byID[c.ID]; dup {
			return nil, fmt.Errorf("countries: duplicate id %q", c.ID)
		}
		d.byID[c.ID] = c
		d.list = append(d.list, c)
		for _, alias := range []string{c.ID, c.Name, c.Japanese} {
			if k := key(alias); k != "" {
				if _, taken := d.byKey[k]; !taken {
					d.byKey[k] = c.ID
				}
			}
		}
	}
	sort.Slice(d.list, func(i, j int) bool { return d.list[i].ID < d.list[j].ID })
	return d, nil
}

func key(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// All returns every row sorted by id. The slice must not be modified.
func (d *Directory) All() []Country { return d.list }

// Get returns the row for id.
func (d *Directory) Get(id string) (Country, bool) {
	c, ok := d.byID[strings.ToUpper(strings.TrimSpace(id))]
	return c, ok
}

// Name returns the English display name for id, or the id when unknown.
func (d *Directory) Name(id string) string {
	if id == "" {
		return "N/A"
	}
	if c, ok := d.Get(id); ok {
		return c.Name
	}
	return id
}

// Names maps ids to display names, preserving order.
func (d *Directory) Names(ids []string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = d.Name(id)
	}
	return out
}

// Lookup resolves a typed answer to an alpha-3 id.
func (d *Directory) Lookup(input string) (string, bool) {
	id, ok := d.byKey[key(input)]
	return id, ok
}

// Suggest returns up to limit countries whose id, English or Japanese name
// starts with input. Empty input yields no suggestions.
func (d *Directory) Suggest(input string, limit int) []Country {
	q := key(input)
	if q == "" {
		return []Country{}
	}
	if limit <= 0 {
		limit = DefaultSuggestions
	}
	out := make([]Country, 0, limit)
	for _, c := range d.list {
		if strings.HasPrefix(strings.ToLower(c.ID), q) ||
			strings.HasPrefix(strings.ToLower(c.Name), q) ||
			(c.Japanese != "" && strings.HasPrefix(strings.ToLower(c.Japanese), q)) {
			out = append(out, c)
			if len(out) == limit {
				break
			}
		}
	}
	return out
}
