// Package sources describes the legacy systems a district can migrate
// from. The catalog ships embedded in the binary so the demo works with
// no external files.
package sources

import (
	"crypto/rand"
	_ "embed"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

//go:embed catalog.toml
var catalogTOML string

// ErrUnknownSource is returned when a source ID is not in the catalog.
var ErrUnknownSource = errors.New("unknown source")

// System is one legacy system in the catalog.
type System struct {
	ID       string   `toml:"id" json:"id"`
	Name     string   `toml:"name" json:"name"`
	Icon     string   `toml:"icon" json:"icon"`
	Port     string   `toml:"port" json:"port"`
	Protocol string   `toml:"protocol" json:"protocol"`
	Tables   []string `toml:"tables" json:"tables"`
	Records  int      `toml:"records" json:"records"`
	DataType string   `toml:"data-type" json:"data_type"`
}

// CredentialKind reports which connection form a system needs.
func (s System) CredentialKind() string {
	switch s.Protocol {
	case "File":
		return "file"
	case "HTTPS":
		return "api"
	default:
		return "database"
	}
}

// ConnectionSteps lists the phases a connection attempt walks through, in
// order. The demo streams these as progress output.
func (s System) ConnectionSteps() []string {
	return []string{
		fmt.Sprintf("Connecting to %s...", s.Name),
		"Authenticating credentials...",
		"Establishing secure tunnel...",
		"Discovering schema...",
		"Enumerating tables...",
		"Validating access permissions...",
		"Connection established!",
	}
}

type catalogDoc struct {
	Sources []System `toml:"source"`
}

// Catalog is the set of known legacy systems.
type Catalog struct {
	byID  map[string]System
	order []string
}

// LoadCatalog parses the embedded catalog. Unknown keys and duplicate IDs
// are rejected so catalog edits fail loudly.
func LoadCatalog() (*Catalog, error) {
	var doc catalogDoc
	meta, err := toml.Decode(catalogTOML, &doc)
	if err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, fmt.Errorf("decode catalog: unknown keys %s", strings.Join(keys, ", "))
	}

	c := &Catalog{byID: make(map[string]System, len(doc.Sources))}
	for _, s := range doc.Sources {
		if s.ID == "" {
			return nil, fmt.Errorf("catalog entry %q has no id", s.Name)
		}
		if _, dup := c.byID[s.ID]; dup {
			return nil, fmt.Errorf("duplicate catalog id %q", s.ID)
		}
		c.byID[s.ID] = s
		c.order = append(c.order, s.ID)
	}
	return c, nil
}

// Systems returns the catalog entries in file order.
func (c *Catalog) Systems() []System {
	out := make([]System, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

// System looks up a catalog entry by ID.
func (c *Catalog) System(id string) (System, error) {
	s, ok := c.byID[id]
	if !ok {
		return System{}, fmt.Errorf("%w: %s", ErrUnknownSource, id)
	}
	return s, nil
}

// TotalRecords sums the estimated record counts for a set of sources.
// Unknown IDs are ignored.
func (c *Catalog) TotalRecords(ids []string) int {
	var total int
	for _, id := range ids {
		if s, ok := c.byID[id]; ok {
			total += s.Records
		}
	}
	return total
}

// ByDataType returns the systems carrying a given kind of data, sorted by
// name.
func (c *Catalog) ByDataType(dataType string) []System {
	var out []System
	for _, s := range c.byID {
		if s.DataType == dataType {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Connection records an established link to a legacy system.
type Connection struct {
	SessionID string `json:"session_id"`
	Source    System `json:"source"`
}

// Connect validates the source ID and issues a connection handle. The demo
// does not reach real systems; the handle carries a random session ID so
// repeat connections are distinguishable.
func (c *Catalog) Connect(id string) (Connection, error) {
	s, err := c.System(id)
	if err != nil {
		return Connection{}, err
	}
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return Connection{}, fmt.Errorf("session id: %w", err)
	}
	return Connection{SessionID: hex.EncodeToString(buf), Source: s}, nil
}
