// Package catalog loads the immutable crop and biome reference tables.
// The default tables are embedded; an override file can be supplied at startup.
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/talgya/geofarm/internal/model"
)

//go:embed catalog.yaml
var defaultCatalog []byte

//go:embed catalog.schema.json
var catalogSchema string

// Catalog holds crops and biomes keyed by ID.
type Catalog struct {
	crops     map[string]model.Crop
	biomes    map[string]model.Biome
	cropOrder []string
}

type document struct {
	Crops  []model.Crop  `yaml:"crops"`
	Biomes []model.Biome `yaml:"biomes"`
}

// Default returns the embedded reference catalog.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads a catalog file. An empty path returns the embedded default.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(raw)
}

// Parse validates YAML catalog data against the schema and indexes it.
func Parse(raw []byte) (*Catalog, error) {
	if err := validate(raw); err != nil {
		return nil, err
	}

	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("catalog.yaml: %w", err)
	}

	c := &Catalog{
		crops:  make(map[string]model.Crop, len(doc.Crops)),
		biomes: make(map[string]model.Biome, len(doc.Biomes)),
	}
	for _, crop := range doc.Crops {
		if _, dup := c.crops[crop.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate crop %q", crop.ID)
		}
		c.crops[crop.ID] = crop
		c.cropOrder = append(c.cropOrder, crop.ID)
	}
	for _, b := range doc.Biomes {
		if _, dup := c.biomes[b.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate biome %q", b.ID)
		}
		c.biomes[b.ID] = b
	}
	sort.Strings(c.cropOrder)
	return c, nil
}

// validate checks the raw YAML against the embedded JSON Schema. YAML is
// round-tripped through JSON so the validator sees plain JSON values.
func validate(raw []byte) error {
	var generic any
	if err := yaml.Unmarshal(raw, &generic); err != nil {
		return fmt.Errorf("catalog.yaml: %w", err)
	}
	asJSON, err := json.Marshal(generic)
	if err != nil {
		return fmt.Errorf("catalog to json: %w", err)
	}
	var doc any
	if err := json.Unmarshal(asJSON, &doc); err != nil {
		return fmt.Errorf("catalog to json: %w", err)
	}

	schema, err := jsonschema.CompileString("catalog.schema.json", catalogSchema)
	if err != nil {
		return fmt.Errorf("compile catalog schema: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("invalid catalog: %w", err)
	}
	return nil
}

// Crop looks up a crop by ID.
func (c *Catalog) Crop(id string) (model.Crop, bool) {
	crop, ok := c.crops[id]
	return crop, ok
}

// Biome looks up a biome by ID.
func (c *Catalog) Biome(id string) (model.Biome, bool) {
	b, ok := c.biomes[id]
	return b, ok
}

// BiomeByType returns the first biome of the given climatic type.
func (c *Catalog) BiomeByType(t model.BiomeType) (model.Biome, bool) {
	if b, ok := c.biomes[string(t)]; ok && b.Type == t {
		return b, true
	}
	for _, b := range c.biomes {
		if b.Type == t {
			return b, true
		}
	}
	return model.Biome{}, false
}

// Crops returns all crops sorted by ID.
func (c *Catalog) Crops() []model.Crop {
	out := make([]model.Crop, 0, len(c.cropOrder))
	for _, id := range c.cropOrder {
		out = append(out, c.crops[id])
	}
	return out
}

// Biomes returns all biomes sorted by ID.
func (c *Catalog) Biomes() []model.Biome {
	out := make([]model.Biome, 0, len(c.biomes))
	for _, b := range c.biomes {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
