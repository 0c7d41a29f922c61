package domain

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed schema.yaml
var schemaYAML []byte

// ServerTimestamp is the client sentinel replaced by the server clock on write.
const ServerTimestamp = "$serverTimestamp"

// CollectionInfoID is the id of the descriptor document seeded into every collection.
const CollectionInfoID = "_collection_info"

type FieldSpec struct {
	Name     string `yaml:"-"`
	Type     string `yaml:"type"`
	Required bool   `yaml:"required"`
	Note     string `yaml:"note"`
}

// Describe renders the human description stored in _collection_info.
func (f FieldSpec) Describe() string {
	req := "optional"
	if f.Required {
		req = "required"
	}
	if f.Note == "" {
		return fmt.Sprintf("%s (%s)", f.Type, req)
	}
	return fmt.Sprintf("%s (%s, %s)", f.Type, req, f.Note)
}

type CollectionSpec struct {
	Name        string      `yaml:"-"`
	Description string      `yaml:"description"`
	Fields      []FieldSpec `yaml:"-"`
}

func (c *CollectionSpec) UnmarshalYAML(n *yaml.Node) error {
	var raw struct {
		Description string    `yaml:"description"`
		Fields      yaml.Node `yaml:"fields"`
	}
	if err := n.Decode(&raw); err != nil {
		return err
	}
	c.Description = raw.Description
	return eachPair(&raw.Fields, func(key string, val *yaml.Node) error {
		var fs FieldSpec
		if err := val.Decode(&fs); err != nil {
			return fmt.Errorf("field %s: %w", key, err)
		}
		fs.Name = key
		c.Fields = append(c.Fields, fs)
		return nil
	})
}

func (c *CollectionSpec) Field(name string) (FieldSpec, bool) {
	for _, f := range c.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// SchemaDescription is the schema map stored in the _collection_info document.
func (c *CollectionSpec) SchemaDescription() map[string]any {
	out := make(map[string]any, len(c.Fields))
	for _, f := range c.Fields {
		out[f.Name] = f.Describe()
	}
	return out
}

// Catalogue keeps collection specs in declaration order.
type Catalogue struct {
	order []string
	specs map[string]*CollectionSpec
}

func ParseCatalogue(b []byte) (*Catalogue, error) {
	var root struct {
		Collections yaml.Node `yaml:"collections"`
	}
	if err := yaml.Unmarshal(b, &root); err != nil {
		return nil, fmt.Errorf("parse schema catalogue: %w", err)
	}
	cat := &Catalogue{specs: map[string]*CollectionSpec{}}
	err := eachPair(&root.Collections, func(key string, val *yaml.Node) error {
		spec := &CollectionSpec{}
		if err := val.Decode(spec); err != nil {
			return fmt.Errorf("collection %s: %w", key, err)
		}
		spec.Name = key
		cat.order = append(cat.order, key)
		cat.specs[key] = spec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cat, nil
}

var (
	catOnce sync.Once
	catVal  *Catalogue
	catErr  error
)

// DefaultCatalogue returns the embedded catalogue, parsed once.
func DefaultCatalogue() *Catalogue {
	catOnce.Do(func() {
		catVal, catErr = ParseCatalogue(schemaYAML)
	})
	if catErr != nil {
		panic(catErr)
	}
	return catVal
}

func (c *Catalogue) Names() []string {
	return append([]string(nil), c.order...)
}

func (c *Catalogue) Collection(name string) (*CollectionSpec, bool) {
	s, ok := c.specs[name]
	return s, ok
}

// Coerce resolves server timestamps and turns RFC3339 strings in timestamp
// fields into time values. Strings that do not parse are left untouched so
// the type check downstream sees a string.
func (c *Catalogue) Coerce(collection string, in Fields, now time.Time) Fields {
	spec, _ := c.Collection(collection)
	out := in.Clone()
	for k, v := range out {
		s, ok := v.(string)
		if !ok {
			continue
		}
		if s == ServerTimestamp {
			out[k] = now.UTC()
			continue
		}
		if spec == nil {
			continue
		}
		fs, ok := spec.Field(k)
		if !ok || fs.Type != "timestamp" {
			continue
		}
		if t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(s)); err == nil {
			out[k] = t.UTC()
		}
	}
	return out
}

func eachPair(n *yaml.Node, fn func(key string, val *yaml.Node) error) error {
	if n == nil || n.Kind == 0 {
		return nil
	}
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected mapping", n.Line)
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if err := fn(n.Content[i].Value, n.Content[i+1]); err != nil {
			return err
		}
	}
	return nil
}
