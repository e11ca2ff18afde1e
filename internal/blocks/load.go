package blocks

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.schema.json
var catalogSchemaSource string

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func catalogSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = jsonschema.CompileString("catalog.schema.json", catalogSchemaSource)
	})
	return schema, schemaErr
}

type document struct {
	Blocks []Def `json:"blocks"`
}

// LoadFile reads a YAML or JSON catalog document of the form {blocks: [...]}.
func LoadFile(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	c, err := Parse(raw, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse decodes a catalog document in the given format ("json", "yaml" or
// "yml"), validates it against the catalog schema and builds the catalog.
func Parse(raw []byte, format string) (*Catalog, error) {
	var tree any
	switch format {
	case "json":
		if err := json.Unmarshal(raw, &tree); err != nil {
			return nil, fmt.Errorf("parse catalog: %w", err)
		}
	case "yaml", "yml":
		if err := yaml.Unmarshal(raw, &tree); err != nil {
			return nil, fmt.Errorf("parse catalog: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", format)
	}

	// Normalise through JSON so YAML scalars match what the schema expects.
	normalised, err := json.Marshal(tree)
	if err != nil {
		return nil, fmt.Errorf("normalise catalog: %w", err)
	}
	var generic any
	if err := json.Unmarshal(normalised, &generic); err != nil {
		return nil, fmt.Errorf("normalise catalog: %w", err)
	}

	s, err := catalogSchema()
	if err != nil {
		return nil, fmt.Errorf("compile catalog schema: %w", err)
	}
	if err := s.Validate(generic); err != nil {
		return nil, fmt.Errorf("validate catalog: %w", err)
	}

	var doc document
	dec := json.NewDecoder(bytes.NewReader(normalised))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return New(doc.Blocks)
}
