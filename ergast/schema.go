package ergast

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const schemaBaseURL = "https://racebot.local/schemas/"

// node is a JSON Schema document under construction.
type node map[string]any

type property struct {
	name     string
	schema   node
	required bool
}

func required(name string, schema node) property {
	return property{name: name, schema: schema, required: true}
}

func optional(name string, schema node) property {
	return property{name: name, schema: schema}
}

func str() node {
	return node{"type": "string"}
}

func arrayOf(items node) node {
	return node{"type": "array", "items": items}
}

// object accepts unknown properties; listed required ones must be present
// and of the declared type.
func object(props ...property) node {
	properties := make(map[string]any, len(props))
	var names []any
	for _, p := range props {
		properties[p.name] = p.schema
		if p.required {
			names = append(names, p.name)
		}
	}
	n := node{"type": "object", "properties": properties}
	if len(names) > 0 {
		n["required"] = names
	}
	return n
}

// Registry holds one compiled envelope schema per Kind. It is read-only
// once built and safe for concurrent use.
type Registry struct {
	schemas map[Kind]*jsonschema.Schema
}

// NewRegistry compiles the envelope schema of every Kind.
func NewRegistry() (*Registry, error) {
	c := jsonschema.NewCompiler()

	docs := envelopes()
	for kind, doc := range docs {
		raw, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s schema: %w", kind, err)
		}
		parsed, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s schema: %w", kind, err)
		}
		if err := c.AddResource(schemaBaseURL+string(kind)+".json", parsed); err != nil {
			return nil, fmt.Errorf("failed to add %s schema: %w", kind, err)
		}
	}

	r := &Registry{schemas: make(map[Kind]*jsonschema.Schema, len(docs))}
	for kind := range docs {
		sch, err := c.Compile(schemaBaseURL + string(kind) + ".json")
		if err != nil {
			return nil, fmt.Errorf("failed to compile %s schema: %w", kind, err)
		}
		r.schemas[kind] = sch
	}
	return r, nil
}

var defaultRegistry = sync.OnceValues(NewRegistry)

// DefaultRegistry returns the process-wide registry, compiling it on first use.
func DefaultRegistry() (*Registry, error) {
	return defaultRegistry()
}

// Validator returns the compiled envelope schema of kind.
func (r *Registry) Validator(kind Kind) (*jsonschema.Schema, error) {
	sch, ok := r.schemas[kind]
	if !ok {
		return nil, fmt.Errorf("no schema registered for %q", kind)
	}
	return sch, nil
}

// Validate checks a document decoded with jsonschema.UnmarshalJSON against
// the envelope schema of kind.
func (r *Registry) Validate(kind Kind, doc any) error {
	sch, err := r.Validator(kind)
	if err != nil {
		return err
	}
	return sch.Validate(doc)
}
