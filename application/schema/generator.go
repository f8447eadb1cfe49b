// Package schema generates JSON schemas for host configuration documents.
package schema

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"

	"github.com/moshez/ward/application/config"
)

// ConfigSchemaID identifies the configuration schema.
const ConfigSchemaID = "https://github.com/moshez/ward/config.schema.json"

// GenerateSchema creates a JSON schema from a Go struct.
// It uses the `invopop/jsonschema` library to reflect on the struct
// and generate a standard JSON Schema (Draft 2020-12).
func GenerateSchema(v interface{}) ([]byte, error) {
	reflector := jsonschema.Reflector{
		ExpandedStruct: true, // Expand struct definitions inline
	}
	return marshal(reflector.Reflect(v))
}

// ConfigSchema returns the schema of the configuration file. Every key is
// optional since omitted keys take their defaults.
func ConfigSchema() ([]byte, error) {
	reflector := jsonschema.Reflector{
		ExpandedStruct:             true,
		RequiredFromJSONSchemaTags: true,
	}
	s := reflector.Reflect(&config.Config{})
	s.ID = ConfigSchemaID
	s.Title = "ward host configuration"
	return marshal(s)
}

func marshal(s *jsonschema.Schema) ([]byte, error) {
	jsonBytes, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return jsonBytes, nil
}
