// Package validation checks configuration documents against the
// configuration JSON schema.
package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/moshez/ward/application/schema"
	"github.com/moshez/ward/domain/entities"
)

// ConfigValidator validates YAML configuration documents.
type ConfigValidator struct {
	schema *jsonschema.Schema
}

// NewConfigValidator compiles the configuration schema.
func NewConfigValidator() (*ConfigValidator, error) {
	raw, err := schema.ConfigSchema()
	if err != nil {
		return nil, err
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schema.ConfigSchemaID, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}
	sch, err := compiler.Compile(schema.ConfigSchemaID)
	if err != nil {
		return nil, fmt.Errorf("invalid config schema: %w", err)
	}
	return &ConfigValidator{schema: sch}, nil
}

// Validate checks doc. An error is returned only when doc is not YAML;
// schema violations are reported in the result.
func (v *ConfigValidator) Validate(doc []byte) (*entities.ValidationResult, error) {
	var tree any
	if err := yaml.Unmarshal(doc, &tree); err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	if tree == nil {
		tree = map[string]any{}
	}

	// Round-trip through JSON so numbers and maps take the shapes the
	// validator expects.
	b, err := json.Marshal(tree)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare validation object: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var obj any
	if err := dec.Decode(&obj); err != nil {
		return nil, fmt.Errorf("failed to prepare validation object: %w", err)
	}

	result := &entities.ValidationResult{Valid: true}
	if err := v.schema.Validate(obj); err != nil {
		result.Valid = false
		var ve *jsonschema.ValidationError
		if !errors.As(err, &ve) {
			result.Errors = append(result.Errors, entities.ValidationError{Message: err.Error()})
			return result, nil
		}
		result.Errors = leaves(ve, nil)
		sort.SliceStable(result.Errors, func(i, j int) bool {
			return result.Errors[i].Field < result.Errors[j].Field
		})
	}
	return result, nil
}

// leaves flattens ve to its innermost causes.
func leaves(ve *jsonschema.ValidationError, out []entities.ValidationError) []entities.ValidationError {
	if len(ve.Causes) == 0 {
		return append(out, entities.ValidationError{
			Field:   fieldPath(ve.InstanceLocation),
			Message: ve.Message,
		})
	}
	for _, c := range ve.Causes {
		out = leaves(c, out)
	}
	return out
}

// fieldPath turns a JSON pointer into a dotted path.
func fieldPath(pointer string) string {
	parts := strings.Split(strings.TrimPrefix(pointer, "/"), "/")
	for i, p := range parts {
		p = strings.ReplaceAll(p, "~1", "/")
		parts[i] = strings.ReplaceAll(p, "~0", "~")
	}
	return strings.Join(parts, ".")
}
