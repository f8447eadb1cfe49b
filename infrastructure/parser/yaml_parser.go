// Package parser decodes YAML configuration documents.
package parser

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/moshez/ward/domain/ports"
)

// YamlConfigParser implements ports.ConfigParser for YAML.
type YamlConfigParser struct {
	strict bool
}

// Option configures a YamlConfigParser.
type Option func(*YamlConfigParser)

// WithStrict rejects keys that have no matching field. It is on by default.
func WithStrict(strict bool) Option {
	return func(p *YamlConfigParser) {
		p.strict = strict
	}
}

// NewYamlConfigParser creates a new YamlConfigParser.
func NewYamlConfigParser(opts ...Option) ports.ConfigParser {
	p := &YamlConfigParser{strict: true}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse decodes data into v. Fields already set in v keep their values when
// the document does not mention them. An empty document leaves v unchanged.
func (p *YamlConfigParser) Parse(data []byte, v any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(p.strict)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("parse yaml: %w", err)
	}
	return nil
}
