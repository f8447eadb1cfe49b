package config

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	wardErrors "github.com/moshez/ward/domain/errors"
	"github.com/moshez/ward/domain/ports"
)

// Overrides are dotted-path settings given on the command line, such as
// fetch.allow_private=true.
type Overrides = map[string]any

// ParseOverrides reads key=value pairs. Values are typed the way a YAML
// scalar would be.
func ParseOverrides(pairs []string) (Overrides, error) {
	out := make(Overrides, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, &wardErrors.ConfigError{
				Field: pair,
				Err:   fmt.Errorf("override must be key=value"),
			}
		}
		out[key] = scalar(raw)
	}
	return out, nil
}

func scalar(raw string) any {
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	if i, err := strconv.Atoi(raw); err == nil {
		return i
	}
	return raw
}

// Apply writes overrides into cfg through p and revalidates it.
func Apply(cfg *Config, overrides Overrides, p ports.ConfigParser) error {
	if len(overrides) == 0 {
		return nil
	}
	tree := make(map[string]any)
	for key, v := range overrides {
		if err := setPath(tree, strings.Split(key, "."), v); err != nil {
			return &wardErrors.ConfigError{Field: key, Err: err}
		}
	}
	data, err := yaml.Marshal(tree)
	if err != nil {
		return &wardErrors.ConfigError{Err: fmt.Errorf("encode overrides: %w", err)}
	}
	if err := p.Parse(data, cfg); err != nil {
		return &wardErrors.ConfigError{Err: err}
	}
	return Validate(cfg)
}

func setPath(tree map[string]any, path []string, v any) error {
	for i, part := range path {
		if part == "" {
			return fmt.Errorf("empty path segment")
		}
		if i == len(path)-1 {
			if _, exists := tree[part]; exists {
				return fmt.Errorf("%s set twice", part)
			}
			tree[part] = v
			return nil
		}
		next, ok := tree[part].(map[string]any)
		if !ok {
			if _, exists := tree[part]; exists {
				return fmt.Errorf("%s is both a value and a section", part)
			}
			next = make(map[string]any)
			tree[part] = next
		}
		tree = next
	}
	return nil
}
