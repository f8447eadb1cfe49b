// Package config defines the host configuration: its defaults, how it is
// read from a document, and how it is validated.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"gopkg.in/yaml.v3"

	"github.com/moshez/ward/domain/entities"
	wardErrors "github.com/moshez/ward/domain/errors"
	"github.com/moshez/ward/domain/ports"
)

// Config is the complete host configuration.
type Config struct {
	Module   string `yaml:"module" json:"module,omitempty" jsonschema:"description=Path of the guest wasm module"`
	Document string `yaml:"document" json:"document,omitempty" jsonschema:"description=HTML page to render into"`
	Root     string `yaml:"root" json:"root" validate:"required" jsonschema:"description=Selector of the element that becomes node 0"`
	URL      string `yaml:"url" json:"url" validate:"omitempty,url" jsonschema:"description=Initial window URL"`
	WASI     bool   `yaml:"wasi" json:"wasi"`

	Storage       Storage       `yaml:"storage" json:"storage"`
	Fetch         Fetch         `yaml:"fetch" json:"fetch"`
	Decompress    Decompress    `yaml:"decompress" json:"decompress"`
	Clipboard     Clipboard     `yaml:"clipboard" json:"clipboard"`
	Files         Files         `yaml:"files" json:"files"`
	Notifications Notifications `yaml:"notifications" json:"notifications"`
	Push          Push          `yaml:"push" json:"push"`
	Log           Log           `yaml:"log" json:"log"`
	Limits        Limits        `yaml:"limits" json:"limits"`
}

// Storage configures the key-value store. An empty path keeps data in memory.
// Allow, when set, lists the only keys the guest may use.
type Storage struct {
	Path      string        `yaml:"path" json:"path,omitempty"`
	Namespace string        `yaml:"namespace" json:"namespace" validate:"required"`
	Allow     []StorageRule `yaml:"allow,omitempty" json:"allow,omitempty" validate:"omitempty,dive"`
}

// StorageRule grants an operation on keys matching any of the globs.
type StorageRule struct {
	Keys      []string `yaml:"keys" json:"keys" validate:"required,min=1"`
	Operation string   `yaml:"operation" json:"operation" validate:"oneof=read write read-write" jsonschema:"enum=read,enum=write,enum=read-write"`
}

// Fetch configures guest HTTP requests. Allow, when set, lists the only
// hosts the guest may reach.
type Fetch struct {
	Timeout      Duration      `yaml:"timeout" json:"timeout" validate:"gt=0"`
	MaxBodyBytes int           `yaml:"max_body_bytes" json:"max_body_bytes" validate:"gt=0"`
	AllowPrivate bool          `yaml:"allow_private" json:"allow_private"`
	Allow        []NetworkRule `yaml:"allow,omitempty" json:"allow,omitempty" validate:"omitempty,dive"`
}

// NetworkRule grants host globs on ports: numbers, "lo-hi" ranges or "*".
// No ports means any port.
type NetworkRule struct {
	Hosts []string `yaml:"hosts" json:"hosts" validate:"required,min=1"`
	Ports []string `yaml:"ports" json:"ports,omitempty"`
}

// Decompress bounds decompressed output.
type Decompress struct {
	MaxBytes int `yaml:"max_bytes" json:"max_bytes" validate:"gt=0"`
}

// Clipboard selects the system clipboard instead of an in-memory one.
type Clipboard struct {
	System bool `yaml:"system" json:"system"`
}

// Files is the directory file-open picks from. Empty means no files.
// Allow, when set, lists path globs a pick must match; relative globs are
// taken from the root.
type Files struct {
	Root  string   `yaml:"root" json:"root,omitempty"`
	Allow []string `yaml:"allow,omitempty" json:"allow,omitempty"`
}

// Notifications holds the notification permission. Grants names the file
// that remembers prompt answers; empty means answers last one run.
type Notifications struct {
	Permission string `yaml:"permission" json:"permission" validate:"oneof=granted denied default prompt" jsonschema:"enum=granted,enum=denied,enum=default,enum=prompt"`
	Grants     string `yaml:"grants" json:"grants,omitempty"`
}

// Push configures the push subscription service.
type Push struct {
	Endpoint string `yaml:"endpoint" json:"endpoint" validate:"required,url"`
}

// Log configures the host logger.
type Log struct {
	Level  string `yaml:"level" json:"level" validate:"oneof=debug info warn error" jsonschema:"enum=debug,enum=info,enum=warn,enum=error"`
	Format string `yaml:"format" json:"format" validate:"oneof=text json" jsonschema:"enum=text,enum=json"`
}

// Limits bounds guest requests.
type Limits struct {
	MaxFlushBytes int `yaml:"max_flush_bytes" json:"max_flush_bytes" validate:"gt=0"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Root: "#ward-root",
		URL:  "https://localhost/",
		WASI: true,
		Storage: Storage{
			Namespace: "ward",
		},
		Fetch: Fetch{
			Timeout:      Duration(30 * time.Second),
			MaxBodyBytes: 10 * 1024 * 1024,
		},
		Decompress: Decompress{MaxBytes: 64 * 1024 * 1024},
		Notifications: Notifications{
			Permission: "default",
		},
		Push: Push{Endpoint: "https://push.invalid/ward"},
		Log:  Log{Level: "info", Format: "text"},
		Limits: Limits{
			MaxFlushBytes: 16 * 1024 * 1024,
		},
	}
}

// Grants returns the allowlists as a grant set. Lists left unset are
// unrestricted.
func (c *Config) Grants() *entities.GrantSet {
	g := &entities.GrantSet{}
	if c.Fetch.Allow != nil {
		g.Network = &entities.NetworkCapability{}
		for _, r := range c.Fetch.Allow {
			g.Network.Rules = append(g.Network.Rules, entities.NetworkRule{Hosts: r.Hosts, Ports: r.Ports})
		}
	}
	if c.Files.Allow != nil {
		root, err := filepath.Abs(c.Files.Root)
		if err != nil {
			root = c.Files.Root
		}
		g.Files = &entities.FileCapability{}
		for _, p := range c.Files.Allow {
			if !filepath.IsAbs(p) {
				p = filepath.Join(root, p)
			}
			g.Files.Paths = append(g.Files.Paths, p)
		}
	}
	if c.Storage.Allow != nil {
		g.Storage = &entities.StorageCapability{}
		for _, r := range c.Storage.Allow {
			g.Storage.Rules = append(g.Storage.Rules, entities.StorageRule{Keys: r.Keys, Operation: r.Operation})
		}
	}
	return g
}

// Parse reads a configuration document over the defaults and validates the
// result.
func Parse(data []byte, p ports.ConfigParser) (*Config, error) {
	cfg := Default()
	if err := p.Parse(data, cfg); err != nil {
		return nil, &wardErrors.ConfigError{Err: err}
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

type loadConfig struct {
	engine ports.TemplateEngine
	data   map[string]any
}

// LoadOption configures Load.
type LoadOption func(*loadConfig)

// WithTemplate renders the file with engine over data before parsing it.
func WithTemplate(engine ports.TemplateEngine, data map[string]any) LoadOption {
	return func(c *loadConfig) {
		c.engine = engine
		c.data = data
	}
}

// Load reads the configuration file at path. An empty path yields the
// defaults.
func Load(path string, p ports.ConfigParser, opts ...LoadOption) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := ReadDocument(path, opts...)
	if err != nil {
		return nil, err
	}
	return Parse(data, p)
}

// ReadDocument returns the file at path, rendered when a template is set.
func ReadDocument(path string, opts ...LoadOption) ([]byte, error) {
	var lc loadConfig
	for _, opt := range opts {
		opt(&lc)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if lc.engine == nil {
		return data, nil
	}
	data, err = lc.engine.Render(data, lc.data)
	if err != nil {
		return nil, &wardErrors.ConfigError{Err: err}
	}
	return data, nil
}

// validate is shared; building a validator is expensive.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks cfg. Each failing field is reported as a ConfigError named
// by its dotted YAML path.
func Validate(cfg *Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &wardErrors.ConfigError{Err: err}
	}
	errs := make([]error, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		_, field, _ := strings.Cut(fe.Namespace(), ".")
		errs = append(errs, &wardErrors.ConfigError{
			Field: field,
			Err:   fmt.Errorf("failed %q check (value %v)", fe.Tag(), fe.Value()),
		})
	}
	return errors.Join(errs...)
}

// Duration is a time.Duration written as a Go duration string.
type Duration time.Duration

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(n *yaml.Node) error {
	var s string
	if err := n.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", n.Line, err)
	}
	*d = Duration(v)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return d.String(), nil
}

// JSONSchema describes Duration as a string.
func (Duration) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "string",
		Pattern:     `^([0-9]+(\.[0-9]+)?(ns|us|µs|ms|s|m|h))+$`,
		Description: "Go duration such as 30s or 1m30s",
	}
}
