// Package policy enforces grant sets with glob rules.
package policy

import (
	"context"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/moshez/ward/domain/entities"
	"github.com/moshez/ward/domain/ports"
)

// policyConfig holds configuration for the Policy engine.
type policyConfig struct {
	cwd             string              // Working directory for relative path resolution
	resolveSymlinks bool                // Whether to resolve symlinks (security feature)
	denialHandler   ports.DenialHandler // Handler invoked on policy denials
}

func defaultPolicyConfig() policyConfig {
	return policyConfig{
		resolveSymlinks: true,
		denialHandler:   &LogDenialHandler{},
	}
}

// PolicyOption configures the Policy.
type PolicyOption func(*policyConfig)

// WithWorkingDirectory sets the working directory for relative path resolution.
func WithWorkingDirectory(cwd string) PolicyOption {
	return func(c *policyConfig) {
		c.cwd = cwd
	}
}

// WithSymlinkResolution enables/disables symlink resolution.
// Default is true. Disable only for testing.
func WithSymlinkResolution(enabled bool) PolicyOption {
	return func(c *policyConfig) {
		c.resolveSymlinks = enabled
	}
}

// WithDenialHandler sets the denial handler.
func WithDenialHandler(h ports.DenialHandler) PolicyOption {
	return func(c *policyConfig) {
		c.denialHandler = h
	}
}

// Policy checks requests against one grant set, compiled once.
type Policy struct {
	config  policyConfig
	network []compiledNetworkRule
	files   []string
	storage []compiledStorageRule

	restrictNetwork bool
	restrictFiles   bool
	restrictStorage bool
}

var _ ports.Policy = (*Policy)(nil)

type compiledNetworkRule struct {
	hosts []string
	ports []portRange // empty matches any port
}

type compiledStorageRule struct {
	keys []string
	op   string
}

type portRange struct {
	min, max int
}

// NewPolicy compiles grants. Invalid patterns and port specs are dropped,
// so a rule made only of them matches nothing.
func NewPolicy(grants *entities.GrantSet, opts ...PolicyOption) *Policy {
	cfg := defaultPolicyConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	p := &Policy{config: cfg}
	if grants == nil {
		return p
	}

	if grants.Network != nil {
		p.restrictNetwork = true
		for _, rule := range grants.Network.Rules {
			cr := compiledNetworkRule{hosts: validPatterns(rule.Hosts)}
			for _, spec := range rule.Ports {
				if pr, ok := parsePorts(spec); ok {
					cr.ports = append(cr.ports, pr)
				}
			}
			if len(rule.Ports) > 0 && len(cr.ports) == 0 {
				continue
			}
			p.network = append(p.network, cr)
		}
	}

	if grants.Files != nil {
		p.restrictFiles = true
		p.files = validPatterns(grants.Files.Paths)
	}

	if grants.Storage != nil {
		p.restrictStorage = true
		for _, rule := range grants.Storage.Rules {
			p.storage = append(p.storage, compiledStorageRule{
				keys: validPatterns(rule.Keys),
				op:   rule.Operation,
			})
		}
	}
	return p
}

func validPatterns(in []string) []string {
	var out []string
	for _, s := range in {
		if doublestar.ValidatePattern(s) {
			out = append(out, s)
		}
	}
	return out
}

func parsePorts(spec string) (portRange, bool) {
	spec = strings.TrimSpace(spec)
	if spec == "*" {
		return portRange{0, 65535}, true
	}
	if lo, hi, ok := strings.Cut(spec, "-"); ok {
		minPort, err1 := strconv.Atoi(strings.TrimSpace(lo))
		maxPort, err2 := strconv.Atoi(strings.TrimSpace(hi))
		if err1 != nil || err2 != nil || minPort > maxPort {
			return portRange{}, false
		}
		return portRange{minPort, maxPort}, true
	}
	val, err := strconv.Atoi(spec)
	if err != nil {
		return portRange{}, false
	}
	return portRange{val, val}, true
}

func matchAny(patterns []string, s string) bool {
	for _, pattern := range patterns {
		if matched, _ := doublestar.Match(pattern, s); matched {
			return true
		}
	}
	return false
}

// CheckNetwork allows req when one rule matches both its host and port.
// Hosts compare case-insensitively.
func (p *Policy) CheckNetwork(ctx context.Context, req entities.NetworkRequest) bool {
	if !p.restrictNetwork {
		return true
	}
	host := strings.ToLower(req.Host)
	for _, rule := range p.network {
		if !matchAny(rule.hosts, host) {
			continue
		}
		if len(rule.ports) == 0 {
			return true
		}
		for _, pr := range rule.ports {
			if req.Port >= pr.min && req.Port <= pr.max {
				return true
			}
		}
	}

	p.config.denialHandler.OnDenial(ctx, "network", req, "host/port not allowed")
	return false
}

// CheckFile allows req when its cleaned, absolute path matches a pattern.
func (p *Policy) CheckFile(ctx context.Context, req entities.FileRequest) bool {
	if !p.restrictFiles {
		return true
	}

	path := filepath.Clean(req.Path)
	if !filepath.IsAbs(path) {
		if p.config.cwd == "" {
			p.config.denialHandler.OnDenial(ctx, "file", req, "relative path without working directory")
			return false
		}
		path = filepath.Join(p.config.cwd, path)
	}

	// Resolve symlinks to prevent traversal attacks
	if p.config.resolveSymlinks {
		if resolved, err := filepath.EvalSymlinks(path); err == nil {
			path = resolved
		}
	}

	if matchAny(p.files, path) {
		return true
	}
	p.config.denialHandler.OnDenial(ctx, "file", req, "path not allowed")
	return false
}

// CheckStorage allows req when a rule covering its operation matches the key.
func (p *Policy) CheckStorage(ctx context.Context, req entities.StorageRequest) bool {
	if !p.restrictStorage {
		return true
	}
	for _, rule := range p.storage {
		if rule.op != "read-write" && rule.op != req.Operation {
			continue
		}
		if matchAny(rule.keys, req.Key) {
			return true
		}
	}

	p.config.denialHandler.OnDenial(ctx, "storage", req, "key/operation not allowed")
	return false
}
