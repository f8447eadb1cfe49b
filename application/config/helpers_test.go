package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moshez/ward/infrastructure/parser"
)

func TestParseOverrides(t *testing.T) {
	o, err := ParseOverrides([]string{"wasi=false", "limits.max_flush_bytes=1024", "url=https://app.test/?a=b"})
	require.NoError(t, err)
	assert.Equal(t, Overrides{
		"wasi":                   false,
		"limits.max_flush_bytes": 1024,
		"url":                    "https://app.test/?a=b",
	}, o)

	_, err = ParseOverrides([]string{"novalue"})
	assert.Error(t, err)
	_, err = ParseOverrides([]string{"=x"})
	assert.Error(t, err)
}

func TestApply(t *testing.T) {
	cfg := Default()
	o, err := ParseOverrides([]string{"fetch.timeout=2s", "fetch.allow_private=true", "storage.namespace=other"})
	require.NoError(t, err)

	require.NoError(t, Apply(cfg, o, parser.NewYamlConfigParser()))
	assert.Equal(t, 2*time.Second, cfg.Fetch.Timeout.Std())
	assert.True(t, cfg.Fetch.AllowPrivate)
	assert.Equal(t, 10*1024*1024, cfg.Fetch.MaxBodyBytes)
	assert.Equal(t, "other", cfg.Storage.Namespace)
}

func TestApply_Rejects(t *testing.T) {
	p := parser.NewYamlConfigParser()

	assert.Error(t, Apply(Default(), Overrides{"log.level": "loud"}, p))
	assert.Error(t, Apply(Default(), Overrides{"nope": 1}, p))
	assert.Error(t, Apply(Default(), Overrides{"log": "x", "log.level": "info"}, p))
	assert.Error(t, Apply(Default(), Overrides{"fetch..timeout": "1s"}, p))
}

func TestApply_Empty(t *testing.T) {
	cfg := Default()
	require.NoError(t, Apply(cfg, nil, parser.NewYamlConfigParser()))
	assert.Equal(t, Default(), cfg)
}
