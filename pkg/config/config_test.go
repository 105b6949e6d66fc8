package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "socialgraph/pkg/errors"
)

func validConfig() *Config {
	return &Config{
		Port:          "8080",
		Env:           "development",
		Neo4jURI:      "bolt://localhost:7687",
		Neo4jUser:     "neo4j",
		Neo4jPassword: "password",
		Neo4jDatabase: "neo4j",
		DataDir:       "data",
		LoadBatchSize: 1000,
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestValidate_MissingRequiredValues(t *testing.T) {
	for _, mutate := range []func(*Config){
		func(c *Config) { c.Neo4jURI = "" },
		func(c *Config) { c.Neo4jUser = "" },
		func(c *Config) { c.Neo4jPassword = "" },
	} {
		cfg := validConfig()
		mutate(cfg)
		err := cfg.Validate()
		require.Error(t, err)
		assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeConfig))
	}
}

func TestValidate_NonPositiveBatchSize(t *testing.T) {
	cfg := validConfig()
	cfg.LoadBatchSize = 0
	assert.Error(t, cfg.Validate())
}
