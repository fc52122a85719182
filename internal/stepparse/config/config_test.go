package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Default(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 3, cfg.ForkBound)
	assert.Equal(t, "skip", cfg.DefaultRecoveryStrategy)
}

func Test_Load_OverridesSubsetOfFields(t *testing.T) {
	cfg, err := Load([]byte("fork_bound = 5\n"))
	assert.NoError(t, err)
	assert.Equal(t, 5, cfg.ForkBound)
	assert.Equal(t, 8, cfg.PathPoolInitialCapacity)
}

func Test_Load_MalformedToml(t *testing.T) {
	_, err := Load([]byte("not valid toml ="))
	assert.Error(t, err)
}
