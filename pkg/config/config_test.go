package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("1.2.3")
	require.NoError(t, err)

	assert.Equal(t, "1.2.3", cfg.Version)
	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, "plan.yaml", cfg.PlanPath)
	assert.Equal(t, 10, cfg.Pool.MaxOpenConns)
	assert.True(t, cfg.Scan.Enabled)
	assert.Equal(t, "", cfg.Addr(), "no port configured means no override")
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("PSQL_PLAN", "/etc/psql/plan.yaml")
	t.Setenv("SCAN_ENABLED", "false")

	cfg, err := Load("dev")
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, "/etc/psql/plan.yaml", cfg.PlanPath)
	assert.False(t, cfg.Scan.Enabled)
	assert.Equal(t, "127.0.0.1:8080", cfg.Addr())
}

func TestAddrUsesBindAddr(t *testing.T) {
	cfg := &Config{BindAddr: "0.0.0.0", Port: "9000"}
	assert.Equal(t, "0.0.0.0:9000", cfg.Addr())
}
