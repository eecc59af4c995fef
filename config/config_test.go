package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("JWT_SECRET_KEY", "test-secret")
	t.Setenv("MAX_ACTIVE_DEVICES", "2")
	t.Setenv("SINGLE_SESSION", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "coursehub", cfg.MongoDBName)
	assert.Equal(t, 30, cfg.AccessTokenTTLMin)
	assert.Equal(t, 2, cfg.MaxActiveDevices)
	assert.True(t, cfg.SingleSession)
}

func TestLoadConfigRequiresMongoAndSecret(t *testing.T) {
	t.Setenv("MONGO_URI", "")
	t.Setenv("JWT_SECRET_KEY", "")

	_, err := LoadConfig()
	require.Error(t, err)
}

func TestValidateDeviceLimit(t *testing.T) {
	cfg := &ServerConfig{
		MongoURI:          "mongodb://localhost:27017",
		JWTSecretKey:      "s",
		AccessTokenTTLMin: 30,
		MaxActiveDevices:  0,
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAX_ACTIVE_DEVICES")

	cfg.MaxActiveDevices = 1
	assert.NoError(t, cfg.Validate())
}
