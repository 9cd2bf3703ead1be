package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const validConfig = `
server:
  hostname: "localhost"
  port: 8080
database:
  referral:
    type: "mysql"
    hostname: "localhost"
    port: 3306
    user: "referral_user"
    password: "secret"
    database: "referral_db"
logging:
  level: "debug"
`

func TestLoad_ValidConfig(t *testing.T) {
	cfg, err := Load(writeConfigFile(t, validConfig))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "referral_db", cfg.Database.Referral.Database)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// The contact attempt threshold defaults when unset.
	assert.Equal(t, 3, cfg.Scheduling.MaxContactAttempts)
}

func TestLoad_RejectsInvalidPort(t *testing.T) {
	_, err := Load(writeConfigFile(t, `
server:
  port: 0
database:
  referral:
    hostname: "localhost"
    database: "referral_db"
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid server port")
}

func TestLoad_RequiresDatabaseName(t *testing.T) {
	_, err := Load(writeConfigFile(t, `
server:
  port: 8080
database:
  referral:
    hostname: "localhost"
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database name is required")
}

func TestLoad_RejectsNonPositiveAttemptThreshold(t *testing.T) {
	_, err := Load(writeConfigFile(t, validConfig+`
scheduling:
  max_contact_attempts: -1
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max contact attempts")
}

func TestGetDSN(t *testing.T) {
	cfg := DatabaseConfig{
		User:     "referral_user",
		Password: "secret",
		Hostname: "db.internal",
		Port:     3306,
		Database: "referral_db",
	}

	assert.Equal(t,
		"referral_user:secret@tcp(db.internal:3306)/referral_db?parseTime=true&multiStatements=true",
		cfg.GetDSN())
}

func TestGetServerAddress(t *testing.T) {
	cfg := ServerConfig{Hostname: "0.0.0.0", Port: 8080}
	assert.Equal(t, "0.0.0.0:8080", cfg.GetServerAddress())
}
