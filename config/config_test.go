package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regbot/model"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	AddFlags(flagSet)
	require.NoError(t, flagSet.Parse(args))
	return flagSet
}

func TestLoadConfigFileEnvAndFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
TOKEN: file-token
guild_id: "111"
commands:
  auth:
    Developers: ["42"]
registration:
  log_channel_id: "222"
  reply_timeout: 45s
store:
  backend: sheets
  mirror: [csv]
`), 0644))

	t.Setenv("GUILD_ID", "999")
	t.Setenv("REGISTERED_ROLE_ID", "333")

	require.NoError(t, LoadConfig(newFlags(t, "--config", path, "--store", "sqlite")))

	assert.Equal(t, "file-token", Cfg.Token)
	assert.Equal(t, "999", Cfg.GuildID)
	assert.Equal(t, []string{"42"}, Cfg.Commands.Auth.Developers)
	assert.Equal(t, "222", Cfg.Registration.LogChannelID)
	assert.Equal(t, "333", Cfg.Registration.RoleID)
	assert.Equal(t, 45*time.Second, Cfg.Registration.ReplyTimeout)
	assert.Equal(t, 90*time.Second, Cfg.Registration.ConfirmTimeout)
	assert.Equal(t, 9, Cfg.Registration.PlayerIDDigits)
	assert.Equal(t, "sqlite", Cfg.Store.Backend)
	assert.Equal(t, []string{"csv"}, Cfg.Store.Mirror)
	assert.Equal(t, "delete", Cfg.Store.ResetMode)
}

func TestLoadConfigWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DISCORD_TOKEN", "env-token")

	require.NoError(t, LoadConfig(newFlags(t)))
	assert.Equal(t, "env-token", Cfg.Token)
	assert.Equal(t, "csv", Cfg.Store.Backend)
	assert.Equal(t, "./data/submissions.csv", Cfg.Store.CSV.Path)
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	err := LoadConfig(newFlags(t, "--config", filepath.Join(t.TempDir(), "nope.yaml")))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := model.Config{
		Token:        "t",
		GuildID:      "g",
		Registration: model.Registration{PlayerIDDigits: 9, MaxAttempts: 3},
		Store:        model.StoreConfig{ResetMode: "mark"},
	}
	require.NoError(t, Validate(cfg))

	cfg.Token = ""
	cfg.Store.ResetMode = "purge"
	err := Validate(cfg)
	assert.ErrorContains(t, err, "token is required")
	assert.ErrorContains(t, err, "reset_mode")
}
