package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"regbot/model"
)

// Cfg is the loaded configuration.
var Cfg model.Config

// legacyEnv maps config keys to the environment names the bot has always read.
var legacyEnv = map[string][]string{
	"token":                         {"TOKEN", "DISCORD_TOKEN"},
	"guild_id":                      {"GUILD_ID"},
	"registration.post_channel_id":  {"REGISTRATION_POST_CHANNEL_ID", "REGISTER_POST_CHANNEL_ID"},
	"registration.log_channel_id":   {"REGISTRATION_LOG_CHANNEL_ID", "LOG_CHANNEL_ID"},
	"registration.admin_channel_id": {"REGISTRATION_ADMIN_CHANNEL_ID", "MOD_COMMANDS_CHANNEL_ID"},
	"registration.role_id":          {"REGISTRATION_ROLE_ID", "REGISTERED_ROLE_ID"},
	"store.sheets.sheet_id":         {"STORE_SHEETS_SHEET_ID", "GOOGLE_SHEET_ID"},
	"store.sheets.sheet_name":       {"STORE_SHEETS_SHEET_NAME", "GOOGLE_SHEET_NAME"},
	"store.sheets.credentials_json": {"STORE_SHEETS_CREDENTIALS_JSON", "GOOGLE_SERVICE_ACCOUNT_JSON"},
	"store.sheets.credentials_b64":  {"STORE_SHEETS_CREDENTIALS_B64", "GOOGLE_SERVICE_ACCOUNT_B64"},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("token", "")
	v.SetDefault("guild_id", "")
	v.SetDefault("commands.allowguils", []string{})
	v.SetDefault("commands.auth.developers", []string{})
	v.SetDefault("commands.auth.adminsroles", []string{})

	v.SetDefault("registration.brand", "Raid Rush")
	v.SetDefault("registration.post_channel_id", "")
	v.SetDefault("registration.log_channel_id", "")
	v.SetDefault("registration.admin_channel_id", "")
	v.SetDefault("registration.role_id", "")
	v.SetDefault("registration.player_id_digits", 9)
	v.SetDefault("registration.max_attempts", 3)
	v.SetDefault("registration.reply_timeout", 120*time.Second)
	v.SetDefault("registration.confirm_timeout", 90*time.Second)
	v.SetDefault("registration.panel_state_path", "./data/panel_state.json")

	v.SetDefault("store.backend", "csv")
	v.SetDefault("store.mirror", []string{})
	v.SetDefault("store.reset_mode", "delete")
	v.SetDefault("store.csv.path", "./data/submissions.csv")
	v.SetDefault("store.sqlite.path", "./data/regbot.db")
	v.SetDefault("store.sheets.sheet_id", "")
	v.SetDefault("store.sheets.sheet_name", "Submissions")
	v.SetDefault("store.sheets.credentials_json", "")
	v.SetDefault("store.sheets.credentials_b64", "")
	v.SetDefault("store.redis.url", "")
	v.SetDefault("store.redis.prefix", "regbot")

	v.SetDefault("metrics.addr", "")
}

// AddFlags registers the command line flags LoadConfig understands.
func AddFlags(flagSet *pflag.FlagSet) {
	flagSet.String("config", "", "path to the config file (default: ./config.yaml)")
	flagSet.String("store", "", "record store backend: csv, sheets, sqlite or redis")
}

// LoadConfig reads config.yaml, the environment and flags into Cfg.
// A missing config file is not an error unless --config names one.
func LoadConfig(flagSet *pflag.FlagSet) error {
	v := viper.New()
	setDefaults(v)

	configPath := ""
	if flagSet != nil {
		configPath, _ = flagSet.GetString("config")
		if f := flagSet.Lookup("store"); f != nil {
			if err := v.BindPFlag("store.backend", f); err != nil {
				return err
			}
		}
	}
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, names := range legacyEnv {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return err
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
		log.Println("No config.yaml found, using defaults and environment.")
	}

	var cfg model.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	Cfg = cfg
	return nil
}

// Validate reports settings the bot cannot start without.
func Validate(cfg model.Config) error {
	var errs []error
	if cfg.Token == "" {
		errs = append(errs, errors.New("token is required"))
	}
	if cfg.GuildID == "" {
		errs = append(errs, errors.New("guild_id is required"))
	}
	if cfg.Registration.PlayerIDDigits <= 0 {
		errs = append(errs, errors.New("registration.player_id_digits must be positive"))
	}
	if cfg.Registration.MaxAttempts <= 0 {
		errs = append(errs, errors.New("registration.max_attempts must be positive"))
	}
	switch cfg.Store.ResetMode {
	case "delete", "mark":
	default:
		errs = append(errs, fmt.Errorf("store.reset_mode must be delete or mark, got %q", cfg.Store.ResetMode))
	}
	return errors.Join(errs...)
}
