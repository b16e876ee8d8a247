package model

import "time"

// Config mirrors the top level of config.yaml
type Config struct {
	Token        string       `mapstructure:"TOKEN"`
	GuildID      string       `mapstructure:"guild_id"`
	Commands     Commands     `mapstructure:"commands"`
	Registration Registration `mapstructure:"registration"`
	Store        StoreConfig  `mapstructure:"store"`
	Metrics      Metrics      `mapstructure:"metrics"`
}

// Commands is the "commands" section
type Commands struct {
	Allowguils []string `mapstructure:"allowguils"`
	Auth       Auth     `mapstructure:"auth"`
}

// Auth is the "auth" section
type Auth struct {
	Developers  []string `mapstructure:"Developers"`
	AdminsRoles []string `mapstructure:"AdminsRoles"`
}

// Registration is the "registration" section: channels, role and dialogue limits.
type Registration struct {
	Brand          string        `mapstructure:"brand"`
	PostChannelID  string        `mapstructure:"post_channel_id"`
	LogChannelID   string        `mapstructure:"log_channel_id"`
	AdminChannelID string        `mapstructure:"admin_channel_id"`
	RoleID         string        `mapstructure:"role_id"`
	PlayerIDDigits int           `mapstructure:"player_id_digits"`
	MaxAttempts    int           `mapstructure:"max_attempts"`
	ReplyTimeout   time.Duration `mapstructure:"reply_timeout"`
	ConfirmTimeout time.Duration `mapstructure:"confirm_timeout"`
	PanelStatePath string        `mapstructure:"panel_state_path"`
}

// StoreConfig selects and configures the record store backends.
type StoreConfig struct {
	Backend   string       `mapstructure:"backend"`
	Mirror    []string     `mapstructure:"mirror"`
	ResetMode string       `mapstructure:"reset_mode"`
	CSV       CSVConfig    `mapstructure:"csv"`
	SQLite    SQLiteConfig `mapstructure:"sqlite"`
	Sheets    SheetsConfig `mapstructure:"sheets"`
	Redis     RedisConfig  `mapstructure:"redis"`
}

type CSVConfig struct {
	Path string `mapstructure:"path"`
}

type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

// SheetsConfig holds the Google Sheets worksheet and service account credentials.
// Either CredentialsJSON or CredentialsB64 must be set.
type SheetsConfig struct {
	SheetID         string `mapstructure:"sheet_id"`
	SheetName       string `mapstructure:"sheet_name"`
	CredentialsJSON string `mapstructure:"credentials_json"`
	CredentialsB64  string `mapstructure:"credentials_b64"`
}

type RedisConfig struct {
	URL    string `mapstructure:"url"`
	Prefix string `mapstructure:"prefix"`
}

// Metrics is the "metrics" section. An empty Addr disables the HTTP listener.
type Metrics struct {
	Addr string `mapstructure:"addr"`
}
