package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// DefaultPath is used when SETTINGS_PATH is not set.
const DefaultPath = "settings.json"

// Settings mirrors the settings.json shape:
// {tg:{token}, gsheet:{secret_file, spreadsheet_title, worksheet_title, writer_emails:[...]}}
// Loaded once at startup, immutable for the process lifetime.
type Settings struct {
	TG     TG     `mapstructure:"tg"`
	GSheet GSheet `mapstructure:"gsheet"`
}

type TG struct {
	Token string `mapstructure:"token"`
}

type GSheet struct {
	SecretFile       string   `mapstructure:"secret_file"`
	SpreadsheetTitle string   `mapstructure:"spreadsheet_title"`
	WorksheetTitle   string   `mapstructure:"worksheet_title"`
	WriterEmails     []string `mapstructure:"writer_emails"`
}

// Path returns the settings file path, honoring the SETTINGS_PATH override.
func Path() string {
	if p := os.Getenv("SETTINGS_PATH"); p != "" {
		return p
	}
	return DefaultPath
}

// Load reads the settings file and applies environment overrides.
// Environment variables win over file values.
func Load(path string) (*Settings, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	v.BindEnv("tg.token", "TG_TOKEN")
	v.BindEnv("gsheet.secret_file", "GSHEET_SECRET_FILE")
	v.BindEnv("gsheet.spreadsheet_title", "GSHEET_SPREADSHEET_TITLE")
	v.BindEnv("gsheet.worksheet_title", "GSHEET_WORKSHEET_TITLE")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read settings %s: %w", path, err)
	}

	cfg := &Settings{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse settings %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (s *Settings) validate() error {
	if s.TG.Token == "" {
		return fmt.Errorf("tg.token is not set")
	}
	if s.GSheet.SecretFile == "" {
		return fmt.Errorf("gsheet.secret_file is not set")
	}
	if s.GSheet.SpreadsheetTitle == "" {
		return fmt.Errorf("gsheet.spreadsheet_title is not set")
	}
	if s.GSheet.WorksheetTitle == "" {
		return fmt.Errorf("gsheet.worksheet_title is not set")
	}
	if _, err := os.Stat(s.GSheet.SecretFile); err != nil {
		return fmt.Errorf("cannot find google service account file %s: %w", s.GSheet.SecretFile, err)
	}
	return nil
}
