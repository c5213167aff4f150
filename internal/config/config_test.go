package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeSettings(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "settings.json")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("Failed to write settings file: %v", err)
	}
	return path
}

func writeSecret(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "service-account.json")
	if err := os.WriteFile(path, []byte(`{"type":"service_account"}`), 0o600); err != nil {
		t.Fatalf("Failed to write secret file: %v", err)
	}
	return path
}

func TestLoadWellFormed(t *testing.T) {
	dir := t.TempDir()
	secret := writeSecret(t, dir)

	path := writeSettings(t, dir, `{
		"tg": {"token": "123:abc"},
		"gsheet": {
			"secret_file": "`+secret+`",
			"spreadsheet_title": "Expenses",
			"worksheet_title": "2026",
			"writer_emails": ["a@example.com", "b@example.com"]
		}
	}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	if cfg.TG.Token != "123:abc" {
		t.Errorf("TG.Token = %q, want %q", cfg.TG.Token, "123:abc")
	}
	if cfg.GSheet.SecretFile != secret {
		t.Errorf("GSheet.SecretFile = %q, want %q", cfg.GSheet.SecretFile, secret)
	}
	if cfg.GSheet.SpreadsheetTitle != "Expenses" {
		t.Errorf("GSheet.SpreadsheetTitle = %q, want %q", cfg.GSheet.SpreadsheetTitle, "Expenses")
	}
	if cfg.GSheet.WorksheetTitle != "2026" {
		t.Errorf("GSheet.WorksheetTitle = %q, want %q", cfg.GSheet.WorksheetTitle, "2026")
	}
	if len(cfg.GSheet.WriterEmails) != 2 {
		t.Fatalf("GSheet.WriterEmails has %d entries, want 2", len(cfg.GSheet.WriterEmails))
	}
	if cfg.GSheet.WriterEmails[0] != "a@example.com" {
		t.Errorf("WriterEmails[0] = %q, want %q", cfg.GSheet.WriterEmails[0], "a@example.com")
	}
}

func TestLoadMissingToken(t *testing.T) {
	dir := t.TempDir()
	secret := writeSecret(t, dir)

	path := writeSettings(t, dir, `{
		"tg": {},
		"gsheet": {
			"secret_file": "`+secret+`",
			"spreadsheet_title": "Expenses",
			"worksheet_title": "2026",
			"writer_emails": []
		}
	}`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("Load() expected error for missing tg.token, got nil")
	}
	if !strings.Contains(err.Error(), "tg.token") {
		t.Errorf("Load() error = %v, want mention of tg.token", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err == nil {
		t.Fatal("Load() expected error for missing settings file, got nil")
	}
}

func TestLoadMissingGSheetFields(t *testing.T) {
	dir := t.TempDir()
	secret := writeSecret(t, dir)

	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "no secret_file",
			body: `{"tg":{"token":"t"},"gsheet":{"spreadsheet_title":"S","worksheet_title":"W"}}`,
			want: "gsheet.secret_file",
		},
		{
			name: "no spreadsheet_title",
			body: `{"tg":{"token":"t"},"gsheet":{"secret_file":"` + secret + `","worksheet_title":"W"}}`,
			want: "gsheet.spreadsheet_title",
		},
		{
			name: "no worksheet_title",
			body: `{"tg":{"token":"t"},"gsheet":{"secret_file":"` + secret + `","spreadsheet_title":"S"}}`,
			want: "gsheet.worksheet_title",
		},
		{
			name: "secret file does not exist",
			body: `{"tg":{"token":"t"},"gsheet":{"secret_file":"` + filepath.Join(dir, "missing.json") + `","spreadsheet_title":"S","worksheet_title":"W"}}`,
			want: "cannot find google service account file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeSettings(t, t.TempDir(), tt.body)
			_, err := Load(path)
			if err == nil {
				t.Fatal("Load() expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Load() error = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	secret := writeSecret(t, dir)

	path := writeSettings(t, dir, `{
		"tg": {"token": "from-file"},
		"gsheet": {
			"secret_file": "`+secret+`",
			"spreadsheet_title": "Expenses",
			"worksheet_title": "2026"
		}
	}`)

	t.Setenv("TG_TOKEN", "from-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if cfg.TG.Token != "from-env" {
		t.Errorf("TG.Token = %q, want env override %q", cfg.TG.Token, "from-env")
	}
}

func TestPathDefault(t *testing.T) {
	t.Setenv("SETTINGS_PATH", "")
	if got := Path(); got != DefaultPath {
		t.Errorf("Path() = %q, want %q", got, DefaultPath)
	}

	t.Setenv("SETTINGS_PATH", "/etc/bot/settings.json")
	if got := Path(); got != "/etc/bot/settings.json" {
		t.Errorf("Path() = %q, want override", got)
	}
}
