package gsheet

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
)

// Scopes cover spreadsheet manipulation plus the Drive operations the
// client needs: searching spreadsheets by title and granting writer
// permissions.
var Scopes = []string{
	"https://www.googleapis.com/auth/spreadsheets",
	"https://www.googleapis.com/auth/drive",
}

// Config identifies the target spreadsheet and the service account
// used to reach it.
type Config struct {
	SecretFile       string
	SpreadsheetTitle string
	WorksheetTitle   string
	WriterEmails     []string
}

// clientOptions builds authenticated API client options from the
// service-account key file.
func (c Config) clientOptions(ctx context.Context) ([]option.ClientOption, error) {
	data, err := os.ReadFile(c.SecretFile)
	if err != nil {
		return nil, fmt.Errorf("read service account file %s: %w", c.SecretFile, err)
	}

	jwtCfg, err := google.JWTConfigFromJSON(data, Scopes...)
	if err != nil {
		return nil, fmt.Errorf("parse service account file %s: %w", c.SecretFile, err)
	}

	return []option.ClientOption{option.WithHTTPClient(jwtCfg.Client(ctx))}, nil
}
