package services

import (
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
)

// EscapeUserContent prepares arbitrary text for the MarkdownV2 parse
// mode. Already escaped sequences are left untouched.
func EscapeUserContent(text string) string {
	return bot.EscapeMarkdownUnescaped(text)
}

// FormatCode renders text as an inline monospace span.
func FormatCode(text string) string {
	return fmt.Sprintf("`%s`", EscapeUserContent(text))
}

func SafeConcat(parts ...string) string {
	var sb strings.Builder
	for _, part := range parts {
		sb.WriteString(part)
	}
	return sb.String()
}
