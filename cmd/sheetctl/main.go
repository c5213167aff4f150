package main

import (
	_ "github.com/joho/godotenv/autoload"

	"github.com/Healme-snip/rockits-telegram-bot/internal/cli"
)

func main() {
	cli.Execute()
}
