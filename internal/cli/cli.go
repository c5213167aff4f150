package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Healme-snip/rockits-telegram-bot/internal/config"
	"github.com/Healme-snip/rockits-telegram-bot/internal/gsheet"
	"github.com/Healme-snip/rockits-telegram-bot/internal/logger"
	"github.com/spf13/cobra"
)

var flagSettings string

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheetctl",
		Short: "Maintenance commands for the spreadsheet the bot writes to",
		Long: `Maintenance commands for the spreadsheet the bot writes to: grant
writer access, list worksheets, delete worksheets. Reads the same
settings file as the bot.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&flagSettings, "settings", config.DefaultPath, "Path to the settings file")

	cmd.AddCommand(newShareCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newDeleteCmd())

	return cmd
}

func newShareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "share [email ...]",
		Short: "Grant writer access (defaults to the configured writer_emails)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, client, err := connect(cmd.Context())
			if err != nil {
				return err
			}

			emails := args
			if len(emails) == 0 {
				emails = cfg.GSheet.WriterEmails
			}
			if len(emails) == 0 {
				return fmt.Errorf("no emails given and gsheet.writer_emails is empty")
			}

			if err := client.Share(cmd.Context(), emails); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Granted writer access to %d account(s)\n", len(emails))
			return nil
		},
	}
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the worksheets of the spreadsheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, client, err := connect(cmd.Context())
			if err != nil {
				return err
			}

			titles, err := client.Worksheets(cmd.Context())
			if err != nil {
				return err
			}
			for _, title := range titles {
				fmt.Fprintln(cmd.OutOrStdout(), title)
			}
			return nil
		},
	}
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <worksheet> [worksheet ...]",
		Short: "Delete worksheets by title (missing titles are skipped)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, client, err := connect(cmd.Context())
			if err != nil {
				return err
			}

			if err := client.DeleteWorksheets(cmd.Context(), args); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Done")
			return nil
		},
	}
}

func connect(ctx context.Context) (*config.Settings, *gsheet.Client, error) {
	cfg, err := config.Load(flagSettings)
	if err != nil {
		return nil, nil, err
	}

	client := gsheet.NewClient(gsheet.Config{
		SecretFile:       cfg.GSheet.SecretFile,
		SpreadsheetTitle: cfg.GSheet.SpreadsheetTitle,
		WorksheetTitle:   cfg.GSheet.WorksheetTitle,
		WriterEmails:     cfg.GSheet.WriterEmails,
	}, logger.Get())

	if err := client.Connect(ctx); err != nil {
		return nil, nil, err
	}
	return cfg, client, nil
}

// Execute runs the CLI
func Execute() {
	logger.Init(os.Getenv("LOG_LEVEL"), os.Getenv("ENVIRONMENT"))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
