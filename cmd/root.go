package cmd

import (
	"fmt"
	"os"

	"auction-escrow/internal/config"
	"auction-escrow/utils"

	"github.com/spf13/cobra"
)

// Loaded once by the root command before any subcommand runs
var appConfig *config.Config

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "auctiond",
	Short: "Escrowed auction house",
	Long: "auctiond runs the escrowed auction service.\n\n" +
		"Sellers auction assets they own, bidders lock funds in escrow, and\n" +
		"settlement hands the asset to the winner while paying the seller.",
	SilenceUsage:      true,
	PersistentPreRunE: initializeApp,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(migrateCmd)
}

func initializeApp(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := utils.SetLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.LogLevel, err)
	}
	appConfig = cfg
	return nil
}
