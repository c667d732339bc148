package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	logLevel string
	logger   = log.NewWithOptions(os.Stderr, log.Options{Prefix: "bracketctl"})
)

var rootCmd = &cobra.Command{
	Use:   "bracketctl",
	Short: "Generate, simulate and administer tournaments",
	Long: `bracketctl drives the tournament engine from the command line: it prints
generated brackets, plays whole tournaments with random rallies, applies the
database migrations and issues API tokens.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()
		level, err := log.ParseLevel(logLevel)
		if err != nil {
			return err
		}
		logger.SetLevel(level)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "bracketctl: %s\n", err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}
