// Command dropctl validates and imports customer CSV files and mints
// development tokens for the voicemail drop API.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Raymond9734/voicemail-drop-backend/internal/logger"
)

var (
	verbose     bool
	maxFileSize int64

	log *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "dropctl",
	Short: "Voicemail drop customer import tool",
	Long: `dropctl runs the customer CSV pipeline locally.

  validate - check a file and list every row error
  import   - validate a file and submit it to the bulk endpoint
  token    - mint a development auth token`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if !verbose {
			log = logger.NewNop()
			return nil
		}
		l, err := logger.New("dropctl", true)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		log = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log to stdout")
	rootCmd.PersistentFlags().Int64Var(&maxFileSize, "max-size", 10<<20, "largest accepted file in bytes")

	rootCmd.AddCommand(validateCmd, importCmd, tokenCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
