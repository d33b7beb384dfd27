package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Raymond9734/voicemail-drop-backend/internal/csvimport"
)

var validateCmd = &cobra.Command{
	Use:   "validate FILE",
	Short: "Check a customer CSV without importing it",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Validate a customer CSV and submit it as one batch",
	Long: `Validate a customer CSV and submit every row in one bulk request.
Nothing is sent when any row fails validation.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var (
	apiURL   string
	apiToken string
)

func init() {
	importCmd.Flags().StringVar(&apiURL, "api", "http://localhost:8080", "API base URL")
	importCmd.Flags().StringVar(&apiToken, "token", os.Getenv("VMDROP_TOKEN"), "bearer token")
}

func runValidate(cmd *cobra.Command, args []string) error {
	return upload(cmd, args[0], nil)
}

func runImport(cmd *cobra.Command, args []string) error {
	return upload(cmd, args[0], csvimport.NewClient(apiURL, apiToken, nil))
}

// upload drives one file through the uploader; a nil submitter only validates
func upload(cmd *cobra.Command, path string, submitter csvimport.Submitter) error {
	out := cmd.OutOrStdout()
	name := filepath.Base(path)

	// checked before opening so unsupported files are never read
	if err := csvimport.CheckFormat(name); err != nil {
		fmt.Fprintln(out, csvimport.UserMessage(err))
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	uploader := csvimport.NewUploader(submitter, maxFileSize)
	res, err := uploader.Upload(ctx, name, f)

	log.Debug("upload finished",
		zap.String("file", name),
		zap.String("state", string(uploader.State())),
		zap.Error(err),
	)

	if res != nil {
		fmt.Fprintf(out, "%s: %d rows, %d valid\n", name, res.Rows, len(res.Customers))
		printErrors(out, res.ErrorMessages())
	}

	if err != nil {
		var rejected *csvimport.RejectedError
		if errors.As(err, &rejected) && res != nil && res.OK() {
			// server-side rejection
			for _, d := range rejected.Details {
				fmt.Fprintf(out, "  Row %d: %s\n", d.Row, d.Error)
			}
		}
		fmt.Fprintln(out, csvimport.UserMessage(err))
		return err
	}

	if created := uploader.Created(); created != nil {
		fmt.Fprintln(out, created.Message)
		for _, c := range created.Customers {
			fmt.Fprintf(out, "  %s  %s %s  %s\n", c.ID, c.FirstName, c.LastName, c.PhoneNumber)
		}
	}

	return nil
}

func printErrors(out io.Writer, msgs []string) {
	for _, m := range msgs {
		fmt.Fprintf(out, "  %s\n", m)
	}
}
