package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/outbound-dialer/internal/config"
	"github.com/sells-group/outbound-dialer/internal/dialer"
	"github.com/sells-group/outbound-dialer/internal/lead"
	"github.com/sells-group/outbound-dialer/internal/store"
)

var (
	runFile     string
	runUploadID string
	runJSON     bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one batch of calls from a lead file or a stored upload",
	Long: "Runs a batch over --file, or over a stored upload selected by --upload-id " +
		"(the most recent upload when neither flag is given). Ctrl-C stops the batch " +
		"after the lead currently in flight.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return runBatch(ctx, cmd.OutOrStdout(), cfg, runFile, runUploadID, runJSON)
	},
}

// runBatch runs one batch and writes the operator message (or the full
// result as JSON) to w. A file is loaded into a process-local store.
func runBatch(ctx context.Context, w io.Writer, c *config.Config, file, uploadID string, asJSON bool) error {
	if file != "" && uploadID != "" {
		return eris.New("run: --file and --upload-id are mutually exclusive")
	}

	var st store.Store
	if file != "" {
		if _, ok := lead.FormatFor(file); !ok {
			return eris.Errorf("run: unsupported lead file %s (want .csv or .xlsx)", file)
		}
		data, err := os.ReadFile(file)
		if err != nil {
			return eris.Wrap(err, "run: read lead file")
		}
		mem := store.NewMemory()
		up, err := mem.SaveUpload(ctx, filepath.Base(file), data)
		if err != nil {
			return eris.Wrap(err, "run: stage lead file")
		}
		st, uploadID = mem, up.ID
	}

	env, err := initDialer(ctx, c, st)
	if err != nil {
		return err
	}
	defer env.Close()

	res, err := env.Runner.Run(ctx, uploadID)
	if err != nil {
		return err
	}
	return printResult(w, res, asJSON)
}

func printResult(w io.Writer, res *dialer.Result, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	_, err := fmt.Fprintln(w, res.Message)
	return err
}

func init() {
	runCmd.Flags().StringVar(&runFile, "file", "", "lead file (.csv or .xlsx) to call")
	runCmd.Flags().StringVar(&runUploadID, "upload-id", "", "stored upload to call (default: most recent)")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "print the full result as JSON")
	rootCmd.AddCommand(runCmd)
}
