package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configFlag string

// errRunFailed makes the process exit non-zero after a failed run whose
// output was already printed.
var errRunFailed = errors.New("run failed")

var rootCmd = &cobra.Command{
	Use:   "codepad",
	Short: "codepad - multi-file code editor with local and remote execution",
	Long: `codepad keeps a small set of source files and runs them.

JavaScript runs in an embedded interpreter. Other languages are sent to an
execution service, which "codepad serve" provides using Docker sandboxes.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Config file (default: ./codepad.yaml or ~/.codepad/codepad.yaml)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errRunFailed) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
