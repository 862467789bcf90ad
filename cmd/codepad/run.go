package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/michaelbrown/codepad/internal/execution"
	"github.com/michaelbrown/codepad/internal/language"
	"github.com/michaelbrown/codepad/internal/logging"
)

var runFileFlag string

var runCmd = &cobra.Command{
	Use:   "run [name]",
	Short: "Run a workspace file",
	Long: `Run the current workspace file, or the named one after selecting it.

With --file, run a file from disk instead; its language comes from its
extension and the workspace is left alone.

Examples:
  codepad run
  codepad run example.py
  codepad run --file ./script.js`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVarP(&runFileFlag, "file", "f", "", "Run a file from disk instead of the workspace")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if runFileFlag != "" {
		return runDiskFile(ctx, runFileFlag)
	}

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if len(args) == 1 && !a.ws.Select(args[0]) {
		return fmt.Errorf("no such file: %s", args[0])
	}
	return printResult(a.ws.Run(ctx))
}

func runDiskFile(ctx context.Context, path string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	source, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	lang, _ := language.Resolve(path)
	router := newRouter(cfg, logging.Nop())
	return printResult(router.RunSource(ctx, string(source), lang))
}

func printResult(res execution.Result) error {
	fmt.Println(res.Text)
	if !res.Succeeded {
		return errRunFailed
	}
	return nil
}
