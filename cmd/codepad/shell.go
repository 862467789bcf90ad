package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/michaelbrown/codepad/internal/storage"
	"github.com/michaelbrown/codepad/internal/workspace"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Edit and run workspace files interactively",
	Long: `Start an interactive shell over the workspace.

Type "help" for commands. Ctrl+C cancels a running file; Ctrl+D exits.`,
	RunE: runShell,
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

func runShell(cmd *cobra.Command, args []string) error {
	a, err := openApp(context.Background())
	if err != nil {
		return err
	}
	defer a.Close()

	// Set up readline for input with history
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[36mcodepad>\033[0m ",
		HistoryFile:     "/tmp/codepad_history",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("readline: %w", err)
	}
	defer rl.Close()

	sh := &shell{ws: a.ws, out: rl.Stdout()}

	// Ctrl+C cancels the active run, not the shell.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		for range sigCh {
			sh.cancelRun()
		}
	}()

	for {
		name, _ := a.ws.CurrentFile()
		rl.SetPrompt(fmt.Sprintf("\033[36mcodepad(%s)>\033[0m ", name))

		input, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt || err == io.EOF {
				fmt.Println("Goodbye!")
				return nil
			}
			return err
		}

		readMore := func() (string, error) {
			rl.SetPrompt("... ")
			return rl.Readline()
		}
		if sh.exec(context.Background(), input, readMore) {
			return nil
		}
	}
}

// shell interprets one command line at a time against a workspace.
type shell struct {
	ws  *workspace.Workspace
	out io.Writer

	mu     sync.Mutex
	cancel context.CancelFunc
}

func (sh *shell) cancelRun() {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if sh.cancel != nil {
		sh.cancel()
	}
}

func (sh *shell) printf(format string, args ...any) {
	fmt.Fprintf(sh.out, format, args...)
}

// exec runs a command. readMore supplies extra lines for "edit". It reports
// whether the shell should exit.
func (sh *shell) exec(ctx context.Context, input string, readMore func() (string, error)) bool {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return false
	}
	arg := ""
	if len(fields) > 1 {
		arg = strings.Join(fields[1:], " ")
	}

	switch strings.ToLower(fields[0]) {
	case "quit", "exit", "q":
		sh.printf("Goodbye!\n")
		return true
	case "help", "?":
		sh.printf("Commands:\n")
		sh.printf("  ls             - List files (* marks the current one)\n")
		sh.printf("  open <name>    - Make a file current\n")
		sh.printf("  new <name>     - Create a file from its language template\n")
		sh.printf("  rm <name>      - Delete a file\n")
		sh.printf("  cat [name]     - Print a file (default: current)\n")
		sh.printf("  edit           - Replace the current file; end input with a line containing only '.'\n")
		sh.printf("  run            - Run the current file\n")
		sh.printf("  output         - Show the last result\n")
		sh.printf("  export [fmt]   - Print the workspace as md, json or yaml\n")
		sh.printf("  quit           - Exit\n")
	case "ls":
		snap := sh.ws.Snapshot()
		for _, name := range snap.Names {
			marker := " "
			if name == snap.Current {
				marker = "*"
			}
			sh.printf("%s %-30s %s\n", marker, name, snap.Files[name].Language)
		}
	case "open":
		if !sh.ws.Select(arg) {
			sh.printf("no such file: %s\n", arg)
		}
	case "new":
		if !sh.ws.Create(arg) {
			sh.printf("cannot create %q\n", arg)
		}
	case "rm":
		if _, ok := sh.ws.File(arg); !ok {
			sh.printf("no such file: %s\n", arg)
		} else if !sh.ws.Delete(arg) {
			sh.printf("cannot delete the last file\n")
		}
	case "cat":
		name := arg
		if name == "" {
			name, _ = sh.ws.CurrentFile()
		}
		rec, ok := sh.ws.File(name)
		if !ok {
			sh.printf("no such file: %s\n", name)
			break
		}
		for _, line := range strings.Split(rec.Content, "\n") {
			sh.printf("\033[90m│\033[0m %s\n", line)
		}
	case "edit":
		var lines []string
		for {
			line, err := readMore()
			if err != nil {
				sh.printf("edit aborted\n")
				return false
			}
			if line == "." {
				break
			}
			lines = append(lines, line)
		}
		name, _ := sh.ws.CurrentFile()
		sh.ws.UpdateContent(name, strings.Join(lines, "\n"))
	case "run":
		runCtx, cancel := context.WithCancel(ctx)
		sh.mu.Lock()
		sh.cancel = cancel
		sh.mu.Unlock()

		res := sh.ws.Run(runCtx)

		sh.mu.Lock()
		sh.cancel = nil
		sh.mu.Unlock()
		cancel()
		sh.printResult(res.Text, res.Succeeded)
	case "output":
		res, running := sh.ws.Output()
		if running {
			sh.printf("(running)\n")
		}
		sh.printResult(res.Text, res.Succeeded)
	case "export":
		snap := sh.ws.Snapshot()
		switch arg {
		case "json":
			data, _ := storage.ExportJSON(snap)
			sh.printf("%s\n", data)
		case "yaml":
			data, _ := storage.ExportYAML(snap)
			sh.printf("%s", data)
		default:
			sh.printf("%s", storage.ExportMarkdown(snap))
		}
	default:
		sh.printf("Unknown command: %s (try help)\n", fields[0])
	}
	return false
}

func (sh *shell) printResult(text string, succeeded bool) {
	if succeeded {
		sh.printf("\033[32m%s\033[0m\n", text)
		return
	}
	sh.printf("\033[31m%s\033[0m\n", text)
}
