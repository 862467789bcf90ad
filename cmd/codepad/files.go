package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/michaelbrown/codepad/internal/storage"
)

var (
	exportFormat string
	exportOutput string
)

var filesCmd = &cobra.Command{
	Use:     "files",
	Aliases: []string{"file", "f"},
	Short:   "Manage workspace files",
}

var filesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List workspace files",
	RunE:  runFilesList,
}

var filesNewCmd = &cobra.Command{
	Use:   "new <name>",
	Short: "Create a file from its language template and select it",
	Args:  cobra.ExactArgs(1),
	RunE:  runFilesNew,
}

var filesRmCmd = &cobra.Command{
	Use:   "rm <name>",
	Short: "Delete a file",
	Args:  cobra.ExactArgs(1),
	RunE:  runFilesRm,
}

var filesShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Print a file's content (default: the current file)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runFilesShow,
}

var filesWriteCmd = &cobra.Command{
	Use:   "write <name> [path]",
	Short: "Replace a file's content from a path or stdin",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runFilesWrite,
}

var filesExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the workspace as markdown, JSON or YAML",
	RunE:  runFilesExport,
}

var filesImportCmd = &cobra.Command{
	Use:   "import <path>",
	Short: "Import files from a JSON or YAML export",
	Args:  cobra.ExactArgs(1),
	RunE:  runFilesImport,
}

func init() {
	rootCmd.AddCommand(filesCmd)
	filesCmd.AddCommand(filesListCmd, filesNewCmd, filesRmCmd, filesShowCmd,
		filesWriteCmd, filesExportCmd, filesImportCmd)

	filesExportCmd.Flags().StringVar(&exportFormat, "format", "md", "Export format: md, json or yaml")
	filesExportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default: stdout)")
}

func runFilesList(cmd *cobra.Command, args []string) error {
	a, err := openApp(context.Background())
	if err != nil {
		return err
	}
	defer a.Close()

	snap := a.ws.Snapshot()

	// Header
	fmt.Printf("  %-30s %-12s %s\n", "NAME", "LANGUAGE", "LINES")
	fmt.Println(strings.Repeat("─", 52))

	for _, name := range snap.Names {
		rec := snap.Files[name]
		marker := " "
		if name == snap.Current {
			marker = "*"
		}
		fmt.Printf("%s %-30s %-12s %d\n", marker, name, rec.Language, strings.Count(rec.Content, "\n")+1)
	}
	return nil
}

func runFilesNew(cmd *cobra.Command, args []string) error {
	a, err := openApp(context.Background())
	if err != nil {
		return err
	}
	defer a.Close()

	if !a.ws.Create(args[0]) {
		return fmt.Errorf("cannot create %q: blank name or file exists", args[0])
	}
	name, rec := a.ws.CurrentFile()
	fmt.Printf("Created %s (%s)\n", name, rec.Language)
	return nil
}

func runFilesRm(cmd *cobra.Command, args []string) error {
	a, err := openApp(context.Background())
	if err != nil {
		return err
	}
	defer a.Close()

	if _, ok := a.ws.File(args[0]); !ok {
		return fmt.Errorf("no such file: %s", args[0])
	}
	if !a.ws.Delete(args[0]) {
		return fmt.Errorf("cannot delete %s: it is the last file", args[0])
	}
	fmt.Printf("Deleted %s\n", args[0])
	return nil
}

func runFilesShow(cmd *cobra.Command, args []string) error {
	a, err := openApp(context.Background())
	if err != nil {
		return err
	}
	defer a.Close()

	name, _ := a.ws.CurrentFile()
	if len(args) == 1 {
		name = args[0]
	}
	rec, ok := a.ws.File(name)
	if !ok {
		return fmt.Errorf("no such file: %s", name)
	}
	fmt.Println(rec.Content)
	return nil
}

func runFilesWrite(cmd *cobra.Command, args []string) error {
	var (
		data []byte
		err  error
	)
	if len(args) == 2 && args[1] != "-" {
		data, err = os.ReadFile(args[1])
	} else {
		data, err = io.ReadAll(cmd.InOrStdin())
	}
	if err != nil {
		return err
	}

	a, err := openApp(context.Background())
	if err != nil {
		return err
	}
	defer a.Close()

	if !a.ws.UpdateContent(args[0], string(data)) {
		return fmt.Errorf("no such file: %s", args[0])
	}
	return nil
}

func runFilesExport(cmd *cobra.Command, args []string) error {
	a, err := openApp(context.Background())
	if err != nil {
		return err
	}
	defer a.Close()

	snap := a.ws.Snapshot()

	var output string
	switch exportFormat {
	case "json":
		data, err := storage.ExportJSON(snap)
		if err != nil {
			return err
		}
		output = string(data) + "\n"
	case "yaml", "yml":
		data, err := storage.ExportYAML(snap)
		if err != nil {
			return err
		}
		output = string(data)
	default:
		output = storage.ExportMarkdown(snap)
	}

	if exportOutput != "" {
		return os.WriteFile(exportOutput, []byte(output), 0o644)
	}

	fmt.Print(output)
	return nil
}

func runFilesImport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	exp, err := storage.ParseExport(data)
	if err != nil {
		return err
	}

	a, err := openApp(context.Background())
	if err != nil {
		return err
	}
	defer a.Close()

	fmt.Printf("Imported %d file(s)\n", a.ws.Import(exp))
	return nil
}
