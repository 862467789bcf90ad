package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var limitFlag int

var executionsCmd = &cobra.Command{
	Use:     "executions",
	Aliases: []string{"history"},
	Short:   "List recent runs logged by the execution service",
	RunE:    runExecutions,
}

func init() {
	executionsCmd.Flags().IntVar(&limitFlag, "limit", 10, "Max executions to show")
	rootCmd.AddCommand(executionsCmd)
}

func runExecutions(cmd *cobra.Command, args []string) error {
	a, err := openApp(context.Background())
	if err != nil {
		return err
	}
	defer a.Close()

	list, err := a.store.ListExecutions(context.Background(), limitFlag)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Println("No executions found.")
		return nil
	}

	// Header
	fmt.Printf("%-10s %-12s %-8s %-40s %s\n", "ID", "LANGUAGE", "TIME", "CODE", "WHEN")
	fmt.Println(strings.Repeat("─", 90))

	for _, e := range list {
		status := truncate(e.Code, 38)
		if e.Error != "" {
			status = "! " + truncate(e.Error, 36)
		}
		fmt.Printf("%-10s %-12s %-8s %-40s %s\n",
			e.ID[:8], e.Language, fmt.Sprintf("%.2fs", e.ExecutionTime), status, timeAgo(e.Timestamp))
	}
	return nil
}

func truncate(s string, maxLen int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	return s
}

func timeAgo(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
