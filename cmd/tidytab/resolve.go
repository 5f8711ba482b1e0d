package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"tidytab/domain/cleaning"
	"tidytab/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newResolveCmd() *cobra.Command {
	var output string
	var format string

	cmd := &cobra.Command{
		Use:   "resolve <file>",
		Short: "Pick duplicate columns to remove interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			content, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			svc := newLocalCleaning()
			uploaded, err := svc.Upload(ctx, localSessionID, filepath.Base(args[0]), content)
			if err != nil {
				return err
			}

			apply := func(decision cleaning.Decision) (string, error) {
				resolved, err := svc.Resolve(ctx, localSessionID, decision)
				if err != nil {
					return "", err
				}
				path, err := writeExport(ctx, svc, output, format)
				if err != nil {
					return "", err
				}
				removed := "none"
				if len(resolved.Removed) > 0 {
					removed = strings.Join(resolved.Removed, ", ")
				}
				return fmt.Sprintf("Removed: %s\nWrote %s (%d rows, %d columns)",
					removed, path, resolved.Preview.RowCount, resolved.Preview.ColumnCount), nil
			}

			model := tui.NewModel(uploaded.Filename, uploaded.Preview, uploaded.Duplicates, apply)
			final, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
			if err != nil {
				return err
			}
			if m, ok := final.(tui.Model); ok && m.Err() != nil {
				return m.Err()
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default cleaned_data.<format>)")
	cmd.Flags().StringVar(&format, "format", "", "Output format: csv or xlsx")

	return cmd
}
