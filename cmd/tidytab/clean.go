package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"tidytab/adapters/excel"
	"tidytab/app"
	"tidytab/domain/cleaning"
	"tidytab/domain/table"
	"tidytab/internal/session"

	"github.com/spf13/cobra"
)

// localSessionID keys the single session used by command-line runs
const localSessionID = "local"

func newLocalCleaning() *app.CleaningService {
	opts := app.DefaultCleaningOptions()
	opts.MaxUploadBytes = 0
	return app.NewCleaningService(excel.NewDataReader(), session.NewMemoryStore(), excel.Encoders(), opts)
}

func newCleanCmd() *cobra.Command {
	var output string
	var format string
	var remove []string
	var ignore bool

	cmd := &cobra.Command{
		Use:   "clean <file>",
		Short: "Clean a CSV or Excel file and drop duplicate columns",
		Long: `Clean a CSV or Excel file: headers become lowercase identifiers, cells are
trimmed and stripped of special characters, and columns with identical
contents are reported.

By default every duplicate after the first column of its group is removed.
Use --remove to choose the columns yourself, or --ignore to keep them all.

Example: tidytab clean survey.xlsx --remove score_copy -o survey_clean.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			decision := cleaning.RemoveColumns(remove...)
			if ignore {
				decision = cleaning.IgnoreDuplicates()
			}
			return runClean(cmd.Context(), cmd.OutOrStdout(), args[0], output, format, decision, !cmd.Flags().Changed("remove") && !ignore)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default cleaned_data.<format>)")
	cmd.Flags().StringVar(&format, "format", "", "Output format: csv or xlsx (default from --output, else csv)")
	cmd.Flags().StringSliceVar(&remove, "remove", nil, "Columns to remove, comma separated")
	cmd.Flags().BoolVar(&ignore, "ignore", false, "Keep every column")

	return cmd
}

func runClean(ctx context.Context, out io.Writer, input, output, format string, decision cleaning.Decision, removeAll bool) error {
	content, err := os.ReadFile(input)
	if err != nil {
		return err
	}

	svc := newLocalCleaning()
	uploaded, err := svc.Upload(ctx, localSessionID, filepath.Base(input), content)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s: %d rows, %d columns\n", uploaded.Filename, uploaded.Preview.RowCount, uploaded.Preview.ColumnCount)
	printDuplicates(out, uploaded.Duplicates)

	if removeAll {
		decision = cleaning.RemoveColumns(table.DuplicateColumns(uploaded.Duplicates)...)
	}
	resolved, err := svc.Resolve(ctx, localSessionID, decision)
	if err != nil {
		return err
	}
	if len(resolved.Removed) > 0 {
		fmt.Fprintf(out, "Removed: %s\n", strings.Join(resolved.Removed, ", "))
	}

	path, err := writeExport(ctx, svc, output, format)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Wrote %s\n", path)
	return nil
}

func printDuplicates(out io.Writer, groups []table.DuplicateGroup) {
	if len(groups) == 0 {
		fmt.Fprintln(out, "No duplicate columns found")
		return
	}
	fmt.Fprintf(out, "Found %d duplicate group(s):\n", len(groups))
	for i, g := range groups {
		fmt.Fprintf(out, "  %d. %s\n", i+1, strings.Join(g.Columns, ", "))
	}
}

// writeExport writes the working table. The format follows --format, then
// the output extension, then CSV.
func writeExport(ctx context.Context, svc *app.CleaningService, output, format string) (string, error) {
	if format == "" && output != "" {
		if f, ok := excel.FormatForFilename(output); ok {
			format = string(f)
		}
	}

	file, err := svc.Export(ctx, localSessionID, format)
	if err != nil {
		return "", err
	}
	if output == "" {
		output = file.Filename
	}
	if err := os.WriteFile(output, file.Data, 0644); err != nil {
		return "", err
	}
	return output, nil
}
