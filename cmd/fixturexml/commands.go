package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/fixturelib/internal/core"
	"github.com/JonMunkholm/fixturelib/internal/logging"
)

// stdinName stands for standard input in place of a file path.
const stdinName = "-"

type rootOptions struct {
	columns      []string
	hyphenColumn string
	logLevel     string
	logFormat    string
}

func (o *rootOptions) schema() core.Schema {
	return core.NewSchema(o.columns, o.hyphenColumn)
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "fixturexml",
		Short:         "Convert fixture spreadsheets to fixture library XML",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupWriter(cmd.ErrOrStderr(), opts.logLevel, opts.logFormat)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringSliceVar(&opts.columns, "columns", core.DefaultColumns, "Required header columns, in template order")
	flags.StringVar(&opts.hyphenColumn, "hyphen-column", core.ColumnFixtureType, "Column whose values keep hyphens")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	flags.StringVar(&opts.logFormat, "log-format", "text", "Log format: text or json")

	cmd.AddCommand(
		newTemplateCmd(opts),
		newConvertCmd(opts),
		newPreviewCmd(opts),
	)
	return cmd
}

func newTemplateCmd(opts *rootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "template",
		Short: "Write the header-only CSV template",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeOutput(cmd, output, core.MakeTemplate(opts.schema()))
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	return cmd
}

func newConvertCmd(opts *rootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "convert <input.csv|input.xlsx|->",
		Short: "Convert a CSV or XLSX fixture table to fixture library XML",
		Long: `Convert a fixture table to a fixture library XML document.

Use "-" to read from standard input. The format is taken from the file
extension, or sniffed from the content when reading standard input.

Example: fixturexml convert fixtures.xlsx -o ` + core.ResultFileName,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Now()

			table, format, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}

			data, err := core.ConvertTable(opts.schema(), table)
			if err != nil {
				return err
			}

			slog.Info("conversion complete",
				"input", args[0],
				"format", format,
				"rows", len(table.Rows),
				"duration", time.Since(start),
			)
			return writeOutput(cmd, output, data)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	return cmd
}

func newPreviewCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview <input.csv|input.xlsx|->",
		Short: "Print a JSON summary of what a conversion would change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, format, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}

			resp, err := core.PreviewTable(opts.schema(), table)
			if err != nil {
				return err
			}
			resp.FileName = filepath.Base(args[0])
			resp.Format = format

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(resp)
		},
	}
	return cmd
}

// readInput parses the named file, or standard input for "-".
func readInput(cmd *cobra.Command, path string) (*core.Table, core.Format, error) {
	if path == stdinName {
		return core.ReadUpload("", cmd.InOrStdin())
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	return core.ReadUpload(path, f)
}

// writeOutput writes data to path, or to the command's stdout when path is empty.
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	slog.Info("wrote file", "path", path, "bytes", len(data))
	return nil
}
