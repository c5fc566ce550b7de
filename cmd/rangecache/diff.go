package main

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/unkn0wn-root/rangecache/diffset"
	"github.com/unkn0wn-root/rangecache/interval"
)

// diffInput is the file format of the diff subcommands.
type diffInput struct {
	Left  []interval.Span `json:"left" yaml:"left"`
	Right []interval.Span `json:"right" yaml:"right"`
}

type diffOutput struct {
	Result  []interval.Span `json:"result" yaml:"result"`
	Added   []interval.Span `json:"added" yaml:"added"`
	Resized []interval.Span `json:"resized" yaml:"resized"`
	Removed []interval.Span `json:"removed" yaml:"removed"`
}

func diffCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Add or subtract interval sets",
		Long: `Diff combines two ordered, non-overlapping span lists read from a YAML file
with "left" and "right" keys, and reports how "left" changed.`,
	}
	cmd.AddCommand(diffOpCmd("add", "Union of left and right", diffset.Add[interval.Span, interval.Span]))
	cmd.AddCommand(diffOpCmd("subtract", "Left with right cut out", diffset.Subtract[interval.Span, interval.Span]))
	return cmd
}

type diffFunc func(left, right []interval.Span) diffset.Report[interval.Span]

func diffOpCmd(name, short string, op diffFunc) *cobra.Command {
	var file, format string

	cmd := &cobra.Command{
		Use:   name + " -f sets.yaml",
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			var in diffInput
			if err := readYAML(file, cmd.InOrStdin(), &in); err != nil {
				return err
			}
			return runDiff(cmd.OutOrStdout(), name, op(in.Left, in.Right), format)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "-", "sets file (- for stdin)")
	cmd.Flags().StringVarP(&format, "output", "o", formatTable, "output format (table, json, yaml)")

	return cmd
}

func runDiff(w io.Writer, name string, r diffset.Report[interval.Span], format string) error {
	if format != formatTable {
		return writeData(w, format, diffOutput{
			Result:  r.Spans(),
			Added:   interval.Spans(r.Added),
			Resized: interval.Spans(r.Resized),
			Removed: r.Removed,
		})
	}

	tbl := newTable(name, table.Row{"list", "spans"})
	tbl.AppendRow(table.Row{"result", formatSpans(r.Result)})
	tbl.AppendRow(table.Row{"added", formatSpans(r.Added)})
	tbl.AppendRow(table.Row{"resized", formatSpans(r.Resized)})
	tbl.AppendRow(table.Row{"removed", formatSpans(r.Removed)})
	_, err := fmt.Fprintln(w, tbl.Render())
	return err
}
