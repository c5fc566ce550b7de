package main

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/unkn0wn-root/rangecache/diffset"
	"github.com/unkn0wn-root/rangecache/interval"
	"github.com/unkn0wn-root/rangecache/layered"
)

type reconcileOutput struct {
	Next  layered.Layers  `json:"next" yaml:"next"`
	Extra []interval.Span `json:"extra" yaml:"extra"`
}

func reconcileCmd() *cobra.Command {
	var file, format string

	cmd := &cobra.Command{
		Use:   "reconcile -f layers.yaml",
		Short: "Apply a completed fetch to base/top/fetch layers",
		Long: `Reconcile reads base, top, fetch and result span lists and prints the
layers after the result is applied:

  extra = result - fetch
  top   = top + extra
  base  = base - result
  fetch = fetch - result

Example input:
  base:   [{start: 0, end: 10}]
  top:    [{start: 20, end: 40}]
  fetch:  [{start: 40, end: 60}]
  result: [{start: 40, end: 70}]`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			var in layered.Layers
			if err := readYAML(file, cmd.InOrStdin(), &in); err != nil {
				return err
			}
			return runReconcile(cmd.OutOrStdout(), in, format)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "-", "layers file (- for stdin)")
	cmd.Flags().StringVarP(&format, "output", "o", formatTable, "output format (table, json, yaml)")

	return cmd
}

func runReconcile(w io.Writer, in layered.Layers, format string) error {
	next, out := in.Apply()
	if format != formatTable {
		return writeData(w, format, reconcileOutput{Next: next, Extra: out.Extra.Spans()})
	}

	tbl := newTable("reconcile", table.Row{"layer", "before", "after", "added", "resized", "removed"})
	tbl.AppendRow(reportRow("base", in.Base, next.Base, out.Base))
	tbl.AppendRow(reportRow("top", in.Top, next.Top, out.Top))
	tbl.AppendRow(table.Row{"fetch", formatSpans(in.Fetch), formatSpans(next.Fetch), "", "", ""})
	tbl.AppendFooter(table.Row{"extra", formatSpans(in.Result), formatSpans(out.Extra.Result), "", "", ""})
	_, err := fmt.Fprintln(w, tbl.Render())
	return err
}

func reportRow(name string, before, after []interval.Span, r diffset.Report[interval.Span]) table.Row {
	return table.Row{
		name,
		formatSpans(before),
		formatSpans(after),
		formatSpans(r.Added),
		formatSpans(r.Resized),
		formatSpans(r.Removed),
	}
}
