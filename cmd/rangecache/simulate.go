package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/unkn0wn-root/rangecache"
	"github.com/unkn0wn-root/rangecache/diffset"
	"github.com/unkn0wn-root/rangecache/internal/config"
	"github.com/unkn0wn-root/rangecache/internal/util"
	"github.com/unkn0wn-root/rangecache/interval"
)

var ErrUnknownOp = errors.New("unknown op")

// scenario is the simulate file format.
type scenario struct {
	Serie string `yaml:"serie"`
	Steps []step `yaml:"steps"`
}

// step is one cache call. Complete without segments answers every span the
// previous requests on the level returned as missing.
type step struct {
	Op       string                    `yaml:"op" json:"op"`
	Level    string                    `yaml:"level" json:"level,omitempty"`
	Levels   []string                  `yaml:"levels" json:"levels,omitempty"`
	From     float64                   `yaml:"from" json:"from"`
	To       float64                   `yaml:"to" json:"to"`
	Segments []rangecache.Segment[any] `yaml:"segments" json:"-"`
}

type stepResult struct {
	Op     string `json:"op" yaml:"op"`
	Level  string `json:"level" yaml:"level"`
	Detail string `json:"detail" yaml:"detail"`
}

type levelReport struct {
	Level    string              `json:"level" yaml:"level"`
	Coverage rangecache.Coverage `json:"coverage" yaml:"coverage"`
	Segments int                 `json:"segments" yaml:"segments"`
	Snapshot uint64              `json:"snapshotBytes" yaml:"snapshot_bytes"`
}

type simulateOutput struct {
	Steps  []stepResult  `json:"steps" yaml:"steps"`
	Levels []levelReport `json:"levels" yaml:"levels"`
}

func simulateCmd(flags *rootFlags) *cobra.Command {
	var file, format string

	cmd := &cobra.Command{
		Use:   "simulate -f scenario.yaml",
		Short: "Run a request/complete scenario against a configured cache",
		Long: `Simulate builds a cache from the configuration (provider, codec, generation
store, hooks) and replays the steps of a scenario against it.

Ops: request, complete, segments, demote, load, invalidate, sync, warm, projection.

Example:
  serie: cpu
  steps:
    - {op: request, level: 1m, from: 0, to: 100}
    - {op: complete, level: 1m}
    - {op: demote, level: 1m}
    - {op: projection, levels: [1m, 1h], from: 0, to: 200} # finest first`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			cfg, err := config.Load(flags.configPath)
			if err != nil {
				return err
			}
			if flags.logLevel != "" {
				cfg.Log.Level = flags.logLevel
				if err := cfg.Validate(); err != nil {
					return err
				}
			}
			var sc scenario
			if err := readYAML(file, cmd.InOrStdin(), &sc); err != nil {
				return err
			}
			return runSimulate(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg, sc, format)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "-", "scenario file (- for stdin)")
	cmd.Flags().StringVarP(&format, "output", "o", formatTable, "output format (table, json, yaml)")

	return cmd
}

func runSimulate(ctx context.Context, w, stderr io.Writer, cfg *config.Config, sc scenario, format string) error {
	if sc.Serie == "" {
		return errors.New("scenario: serie is required")
	}
	st, err := buildStack(cfg, stderr)
	if err != nil {
		return err
	}

	sim := &simulation{cache: st.cache, serie: sc.Serie, pending: map[string][]interval.Span{}}
	var (
		out    simulateOutput
		runErr error
	)
	for i, s := range sc.Steps {
		res, err := sim.run(ctx, s)
		if err != nil {
			runErr = fmt.Errorf("step %d (%s): %w", i+1, s.Op, err)
			break
		}
		out.Steps = append(out.Steps, res)
	}
	for _, lvl := range sim.levels {
		out.Levels = append(out.Levels, sim.report(ctx, st, cfg.Namespace, lvl))
	}
	if err := st.Close(ctx); err != nil && runErr == nil {
		runErr = err
	}
	if runErr != nil {
		return runErr
	}

	if format != formatTable {
		return writeData(w, format, out)
	}
	return renderSimulation(w, out, st)
}

type simulation struct {
	cache   rangecache.Cache[any]
	serie   string
	pending map[string][]interval.Span
	levels  []string
}

func (s *simulation) touch(levels ...string) {
	for _, l := range levels {
		if l != "" && !slices.Contains(s.levels, l) {
			s.levels = append(s.levels, l)
		}
	}
}

func (s *simulation) run(ctx context.Context, st step) (stepResult, error) {
	s.touch(st.Level)
	s.touch(st.Levels...)
	res := stepResult{Op: st.Op, Level: st.Level}

	switch st.Op {
	case "request":
		missing, err := s.cache.Request(ctx, rangecache.NewRequest(s.serie, st.Level, st.From, st.To))
		if err != nil {
			return res, err
		}
		s.pending[st.Level] = diffset.Add(s.pending[st.Level], missing).Spans()
		res.Detail = "missing " + formatSpans(missing)

	case "complete":
		extra, err := s.complete(ctx, st)
		if err != nil {
			return res, err
		}
		res.Detail = "extra " + formatSpans(extra)

	case "segments":
		segs := s.cache.Segments(s.serie, st.Level, st.From, st.To)
		res.Detail = fmt.Sprintf("%d segments %s", len(segs), formatSpans(segs))

	case "demote":
		if err := s.cache.Demote(ctx, s.serie, st.Level); err != nil {
			return res, err
		}
		res.Detail = "base " + formatSpans(s.cache.Coverage(s.serie, st.Level).Base)

	case "load":
		ok, err := s.cache.Load(ctx, s.serie, st.Level)
		if err != nil {
			return res, err
		}
		delete(s.pending, st.Level)
		res.Detail = fmt.Sprintf("loaded=%t", ok)

	case "invalidate":
		if err := s.cache.Invalidate(ctx, s.serie, st.Level); err != nil {
			return res, err
		}
		delete(s.pending, st.Level)
		res.Detail = "invalidated"

	case "sync":
		dropped, err := s.cache.Sync(ctx, s.serie, st.Levels...)
		if err != nil {
			return res, err
		}
		res.Detail = "dropped " + list(dropped)

	case "warm":
		loaded, err := s.cache.Warm(ctx, s.serie, st.Levels...)
		if err != nil {
			return res, err
		}
		res.Detail = "loaded " + list(loaded)

	case "projection":
		spans, err := s.cache.Projection(s.serie, st.Levels, st.From, st.To)
		if err != nil {
			return res, err
		}
		parts := make([]string, len(spans))
		for i, p := range spans {
			parts[i] = p.Level + formatSpans([]rangecache.LevelSpan{p})
		}
		res.Detail = list(parts)

	default:
		return res, fmt.Errorf("%w: %q", ErrUnknownOp, st.Op)
	}
	return res, nil
}

// complete answers st.Segments, or every pending span of the level with a
// synthetic segment.
func (s *simulation) complete(ctx context.Context, st step) ([]interval.Span, error) {
	if len(st.Segments) > 0 {
		req := rangecache.NewRequest(s.serie, st.Level, st.From, st.To)
		out, err := s.cache.Complete(ctx, req, st.Segments)
		if err != nil {
			return nil, err
		}
		answered := diffset.Add([]interval.Span{req.Span()}, st.Segments).Spans()
		s.pending[st.Level] = diffset.Subtract(s.pending[st.Level], answered).Spans()
		return out.Extra.Spans(), nil
	}

	var extra []interval.Span
	for _, sp := range s.pending[st.Level] {
		seg := rangecache.Segment[any]{
			Start: sp.Start,
			End:   sp.End,
			Data:  fmt.Sprintf("%s/%s %s", s.serie, st.Level, formatSpans([]interval.Span{sp})),
		}
		out, err := s.cache.Complete(ctx, rangecache.NewRequest(s.serie, st.Level, sp.Start, sp.End), []rangecache.Segment[any]{seg})
		if err != nil {
			return nil, err
		}
		extra = append(extra, out.Extra.Spans()...)
	}
	delete(s.pending, st.Level)
	return extra, nil
}

func (s *simulation) report(ctx context.Context, st *stack, ns, lvl string) levelReport {
	r := levelReport{
		Level:    lvl,
		Coverage: s.cache.Coverage(s.serie, lvl),
		Segments: len(s.cache.Segments(s.serie, lvl, math.Inf(-1), math.Inf(1))),
	}
	if raw, ok, err := st.provider.Get(ctx, util.LevelKey(ns, s.serie, lvl)); err == nil && ok {
		r.Snapshot = uint64(len(raw))
	}
	return r
}

func list(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, " ")
}

func renderSimulation(w io.Writer, out simulateOutput, st *stack) error {
	steps := newTable("steps", table.Row{"#", "op", "level", "detail"})
	for i, s := range out.Steps {
		steps.AppendRow(table.Row{i + 1, s.Op, s.Level, s.Detail})
	}

	levels := newTable("levels", table.Row{"level", "base", "top", "fetch", "known", "segments", "snapshot"})
	for _, l := range out.Levels {
		size := "-"
		if l.Snapshot > 0 {
			size = humanize.Bytes(l.Snapshot)
		}
		levels.AppendRow(table.Row{
			l.Level,
			formatSpans(l.Coverage.Base),
			formatSpans(l.Coverage.Top),
			formatSpans(l.Coverage.Fetch),
			formatSpans(l.Coverage.Known),
			l.Segments,
			size,
		})
	}

	if _, err := fmt.Fprintf(w, "%s\n%s\n", steps.Render(), levels.Render()); err != nil {
		return err
	}
	if st.registry == nil {
		return nil
	}
	return renderMetrics(w, st)
}

// renderMetrics lists the non-zero hook counters.
func renderMetrics(w io.Writer, st *stack) error {
	families, err := st.registry.Gather()
	if err != nil {
		return err
	}
	tbl := newTable("hooks", table.Row{"metric", "labels", "value"})
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			v := m.GetCounter().GetValue()
			if v == 0 {
				continue
			}
			var labels []string
			for _, lp := range m.GetLabel() {
				labels = append(labels, lp.GetName()+"="+lp.GetValue())
			}
			tbl.AppendRow(table.Row{mf.GetName(), list(labels), humanize.Comma(int64(v))})
		}
	}
	_, err = fmt.Fprintln(w, tbl.Render())
	return err
}
