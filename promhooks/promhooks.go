// Package promhooks counts rangecache events with Prometheus collectors.
package promhooks

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/unkn0wn-root/rangecache"
)

const subsystem = "rangecache"

type Hooks struct {
	gapOccupied      prometheus.Counter
	reconciled       prometheus.Counter
	extraSpans       prometheus.Counter
	selfHeal         *prometheus.CounterVec
	setRejected      prometheus.Counter
	genSnapshotError prometheus.Counter
	genBumpError     prometheus.Counter
	outage           prometheus.Counter
}

var _ rangecache.Hooks = (*Hooks)(nil)

// New registers the collectors on reg under namespace.
func New(reg prometheus.Registerer, namespace string) (*Hooks, error) {
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      name,
			Help:      help,
		})
	}
	h := &Hooks{
		gapOccupied:      counter("gap_occupied_total", "Completions that fell back to a merge."),
		reconciled:       counter("reconciled_total", "Completed fetches."),
		extraSpans:       counter("extra_spans_total", "Fetched spans nobody requested."),
		setRejected:      counter("provider_set_rejected_total", "Snapshot writes refused by the provider."),
		genSnapshotError: counter("gen_snapshot_errors_total", "Generation snapshot failures."),
		genBumpError:     counter("gen_bump_errors_total", "Generation bump failures."),
		outage:           counter("invalidate_outage_total", "Invalidations where both bump and delete failed."),
	}
	h.selfHeal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "snapshot_self_heal_total",
		Help:      "Persisted snapshots deleted on load, by reason.",
	}, []string{"reason"})
	for _, c := range []prometheus.Collector{
		h.gapOccupied, h.reconciled, h.extraSpans, h.selfHeal,
		h.setRejected, h.genSnapshotError, h.genBumpError, h.outage,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return h, nil
}

func (h *Hooks) GapOccupied(string, int) { h.gapOccupied.Inc() }

func (h *Hooks) Reconciled(_ string, extra int) {
	h.reconciled.Inc()
	h.extraSpans.Add(float64(extra))
}

func (h *Hooks) SnapshotSelfHeal(_, reason string)     { h.selfHeal.WithLabelValues(reason).Inc() }
func (h *Hooks) ProviderSetRejected(string)            { h.setRejected.Inc() }
func (h *Hooks) GenSnapshotError(string, error)        { h.genSnapshotError.Inc() }
func (h *Hooks) GenBumpError(string, error)            { h.genBumpError.Inc() }
func (h *Hooks) InvalidateOutage(string, error, error) { h.outage.Inc() }
