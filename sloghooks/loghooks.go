// Package sloghooks reports rangecache events through log/slog.
package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/rangecache"
)

type Options struct {
	// Sampling for the frequent events; 0/1 = log all.
	GapEvery       uint64
	ReconcileEvery uint64
	SelfHealEvery  uint64
	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	gapCtr       atomic.Uint64
	reconcileCtr atomic.Uint64
	selfHealCtr  atomic.Uint64
}

var _ rangecache.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) GapOccupied(storageKey string, segments int) {
	if h.l == nil || !sample(h.opts.GapEvery, &h.gapCtr) {
		return
	}
	h.l.Debug("rangecache.gap_occupied",
		"key", h.redact(storageKey),
		"segments", segments)
}

func (h *Hooks) Reconciled(storageKey string, extra int) {
	if h.l == nil || !sample(h.opts.ReconcileEvery, &h.reconcileCtr) {
		return
	}
	h.l.Debug("rangecache.reconciled",
		"key", h.redact(storageKey),
		"extra", extra)
}

func (h *Hooks) SnapshotSelfHeal(storageKey, reason string) {
	if h.l == nil || !sample(h.opts.SelfHealEvery, &h.selfHealCtr) {
		return
	}
	h.l.Info("rangecache.snapshot_self_heal",
		"key", h.redact(storageKey),
		"reason", reason)
}

func (h *Hooks) ProviderSetRejected(storageKey string) {
	if h.l == nil {
		return
	}
	h.l.Warn("rangecache.provider_set_rejected", "key", h.redact(storageKey))
}

func (h *Hooks) GenSnapshotError(storageKey string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("rangecache.gen_snapshot_error",
		"key", h.redact(storageKey),
		"err", err)
}

func (h *Hooks) GenBumpError(storageKey string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("rangecache.gen_bump_error",
		"key", h.redact(storageKey),
		"err", err)
}

func (h *Hooks) InvalidateOutage(storageKey string, bumpErr, delErr error) {
	if h.l == nil {
		return
	}
	h.l.Error("rangecache.invalidate_outage",
		"key", h.redact(storageKey),
		"bump_err", bumpErr,
		"del_err", delErr)
}
