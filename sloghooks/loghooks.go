// Package sloghooks logs tagcache hook events through log/slog, with
// sampling for the chatty ones and key redaction so raw cache keys (which
// may embed user identifiers) never reach log storage.
package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/tagcache"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	SelfHealEvery     uint64
	ReadDegradedEvery uint64
	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	selfHealCtr atomic.Uint64
	degradedCtr atomic.Uint64
}

var _ tagcache.Hooks = (*Hooks)(nil)

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

func (h *Hooks) SelfHeal(storageKey, reason string) {
	if h.l == nil || !sample(h.opts.SelfHealEvery, &h.selfHealCtr) {
		return
	}
	h.l.Debug("tagcache.self_heal",
		"key", h.redact(storageKey),
		"reason", reason)
}

func (h *Hooks) ReadDegraded(storageKey string, err error) {
	if h.l == nil || !sample(h.opts.ReadDegradedEvery, &h.degradedCtr) {
		return
	}
	h.l.Warn("tagcache.read_degraded",
		"key", h.redact(storageKey),
		"err", err)
}

func (h *Hooks) StoreFailed(storageKey string, err error) {
	if h.l == nil {
		return
	}
	h.l.Error("tagcache.store_failed",
		"key", h.redact(storageKey),
		"err", err)
}

func (h *Hooks) TagSweep(tag string, members int) {
	if h.l == nil {
		return
	}
	h.l.Info("tagcache.tag_sweep",
		"tag", tag,
		"members", members)
}

func (h *Hooks) FlightFallback(key string) {
	if h.l == nil {
		return
	}
	h.l.Warn("tagcache.flight_fallback",
		"key", h.redact(key))
}
