package tagcache

import "sync/atomic"

// Stats is a point-in-time snapshot of engine counters. Counters only grow;
// diff two snapshots for rates.
type Stats struct {
	Hits          uint64 // lookups served from the backend
	Misses        uint64 // lookups that fell through to compute
	Computes      uint64 // compute callbacks actually run
	SharedHits    uint64 // callers served by another caller's in-flight compute
	Invalidations uint64 // tag sweeps and direct key invalidations
	Errors        uint64 // backend/store errors observed (reads degraded, writes failed)
}

type statCounters struct {
	hits          atomic.Uint64
	misses        atomic.Uint64
	computes      atomic.Uint64
	sharedHits    atomic.Uint64
	invalidations atomic.Uint64
	errors        atomic.Uint64
}

func (s *statCounters) snapshot() Stats {
	return Stats{
		Hits:          s.hits.Load(),
		Misses:        s.misses.Load(),
		Computes:      s.computes.Load(),
		SharedHits:    s.sharedHits.Load(),
		Invalidations: s.invalidations.Load(),
		Errors:        s.errors.Load(),
	}
}
