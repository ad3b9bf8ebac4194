package tagcache

// Hooks lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking.
// The cache calls them on hot paths.
type Hooks interface {
	// An entry was deleted by the cache on read.
	// reason ∈ {"corrupt", "value_decode"}
	SelfHeal(storageKey, reason string)

	// A backend Get failed and the read degraded to a miss (recompute).
	ReadDegraded(storageKey string, err error)

	// A computed value could not be stored or tag-registered; the caller
	// got the value together with a *StoreError.
	StoreFailed(storageKey string, err error)

	// A tag sweep ran; members is the size of the membership set at sweep
	// time (0 for a no-op sweep).
	TagSweep(tag string, members int)

	// The distributed flight gave up waiting for another process's write
	// and computed locally (lock wait timeout or lock acquire error).
	FlightFallback(key string)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) SelfHeal(string, string)    {}
func (NopHooks) ReadDegraded(string, error) {}
func (NopHooks) StoreFailed(string, error)  {}
func (NopHooks) TagSweep(string, int)       {}
func (NopHooks) FlightFallback(string)      {}
