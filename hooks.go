package rangecache

// Hooks are lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking.
// The cache calls them while holding a level lock.
type Hooks interface {
	// Complete found existing segments inside the gap of the incoming ones
	// and fell back to a merge. segments is the incoming count.
	GapOccupied(storageKey string, segments int)

	// A fetch completed. extra counts the result spans nobody asked for.
	Reconciled(storageKey string, extra int)

	// A persisted snapshot was deleted on Load.
	// reason ∈ {"corrupt", "gen_mismatch", "value_decode"}
	SnapshotSelfHeal(storageKey, reason string)

	// Provider returned ok=false on Set (backpressure/eviction).
	ProviderSetRejected(storageKey string)

	// GenStore errors (snapshot or bump).
	GenSnapshotError(storageKey string, err error)
	GenBumpError(storageKey string, err error)

	// Both gen bump and delete failed during Invalidate (likely backend outage).
	InvalidateOutage(storageKey string, bumpErr, delErr error)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) GapOccupied(string, int)               {}
func (NopHooks) Reconciled(string, int)                {}
func (NopHooks) SnapshotSelfHeal(string, string)       {}
func (NopHooks) ProviderSetRejected(string)            {}
func (NopHooks) GenSnapshotError(string, error)        {}
func (NopHooks) GenBumpError(string, error)            {}
func (NopHooks) InvalidateOutage(string, error, error) {}

// MultiHooks fans every event out to hs in order. Nil entries are skipped.
func MultiHooks(hs ...Hooks) Hooks {
	var out multiHooks
	for _, h := range hs {
		if h != nil {
			out = append(out, h)
		}
	}
	switch len(out) {
	case 0:
		return NopHooks{}
	case 1:
		return out[0]
	}
	return out
}

type multiHooks []Hooks

func (m multiHooks) GapOccupied(k string, n int) {
	for _, h := range m {
		h.GapOccupied(k, n)
	}
}

func (m multiHooks) Reconciled(k string, n int) {
	for _, h := range m {
		h.Reconciled(k, n)
	}
}

func (m multiHooks) SnapshotSelfHeal(k, reason string) {
	for _, h := range m {
		h.SnapshotSelfHeal(k, reason)
	}
}

func (m multiHooks) ProviderSetRejected(k string) {
	for _, h := range m {
		h.ProviderSetRejected(k)
	}
}

func (m multiHooks) GenSnapshotError(k string, err error) {
	for _, h := range m {
		h.GenSnapshotError(k, err)
	}
}

func (m multiHooks) GenBumpError(k string, err error) {
	for _, h := range m {
		h.GenBumpError(k, err)
	}
}

func (m multiHooks) InvalidateOutage(k string, bumpErr, delErr error) {
	for _, h := range m {
		h.InvalidateOutage(k, bumpErr, delErr)
	}
}
