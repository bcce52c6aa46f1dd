package filters

import "sync/atomic"

// Sequence hands out monotonically increasing tickets for outbound fetches. Only the
// response to the most recently issued ticket may be applied to visible state; anything
// older finished late and is discarded.
type Sequence struct {
	last atomic.Uint64
}

// Next issues a new ticket.
func (s *Sequence) Next() uint64 {
	return s.last.Add(1)
}

// IsLatest reports whether ticket is the most recent one issued.
func (s *Sequence) IsLatest(ticket uint64) bool {
	return s.last.Load() == ticket
}
