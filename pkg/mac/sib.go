package mac

import "sort"

// mibPeriodSlots is the fixed system periodicity of the primary broadcast
// information (one MIB occasion every 80 slots).
const mibPeriodSlots = 80

// sibPeriodUnit converts a configured SIB periodicity, expressed in
// 10-slot groups, into slots.
const sibPeriodUnit = 10

// SIBConfig describes one system information block to schedule.
type SIBConfig struct {
	Index       int `mapstructure:"index"`
	Periodicity int `mapstructure:"periodicity"`
}

// sibEntry is a configured SIB with its cached payload. Payloads are read
// from RRC once during cell configuration and are immutable afterwards; an
// empty payload means the SIB is not yet provisioned and is skipped.
type sibEntry struct {
	index       int
	periodicity int
	payload     []byte
}

// sibScheduler tracks the periodic broadcast payloads of one cell. It is
// populated before the MAC starts and read-only afterwards, so slot-time
// lookups need no locking.
type sibScheduler struct {
	entries []sibEntry
}

func (s *sibScheduler) add(e sibEntry) {
	s.entries = append(s.entries, e)
	sort.Slice(s.entries, func(i, j int) bool {
		return s.entries[i].index < s.entries[j].index
	})
}

// mibDue reports whether the primary broadcast information must be
// transmitted in the given slot.
func mibDue(slot uint32) bool {
	return slot%mibPeriodSlots == 0
}

// due calls fn for each SIB, in ascending index order, whose transmission
// occasion falls on the given slot. Entries without a cached payload are
// skipped silently.
func (s *sibScheduler) due(slot uint32, fn func(e *sibEntry)) {
	for i := range s.entries {
		e := &s.entries[i]
		if len(e.payload) == 0 {
			continue
		}
		if slot%uint32(e.periodicity*sibPeriodUnit) == 0 {
			fn(e)
		}
	}
}
