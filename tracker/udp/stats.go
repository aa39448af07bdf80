package udp

import "sync/atomic"

// Stats holds the rolling counters the admin dashboard (tracker/admin)
// reads. All fields are updated with atomic operations so Server's
// worker goroutines never contend on a lock for bookkeeping.
type Stats struct {
	connectsIssued   atomic.Uint64
	verifiesOK       atomic.Uint64
	verifiesRejected atomic.Uint64
}

func (s *Stats) recordIssue() {
	s.connectsIssued.Add(1)
}

func (s *Stats) recordVerify(ok bool) {
	if ok {
		s.verifiesOK.Add(1)
	} else {
		s.verifiesRejected.Add(1)
	}
}

// Snapshot is a point-in-time copy of the counters, safe to read freely.
type Snapshot struct {
	ConnectsIssued   uint64
	VerifiesOK       uint64
	VerifiesRejected uint64
}

func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		ConnectsIssued:   s.connectsIssued.Load(),
		VerifiesOK:       s.verifiesOK.Load(),
		VerifiesRejected: s.verifiesRejected.Load(),
	}
}
