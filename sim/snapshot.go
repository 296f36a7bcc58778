package sim

import (
	"go.uber.org/zap"

	"github.com/rustyeddy/papertrade/journal"
)

// snapshotLocked materializes a point-in-time portfolio snapshot and
// prunes entries past the retention horizon.
func (e *Engine) snapshotLocked() {
	e.recomputeLocked()

	var unrealized, notional float64
	for _, pos := range e.positions {
		unrealized += pos.UnrealizedPL
		notional += pos.notional()
	}

	snap := journal.EquitySnapshot{
		Time:          e.now,
		Cash:          e.acct.Cash,
		Equity:        e.acct.Equity,
		UnrealizedPL:  unrealized,
		RealizedPL:    e.acct.RealizedPL,
		OpenPositions: len(e.positions),
		NotionalUsed:  notional,
	}
	e.snapshots = append(e.snapshots, snap)
	e.pruneSnapshotsLocked()

	if e.journal != nil {
		if err := e.journal.RecordEquity(snap); err != nil {
			e.log.Warn("journal equity failed", zap.Error(err))
		}
	}
}

// pruneSnapshotsLocked drops snapshots older than the retention
// horizon. The slice is time-ordered, so this is a prefix cut.
func (e *Engine) pruneSnapshotsLocked() {
	cutoff := e.now.Add(-e.snapRetention)
	keep := 0
	for keep < len(e.snapshots) && e.snapshots[keep].Time.Before(cutoff) {
		keep++
	}
	if keep > 0 {
		e.snapshots = append([]journal.EquitySnapshot(nil), e.snapshots[keep:]...)
	}
}

// scheduleSnapshotLocked arms the repeating snapshot cadence.
func (e *Engine) scheduleSnapshotLocked() {
	e.scheduleLocked(e.snapInterval, func() {
		e.snapshotLocked()
		e.scheduleSnapshotLocked()
	})
}
