package points

import (
	"context"

	"zombie-scanner/internal/domain"
	"zombie-scanner/internal/logging"
	"zombie-scanner/internal/scanner"
	"zombie-scanner/internal/scoring"
	"zombie-scanner/internal/storage"
)

// SnapshotRecorder returns a scanner observer that appends a ScanSnapshot
// for every successful scan. Cache hits are recorded with FromCache set.
// Store failures are logged.
func SnapshotRecorder(store storage.ScanSnapshotStore, log logging.Logger) scanner.Observer {
	log = logging.Component(log, "snapshots")

	return func(ctx context.Context, res scanner.Result) {
		if res.Err != nil {
			return
		}

		snap := domain.NewScanSnapshot(
			res.Address,
			res.Network,
			res.Assets,
			scoring.PointsPerDay(res.Assets),
			res.Duration.Milliseconds(),
			res.CompletedAt.UnixMilli(),
			res.FromCache,
		)
		if err := store.Insert(context.WithoutCancel(ctx), snap); err != nil {
			log.WithError(err).WithField("address", res.Address).Warnf("snapshot insert failed")
		}
	}
}
