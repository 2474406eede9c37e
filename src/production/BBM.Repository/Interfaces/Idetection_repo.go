package interfaces

import (
	"context"
	"time"

	bbmmodels "gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.Models"
)

// DetectionRepository owns the detector state and the audio file list
type DetectionRepository interface {
	Snapshot(ctx context.Context) bbmmodels.DetectionState
	MarkStarted(ctx context.Context, at time.Time)
	MarkStopped(ctx context.Context, at time.Time)

	// SyncActive overwrites isActive with the device's view only when no
	// start or stop was recorded since seen was read. It reports whether it did.
	SyncActive(ctx context.Context, active bool, seen bbmmodels.DetectionState) bool
	SetRemoteConnected(ctx context.Context, connected bool, at time.Time)

	// RecordDetection bumps the counter and, when ref is non-nil, prepends it
	// to the audio file list. It returns the new total.
	RecordDetection(ctx context.Context, at time.Time, ref *bbmmodels.AudioFileRef) int

	ListAudioFiles(ctx context.Context, limit, offset int) ([]bbmmodels.AudioFileRef, int)
	CountAudioFiles(ctx context.Context) int
	AllAudioFiles(ctx context.Context) []bbmmodels.AudioFileRef
	GetAudioFile(ctx context.Context, id string) (*bbmmodels.AudioFileRef, error)
	Reset(ctx context.Context)
}
