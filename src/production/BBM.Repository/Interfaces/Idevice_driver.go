package interfaces

import (
	"context"

	bbmmodels "gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.Models"
)

// DetectorDriver talks to the cry detector device. Errors returned are
// *bbmmodels.RemoteError or *bbmmodels.NotFoundError.
type DetectorDriver interface {
	Start(ctx context.Context) (*bbmmodels.CommandResult, error)
	Stop(ctx context.Context) (*bbmmodels.CommandResult, error)
	Status(ctx context.Context) (*bbmmodels.DeviceStatus, error)
	Health(ctx context.Context) (map[string]interface{}, error)
	UpdateSettings(ctx context.Context, settings bbmmodels.DetectorSettings) (map[string]interface{}, error)
	DownloadAudio(ctx context.Context, filePath string) (*bbmmodels.AudioDownload, error)
	BaseURL() string
}

// SensorDriver reads the nursery environment sensors
type SensorDriver interface {
	ReadAll(ctx context.Context) (bbmmodels.SensorSample, error)
	Health(ctx context.Context) error
	BaseURL() string
}
