package deviceRepo

import (
	"context"

	"notewise/models"
)

// DeviceRepository defines data access for registered client devices.
type DeviceRepository interface {
	// Upsert registers a device or refreshes its token and last-seen time.
	Upsert(ctx context.Context, device *models.Device) error
	// GetByID retrieves a device, nil if unknown.
	GetByID(ctx context.Context, deviceID string) (*models.Device, error)
	// SetPINHash stores the bcrypt hash of the device's notebook lock PIN.
	SetPINHash(ctx context.Context, deviceID, hash string) error
	// Delete removes a device registration.
	Delete(ctx context.Context, deviceID string) error
}
