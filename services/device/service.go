// Package device manages client registrations: the FCM push token a device
// publishes and the optional notebook lock PIN.
package device

import (
	"context"
	"errors"
	"fmt"
	"time"

	deviceRepo "notewise/database/repository/device"
	"notewise/models"
	"notewise/utils"

	"golang.org/x/crypto/bcrypt"
)

// ErrWrongPIN is returned when the supplied PIN does not match the stored hash.
var ErrWrongPIN = errors.New("wrong PIN")

// SessionTTL is the lifetime of an unlock session token.
const SessionTTL = 12 * time.Hour

// DeviceService manages device registration and the notebook lock.
type DeviceService interface {
	// Register upserts a device and its current push token.
	Register(ctx context.Context, deviceID, deviceName, fcmToken, ip string) (*models.Device, error)
	// SetPIN stores a bcrypt hash of the notebook lock PIN.
	SetPIN(ctx context.Context, deviceID, pin string) error
	// Unlock verifies the PIN and returns a session JWT on success.
	Unlock(ctx context.Context, deviceID, pin string) (string, error)
	// Deregister removes the device record and its push token, stopping any
	// further deliveries to it.
	Deregister(ctx context.Context, deviceID string) error
}

// DefaultDeviceService is the production implementation.
type DefaultDeviceService struct {
	Repo deviceRepo.DeviceRepository
	Now  func() time.Time
}

func NewDefaultDeviceService(repo deviceRepo.DeviceRepository) (*DefaultDeviceService, error) {
	if repo == nil {
		return nil, fmt.Errorf("device service initialization error: repository is nil")
	}
	return &DefaultDeviceService{Repo: repo, Now: time.Now}, nil
}

func (s *DefaultDeviceService) Register(ctx context.Context, deviceID, deviceName, fcmToken, ip string) (*models.Device, error) {
	if deviceID == "" {
		return nil, fmt.Errorf("Register: missing device ID")
	}

	now := s.Now()
	device := &models.Device{
		DeviceID:   deviceID,
		DeviceName: deviceName,
		FCMToken:   fcmToken,
		IP:         ip,
		LastSeen:   now,
		CreatedAt:  now,
	}
	if err := s.Repo.Upsert(ctx, device); err != nil {
		return nil, fmt.Errorf("Register: %w", err)
	}
	return device, nil
}

func (s *DefaultDeviceService) SetPIN(ctx context.Context, deviceID, pin string) error {
	if len(pin) < 4 {
		return fmt.Errorf("SetPIN: PIN must be at least 4 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("SetPIN: %w", err)
	}
	if err := s.Repo.SetPINHash(ctx, deviceID, string(hash)); err != nil {
		return fmt.Errorf("SetPIN: %w", err)
	}
	return nil
}

func (s *DefaultDeviceService) Unlock(ctx context.Context, deviceID, pin string) (string, error) {
	device, err := s.Repo.GetByID(ctx, deviceID)
	if err != nil {
		return "", fmt.Errorf("Unlock: %w", err)
	}
	if device == nil {
		return "", fmt.Errorf("Unlock: device %s not registered", deviceID)
	}
	if device.PINHash == "" {
		// No lock configured: an unlock request still yields a session so the
		// client code path stays uniform.
		return utils.GenerateToken(deviceID, SessionTTL)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(device.PINHash), []byte(pin)); err != nil {
		return "", ErrWrongPIN
	}
	return utils.GenerateToken(deviceID, SessionTTL)
}

func (s *DefaultDeviceService) Deregister(ctx context.Context, deviceID string) error {
	if deviceID == "" {
		return fmt.Errorf("Deregister: missing device ID")
	}
	if err := s.Repo.Delete(ctx, deviceID); err != nil {
		return fmt.Errorf("Deregister: %w", err)
	}
	return nil
}
