package device

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"notewise/models"
)

type fakeRepo struct {
	devices map[string]*models.Device
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{devices: make(map[string]*models.Device)}
}

func (f *fakeRepo) Upsert(ctx context.Context, device *models.Device) error {
	cp := *device
	f.devices[device.DeviceID] = &cp
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, deviceID string) (*models.Device, error) {
	if d, ok := f.devices[deviceID]; ok {
		cp := *d
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeRepo) SetPINHash(ctx context.Context, deviceID, hash string) error {
	f.devices[deviceID].PINHash = hash
	return nil
}

func (f *fakeRepo) Delete(ctx context.Context, deviceID string) error {
	delete(f.devices, deviceID)
	return nil
}

func newTestService(t *testing.T) (*DefaultDeviceService, *fakeRepo) {
	t.Helper()
	repo := newFakeRepo()
	svc, err := NewDefaultDeviceService(repo)
	require.NoError(t, err)
	svc.Now = func() time.Time { return time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC) }
	return svc, repo
}

func TestRegisterAndDeregister(t *testing.T) {
	t.Parallel()

	svc, repo := newTestService(t)

	_, err := svc.Register(context.Background(), "dev-1", "Pixel", "fcm-token", "10.0.0.1")
	require.NoError(t, err)
	require.Contains(t, repo.devices, "dev-1")

	require.NoError(t, svc.Deregister(context.Background(), "dev-1"))
	require.NotContains(t, repo.devices, "dev-1")

	// Once deregistered the device cannot unlock a session anymore.
	_, err = svc.Unlock(context.Background(), "dev-1", "")
	require.Error(t, err)
}

func TestDeregisterRequiresDeviceID(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	require.Error(t, svc.Deregister(context.Background(), ""))
}

func TestUnlockVerifiesPIN(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	_, err := svc.Register(context.Background(), "dev-1", "Pixel", "fcm-token", "10.0.0.1")
	require.NoError(t, err)
	require.NoError(t, svc.SetPIN(context.Background(), "dev-1", "1234"))

	_, err = svc.Unlock(context.Background(), "dev-1", "0000")
	require.ErrorIs(t, err, ErrWrongPIN)

	token, err := svc.Unlock(context.Background(), "dev-1", "1234")
	require.NoError(t, err)
	require.NotEmpty(t, token)
}

func TestUnlockWithoutPINStillYieldsSession(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	_, err := svc.Register(context.Background(), "dev-1", "Pixel", "fcm-token", "10.0.0.1")
	require.NoError(t, err)

	token, err := svc.Unlock(context.Background(), "dev-1", "")
	require.NoError(t, err)
	require.NotEmpty(t, token)
}

func TestSetPINRejectsShortPIN(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	_, err := svc.Register(context.Background(), "dev-1", "Pixel", "fcm-token", "10.0.0.1")
	require.NoError(t, err)

	require.Error(t, svc.SetPIN(context.Background(), "dev-1", "12"))
}
