package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeviceIDStableAcrossCalls(t *testing.T) {
	identity := NewDeviceIdentity(t.TempDir())

	first := identity.DeviceID()
	require.True(t, strings.HasPrefix(first, "device_"))

	assert.Equal(t, first, identity.DeviceID())
}

func TestDeviceIDDistinctPerStore(t *testing.T) {
	a := NewDeviceIdentity(t.TempDir()).DeviceID()
	b := NewDeviceIdentity(t.TempDir()).DeviceID()

	assert.NotEqual(t, a, b)
}

func TestValidateFingerprint(t *testing.T) {
	identity := NewDeviceIdentity(t.TempDir())

	// No fingerprint stored yet
	assert.True(t, identity.ValidateFingerprint())

	// Minting the device id stores the current fingerprint
	_ = identity.DeviceID()
	assert.True(t, identity.ValidateFingerprint())
}

func TestDeviceStateRefreshesLastSeen(t *testing.T) {
	identity := NewDeviceIdentity(t.TempDir())

	_ = identity.DeviceID()
	first, ok := identity.load()
	require.True(t, ok)

	time.Sleep(5 * time.Millisecond)
	_ = identity.DeviceID()
	second, ok := identity.load()
	require.True(t, ok)

	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.True(t, second.LastSeen.After(first.LastSeen))
}

func TestFingerprintNonEmpty(t *testing.T) {
	fp := Fingerprint()
	assert.NotEmpty(t, fp)
	assert.Equal(t, fp, Fingerprint())
}
