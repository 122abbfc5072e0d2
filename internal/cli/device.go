package cli

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// FallbackFingerprint is used when environment signals cannot be read
const FallbackFingerprint = "fallback_fingerprint"

const deviceStateFile = "device.json"

// deviceState is the persisted identity record
type deviceState struct {
	DeviceID    string    `json:"device_id"`
	Fingerprint string    `json:"fingerprint"`
	CreatedAt   time.Time `json:"created_at"`
	LastSeen    time.Time `json:"last_seen"`
}

// DeviceIdentity manages the persisted device token and its fingerprint.
// The token is opaque and minted locally; the fingerprint is a soft
// integrity signal only, never an authorization credential.
type DeviceIdentity struct {
	dir string
}

// NewDeviceIdentity creates a device identity store rooted at dir
func NewDeviceIdentity(dir string) *DeviceIdentity {
	return &DeviceIdentity{dir: dir}
}

// DeviceID returns the persisted device token, minting and persisting a
// new one on first use. Loading refreshes last_seen. Persistence
// failures still return a usable token; the device is simply new again
// next run.
func (d *DeviceIdentity) DeviceID() string {
	if state, ok := d.load(); ok {
		state.LastSeen = time.Now().UTC()
		d.save(state)
		return state.DeviceID
	}

	now := time.Now().UTC()
	state := &deviceState{
		DeviceID:    generateDeviceID(),
		Fingerprint: Fingerprint(),
		CreatedAt:   now,
		LastSeen:    now,
	}
	d.save(state)
	return state.DeviceID
}

// ValidateFingerprint reports whether the stored fingerprint matches the
// current environment. Returns true when none was ever stored; drift is
// expected (OS updates) and diagnostic only.
func (d *DeviceIdentity) ValidateFingerprint() bool {
	state, ok := d.load()
	if !ok || state.Fingerprint == "" {
		return true
	}
	return state.Fingerprint == Fingerprint()
}

func (d *DeviceIdentity) load() (*deviceState, bool) {
	data, err := os.ReadFile(filepath.Join(d.dir, deviceStateFile))
	if err != nil {
		return nil, false
	}

	var state deviceState
	if err := json.Unmarshal(data, &state); err != nil || state.DeviceID == "" {
		return nil, false
	}
	return &state, true
}

func (d *DeviceIdentity) save(state *deviceState) {
	if err := os.MkdirAll(d.dir, 0700); err != nil {
		return
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return
	}
	_ = os.WriteFile(filepath.Join(d.dir, deviceStateFile), data, 0600)
}

// generateDeviceID mints a device token from the current time and a
// random suffix, both base36
func generateDeviceID() string {
	ts := strconv.FormatInt(time.Now().UnixMilli(), 36)
	suffix := strconv.FormatInt(rand.Int63n(1<<40), 36)
	return "device_" + ts + suffix
}

// Fingerprint serializes environment signals into an encoded string.
// Any failure falls back to a fixed sentinel rather than erroring.
func Fingerprint() string {
	hostname, err := os.Hostname()
	if err != nil {
		return FallbackFingerprint
	}

	signals := []string{
		hostname,
		runtime.GOOS,
		runtime.GOARCH,
		strconv.Itoa(runtime.NumCPU()),
		os.Getenv("LANG"),
		os.Getenv("TZ"),
	}
	encoded := base64.StdEncoding.EncodeToString([]byte(strings.Join(signals, "|")))
	return fmt.Sprintf("fp_%s", encoded)
}
