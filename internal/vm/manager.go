package vm

import (
	"errors"

	"github.com/jbweber/canopy/internal/poll"
)

var (
	// ErrInvalidState is returned when a VM is in a state the operation
	// cannot start from.
	ErrInvalidState = errors.New("invalid VM state")

	// ErrNetworkMissing is returned when the tenant has no internal network
	// to attach an instance to.
	ErrNetworkMissing = errors.New("tenant network not found")

	// ErrGroupMissing is returned when the tenant group does not exist.
	ErrGroupMissing = errors.New("tenant group not found")
)

// Manager runs instance lifecycle operations against the backend.
type Manager struct {
	backend backend
	running poll.Options
	power   poll.Options
}

// NewManager returns an instance manager. running bounds waits for a VM to
// reach RUNNING, power bounds waits for power-off.
func NewManager(b backend, running, power poll.Options) *Manager {
	return &Manager{backend: b, running: running, power: power}
}
