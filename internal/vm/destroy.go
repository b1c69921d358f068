package vm

import (
	"fmt"

	"github.com/sapcc/go-bits/logg"

	"github.com/jbweber/canopy/internal/one"
)

// Delete hard-terminates an instance. Deleting a VM that no longer exists
// succeeds.
func (m *Manager) Delete(id int) error {
	logg.Info("Terminating VM %d...", id)
	err := m.backend.VMAction(one.ActionTerminateHard, id)
	if err != nil {
		if one.IsNotFound(err) {
			logg.Info("VM %d not found, nothing to delete", id)
			return nil
		}
		return fmt.Errorf("failed to terminate VM %d: %w", id, err)
	}
	return nil
}
