package vm

import (
	"testing"

	"github.com/sapcc/go-bits/assert"
	"github.com/sapcc/go-bits/must"

	"github.com/jbweber/canopy/internal/one"
	"github.com/jbweber/canopy/internal/onetest"
)

func TestDelete(t *testing.T) {
	f := newFixture(t, true)
	id := f.runningVM(2048)

	must.SucceedT(t, f.manager.Delete(id))

	assert.DeepEqual(t, "actions", actions(f.backend), []string{one.ActionTerminateHard})
	vm, _ := f.backend.VM(id)
	assert.DeepEqual(t, "state", vm.StateString(), "ACTIVE/EPILOG")
}

func TestDelete_Missing(t *testing.T) {
	f := newFixture(t, true)
	must.SucceedT(t, f.manager.Delete(999))
}

func TestDelete_Failure(t *testing.T) {
	f := newFixture(t, true)
	id := f.runningVM(2048)
	f.backend.FailOn("one.vm.action", onetest.ActionError("one.vm.action", "not authorized"))

	if err := f.manager.Delete(id); err == nil {
		t.Fatal("expected error")
	}
}
