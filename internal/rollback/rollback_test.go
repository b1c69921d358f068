package rollback

import (
	"errors"
	"testing"

	"github.com/sapcc/go-bits/assert"
)

func TestRun_ReverseOrder(t *testing.T) {
	var order []string
	var s Stack
	for _, name := range []string{"vnet", "router", "security group"} {
		s.Push("delete "+name, func() error {
			order = append(order, name)
			return nil
		})
	}

	errs := s.Run()
	if !errs.IsEmpty() {
		t.Fatalf("unexpected errors: %s", errs.Join(", "))
	}
	assert.DeepEqual(t, "undo order", order, []string{"security group", "router", "vnet"})
	if s.Len() != 0 {
		t.Errorf("stack should be empty after Run, has %d steps", s.Len())
	}
}

func TestRun_ContinuesAfterFailure(t *testing.T) {
	var ran []string
	var s Stack
	s.Push("first", func() error { ran = append(ran, "first"); return nil })
	s.Push("second", func() error { ran = append(ran, "second"); return errors.New("busy") })
	s.Push("third", func() error { ran = append(ran, "third"); return errors.New("gone") })

	errs := s.Run()
	assert.DeepEqual(t, "undo order", ran, []string{"third", "second", "first"})
	if len(errs) != 2 {
		t.Errorf("expected 2 collected errors, got %d", len(errs))
	}
}

func TestRun_Empty(t *testing.T) {
	var s Stack
	if errs := s.Run(); !errs.IsEmpty() {
		t.Errorf("expected no errors, got %v", errs)
	}
}

func TestUnwind(t *testing.T) {
	t.Run("no error", func(t *testing.T) {
		ran := false
		var s Stack
		s.Push("undo", func() error { ran = true; return nil })
		var err error
		s.Unwind(&err)
		if ran {
			t.Error("undo must not run on success")
		}
	})

	t.Run("error keeps original", func(t *testing.T) {
		ran := false
		var s Stack
		s.Push("undo", func() error { ran = true; return errors.New("undo failed") })
		original := errors.New("create failed")
		err := original
		s.Unwind(&err)
		if !ran {
			t.Error("undo should run on failure")
		}
		if !errors.Is(err, original) {
			t.Errorf("original error replaced: %v", err)
		}
	})
}
