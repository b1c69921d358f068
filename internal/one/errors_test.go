package one

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_Classification(t *testing.T) {
	tests := []struct {
		name            string
		err             *Error
		notFound        bool
		nameTaken       bool
		alreadyAssigned bool
	}{
		{
			name:     "no exists code",
			err:      &Error{Method: "one.vm.info", Code: CodeNoExists, Message: "[one.vm.info] Error getting virtual machine [42]."},
			notFound: true,
		},
		{
			name:      "duplicate name",
			err:       &Error{Method: "one.group.allocate", Code: CodeAllocate, Message: "[one.group.allocate] NAME is already taken by GROUP 101."},
			nameTaken: true,
		},
		{
			name:            "group already in vdc",
			err:             &Error{Method: "one.vdc.addgroup", Code: CodeAction, Message: "[one.vdc.addgroup] Error adding group 101 to VDC 100: Group 101 is already assigned to the VDC 100"},
			alreadyAssigned: true,
		},
		{
			name: "authorization",
			err:  &Error{Method: "one.vm.action", Code: CodeAuthorization, Message: "[one.vm.action] User [2] : Not authorized to perform MANAGE VM [5]."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("failed to do it: %w", tt.err)
			if got := IsNotFound(wrapped); got != tt.notFound {
				t.Errorf("IsNotFound = %v, want %v", got, tt.notFound)
			}
			if got := IsNameTaken(wrapped); got != tt.nameTaken {
				t.Errorf("IsNameTaken = %v, want %v", got, tt.nameTaken)
			}
			if got := IsAlreadyAssigned(wrapped); got != tt.alreadyAssigned {
				t.Errorf("IsAlreadyAssigned = %v, want %v", got, tt.alreadyAssigned)
			}
		})
	}
}

func TestError_Message(t *testing.T) {
	err := &Error{Method: "one.vn.delete", Code: CodeAction, Message: "Cannot delete, leases in use"}
	expected := "one.vn.delete failed: Cannot delete, leases in use (code 0x0800)"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("action error must not match ErrNotFound")
	}
}
