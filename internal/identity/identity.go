// Package identity implements name-based reconciliation of backend objects.
//
// The backend has no idempotency keys, so every named object is created
// through CreateOrReuse: a retried call after a crash finds the object of
// the earlier run by name instead of failing or creating a duplicate.
package identity

import (
	"fmt"

	"github.com/sapcc/go-bits/logg"

	"github.com/jbweber/canopy/internal/one"
)

// ListFunc returns the backend's listing of one object kind.
type ListFunc[T one.Named] func() ([]T, error)

// ResolveByName scans the listing for an object called name.
//
// An empty pool is reported by some backends as a not-found error; that is
// returned as found=false without error.
func ResolveByName[T one.Named](kind, name string, list ListFunc[T]) (id int, found bool, err error) {
	objects, err := list()
	if err != nil {
		if one.IsNotFound(err) {
			return -1, false, nil
		}
		return -1, false, fmt.Errorf("failed to list %ss: %w", kind, err)
	}
	for _, obj := range objects {
		if obj.ObjectName() == name {
			return obj.ObjectID(), true, nil
		}
	}
	return -1, false, nil
}

// CreateOrReuse calls create and, if the backend reports the name as taken,
// returns the ID of the existing object instead.
//
// created is false when an existing object was reused. A name collision for
// an object that cannot be found afterwards is an inconsistent backend state
// and returned as an error.
func CreateOrReuse[T one.Named](kind, name string, create func() (int, error), list ListFunc[T]) (id int, created bool, err error) {
	id, err = create()
	if err == nil {
		return id, true, nil
	}
	if !one.IsNameTaken(err) {
		return -1, false, fmt.Errorf("failed to create %s %q: %w", kind, name, err)
	}

	logg.Info("%s %q already exists, reusing it", kind, name)
	id, found, lookupErr := ResolveByName(kind, name, list)
	if lookupErr != nil {
		return -1, false, lookupErr
	}
	if !found {
		return -1, false, fmt.Errorf("%s %q reported as existing but not found in listing: %w", kind, name, err)
	}
	return id, false, nil
}

// AddEdgeIdempotent runs an attach-style call and treats an "already
// assigned" error as success.
func AddEdgeIdempotent(description string, op func() error) error {
	err := op()
	if err == nil {
		return nil
	}
	if one.IsAlreadyAssigned(err) {
		logg.Debug("%s: already assigned", description)
		return nil
	}
	return fmt.Errorf("failed to %s: %w", description, err)
}
