package tenant

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sapcc/go-bits/logg"

	"github.com/jbweber/canopy/internal/identity"
	"github.com/jbweber/canopy/internal/naming"
	"github.com/jbweber/canopy/internal/one"
)

// Credential is a tenant administrator login.
type Credential struct {
	Tenant   string `json:"tenant" yaml:"tenant"`
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password"`
	UserID   int    `json:"userID" yaml:"userID"`
	GroupID  int    `json:"groupID" yaml:"groupID"`
}

// EnsureAdmin creates or reuses the tenant administrator, makes it an
// administrator of the tenant group and sets a freshly generated password.
// Only the returned credential carries the password.
func (m *Manager) EnsureAdmin(name string) (*Credential, error) {
	groupID, err := m.groupID(name)
	if err != nil {
		return nil, err
	}
	username := naming.For(name).AdminUser
	password := uuid.NewString()

	logg.Info("Creating admin user %s...", username)
	userID, created, err := identity.CreateOrReuse(one.KindUser, username,
		func() (int, error) { return m.backend.CreateUser(username, password, []int{groupID}) },
		m.backend.ListUsers)
	if err != nil {
		return nil, err
	}
	if !created {
		logg.Info("Resetting password of admin user %s...", username)
		if err := m.backend.SetUserPassword(userID, password); err != nil {
			return nil, fmt.Errorf("failed to set password of user %q: %w", username, err)
		}
	}

	err = identity.AddEdgeIdempotent(fmt.Sprintf("make user %d admin of group %d", userID, groupID),
		func() error { return m.backend.AddGroupAdmin(groupID, userID) })
	if err != nil {
		return nil, err
	}

	return &Credential{
		Tenant:   name,
		Username: username,
		Password: password,
		UserID:   userID,
		GroupID:  groupID,
	}, nil
}
