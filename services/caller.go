package services

import (
	"context"
	"errors"
	"fmt"

	"deal-pipeline-api/models"
	"deal-pipeline-api/repository"
	"deal-pipeline-api/workflow"
)

// Caller is the authenticated identity every operation is invoked with.
// PartnerID is set only when the user is bound to a partner organization.
type Caller struct {
	UserID    int
	RoleID    int
	PartnerID *int
}

func (c Caller) Authenticated() bool { return c.UserID > 0 }

func (c Caller) IsAdmin() bool { return c.RoleID == models.RoleAdmin }

func requireAdmin(c Caller) error {
	if !c.Authenticated() {
		return workflow.Unauthorized("Authentication required")
	}
	if !c.IsAdmin() {
		return workflow.Forbidden("Admin access required")
	}
	return nil
}

func requirePartner(c Caller) (int, error) {
	if !c.Authenticated() {
		return 0, workflow.Unauthorized("Authentication required")
	}
	if c.PartnerID == nil {
		return 0, workflow.Forbidden("Partner access required")
	}
	return *c.PartnerID, nil
}

// ResolveCaller loads the user behind a verified token and attaches the
// partner binding, if any. The stored role wins over the token claim.
func (s *WorkflowService) ResolveCaller(ctx context.Context, userID int) (Caller, error) {
	if userID <= 0 {
		return Caller{}, workflow.Unauthorized("Authentication required")
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Caller{}, workflow.Unauthorized("User not found")
		}
		return Caller{}, fmt.Errorf("load user: %w", err)
	}

	caller := Caller{UserID: user.UserID, RoleID: user.RoleID}
	binding, err := s.store.PartnerBinding(ctx, user.UserID)
	switch {
	case err == nil:
		partnerID := binding.PartnerID
		caller.PartnerID = &partnerID
	case errors.Is(err, repository.ErrNotFound):
	default:
		return Caller{}, fmt.Errorf("load partner binding: %w", err)
	}
	return caller, nil
}
