package authz_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/treasuryops/tbo_backend/internal/core/domain"
	"github.com/treasuryops/tbo_backend/internal/utils/authz"
)

func TestCan(t *testing.T) {
	tests := []struct {
		name   string
		role   domain.Role
		action authz.Action
		want   bool
	}{
		{"user may create deals", domain.RoleUser, authz.ActionCreateDeal, true},
		{"user may not update status", domain.RoleUser, authz.ActionUpdateStatus, false},
		{"authorizer may update status", domain.RoleAuthorizer, authz.ActionUpdateStatus, true},
		{"authorizer may not create deals", domain.RoleAuthorizer, authz.ActionCreateDeal, false},
		{"authorizer may escalate", domain.RoleAuthorizer, authz.ActionEscalate, true},
		{"admin may run eod", domain.RoleAdmin, authz.ActionRunEod, true},
		{"user may not run eod", domain.RoleUser, authz.ActionRunEod, false},
		{"back office verifier may update status", domain.RoleBackOfficeVerifier, authz.ActionUpdateStatus, true},
		{"only admin deletes", domain.RoleAuthorizer, authz.ActionDeleteDeal, false},
		{"limits user may allocate", domain.RoleLimitsAllocatingUser, authz.ActionAllocateLimit, true},
		{"unknown action denied", domain.RoleAdmin, authz.Action("nope"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := domain.Principal{UserID: "u1", Role: tt.role}
			assert.Equal(t, tt.want, authz.Can(p, tt.action))
		})
	}
}
