// Package authz centralizes capability checks so handlers and services never
// re-derive role strings ad hoc.
package authz

import "github.com/treasuryops/tbo_backend/internal/core/domain"

// Action is a capability that can be checked against a principal.
type Action string

const (
	ActionCreateDeal     Action = "deal:create"
	ActionEditDealFields Action = "deal:edit"
	ActionUpdateStatus   Action = "deal:update_status"
	ActionEscalate       Action = "deal:escalate"
	ActionDeleteDeal     Action = "deal:delete"
	ActionRunEod         Action = "eod:run"
	ActionViewLedger     Action = "ledger:view"
	ActionAllocateLimit  Action = "limit:allocate"
)

var capabilities = map[Action][]domain.Role{
	ActionCreateDeal:     {domain.RoleUser, domain.RoleFrontOffice, domain.RoleAdmin},
	ActionEditDealFields: {domain.RoleUser, domain.RoleFrontOffice, domain.RoleAdmin},
	ActionUpdateStatus:   {domain.RoleAuthorizer, domain.RoleAdmin, domain.RoleBackOfficeVerifier, domain.RoleBackOfficeFinal},
	ActionEscalate:       {domain.RoleAuthorizer, domain.RoleAdmin},
	ActionDeleteDeal:     {domain.RoleAdmin},
	ActionRunEod:         {domain.RoleAdmin},
	ActionViewLedger:     {domain.RoleUser, domain.RoleAuthorizer, domain.RoleAdmin, domain.RoleFrontOffice, domain.RoleBackOfficeVerifier, domain.RoleBackOfficeFinal},
	ActionAllocateLimit:  {domain.RoleLimitsAllocatingUser, domain.RoleLimitsAllocatingAuthorizer, domain.RoleAdmin},
}

// Can reports whether the principal's role carries the given capability.
func Can(p domain.Principal, action Action) bool {
	for _, role := range capabilities[action] {
		if p.Role == role {
			return true
		}
	}
	return false
}
