// Package policy is the single place where roles turn into capabilities.
// Authorize is a pure lookup: no I/O, no mutation.
package policy

import (
	"culturemap/internal/apperror"
	"culturemap/internal/auth"
)

type Action string

const (
	CreateContent  Action = "create-content"
	Comment        Action = "comment"
	Favorite       Action = "favorite"
	Vote           Action = "vote"
	ViewApproved   Action = "view-approved"
	ApproveContent Action = "approve-content"
	RejectContent  Action = "reject-content"
	ViewPending    Action = "view-pending"
	ManageAccounts Action = "manage-accounts"
)

// Resource is the state of the object an action applies to. Only visibility
// matters to the policy.
type Resource interface {
	Visible() bool
}

type capabilitySet map[Action]bool

func union(sets ...capabilitySet) capabilitySet {
	out := capabilitySet{}
	for _, s := range sets {
		for a := range s {
			out[a] = true
		}
	}
	return out
}

var (
	anonymousCaps = capabilitySet{ViewApproved: true}
	userCaps      = union(anonymousCaps, capabilitySet{
		CreateContent: true,
		Comment:       true,
		Favorite:      true,
		Vote:          true,
	})
	organizerCaps = union(userCaps, capabilitySet{
		ApproveContent: true,
		RejectContent:  true,
		ViewPending:    true,
	})
	adminCaps = union(organizerCaps, capabilitySet{ManageAccounts: true})
)

func capabilities(p *auth.Principal) capabilitySet {
	if p == nil {
		return anonymousCaps
	}
	switch p.Role {
	case auth.RoleAdmin:
		return adminCaps
	case auth.RoleOrganizer:
		return organizerCaps
	default:
		return userCaps
	}
}

// Can reports whether p holds the capability, ignoring resource state.
// A nil principal is anonymous.
func Can(p *auth.Principal, a Action) bool {
	return capabilities(p)[a]
}

// Authorize decides whether p may perform a on r. r may be nil for actions
// that do not target an existing resource. Viewing a hidden resource needs
// view-pending on top of view-approved.
func Authorize(p *auth.Principal, a Action, r Resource) bool {
	caps := capabilities(p)
	if !caps[a] {
		return false
	}
	if a == ViewApproved && r != nil && !r.Visible() {
		return caps[ViewPending]
	}
	return true
}

// Require is Authorize returning an error on deny: apperror.ErrUnauthenticated
// for anonymous callers, *apperror.AuthorizationError otherwise.
func Require(p *auth.Principal, a Action, r Resource) error {
	if Authorize(p, a, r) {
		return nil
	}
	if p == nil {
		return apperror.ErrUnauthenticated
	}
	return &apperror.AuthorizationError{Action: string(a)}
}
