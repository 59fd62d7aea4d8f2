// Package policy holds the access-control decision functions. They are pure:
// every visibility and mutation decision in the API goes through here, and
// nothing here touches storage or the request.
package policy

import "clubrun/internal/model"

// Identity is the authenticated caller. A nil *Identity means anonymous.
type Identity struct {
	UserID uint
	ClubID uint
	Role   model.Role
}

// IsAdmin reports whether the identity is a club admin.
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == model.RoleAdmin
}

// Resource describes the ownership and privacy of a protected resource.
type Resource struct {
	OwnerClubID uint
	IsPrivate   bool
}

// MarathonResource adapts a marathon to a policy resource.
func MarathonResource(m *model.Marathon) Resource {
	return Resource{OwnerClubID: m.ClubID, IsPrivate: m.IsPrivate}
}

// CanView reports whether the caller may read the resource: public resources
// are visible to everyone, private ones only to the owning club.
func CanView(id *Identity, r Resource) bool {
	if !r.IsPrivate {
		return true
	}
	return id != nil && id.ClubID == r.OwnerClubID
}

// CanViewParticipants reports whether the caller may list who registered.
// Unlike CanView this never admits anonymous callers.
func CanViewParticipants(id *Identity, r Resource) bool {
	return id != nil && CanView(id, r)
}

// CanJoin reports whether the caller may register for (or cancel a
// registration on) the resource.
func CanJoin(id *Identity, r Resource) bool {
	return id != nil && CanView(id, r)
}

// CanManage reports whether the caller may create, mutate, or delete
// resources owned by ownerClubID, including invitations.
func CanManage(id *Identity, ownerClubID uint) bool {
	return id.IsAdmin() && id.ClubID == ownerClubID
}
