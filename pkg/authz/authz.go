// Package authz holds the marketplace access rules as pure functions
// from (actor, resource) to allow/deny. The resource services are the
// single enforcement point; there are no store-side policies, so every
// rule lives here and nowhere else.
package authz

import "github.com/propline/bidboard/dao/model"

// Actor is the resolved identity of the caller, taken from the JWT.
type Actor struct {
	ID   uint
	Role model.Role
}

func (a Actor) IsAdmin() bool   { return a.Role == model.RoleAdmin }
func (a Actor) IsManager() bool { return a.Role == model.RoleManager }
func (a Actor) IsVendor() bool  { return a.Role == model.RoleVendor }

// CanReadProperty: the owning manager, or an admin.
func CanReadProperty(a Actor, p *model.Property) bool {
	return a.IsAdmin() || p.ManagerID == a.ID
}

// CanWriteProperty: only the owning manager. Admin bypass covers read
// and delete, not mutation.
func CanWriteProperty(a Actor, p *model.Property) bool {
	return a.IsManager() && p.ManagerID == a.ID
}

func CanDeleteProperty(a Actor, p *model.Property) bool {
	return a.IsAdmin() || CanWriteProperty(a, p)
}

// CanReadProject: the managing manager, an admin, or a vendor when the
// project is Open or the vendor holds a bid on it (any status).
func CanReadProject(a Actor, p *model.Project, hasBid bool) bool {
	if a.IsAdmin() || p.ManagerID == a.ID {
		return true
	}
	if a.IsVendor() {
		return p.Status == model.ProjectOpen || hasBid
	}
	return false
}

func CanWriteProject(a Actor, p *model.Project) bool {
	return a.IsManager() && p.ManagerID == a.ID
}

func CanDeleteProject(a Actor, p *model.Project) bool {
	return a.IsAdmin() || CanWriteProject(a, p)
}

// CanReadBid: the submitting vendor, the manager of the bid's project,
// or an admin.
func CanReadBid(a Actor, b *model.Bid, projectManagerID uint) bool {
	return a.IsAdmin() || b.VendorID == a.ID || projectManagerID == a.ID
}

// CanEditBid: only the submitting vendor, and only while Pending.
func CanEditBid(a Actor, b *model.Bid) bool {
	return a.IsVendor() && b.VendorID == a.ID && b.Status == model.BidPending
}

// CanDecideBid: only the manager of the bid's project may accept or
// reject.
func CanDecideBid(a Actor, projectManagerID uint) bool {
	return a.IsManager() && projectManagerID == a.ID
}

// CanReadDocument: the uploader, the manager of the linked project, the
// vendor of the linked bid, or an admin. For bid documents the manager
// of the bid's project also reads: that is who the attachment is for.
func CanReadDocument(a Actor, d *model.Document, projectManagerID, bidVendorID uint) bool {
	if a.IsAdmin() || d.UploaderID == a.ID {
		return true
	}
	if projectManagerID == a.ID && projectManagerID != 0 {
		return true
	}
	if d.BidID != nil && bidVendorID == a.ID {
		return true
	}
	return false
}

// CanDeleteDocument: the uploader, or an admin (the one admin override
// besides general visibility).
func CanDeleteDocument(a Actor, d *model.Document) bool {
	return a.IsAdmin() || d.UploaderID == a.ID
}

// CanAccessMessage: sender or receiver only. No third party, admins
// included, may read message content.
func CanAccessMessage(a Actor, m *model.Message) bool {
	return m.SenderID == a.ID || m.ReceiverID == a.ID
}
