package authz

import (
	"time"

	"github.com/propline/bidboard/dao/model"
)

// ProjectView is the role-dependent projection of a project. Budget and
// internal notes are visible to the managing manager and admins only;
// vendors get the trimmed public view.
type ProjectView struct {
	ID            uint                `json:"id"`
	PropertyID    uint                `json:"propertyId"`
	ManagerID     uint                `json:"managerId"`
	Title         string              `json:"title"`
	Description   string              `json:"description"`
	Category      string              `json:"category"`
	Status        model.ProjectStatus `json:"status"`
	BidDeadline   *time.Time          `json:"bidDeadline,omitempty"`
	Budget        *float64            `json:"budget,omitempty"`
	InternalNotes string              `json:"internalNotes,omitempty"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
}

// ViewProject projects p for the given actor. Pure function, no store
// access, so the field-visibility matrix is unit-testable on its own.
func ViewProject(a Actor, p *model.Project) ProjectView {
	v := ProjectView{
		ID:          p.ID,
		PropertyID:  p.PropertyID,
		ManagerID:   p.ManagerID,
		Title:       p.Title,
		Description: p.Description,
		Category:    p.Category,
		Status:      p.Status,
		BidDeadline: p.BidDeadline,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if a.IsAdmin() || p.ManagerID == a.ID {
		v.Budget = p.Budget
		v.InternalNotes = p.InternalNotes
	}
	return v
}
