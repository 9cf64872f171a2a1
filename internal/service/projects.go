package service

import (
	"context"
	"time"

	"github.com/propline/bidboard/dao/model"
	"github.com/propline/bidboard/pkg/apperror"
	"github.com/propline/bidboard/pkg/authz"
)

type ProjectInput struct {
	PropertyID    uint
	Title         string
	Description   string
	Category      string
	Budget        *float64
	InternalNotes string
	BidDeadline   *time.Time
}

// CreateProject posts a new project under one of the actor's
// properties. Projects start in Draft and accept bids only once
// published.
func (s *Service) CreateProject(ctx context.Context, actor authz.Actor, in ProjectInput) (*model.Project, error) {
	if in.Title == "" {
		return nil, apperror.New(apperror.KindValidation, "project title is required")
	}
	prop, err := s.getProperty(ctx, actor, in.PropertyID)
	if err != nil {
		return nil, err
	}
	if !authz.CanWriteProperty(actor, prop) {
		return nil, apperror.New(apperror.KindAuthorization, "not the owner of this property")
	}
	p := model.Project{
		PropertyID:    prop.ID,
		ManagerID:     prop.ManagerID,
		Title:         in.Title,
		Description:   in.Description,
		Category:      in.Category,
		Budget:        in.Budget,
		InternalNotes: in.InternalNotes,
		BidDeadline:   in.BidDeadline,
		Status:        model.ProjectDraft,
	}
	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, dbErr("create project", err)
	}
	return &p, nil
}

func (s *Service) GetProject(ctx context.Context, actor authz.Actor, id uint) (*model.Project, error) {
	return s.getProject(ctx, actor, id)
}

// ListOpenProjects is the vendor marketplace view: every Open project,
// regardless of owner, paginated newest first.
func (s *Service) ListOpenProjects(ctx context.Context, offset, limit int) ([]model.Project, int64, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	var total int64
	if err := s.db.WithContext(ctx).Model(&model.Project{}).
		Where("status = ?", model.ProjectOpen).
		Count(&total).Error; err != nil {
		return nil, 0, dbErr("count open projects", err)
	}
	var projects []model.Project
	err := s.db.WithContext(ctx).
		Where("status = ?", model.ProjectOpen).
		Order("id DESC").Offset(offset).Limit(limit).
		Find(&projects).Error
	if err != nil {
		return nil, 0, dbErr("list open projects", err)
	}
	return projects, total, nil
}

// ListMyProjects returns the manager's own projects; for vendors, the
// projects they hold a bid on; admins see all.
func (s *Service) ListMyProjects(ctx context.Context, actor authz.Actor) ([]model.Project, error) {
	q := s.db.WithContext(ctx).Order("id DESC")
	switch {
	case actor.IsAdmin():
	case actor.IsVendor():
		q = q.Where("id IN (?)", s.db.Model(&model.Bid{}).Select("project_id").Where("vendor_id = ?", actor.ID))
	default:
		q = q.Where("manager_id = ?", actor.ID)
	}
	var projects []model.Project
	if err := q.Find(&projects).Error; err != nil {
		return nil, dbErr("list projects", err)
	}
	return projects, nil
}

func (s *Service) UpdateProject(ctx context.Context, actor authz.Actor, id uint, in ProjectInput) (*model.Project, error) {
	p, err := s.getProject(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanWriteProject(actor, p) {
		return nil, apperror.New(apperror.KindAuthorization, "not the manager of this project")
	}
	if in.Title != "" {
		p.Title = in.Title
	}
	p.Description = in.Description
	p.Category = in.Category
	p.Budget = in.Budget
	p.InternalNotes = in.InternalNotes
	p.BidDeadline = in.BidDeadline
	// Column-scoped so a concurrent status transition is never clobbered
	// with the stale value loaded above.
	err = s.db.WithContext(ctx).Model(&model.Project{}).
		Where("id = ?", p.ID).
		Updates(map[string]any{
			"title":          p.Title,
			"description":    p.Description,
			"category":       p.Category,
			"budget":         p.Budget,
			"internal_notes": p.InternalNotes,
			"bid_deadline":   p.BidDeadline,
		}).Error
	if err != nil {
		return nil, dbErr("update project", err)
	}
	return p, nil
}

// PublishProject moves a Draft project to Open, making it visible to
// vendors and open for bids.
func (s *Service) PublishProject(ctx context.Context, actor authz.Actor, id uint) (*model.Project, error) {
	return s.transitionProject(ctx, actor, id, model.ProjectDraft, model.ProjectOpen)
}

// CloseBidding moves an Open project to InReview; the manager stops
// taking new bids while deciding.
func (s *Service) CloseBidding(ctx context.Context, actor authz.Actor, id uint) (*model.Project, error) {
	return s.transitionProject(ctx, actor, id, model.ProjectOpen, model.ProjectInReview)
}

// StartProject moves an Awarded project to InProgress.
func (s *Service) StartProject(ctx context.Context, actor authz.Actor, id uint) (*model.Project, error) {
	return s.transitionProject(ctx, actor, id, model.ProjectAwarded, model.ProjectInProgress)
}

// CompleteProject moves an InProgress project to Completed.
func (s *Service) CompleteProject(ctx context.Context, actor authz.Actor, id uint) (*model.Project, error) {
	return s.transitionProject(ctx, actor, id, model.ProjectInProgress, model.ProjectCompleted)
}

// CancelProject cancels a project from any non-terminal state.
func (s *Service) CancelProject(ctx context.Context, actor authz.Actor, id uint) (*model.Project, error) {
	p, err := s.getProject(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanWriteProject(actor, p) {
		return nil, apperror.New(apperror.KindAuthorization, "not the manager of this project")
	}
	res := s.db.WithContext(ctx).Model(&model.Project{}).
		Where("id = ? AND status NOT IN ?", p.ID,
			[]model.ProjectStatus{model.ProjectCompleted, model.ProjectCancelled}).
		Update("status", model.ProjectCancelled)
	if res.Error != nil {
		return nil, dbErr("cancel project", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperror.New(apperror.KindConflict, "project already finished")
	}
	p.Status = model.ProjectCancelled
	return p, nil
}

// DeleteProject hard-removes a Draft or Cancelled project.
func (s *Service) DeleteProject(ctx context.Context, actor authz.Actor, id uint) error {
	p, err := s.getProject(ctx, actor, id)
	if err != nil {
		return err
	}
	if !authz.CanDeleteProject(actor, p) {
		return apperror.New(apperror.KindAuthorization, "not the manager of this project")
	}
	if p.Status != model.ProjectDraft && p.Status != model.ProjectCancelled {
		return apperror.New(apperror.KindConflict, "only draft or cancelled projects can be deleted")
	}
	if err := s.db.WithContext(ctx).Delete(&model.Project{}, p.ID).Error; err != nil {
		return dbErr("delete project", err)
	}
	return nil
}

// transitionProject performs a guarded single-step status move. The
// status check happens in the UPDATE itself, so concurrent transitions
// cannot both succeed.
func (s *Service) transitionProject(ctx context.Context, actor authz.Actor, id uint,
	from, to model.ProjectStatus) (*model.Project, error) {
	p, err := s.getProject(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanWriteProject(actor, p) {
		return nil, apperror.New(apperror.KindAuthorization, "not the manager of this project")
	}
	res := s.db.WithContext(ctx).Model(&model.Project{}).
		Where("id = ? AND status = ?", p.ID, from).
		Update("status", to)
	if res.Error != nil {
		return nil, dbErr("transition project", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperror.Newf(apperror.KindConflict, "project is not %s", from)
	}
	p.Status = to
	return p, nil
}
