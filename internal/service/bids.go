package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/propline/bidboard/dao/model"
	"github.com/propline/bidboard/pkg/apperror"
	"github.com/propline/bidboard/pkg/authz"
)

type BidInput struct {
	Amount      float64
	Description string
	Timeline    string
}

func bidMeta(projectID, bidID uint) datatypes.JSON {
	return datatypes.JSON(fmt.Sprintf(`{"projectId":%d,"bidId":%d}`, projectID, bidID))
}

// SubmitBid creates a Pending bid on an Open project and notifies the
// project's manager. A vendor gets one bid per project, ever.
func (s *Service) SubmitBid(ctx context.Context, actor authz.Actor, projectID uint, in BidInput) (*model.Bid, error) {
	if !actor.IsVendor() {
		return nil, apperror.New(apperror.KindAuthorization, "only vendors may submit bids")
	}
	if in.Amount <= 0 {
		return nil, apperror.New(apperror.KindValidation, "bid amount must be positive")
	}
	p, err := s.getProject(ctx, actor, projectID)
	if err != nil {
		return nil, err
	}
	if p.Status != model.ProjectOpen {
		return nil, apperror.New(apperror.KindConflict, "project is not open for bidding")
	}

	var existing int64
	err = s.db.WithContext(ctx).Model(&model.Bid{}).
		Where("project_id = ? AND vendor_id = ?", p.ID, actor.ID).
		Count(&existing).Error
	if err != nil {
		return nil, dbErr("check existing bid", err)
	}
	if existing > 0 {
		return nil, apperror.New(apperror.KindConflict, "vendor already bid on this project")
	}

	bid := model.Bid{
		ProjectID:   p.ID,
		VendorID:    actor.ID,
		Amount:      in.Amount,
		Description: in.Description,
		Timeline:    in.Timeline,
		Status:      model.BidPending,
	}
	var n *model.Notification
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&bid).Error; err != nil {
			// The unique (project, vendor) index closes the race two
			// concurrent submissions would otherwise win together.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperror.Wrap(apperror.KindConflict, "vendor already bid on this project", err)
			}
			return dbErr("create bid", err)
		}
		n = &model.Notification{
			UserID: p.ManagerID,
			Type:   model.NotifyBidSubmitted,
			Title:  fmt.Sprintf("New bid on %q", p.Title),
			Body:   fmt.Sprintf("A vendor submitted a bid of $%.2f on %q.", bid.Amount, p.Title),
			Link:   fmt.Sprintf("/projects/%d/bids", p.ID),
			Meta:   bidMeta(p.ID, bid.ID),
		}
		return s.notifier.Create(tx, n)
	})
	if err != nil {
		return nil, err
	}
	s.notifier.Push(ctx, n)
	return &bid, nil
}

// UpdateBid edits a bid's terms. Only the submitting vendor, only while
// Pending.
func (s *Service) UpdateBid(ctx context.Context, actor authz.Actor, bidID uint, in BidInput) (*model.Bid, error) {
	b, _, err := s.getBid(ctx, actor, bidID)
	if err != nil {
		return nil, err
	}
	if b.VendorID != actor.ID || !actor.IsVendor() {
		return nil, apperror.New(apperror.KindAuthorization, "only the submitting vendor may edit a bid")
	}
	if in.Amount <= 0 {
		return nil, apperror.New(apperror.KindValidation, "bid amount must be positive")
	}
	// The Pending guard runs inside the UPDATE so a concurrent decision
	// landing after the load above cannot be overwritten.
	res := s.db.WithContext(ctx).Model(&model.Bid{}).
		Where("id = ? AND status = ?", b.ID, model.BidPending).
		Updates(map[string]any{
			"amount":      in.Amount,
			"description": in.Description,
			"timeline":    in.Timeline,
		})
	if res.Error != nil {
		return nil, dbErr("update bid", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperror.New(apperror.KindConflict, "bid is no longer pending")
	}
	b.Amount = in.Amount
	b.Description = in.Description
	b.Timeline = in.Timeline
	return b, nil
}

// WithdrawBid moves the vendor's own Pending bid to Withdrawn and sends
// the manager a courtesy notification.
func (s *Service) WithdrawBid(ctx context.Context, actor authz.Actor, bidID uint) (*model.Bid, error) {
	b, p, err := s.getBid(ctx, actor, bidID)
	if err != nil {
		return nil, err
	}
	if b.VendorID != actor.ID || !actor.IsVendor() {
		return nil, apperror.New(apperror.KindAuthorization, "only the submitting vendor may withdraw a bid")
	}

	var n *model.Notification
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Bid{}).
			Where("id = ? AND status = ?", b.ID, model.BidPending).
			Update("status", model.BidWithdrawn)
		if res.Error != nil {
			return dbErr("withdraw bid", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperror.New(apperror.KindConflict, "bid is no longer pending")
		}
		n = &model.Notification{
			UserID: p.ManagerID,
			Type:   model.NotifyBidWithdrawn,
			Title:  fmt.Sprintf("Bid withdrawn on %q", p.Title),
			Body:   fmt.Sprintf("A vendor withdrew their $%.2f bid on %q.", b.Amount, p.Title),
			Link:   fmt.Sprintf("/projects/%d/bids", p.ID),
			Meta:   bidMeta(p.ID, b.ID),
		}
		return s.notifier.Create(tx, n)
	})
	if err != nil {
		return nil, err
	}
	s.notifier.Push(ctx, n)
	b.Status = model.BidWithdrawn
	return b, nil
}

// AcceptBid awards the project to one bid. In a single transaction the
// project moves to Awarded, the bid to Accepted, and every other
// Pending bid on the project to Rejected; one notification is persisted
// for the accepted vendor and one for each auto-rejected vendor. The
// status checks run inside the UPDATEs, so of two concurrent accepts
// exactly one commits and the other sees a conflict.
func (s *Service) AcceptBid(ctx context.Context, actor authz.Actor, bidID uint) (*model.Bid, error) {
	b, p, err := s.getBid(ctx, actor, bidID)
	if err != nil {
		return nil, err
	}
	if !authz.CanDecideBid(actor, p.ManagerID) {
		return nil, apperror.New(apperror.KindAuthorization, "only the project's manager may decide bids")
	}

	var pending []*model.Notification
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Project{}).
			Where("id = ? AND status IN ?", p.ID,
				[]model.ProjectStatus{model.ProjectOpen, model.ProjectInReview}).
			Update("status", model.ProjectAwarded)
		if res.Error != nil {
			return dbErr("award project", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperror.New(apperror.KindConflict, "project is no longer accepting decisions")
		}

		res = tx.Model(&model.Bid{}).
			Where("id = ? AND status = ?", b.ID, model.BidPending).
			Update("status", model.BidAccepted)
		if res.Error != nil {
			return dbErr("accept bid", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperror.New(apperror.KindConflict, "bid is no longer pending")
		}

		// Auto-reject the remaining Pending siblings.
		var siblings []model.Bid
		err := tx.Where("project_id = ? AND id <> ? AND status = ?", p.ID, b.ID, model.BidPending).
			Find(&siblings).Error
		if err != nil {
			return dbErr("load sibling bids", err)
		}
		if len(siblings) > 0 {
			err = tx.Model(&model.Bid{}).
				Where("project_id = ? AND id <> ? AND status = ?", p.ID, b.ID, model.BidPending).
				Update("status", model.BidRejected).Error
			if err != nil {
				return dbErr("auto-reject sibling bids", err)
			}
		}

		accepted := &model.Notification{
			UserID: b.VendorID,
			Type:   model.NotifyBidAccepted,
			Title:  fmt.Sprintf("Bid accepted for %q", p.Title),
			Body:   fmt.Sprintf("Your $%.2f bid on %q was accepted.", b.Amount, p.Title),
			Link:   fmt.Sprintf("/projects/%d", p.ID),
			Meta:   bidMeta(p.ID, b.ID),
		}
		if err := s.notifier.Create(tx, accepted); err != nil {
			return err
		}
		pending = append(pending, accepted)

		for i := range siblings {
			sib := &siblings[i]
			n := &model.Notification{
				UserID: sib.VendorID,
				Type:   model.NotifyBidRejected,
				Title:  fmt.Sprintf("Bid not selected for %q", p.Title),
				Body:   fmt.Sprintf("The project %q was awarded to another vendor.", p.Title),
				Link:   fmt.Sprintf("/projects/%d", p.ID),
				Meta:   bidMeta(p.ID, sib.ID),
			}
			if err := s.notifier.Create(tx, n); err != nil {
				return err
			}
			pending = append(pending, n)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, n := range pending {
		s.notifier.Push(ctx, n)
	}
	b.Status = model.BidAccepted
	return b, nil
}

// RejectBid moves a single Pending bid to Rejected, with no effect on
// its siblings or the project status.
func (s *Service) RejectBid(ctx context.Context, actor authz.Actor, bidID uint) (*model.Bid, error) {
	b, p, err := s.getBid(ctx, actor, bidID)
	if err != nil {
		return nil, err
	}
	if !authz.CanDecideBid(actor, p.ManagerID) {
		return nil, apperror.New(apperror.KindAuthorization, "only the project's manager may decide bids")
	}

	var n *model.Notification
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Bid{}).
			Where("id = ? AND status = ?", b.ID, model.BidPending).
			Update("status", model.BidRejected)
		if res.Error != nil {
			return dbErr("reject bid", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperror.New(apperror.KindConflict, "bid is no longer pending")
		}
		n = &model.Notification{
			UserID: b.VendorID,
			Type:   model.NotifyBidRejected,
			Title:  fmt.Sprintf("Bid rejected for %q", p.Title),
			Body:   fmt.Sprintf("Your $%.2f bid on %q was rejected.", b.Amount, p.Title),
			Link:   fmt.Sprintf("/projects/%d", p.ID),
			Meta:   bidMeta(p.ID, b.ID),
		}
		return s.notifier.Create(tx, n)
	})
	if err != nil {
		return nil, err
	}
	s.notifier.Push(ctx, n)
	b.Status = model.BidRejected
	return b, nil
}

// ListProjectBids returns the bids on a project: all of them for the
// manager and admins, only the vendor's own for vendors.
func (s *Service) ListProjectBids(ctx context.Context, actor authz.Actor, projectID uint) ([]model.Bid, error) {
	p, err := s.getProject(ctx, actor, projectID)
	if err != nil {
		return nil, err
	}
	q := s.db.WithContext(ctx).Where("project_id = ?", p.ID).Order("id DESC")
	if actor.IsVendor() {
		q = q.Where("vendor_id = ?", actor.ID)
	}
	var bids []model.Bid
	if err := q.Find(&bids).Error; err != nil {
		return nil, dbErr("list project bids", err)
	}
	return bids, nil
}

// ListMyBids returns the vendor's own bids across all projects.
func (s *Service) ListMyBids(ctx context.Context, actor authz.Actor) ([]model.Bid, error) {
	if !actor.IsVendor() {
		return nil, apperror.New(apperror.KindAuthorization, "only vendors have bids")
	}
	var bids []model.Bid
	err := s.db.WithContext(ctx).
		Where("vendor_id = ?", actor.ID).
		Order("id DESC").
		Find(&bids).Error
	if err != nil {
		return nil, dbErr("list my bids", err)
	}
	return bids, nil
}

// GetBid returns a single bid visible to the actor.
func (s *Service) GetBid(ctx context.Context, actor authz.Actor, bidID uint) (*model.Bid, error) {
	b, _, err := s.getBid(ctx, actor, bidID)
	return b, err
}
