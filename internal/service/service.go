// Package service implements the resource services: every operation
// authorizes the actor, runs the queries, and returns either a result
// or an apperror the HTTP layer maps to a status. Authorization is
// enforced here and only here.
package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/propline/bidboard/dao/model"
	"github.com/propline/bidboard/pkg/apperror"
	"github.com/propline/bidboard/pkg/authz"
	"github.com/propline/bidboard/pkg/notify"
	"github.com/propline/bidboard/pkg/objstore"
)

type Service struct {
	db       *gorm.DB
	notifier *notify.Dispatcher
	store    objstore.Store
}

func New(db *gorm.DB, notifier *notify.Dispatcher, store objstore.Store) *Service {
	return &Service{db: db, notifier: notifier, store: store}
}

// errHidden is the uniform answer when a resource exists but the actor
// has no read rights on it: existence is not disclosed.
func errHidden() *apperror.Error {
	return apperror.New(apperror.KindNotFound, "resource not found")
}

func dbErr(msg string, err error) *apperror.Error {
	return apperror.Wrap(apperror.KindDependency, msg, err)
}

// getProperty loads a property and applies the read rule. A miss and a
// denied read are indistinguishable to the caller.
func (s *Service) getProperty(ctx context.Context, actor authz.Actor, id uint) (*model.Property, error) {
	var p model.Property
	if err := s.db.WithContext(ctx).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errHidden()
		}
		return nil, dbErr("load property", err)
	}
	if !authz.CanReadProperty(actor, &p) {
		return nil, errHidden()
	}
	return &p, nil
}

// getProject loads a project and applies the read rule, including the
// vendor has-a-bid exception.
func (s *Service) getProject(ctx context.Context, actor authz.Actor, id uint) (*model.Project, error) {
	var p model.Project
	if err := s.db.WithContext(ctx).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errHidden()
		}
		return nil, dbErr("load project", err)
	}
	hasBid := false
	if actor.IsVendor() {
		var n int64
		err := s.db.WithContext(ctx).Model(&model.Bid{}).
			Where("project_id = ? AND vendor_id = ?", p.ID, actor.ID).
			Count(&n).Error
		if err != nil {
			return nil, dbErr("check vendor bid", err)
		}
		hasBid = n > 0
	}
	if !authz.CanReadProject(actor, &p, hasBid) {
		return nil, errHidden()
	}
	return &p, nil
}

// getBid loads a bid together with its project's manager id and applies
// the read rule.
func (s *Service) getBid(ctx context.Context, actor authz.Actor, id uint) (*model.Bid, *model.Project, error) {
	var b model.Bid
	if err := s.db.WithContext(ctx).First(&b, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, errHidden()
		}
		return nil, nil, dbErr("load bid", err)
	}
	var p model.Project
	if err := s.db.WithContext(ctx).First(&p, b.ProjectID).Error; err != nil {
		return nil, nil, dbErr("load bid project", err)
	}
	if !authz.CanReadBid(actor, &b, p.ManagerID) {
		return nil, nil, errHidden()
	}
	return &b, &p, nil
}
