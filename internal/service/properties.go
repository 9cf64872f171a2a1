package service

import (
	"context"

	"github.com/propline/bidboard/dao/model"
	"github.com/propline/bidboard/pkg/apperror"
	"github.com/propline/bidboard/pkg/authz"
)

type PropertyInput struct {
	Name    string
	Address string
	City    string
	State   string
	Zip     string
}

// CreateProperty registers a new property owned by the acting manager.
func (s *Service) CreateProperty(ctx context.Context, actor authz.Actor, in PropertyInput) (*model.Property, error) {
	if !actor.IsManager() {
		return nil, apperror.New(apperror.KindAuthorization, "only property managers may create properties")
	}
	if in.Name == "" {
		return nil, apperror.New(apperror.KindValidation, "property name is required")
	}
	p := model.Property{
		ManagerID: actor.ID,
		Name:      in.Name,
		Address:   in.Address,
		City:      in.City,
		State:     in.State,
		Zip:       in.Zip,
	}
	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, dbErr("create property", err)
	}
	return &p, nil
}

func (s *Service) GetProperty(ctx context.Context, actor authz.Actor, id uint) (*model.Property, error) {
	return s.getProperty(ctx, actor, id)
}

// ListProperties returns the actor's own properties; admins see all.
func (s *Service) ListProperties(ctx context.Context, actor authz.Actor) ([]model.Property, error) {
	q := s.db.WithContext(ctx).Order("id DESC")
	if !actor.IsAdmin() {
		q = q.Where("manager_id = ?", actor.ID)
	}
	var props []model.Property
	if err := q.Find(&props).Error; err != nil {
		return nil, dbErr("list properties", err)
	}
	return props, nil
}

func (s *Service) UpdateProperty(ctx context.Context, actor authz.Actor, id uint, in PropertyInput) (*model.Property, error) {
	p, err := s.getProperty(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanWriteProperty(actor, p) {
		return nil, apperror.New(apperror.KindAuthorization, "not the owner of this property")
	}
	if in.Name != "" {
		p.Name = in.Name
	}
	p.Address = in.Address
	p.City = in.City
	p.State = in.State
	p.Zip = in.Zip
	err = s.db.WithContext(ctx).Model(&model.Property{}).
		Where("id = ?", p.ID).
		Updates(map[string]any{
			"name":    p.Name,
			"address": p.Address,
			"city":    p.City,
			"state":   p.State,
			"zip":     p.Zip,
		}).Error
	if err != nil {
		return nil, dbErr("update property", err)
	}
	return p, nil
}

// DeleteProperty removes a property. Rejected while any project under
// it is still in flight.
func (s *Service) DeleteProperty(ctx context.Context, actor authz.Actor, id uint) error {
	p, err := s.getProperty(ctx, actor, id)
	if err != nil {
		return err
	}
	if !authz.CanDeleteProperty(actor, p) {
		return apperror.New(apperror.KindAuthorization, "not the owner of this property")
	}
	var active int64
	err = s.db.WithContext(ctx).Model(&model.Project{}).
		Where("property_id = ? AND status IN ?", p.ID,
			[]model.ProjectStatus{model.ProjectOpen, model.ProjectInReview, model.ProjectAwarded, model.ProjectInProgress}).
		Count(&active).Error
	if err != nil {
		return dbErr("count active projects", err)
	}
	if active > 0 {
		return apperror.New(apperror.KindConflict, "property has projects in flight")
	}
	if err := s.db.WithContext(ctx).Delete(&model.Property{}, p.ID).Error; err != nil {
		return dbErr("delete property", err)
	}
	return nil
}
