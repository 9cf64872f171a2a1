package service

import (
	"context"
	"errors"
	"io"
	"time"

	"gorm.io/gorm"

	"github.com/propline/bidboard/dao/model"
	"github.com/propline/bidboard/pkg/apperror"
	"github.com/propline/bidboard/pkg/authz"
	"github.com/propline/bidboard/pkg/logutils"
	"github.com/propline/bidboard/pkg/objstore"
)

// DownloadLinkTTL bounds the lifetime of presigned document links.
const DownloadLinkTTL = time.Hour

type DocumentUpload struct {
	ProjectID   *uint
	BidID       *uint
	Name        string
	ContentType string
	Size        int64
	Content     io.Reader
}

// UploadDocument stores the payload and creates the metadata record.
// If the record cannot be created after the payload was stored, the
// payload is removed again so no orphaned object remains.
func (s *Service) UploadDocument(ctx context.Context, actor authz.Actor, in DocumentUpload) (*model.Document, error) {
	if in.Name == "" {
		return nil, apperror.New(apperror.KindValidation, "file name is required")
	}
	if (in.ProjectID == nil) == (in.BidID == nil) {
		return nil, apperror.New(apperror.KindValidation, "exactly one of projectId and bidId is required")
	}

	var kind string
	var entityID uint
	if in.ProjectID != nil {
		p, err := s.getProject(ctx, actor, *in.ProjectID)
		if err != nil {
			return nil, err
		}
		if !authz.CanWriteProject(actor, p) {
			return nil, apperror.New(apperror.KindAuthorization, "not the manager of this project")
		}
		kind, entityID = "project", p.ID
	} else {
		b, _, err := s.getBid(ctx, actor, *in.BidID)
		if err != nil {
			return nil, err
		}
		if !authz.CanEditBid(actor, b) {
			return nil, apperror.New(apperror.KindAuthorization, "bid attachments require a pending bid of your own")
		}
		kind, entityID = "bid", b.ID
	}

	locator := objstore.NewLocator(actor.ID, kind, entityID, in.Name)
	if err := s.store.Put(ctx, locator, in.Content, in.Size, in.ContentType); err != nil {
		return nil, apperror.Wrap(apperror.KindDependency, "store payload", err)
	}

	doc := model.Document{
		UploaderID:  actor.ID,
		ProjectID:   in.ProjectID,
		BidID:       in.BidID,
		Name:        in.Name,
		ContentType: in.ContentType,
		Size:        in.Size,
		Locator:     locator,
	}
	if err := s.db.WithContext(ctx).Create(&doc).Error; err != nil {
		// Compensating cleanup: the payload must not outlive a failed
		// metadata insert.
		if rmErr := s.store.Remove(ctx, locator); rmErr != nil {
			logutils.Log.Errorf("cleanup of orphaned payload %s failed: %v", locator, rmErr)
		}
		return nil, dbErr("create document record", err)
	}
	return &doc, nil
}

// DocumentLink authorizes the requester and returns a short-lived
// presigned URL, never the payload or a permanent location.
func (s *Service) DocumentLink(ctx context.Context, actor authz.Actor, docID uint) (string, error) {
	doc, err := s.getDocument(ctx, actor, docID)
	if err != nil {
		return "", err
	}
	link, err := s.store.PresignedGet(ctx, doc.Locator, DownloadLinkTTL)
	if err != nil {
		return "", apperror.Wrap(apperror.KindDependency, "presign document link", err)
	}
	return link, nil
}

// ListDocuments returns the metadata records linked to a project or bid
// that the actor may read.
func (s *Service) ListDocuments(ctx context.Context, actor authz.Actor, projectID, bidID *uint) ([]model.Document, error) {
	if (projectID == nil) == (bidID == nil) {
		return nil, apperror.New(apperror.KindValidation, "exactly one of projectId and bidId is required")
	}
	q := s.db.WithContext(ctx).Order("id DESC")
	if projectID != nil {
		if _, err := s.getProject(ctx, actor, *projectID); err != nil {
			return nil, err
		}
		q = q.Where("project_id = ?", *projectID)
	} else {
		if _, _, err := s.getBid(ctx, actor, *bidID); err != nil {
			return nil, err
		}
		q = q.Where("bid_id = ?", *bidID)
	}
	var docs []model.Document
	if err := q.Find(&docs).Error; err != nil {
		return nil, dbErr("list documents", err)
	}
	return docs, nil
}

// DeleteDocument removes the payload, then the record. A failed payload
// removal is logged and the record is deleted anyway; a dangling blob
// only shows up as a failed future removal, not as data loss.
func (s *Service) DeleteDocument(ctx context.Context, actor authz.Actor, docID uint) error {
	doc, err := s.getDocument(ctx, actor, docID)
	if err != nil {
		return err
	}
	if !authz.CanDeleteDocument(actor, doc) {
		return apperror.New(apperror.KindAuthorization, "only the uploader may delete a document")
	}
	if err := s.store.Remove(ctx, doc.Locator); err != nil {
		logutils.Log.Errorf("remove payload %s: %v", doc.Locator, err)
	}
	if err := s.db.WithContext(ctx).Delete(&model.Document{}, doc.ID).Error; err != nil {
		return dbErr("delete document record", err)
	}
	return nil
}

func (s *Service) getDocument(ctx context.Context, actor authz.Actor, id uint) (*model.Document, error) {
	var doc model.Document
	if err := s.db.WithContext(ctx).First(&doc, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errHidden()
		}
		return nil, dbErr("load document", err)
	}

	var projectManagerID, bidVendorID uint
	if doc.ProjectID != nil {
		var p model.Project
		if err := s.db.WithContext(ctx).First(&p, *doc.ProjectID).Error; err == nil {
			projectManagerID = p.ManagerID
		}
	}
	if doc.BidID != nil {
		var b model.Bid
		if err := s.db.WithContext(ctx).First(&b, *doc.BidID).Error; err == nil {
			bidVendorID = b.VendorID
			var p model.Project
			if err := s.db.WithContext(ctx).First(&p, b.ProjectID).Error; err == nil {
				projectManagerID = p.ManagerID
			}
		}
	}
	if !authz.CanReadDocument(actor, &doc, projectManagerID, bidVendorID) {
		return nil, errHidden()
	}
	return &doc, nil
}
