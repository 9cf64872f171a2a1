package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propline/bidboard/dao/model"
	"github.com/propline/bidboard/pkg/apperror"
)

func uploadInput(projectID, bidID *uint, name, body string) DocumentUpload {
	return DocumentUpload{
		ProjectID:   projectID,
		BidID:       bidID,
		Name:        name,
		ContentType: "application/pdf",
		Size:        int64(len(body)),
		Content:     strings.NewReader(body),
	}
}

func TestUploadDocumentScope(t *testing.T) {
	s, store := newTestService(t)
	ctx := context.Background()
	mgr, p := seedOpenProject(t, s, "Roof Repair")

	// Exactly one of projectId / bidId.
	_, err := s.UploadDocument(ctx, mgr, uploadInput(nil, nil, "x.pdf", "data"))
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
	one := uint(1)
	_, err = s.UploadDocument(ctx, mgr, uploadInput(&p.ID, &one, "x.pdf", "data"))
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	doc, err := s.UploadDocument(ctx, mgr, uploadInput(&p.ID, nil, "scope.pdf", "scope of work"))
	require.NoError(t, err)
	assert.Equal(t, mgr.ID, doc.UploaderID)
	assert.Equal(t, 1, store.count())

	// Vendors cannot attach to someone else's project.
	vendor := createUser(t, s, "v1", model.RoleVendor)
	_, err = s.UploadDocument(ctx, vendor, uploadInput(&p.ID, nil, "spam.pdf", "x"))
	assert.True(t, apperror.IsKind(err, apperror.KindAuthorization))
}

func TestUploadDocumentCleanupOnRecordFailure(t *testing.T) {
	s, store := newTestService(t)
	ctx := context.Background()
	mgr, p := seedOpenProject(t, s, "Roof Repair")

	// Force the metadata insert to fail after the payload is stored.
	require.NoError(t, s.db.Migrator().DropTable(&model.Document{}))

	_, err := s.UploadDocument(ctx, mgr, uploadInput(&p.ID, nil, "doomed.pdf", "payload"))
	require.Error(t, err)

	// The compensating cleanup leaves no orphaned payload behind.
	assert.Equal(t, 0, store.count())
}

func TestDocumentLink(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	mgr, p := seedOpenProject(t, s, "Roof Repair")
	vendor := createUser(t, s, "v1", model.RoleVendor)
	bid, err := s.SubmitBid(ctx, vendor, p.ID, BidInput{Amount: 100})
	require.NoError(t, err)

	doc, err := s.UploadDocument(ctx, vendor, uploadInput(nil, &bid.ID, "quote.pdf", "itemized quote"))
	require.NoError(t, err)

	// The vendor and the evaluating manager both get a link.
	link, err := s.DocumentLink(ctx, vendor, doc.ID)
	require.NoError(t, err)
	assert.Contains(t, link, doc.Locator)
	_, err = s.DocumentLink(ctx, mgr, doc.ID)
	require.NoError(t, err)

	// A third party sees nothing, not even existence.
	other := createUser(t, s, "v2", model.RoleVendor)
	_, err = s.DocumentLink(ctx, other, doc.ID)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestDeleteDocument(t *testing.T) {
	s, store := newTestService(t)
	ctx := context.Background()
	mgr, p := seedOpenProject(t, s, "Roof Repair")

	doc, err := s.UploadDocument(ctx, mgr, uploadInput(&p.ID, nil, "scope.pdf", "v1"))
	require.NoError(t, err)

	// Only the uploader (or an admin) may delete.
	vendor := createUser(t, s, "v1", model.RoleVendor)
	err = s.DeleteDocument(ctx, vendor, doc.ID)
	require.Error(t, err)

	require.NoError(t, s.DeleteDocument(ctx, mgr, doc.ID))
	assert.Equal(t, 0, store.count())
	err = s.DeleteDocument(ctx, mgr, doc.ID)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestListDocuments(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	mgr, p := seedOpenProject(t, s, "Roof Repair")

	_, err := s.UploadDocument(ctx, mgr, uploadInput(&p.ID, nil, "a.pdf", "a"))
	require.NoError(t, err)
	_, err = s.UploadDocument(ctx, mgr, uploadInput(&p.ID, nil, "b.pdf", "b"))
	require.NoError(t, err)

	docs, err := s.ListDocuments(ctx, mgr, &p.ID, nil)
	require.NoError(t, err)
	assert.Len(t, docs, 2)

	_, err = s.ListDocuments(ctx, mgr, nil, nil)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}

func TestUploadStoreFailure(t *testing.T) {
	s, store := newTestService(t)
	ctx := context.Background()
	mgr, p := seedOpenProject(t, s, "Roof Repair")

	store.putErr = errors.New("endpoint unreachable")
	_, err := s.UploadDocument(ctx, mgr, uploadInput(&p.ID, nil, "x.pdf", "data"))
	assert.True(t, apperror.IsKind(err, apperror.KindDependency))

	// No metadata record without a stored payload.
	var count int64
	require.NoError(t, s.db.Model(&model.Document{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}
