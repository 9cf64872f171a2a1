package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/propline/bidboard/dao/model"
	"github.com/propline/bidboard/pkg/apperror"
)

func TestProjectLifecycle(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	mgr := createUser(t, s, "mgr", model.RoleManager)
	prop, err := s.CreateProperty(ctx, mgr, PropertyInput{Name: "Oak Tower"})
	require.NoError(t, err)

	p, err := s.CreateProject(ctx, mgr, ProjectInput{PropertyID: prop.ID, Title: "Roof Repair"})
	require.NoError(t, err)
	assert.Equal(t, model.ProjectDraft, p.Status)

	p, err = s.PublishProject(ctx, mgr, p.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ProjectOpen, p.Status)

	// Publishing twice conflicts.
	_, err = s.PublishProject(ctx, mgr, p.ID)
	assert.True(t, apperror.IsKind(err, apperror.KindConflict))

	p, err = s.CloseBidding(ctx, mgr, p.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ProjectInReview, p.Status)

	// Start requires Awarded.
	_, err = s.StartProject(ctx, mgr, p.ID)
	assert.True(t, apperror.IsKind(err, apperror.KindConflict))

	p, err = s.CancelProject(ctx, mgr, p.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ProjectCancelled, p.Status)

	// Cancelled is terminal.
	_, err = s.CancelProject(ctx, mgr, p.ID)
	assert.True(t, apperror.IsKind(err, apperror.KindConflict))

	// Cancelled projects may be deleted.
	require.NoError(t, s.DeleteProject(ctx, mgr, p.ID))
	_, err = s.GetProject(ctx, mgr, p.ID)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestUpdateProjectKeepsConcurrentTransition(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	mgr, p := seedOpenProject(t, s, "Siding")

	// The project is cancelled between UpdateProject's load and its
	// write; the column-scoped update must not resurrect the old status.
	var raced bool
	err := s.db.Callback().Update().Before("gorm:update").Register("cancel_first", func(tx *gorm.DB) {
		if raced {
			return
		}
		if _, ok := tx.Statement.Model.(*model.Project); !ok {
			return
		}
		raced = true
		_, err := s.CancelProject(ctx, mgr, p.ID)
		require.NoError(t, err)
	})
	require.NoError(t, err)

	_, err = s.UpdateProject(ctx, mgr, p.ID, ProjectInput{Title: "Siding v2"})
	require.NoError(t, err)

	var proj model.Project
	require.NoError(t, s.db.First(&proj, p.ID).Error)
	assert.Equal(t, model.ProjectCancelled, proj.Status)
	assert.Equal(t, "Siding v2", proj.Title)
}

func TestProjectVisibility(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	mgr, p := seedOpenProject(t, s, "Roof Repair")
	otherMgr := createUser(t, s, "mgr2", model.RoleManager)
	vendor := createUser(t, s, "v1", model.RoleVendor)
	admin := createUser(t, s, "root", model.RoleAdmin)

	// Another manager probing the id cannot learn it exists.
	_, err := s.GetProject(ctx, otherMgr, p.ID)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))

	// Vendors see Open projects; once the project leaves Open they keep
	// access only through a bid of their own.
	_, err = s.GetProject(ctx, vendor, p.ID)
	require.NoError(t, err)
	bid, err := s.SubmitBid(ctx, vendor, p.ID, BidInput{Amount: 100})
	require.NoError(t, err)
	_, err = s.AcceptBid(ctx, mgr, bid.ID)
	require.NoError(t, err)
	_, err = s.GetProject(ctx, vendor, p.ID)
	require.NoError(t, err)

	v2 := createUser(t, s, "v2", model.RoleVendor)
	_, err = s.GetProject(ctx, v2, p.ID)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))

	_, err = s.GetProject(ctx, admin, p.ID)
	require.NoError(t, err)
}

func TestListMyProjects(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	mgr, p := seedOpenProject(t, s, "Roof Repair")
	seedOpenProject(t, s, "Lobby Paint")
	vendor := createUser(t, s, "v1", model.RoleVendor)
	admin := createUser(t, s, "root", model.RoleAdmin)

	_, err := s.SubmitBid(ctx, vendor, p.ID, BidInput{Amount: 100})
	require.NoError(t, err)

	mine, err := s.ListMyProjects(ctx, mgr)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, p.ID, mine[0].ID)

	// The vendor's list is the projects they bid on.
	bidOn, err := s.ListMyProjects(ctx, vendor)
	require.NoError(t, err)
	require.Len(t, bidOn, 1)
	assert.Equal(t, p.ID, bidOn[0].ID)

	all, err := s.ListMyProjects(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	open, total, err := s.ListOpenProjects(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, open, 2)
	assert.EqualValues(t, 2, total)
}

func TestPropertyOwnership(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	mgr := createUser(t, s, "mgr", model.RoleManager)
	otherMgr := createUser(t, s, "mgr2", model.RoleManager)
	vendor := createUser(t, s, "v1", model.RoleVendor)

	// Only managers own properties.
	_, err := s.CreateProperty(ctx, vendor, PropertyInput{Name: "Vendor HQ"})
	assert.True(t, apperror.IsKind(err, apperror.KindAuthorization))

	prop, err := s.CreateProperty(ctx, mgr, PropertyInput{Name: "Oak Tower", City: "Portland"})
	require.NoError(t, err)

	_, err = s.GetProperty(ctx, otherMgr, prop.ID)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))

	_, err = s.UpdateProperty(ctx, otherMgr, prop.ID, PropertyInput{Name: "Stolen"})
	assert.Error(t, err)

	updated, err := s.UpdateProperty(ctx, mgr, prop.ID, PropertyInput{Name: "Oak Tower II"})
	require.NoError(t, err)
	assert.Equal(t, "Oak Tower II", updated.Name)
}

func TestDeletePropertyWithProjectsInFlight(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	mgr, p := seedOpenProject(t, s, "Roof Repair")

	err := s.DeleteProperty(ctx, mgr, p.PropertyID)
	assert.True(t, apperror.IsKind(err, apperror.KindConflict))

	_, err = s.CancelProject(ctx, mgr, p.ID)
	require.NoError(t, err)
	require.NoError(t, s.DeleteProperty(ctx, mgr, p.PropertyID))
}

// The end-to-end marketplace flow: post, publish, two bids, one accept.
func TestMarketplaceScenario(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	mgr := createUser(t, s, "manager-m", model.RoleManager)
	v1 := createUser(t, s, "vendor-1", model.RoleVendor)
	v2 := createUser(t, s, "vendor-2", model.RoleVendor)

	prop, err := s.CreateProperty(ctx, mgr, PropertyInput{Name: "Oak Tower"})
	require.NoError(t, err)
	p, err := s.CreateProject(ctx, mgr, ProjectInput{PropertyID: prop.ID, Title: "Roof Repair"})
	require.NoError(t, err)
	p, err = s.PublishProject(ctx, mgr, p.ID)
	require.NoError(t, err)

	_, err = s.SubmitBid(ctx, v1, p.ID, BidInput{Amount: 5000})
	require.NoError(t, err)
	b2, err := s.SubmitBid(ctx, v2, p.ID, BidInput{Amount: 4500})
	require.NoError(t, err)

	_, err = s.AcceptBid(ctx, mgr, b2.ID)
	require.NoError(t, err)

	var proj model.Project
	require.NoError(t, s.db.First(&proj, p.ID).Error)
	assert.Equal(t, model.ProjectAwarded, proj.Status)

	// V1 was auto-rejected and told which project it was about.
	ns := notificationsFor(t, s, v1.ID)
	require.Len(t, ns, 1)
	assert.Contains(t, ns[0].Title, "Roof Repair")

	// The awarded project can move through execution.
	p, err = s.StartProject(ctx, mgr, p.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ProjectInProgress, p.Status)
	p, err = s.CompleteProject(ctx, mgr, p.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ProjectCompleted, p.Status)
}
