package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/propline/bidboard/dao/model"
	"github.com/propline/bidboard/pkg/apperror"
)

func TestSubmitBid(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	mgr, p := seedOpenProject(t, s, "Roof Repair")
	vendor := createUser(t, s, "v1", model.RoleVendor)

	bid, err := s.SubmitBid(ctx, vendor, p.ID, BidInput{Amount: 5000, Timeline: "2 weeks"})
	require.NoError(t, err)
	assert.Equal(t, model.BidPending, bid.Status)
	assert.Equal(t, vendor.ID, bid.VendorID)

	// The manager is notified about the new bid.
	ns := notificationsFor(t, s, mgr.ID)
	require.Len(t, ns, 1)
	assert.Equal(t, model.NotifyBidSubmitted, ns[0].Type)
	assert.Contains(t, ns[0].Title, "Roof Repair")

	// One bid per vendor per project, ever.
	_, err = s.SubmitBid(ctx, vendor, p.ID, BidInput{Amount: 4000})
	assert.True(t, apperror.IsKind(err, apperror.KindConflict))
	var count int64
	require.NoError(t, s.db.Model(&model.Bid{}).Where("project_id = ?", p.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	// Managers do not bid.
	_, err = s.SubmitBid(ctx, mgr, p.ID, BidInput{Amount: 1})
	assert.True(t, apperror.IsKind(err, apperror.KindAuthorization))

	// Non-positive amounts are rejected outright.
	v2 := createUser(t, s, "v2", model.RoleVendor)
	_, err = s.SubmitBid(ctx, v2, p.ID, BidInput{Amount: 0})
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}

func TestSubmitBidProjectNotOpen(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	mgr, p := seedOpenProject(t, s, "Lobby Paint")
	vendor := createUser(t, s, "v1", model.RoleVendor)

	_, err := s.CloseBidding(ctx, mgr, p.ID)
	require.NoError(t, err)

	// A vendor without a bid cannot even see a non-Open project.
	_, err = s.SubmitBid(ctx, vendor, p.ID, BidInput{Amount: 100})
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestUpdateAndWithdrawBid(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	mgr, p := seedOpenProject(t, s, "HVAC Service")
	vendor := createUser(t, s, "v1", model.RoleVendor)

	bid, err := s.SubmitBid(ctx, vendor, p.ID, BidInput{Amount: 900})
	require.NoError(t, err)

	updated, err := s.UpdateBid(ctx, vendor, bid.ID, BidInput{Amount: 850, Description: "revised"})
	require.NoError(t, err)
	assert.EqualValues(t, 850, updated.Amount)

	// Only the submitting vendor edits.
	stranger := createUser(t, s, "v2", model.RoleVendor)
	_, err = s.UpdateBid(ctx, stranger, bid.ID, BidInput{Amount: 1})
	assert.Error(t, err)

	withdrawn, err := s.WithdrawBid(ctx, vendor, bid.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BidWithdrawn, withdrawn.Status)

	// Withdrawn is terminal.
	_, err = s.UpdateBid(ctx, vendor, bid.ID, BidInput{Amount: 800})
	assert.True(t, apperror.IsKind(err, apperror.KindConflict))
	_, err = s.WithdrawBid(ctx, vendor, bid.ID)
	assert.True(t, apperror.IsKind(err, apperror.KindConflict))

	ns := notificationsFor(t, s, mgr.ID)
	require.Len(t, ns, 2)
	assert.Equal(t, model.NotifyBidWithdrawn, ns[1].Type)
}

func TestUpdateBidLosesRaceWithAccept(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	mgr, p := seedOpenProject(t, s, "Deck Stain")
	vendor := createUser(t, s, "v1", model.RoleVendor)

	bid, err := s.SubmitBid(ctx, vendor, p.ID, BidInput{Amount: 1200})
	require.NoError(t, err)

	// The manager's accept lands between UpdateBid's load and its write.
	var raced bool
	err = s.db.Callback().Update().Before("gorm:update").Register("accept_first", func(tx *gorm.DB) {
		if raced {
			return
		}
		if _, ok := tx.Statement.Model.(*model.Bid); !ok {
			return
		}
		raced = true
		_, err := s.AcceptBid(ctx, mgr, bid.ID)
		require.NoError(t, err)
	})
	require.NoError(t, err)

	// The stale edit must lose: the decided bid never goes back to
	// Pending.
	_, err = s.UpdateBid(ctx, vendor, bid.ID, BidInput{Amount: 900})
	assert.True(t, apperror.IsKind(err, apperror.KindConflict))

	var b model.Bid
	require.NoError(t, s.db.First(&b, bid.ID).Error)
	assert.Equal(t, model.BidAccepted, b.Status)
	assert.EqualValues(t, 1200, b.Amount)
	var proj model.Project
	require.NoError(t, s.db.First(&proj, p.ID).Error)
	assert.Equal(t, model.ProjectAwarded, proj.Status)
}

func TestAcceptBidConcurrent(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	mgr, p := seedOpenProject(t, s, "Parking Lot")
	v1 := createUser(t, s, "v1", model.RoleVendor)
	v2 := createUser(t, s, "v2", model.RoleVendor)

	b1, err := s.SubmitBid(ctx, v1, p.ID, BidInput{Amount: 800})
	require.NoError(t, err)
	b2, err := s.SubmitBid(ctx, v2, p.ID, BidInput{Amount: 750})
	require.NoError(t, err)

	// Two goroutines race to award the same project; the status guard in
	// the UPDATE lets exactly one through.
	start := make(chan struct{})
	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i, id := range []uint{b1.ID, b2.ID} {
		wg.Add(1)
		go func(i int, id uint) {
			defer wg.Done()
			<-start
			_, errs[i] = s.AcceptBid(ctx, mgr, id)
		}(i, id)
	}
	close(start)
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
		}
	}
	assert.Equal(t, 1, wins)

	var acceptedCount int64
	require.NoError(t, s.db.Model(&model.Bid{}).
		Where("project_id = ? AND status = ?", p.ID, model.BidAccepted).
		Count(&acceptedCount).Error)
	assert.EqualValues(t, 1, acceptedCount)
	var proj model.Project
	require.NoError(t, s.db.First(&proj, p.ID).Error)
	assert.Equal(t, model.ProjectAwarded, proj.Status)
}

func TestAcceptBidCascade(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	mgr, p := seedOpenProject(t, s, "Roof Repair")
	v1 := createUser(t, s, "v1", model.RoleVendor)
	v2 := createUser(t, s, "v2", model.RoleVendor)

	b1, err := s.SubmitBid(ctx, v1, p.ID, BidInput{Amount: 5000})
	require.NoError(t, err)
	b2, err := s.SubmitBid(ctx, v2, p.ID, BidInput{Amount: 4500})
	require.NoError(t, err)

	accepted, err := s.AcceptBid(ctx, mgr, b2.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BidAccepted, accepted.Status)

	// Project awarded, sibling auto-rejected, atomically.
	var proj model.Project
	require.NoError(t, s.db.First(&proj, p.ID).Error)
	assert.Equal(t, model.ProjectAwarded, proj.Status)
	var sibling model.Bid
	require.NoError(t, s.db.First(&sibling, b1.ID).Error)
	assert.Equal(t, model.BidRejected, sibling.Status)

	// The winner hears about it, and so does the auto-rejected vendor.
	loserNs := notificationsFor(t, s, v1.ID)
	require.Len(t, loserNs, 1)
	assert.Equal(t, model.NotifyBidRejected, loserNs[0].Type)
	assert.Contains(t, loserNs[0].Body, "Roof Repair")
	winnerNs := notificationsFor(t, s, v2.ID)
	require.Len(t, winnerNs, 1)
	assert.Equal(t, model.NotifyBidAccepted, winnerNs[0].Type)

	// A second accept on the same project conflicts and changes nothing.
	_, err = s.AcceptBid(ctx, mgr, b1.ID)
	assert.True(t, apperror.IsKind(err, apperror.KindConflict))
	require.NoError(t, s.db.First(&sibling, b1.ID).Error)
	assert.Equal(t, model.BidRejected, sibling.Status)
}

func TestAcceptBidFromInReview(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	mgr, p := seedOpenProject(t, s, "Window Wash")
	vendor := createUser(t, s, "v1", model.RoleVendor)

	bid, err := s.SubmitBid(ctx, vendor, p.ID, BidInput{Amount: 300})
	require.NoError(t, err)
	_, err = s.CloseBidding(ctx, mgr, p.ID)
	require.NoError(t, err)

	accepted, err := s.AcceptBid(ctx, mgr, bid.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BidAccepted, accepted.Status)
}

func TestAcceptBidAuthorization(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	_, p := seedOpenProject(t, s, "Gutter Clean")
	vendor := createUser(t, s, "v1", model.RoleVendor)
	otherMgr := createUser(t, s, "mgr2", model.RoleManager)
	admin := createUser(t, s, "root", model.RoleAdmin)

	bid, err := s.SubmitBid(ctx, vendor, p.ID, BidInput{Amount: 300})
	require.NoError(t, err)

	// Another manager cannot even see the bid.
	_, err = s.AcceptBid(ctx, otherMgr, bid.ID)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))

	// Admins see the bid but deciding is the managing manager's call.
	_, err = s.AcceptBid(ctx, admin, bid.ID)
	assert.True(t, apperror.IsKind(err, apperror.KindAuthorization))
}

func TestRejectBid(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	mgr, p := seedOpenProject(t, s, "Fence Fix")
	v1 := createUser(t, s, "v1", model.RoleVendor)
	v2 := createUser(t, s, "v2", model.RoleVendor)

	b1, err := s.SubmitBid(ctx, v1, p.ID, BidInput{Amount: 700})
	require.NoError(t, err)
	b2, err := s.SubmitBid(ctx, v2, p.ID, BidInput{Amount: 650})
	require.NoError(t, err)

	rejected, err := s.RejectBid(ctx, mgr, b1.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BidRejected, rejected.Status)

	// Rejecting one bid leaves the siblings and the project alone.
	var other model.Bid
	require.NoError(t, s.db.First(&other, b2.ID).Error)
	assert.Equal(t, model.BidPending, other.Status)
	var proj model.Project
	require.NoError(t, s.db.First(&proj, p.ID).Error)
	assert.Equal(t, model.ProjectOpen, proj.Status)

	ns := notificationsFor(t, s, v1.ID)
	require.Len(t, ns, 1)
	assert.Equal(t, model.NotifyBidRejected, ns[0].Type)
}

func TestListProjectBidsVisibility(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	mgr, p := seedOpenProject(t, s, "Driveway Seal")
	v1 := createUser(t, s, "v1", model.RoleVendor)
	v2 := createUser(t, s, "v2", model.RoleVendor)

	_, err := s.SubmitBid(ctx, v1, p.ID, BidInput{Amount: 100})
	require.NoError(t, err)
	_, err = s.SubmitBid(ctx, v2, p.ID, BidInput{Amount: 120})
	require.NoError(t, err)

	all, err := s.ListProjectBids(ctx, mgr, p.ID)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	// A vendor sees only their own bid on the project.
	own, err := s.ListProjectBids(ctx, v1, p.ID)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, v1.ID, own[0].VendorID)
}
