package usecase

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ideationmarket/goapi/base/ctx"
	"github.com/ideationmarket/goapi/domain"
	"github.com/ideationmarket/goapi/domain/settings"
)

type memSettingsRepo struct {
	doc *settings.Settings
}

func (r *memSettingsRepo) Get(c ctx.Ctx) (*settings.Settings, error) {
	if r.doc == nil {
		return nil, nil
	}
	cp := *r.doc
	return &cp, nil
}

func (r *memSettingsRepo) Upsert(c ctx.Ctx, s *settings.Settings) error {
	cp := *s
	r.doc = &cp
	return nil
}

var (
	owner    = domain.Address("0x5409ed021d9299bf6814279a6a1411a7e866a631")
	stranger = domain.Address("0x6ecbe1db9ef729cbe972c83fb886247691fb6beb")
)

func newInitialized(t *testing.T) (settings.Usecase, *memSettingsRepo) {
	repo := &memSettingsRepo{}
	uc := New(repo)
	require.NoError(t, uc.Init(ctx.Background(), owner, 1000, 300))
	return uc, repo
}

func TestInit(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()

	uc := New(&memSettingsRepo{})
	req.ErrorIs(uc.Init(c, domain.EmptyAddress, 1000, 300), domain.ErrInvalidAddress)
	req.ErrorIs(uc.Init(c, owner, domain.FeeDenominator, 300), domain.ErrFeeTooHigh)
	req.ErrorIs(uc.Init(c, owner, 1000, 0), domain.ErrBadParamInput)

	uc, _ = newInitialized(t)

	// second init is a no-op
	req.NoError(uc.Init(c, stranger, 500, 10))
	got, err := uc.Owner(c)
	req.NoError(err)
	req.Equal(owner, got)
	fee, err := uc.GetInnovationFee(c)
	req.NoError(err)
	req.Equal(uint32(1000), fee)
}

func TestTwoStepOwnership(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()

	uc, _ := newInitialized(t)

	req.ErrorIs(uc.TransferOwnership(c, stranger, stranger), domain.ErrNotOwner)
	req.ErrorIs(uc.TransferOwnership(c, owner, domain.EmptyAddress), domain.ErrInvalidAddress)

	// nobody can accept before a transfer starts
	req.ErrorIs(uc.AcceptOwnership(c, stranger), domain.ErrNotPendingOwner)

	req.NoError(uc.TransferOwnership(c, owner, stranger))

	// owner is unchanged until acceptance
	got, err := uc.Owner(c)
	req.NoError(err)
	req.Equal(owner, got)
	pending, err := uc.PendingOwner(c)
	req.NoError(err)
	req.Equal(stranger, pending)

	// only the pending owner may accept
	req.ErrorIs(uc.AcceptOwnership(c, owner), domain.ErrNotPendingOwner)
	req.NoError(uc.AcceptOwnership(c, stranger))

	got, err = uc.Owner(c)
	req.NoError(err)
	req.Equal(stranger, got)
	pending, err = uc.PendingOwner(c)
	req.NoError(err)
	req.True(pending.IsEmpty())

	// previous owner lost its privileges
	req.ErrorIs(uc.Pause(c, owner), domain.ErrNotOwner)
}

func TestPause(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()

	uc, _ := newInitialized(t)

	req.NoError(uc.RequireNotPaused(c))
	req.ErrorIs(uc.Pause(c, stranger), domain.ErrNotOwner)

	req.NoError(uc.Pause(c, owner))
	paused, err := uc.IsPaused(c)
	req.NoError(err)
	req.True(paused)
	req.ErrorIs(uc.RequireNotPaused(c), domain.ErrPaused)

	req.NoError(uc.Unpause(c, owner))
	req.NoError(uc.RequireNotPaused(c))
}

func TestSetInnovationFee(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()

	uc, _ := newInitialized(t)

	req.ErrorIs(uc.SetInnovationFee(c, stranger, 2000), domain.ErrNotOwner)
	req.ErrorIs(uc.SetInnovationFee(c, owner, domain.FeeDenominator), domain.ErrFeeTooHigh)

	req.NoError(uc.SetInnovationFee(c, owner, 2500))
	fee, err := uc.GetInnovationFee(c)
	req.NoError(err)
	req.Equal(uint32(2500), fee)
}

func TestSetBuyerWhitelistMaxBatchSize(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()

	uc, _ := newInitialized(t)

	req.ErrorIs(uc.SetBuyerWhitelistMaxBatchSize(c, stranger, 50), domain.ErrNotOwner)
	req.ErrorIs(uc.SetBuyerWhitelistMaxBatchSize(c, owner, 0), domain.ErrBadParamInput)

	req.NoError(uc.SetBuyerWhitelistMaxBatchSize(c, owner, 50))
	size, err := uc.GetBuyerWhitelistMaxBatchSize(c)
	req.NoError(err)
	req.Equal(uint16(50), size)
}
