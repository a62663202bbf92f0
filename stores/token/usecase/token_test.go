package usecase

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ideationmarket/goapi/base/ctx"
	"github.com/ideationmarket/goapi/domain"
	"github.com/ideationmarket/goapi/domain/token"
)

type tokenKey struct {
	collection domain.Address
	tokenId    domain.TokenId
}

type balanceKey struct {
	collection domain.Address
	tokenId    domain.TokenId
	holder     domain.Address
}

type approvalKey struct {
	collection domain.Address
	holder     domain.Address
	operator   domain.Address
}

type memTokenRepo struct {
	tokens    map[tokenKey]token.Token
	balances  map[balanceKey]token.Balance
	approvals map[approvalKey]token.OperatorApproval
}

func newMemTokenRepo() *memTokenRepo {
	return &memTokenRepo{
		tokens:    map[tokenKey]token.Token{},
		balances:  map[balanceKey]token.Balance{},
		approvals: map[approvalKey]token.OperatorApproval{},
	}
}

func (r *memTokenRepo) FindOne(c ctx.Ctx, collection domain.Address, tokenId domain.TokenId) (*token.Token, error) {
	t, ok := r.tokens[tokenKey{collection.ToLower(), tokenId}]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (r *memTokenRepo) Upsert(c ctx.Ctx, t *token.Token) error {
	cp := *t
	cp.Collection = cp.Collection.ToLower()
	r.tokens[tokenKey{cp.Collection, cp.TokenId}] = cp
	return nil
}

func (r *memTokenRepo) FindBalance(c ctx.Ctx, collection domain.Address, tokenId domain.TokenId, holder domain.Address) (*token.Balance, error) {
	b, ok := r.balances[balanceKey{collection.ToLower(), tokenId, holder.ToLower()}]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (r *memTokenRepo) UpsertBalance(c ctx.Ctx, b *token.Balance) error {
	cp := *b
	cp.Collection = cp.Collection.ToLower()
	cp.Holder = cp.Holder.ToLower()
	r.balances[balanceKey{cp.Collection, cp.TokenId, cp.Holder}] = cp
	return nil
}

func (r *memTokenRepo) FindApproval(c ctx.Ctx, collection, holder, operator domain.Address) (*token.OperatorApproval, error) {
	a, ok := r.approvals[approvalKey{collection.ToLower(), holder.ToLower(), operator.ToLower()}]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (r *memTokenRepo) CreateApproval(c ctx.Ctx, a token.OperatorApproval) error {
	a.Collection = a.Collection.ToLower()
	a.Holder = a.Holder.ToLower()
	a.Operator = a.Operator.ToLower()
	r.approvals[approvalKey{a.Collection, a.Holder, a.Operator}] = a
	return nil
}

func (r *memTokenRepo) DeleteApproval(c ctx.Ctx, collection, holder, operator domain.Address) error {
	delete(r.approvals, approvalKey{collection.ToLower(), holder.ToLower(), operator.ToLower()})
	return nil
}

var (
	alice    = domain.Address("0x5409ed021d9299bf6814279a6a1411a7e866a631")
	bob      = domain.Address("0x6ecbe1db9ef729cbe972c83fb886247691fb6beb")
	operator = domain.Address("0xe36ea790bc9d7ab70c55260c66d52b1eca985f84")

	collection = domain.Address("0x00000000000000000000000000000000000000c1")
)

func TestMint(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()
	uc := New(newMemTokenRepo())

	req.ErrorIs(uc.Mint(c, &token.Token{TokenId: "1", TokenType: domain.TokenTypeUnique, Owner: alice}, 0), domain.ErrInvalidAddress)
	req.ErrorIs(uc.Mint(c, &token.Token{Collection: collection, TokenId: "1", TokenType: domain.TokenTypeUnique}, 0), domain.ErrInvalidAddress)
	req.ErrorIs(uc.Mint(c, &token.Token{Collection: collection, TokenId: "1", TokenType: domain.TokenTypeMultiUnit, Owner: alice}, 0), domain.ErrBadParamInput)
	req.ErrorIs(uc.Mint(c, &token.Token{Collection: collection, TokenId: "1", Owner: alice}, 0), domain.ErrBadParamInput)

	req.NoError(uc.Mint(c, &token.Token{Collection: collection, TokenId: "1", TokenType: domain.TokenTypeUnique, Owner: alice}, 0))
	owner, err := uc.OwnerOf(c, collection, "1")
	req.NoError(err)
	req.Equal(alice, owner)

	// multi-unit tokens have no single owner, holdings are balances
	req.NoError(uc.Mint(c, &token.Token{Collection: collection, TokenId: "2", TokenType: domain.TokenTypeMultiUnit, Owner: alice}, 10))
	owner, err = uc.OwnerOf(c, collection, "2")
	req.NoError(err)
	req.True(owner.IsEmpty())
	bal, err := uc.BalanceOf(c, collection, "2", alice)
	req.NoError(err)
	req.Equal(uint64(10), bal)

	_, err = uc.OwnerOf(c, collection, "99")
	req.ErrorIs(err, domain.ErrNotFound)
}

func TestApprovalForAll(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()
	uc := New(newMemTokenRepo())

	req.ErrorIs(uc.SetApprovalForAll(c, alice, collection, domain.EmptyAddress, true), domain.ErrInvalidAddress)

	ok, err := uc.IsApprovedForAll(c, collection, alice, operator)
	req.NoError(err)
	req.False(ok)

	req.NoError(uc.SetApprovalForAll(c, alice, collection, operator, true))
	ok, err = uc.IsApprovedForAll(c, collection, alice, operator)
	req.NoError(err)
	req.True(ok)

	// approval is per holder
	ok, err = uc.IsApprovedForAll(c, collection, bob, operator)
	req.NoError(err)
	req.False(ok)

	req.NoError(uc.SetApprovalForAll(c, alice, collection, operator, false))
	ok, err = uc.IsApprovedForAll(c, collection, alice, operator)
	req.NoError(err)
	req.False(ok)
}

func TestTransferUnique(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()
	uc := New(newMemTokenRepo())

	req.NoError(uc.Mint(c, &token.Token{Collection: collection, TokenId: "1", TokenType: domain.TokenTypeUnique, Owner: alice}, 0))

	req.ErrorIs(uc.Transfer(c, collection, "99", alice, bob, 1), domain.ErrNotFound)
	req.ErrorIs(uc.Transfer(c, collection, "1", bob, alice, 1), domain.ErrNotTokenOwner)

	req.NoError(uc.Transfer(c, collection, "1", alice, bob, 1))
	owner, err := uc.OwnerOf(c, collection, "1")
	req.NoError(err)
	req.Equal(bob, owner)

	// previous owner cannot move it anymore
	req.ErrorIs(uc.Transfer(c, collection, "1", alice, bob, 1), domain.ErrNotTokenOwner)
}

func TestTransferMultiUnit(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()
	uc := New(newMemTokenRepo())

	req.NoError(uc.Mint(c, &token.Token{Collection: collection, TokenId: "2", TokenType: domain.TokenTypeMultiUnit, Owner: alice}, 10))

	req.ErrorIs(uc.Transfer(c, collection, "2", alice, bob, 11), domain.ErrInsufficientBalance)
	req.ErrorIs(uc.Transfer(c, collection, "2", bob, alice, 1), domain.ErrInsufficientBalance)

	req.NoError(uc.Transfer(c, collection, "2", alice, bob, 4))
	aliceBal, err := uc.BalanceOf(c, collection, "2", alice)
	req.NoError(err)
	req.Equal(uint64(6), aliceBal)
	bobBal, err := uc.BalanceOf(c, collection, "2", bob)
	req.NoError(err)
	req.Equal(uint64(4), bobBal)
}

func TestHoldsEnough(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()
	uc := New(newMemTokenRepo())

	req.NoError(uc.Mint(c, &token.Token{Collection: collection, TokenId: "1", TokenType: domain.TokenTypeUnique, Owner: alice}, 0))
	req.NoError(uc.Mint(c, &token.Token{Collection: collection, TokenId: "2", TokenType: domain.TokenTypeMultiUnit, Owner: alice}, 5))

	_, err := uc.HoldsEnough(c, collection, "99", alice, 1)
	req.ErrorIs(err, domain.ErrNotFound)

	ok, err := uc.HoldsEnough(c, collection, "1", alice, 1)
	req.NoError(err)
	req.True(ok)
	ok, err = uc.HoldsEnough(c, collection, "1", bob, 1)
	req.NoError(err)
	req.False(ok)

	ok, err = uc.HoldsEnough(c, collection, "2", alice, 5)
	req.NoError(err)
	req.True(ok)
	ok, err = uc.HoldsEnough(c, collection, "2", alice, 6)
	req.NoError(err)
	req.False(ok)
}
