package usecase

import (
	"github.com/ideationmarket/goapi/base/ctx"
	"github.com/ideationmarket/goapi/base/log"
	"github.com/ideationmarket/goapi/domain"
	"github.com/ideationmarket/goapi/domain/token"
)

type impl struct {
	tokens token.Repo
}

func New(tokens token.Repo) token.Usecase {
	return &impl{
		tokens: tokens,
	}
}

func (im *impl) Mint(c ctx.Ctx, t *token.Token, initialAmount uint64) error {
	if t.Collection.IsEmpty() {
		return domain.ErrInvalidAddress
	}
	switch t.TokenType {
	case domain.TokenTypeUnique:
		if t.Owner.IsEmpty() {
			return domain.ErrInvalidAddress
		}
		return im.tokens.Upsert(c, t)
	case domain.TokenTypeMultiUnit:
		if t.Owner.IsEmpty() || initialAmount == 0 {
			return domain.ErrBadParamInput
		}
		holder := t.Owner
		// multi-unit tokens have no single owner; holdings live in the
		// balance table
		t.Owner = domain.EmptyAddress
		if err := im.tokens.Upsert(c, t); err != nil {
			return err
		}
		return im.tokens.UpsertBalance(c, &token.Balance{
			Collection: t.Collection,
			TokenId:    t.TokenId,
			Holder:     holder,
			Amount:     initialAmount,
		})
	default:
		return domain.ErrBadParamInput
	}
}

func (im *impl) OwnerOf(c ctx.Ctx, collection domain.Address, tokenId domain.TokenId) (domain.Address, error) {
	t, err := im.tokens.FindOne(c, collection, tokenId)
	if err != nil {
		return domain.EmptyAddress, err
	}
	if t == nil {
		return domain.EmptyAddress, domain.ErrNotFound
	}
	return t.Owner, nil
}

func (im *impl) BalanceOf(c ctx.Ctx, collection domain.Address, tokenId domain.TokenId, holder domain.Address) (uint64, error) {
	b, err := im.tokens.FindBalance(c, collection, tokenId, holder)
	if err != nil {
		return 0, err
	}
	if b == nil {
		return 0, nil
	}
	return b.Amount, nil
}

func (im *impl) SetApprovalForAll(c ctx.Ctx, holder, collection, operator domain.Address, approved bool) error {
	if operator.IsEmpty() {
		return domain.ErrInvalidAddress
	}
	if approved {
		return im.tokens.CreateApproval(c, token.OperatorApproval{
			Collection: collection,
			Holder:     holder,
			Operator:   operator,
		})
	}
	return im.tokens.DeleteApproval(c, collection, holder, operator)
}

func (im *impl) IsApprovedForAll(c ctx.Ctx, collection, holder, operator domain.Address) (bool, error) {
	a, err := im.tokens.FindApproval(c, collection, holder, operator)
	if err != nil {
		return false, err
	}
	return a != nil, nil
}

func (im *impl) Transfer(c ctx.Ctx, collection domain.Address, tokenId domain.TokenId, from, to domain.Address, quantity uint64) error {
	t, err := im.tokens.FindOne(c, collection, tokenId)
	if err != nil {
		return err
	}
	if t == nil {
		return domain.ErrNotFound
	}

	switch t.TokenType {
	case domain.TokenTypeUnique:
		if !t.Owner.Equals(from) {
			return domain.ErrNotTokenOwner
		}
		t.Owner = to.ToLower()
		return im.tokens.Upsert(c, t)
	case domain.TokenTypeMultiUnit:
		fromBal, err := im.tokens.FindBalance(c, collection, tokenId, from)
		if err != nil {
			return err
		}
		if fromBal == nil || fromBal.Amount < quantity {
			return domain.ErrInsufficientBalance
		}
		toBal, err := im.tokens.FindBalance(c, collection, tokenId, to)
		if err != nil {
			return err
		}
		if toBal == nil {
			toBal = &token.Balance{
				Collection: collection,
				TokenId:    tokenId,
				Holder:     to,
			}
		}
		fromBal.Amount -= quantity
		toBal.Amount += quantity
		if err := im.tokens.UpsertBalance(c, fromBal); err != nil {
			return err
		}
		return im.tokens.UpsertBalance(c, toBal)
	default:
		c.WithFields(log.Fields{
			"collection": collection,
			"tokenId":    tokenId,
			"tokenType":  t.TokenType,
		}).Error("unknown token type")
		return domain.ErrInternalServerError
	}
}

func (im *impl) HoldsEnough(c ctx.Ctx, collection domain.Address, tokenId domain.TokenId, holder domain.Address, quantity uint64) (bool, error) {
	t, err := im.tokens.FindOne(c, collection, tokenId)
	if err != nil {
		return false, err
	}
	if t == nil {
		return false, domain.ErrNotFound
	}
	if t.TokenType == domain.TokenTypeUnique {
		return t.Owner.Equals(holder), nil
	}
	bal, err := im.BalanceOf(c, collection, tokenId, holder)
	if err != nil {
		return false, err
	}
	return bal >= quantity, nil
}
