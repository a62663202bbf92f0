package usecase

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ideationmarket/goapi/base/ctx"
	"github.com/ideationmarket/goapi/domain"
	"github.com/ideationmarket/goapi/domain/ledger"
	"github.com/ideationmarket/goapi/domain/listing"
	"github.com/ideationmarket/goapi/domain/settings"
	"github.com/ideationmarket/goapi/domain/token"
	"github.com/ideationmarket/goapi/domain/whitelist"
	qmocks "github.com/ideationmarket/goapi/service/query/mocks"
	ledger_usecase "github.com/ideationmarket/goapi/stores/ledger/usecase"
	settings_usecase "github.com/ideationmarket/goapi/stores/settings/usecase"
	token_usecase "github.com/ideationmarket/goapi/stores/token/usecase"
	whitelist_usecase "github.com/ideationmarket/goapi/stores/whitelist/usecase"
)

// ----- in-memory repos backing the real usecases -----

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

type memListingRepo struct {
	listings map[uint64]*listing.Listing
	nextId   uint64
}

func newMemListingRepo() *memListingRepo {
	return &memListingRepo{listings: map[uint64]*listing.Listing{}, nextId: 1}
}

func (r *memListingRepo) FindOne(c ctx.Ctx, listingId uint64) (*listing.Listing, error) {
	l, ok := r.listings[listingId]
	if !ok {
		return nil, nil
	}
	cp := *l
	return &cp, nil
}

func (r *memListingRepo) FindOneByToken(c ctx.Ctx, collection domain.Address, tokenId domain.TokenId) (*listing.Listing, error) {
	for _, l := range r.listings {
		if l.Collection.Equals(collection) && l.TokenId == tokenId {
			cp := *l
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memListingRepo) FindAll(c ctx.Ctx, opts ...listing.FindAllOptionsFunc) ([]*listing.Listing, error) {
	options := listing.FindAllOptions{}
	for _, opt := range opts {
		opt(&options)
	}
	res := []*listing.Listing{}
	for _, l := range r.listings {
		if options.Collection != nil && !l.Collection.Equals(*options.Collection) {
			continue
		}
		if options.Seller != nil && !l.Seller.Equals(*options.Seller) {
			continue
		}
		cp := *l
		res = append(res, &cp)
	}
	return res, nil
}

func (r *memListingRepo) Create(c ctx.Ctx, l *listing.Listing) error {
	cp := *l
	r.listings[l.ListingId] = &cp
	return nil
}

func (r *memListingRepo) Update(c ctx.Ctx, l *listing.Listing) error {
	cp := *l
	r.listings[l.ListingId] = &cp
	return nil
}

func (r *memListingRepo) Delete(c ctx.Ctx, listingId uint64) error {
	delete(r.listings, listingId)
	return nil
}

func (r *memListingRepo) NextListingId(c ctx.Ctx) (uint64, error) {
	id := r.nextId
	r.nextId++
	return id, nil
}

func (r *memListingRepo) PeekNextListingId(c ctx.Ctx) (uint64, error) {
	return r.nextId, nil
}

type memCollectionRepo struct {
	cols map[domain.Address]whitelist.Collection
}

func (r *memCollectionRepo) FindOne(c ctx.Ctx, address domain.Address) (*whitelist.Collection, error) {
	col, ok := r.cols[address.ToLower()]
	if !ok {
		return nil, nil
	}
	return &col, nil
}

func (r *memCollectionRepo) FindAll(c ctx.Ctx) ([]*whitelist.Collection, error) {
	res := []*whitelist.Collection{}
	for _, col := range r.cols {
		cp := col
		res = append(res, &cp)
	}
	return res, nil
}

func (r *memCollectionRepo) Create(c ctx.Ctx, col whitelist.Collection) error {
	r.cols[col.Address.ToLower()] = col
	return nil
}

func (r *memCollectionRepo) Delete(c ctx.Ctx, address domain.Address) error {
	delete(r.cols, address.ToLower())
	return nil
}

type memCurrencyRepo struct {
	curs map[domain.Address]whitelist.Currency
}

func (r *memCurrencyRepo) FindOne(c ctx.Ctx, address domain.Address) (*whitelist.Currency, error) {
	cur, ok := r.curs[address.ToLower()]
	if !ok {
		return nil, nil
	}
	return &cur, nil
}

func (r *memCurrencyRepo) FindAll(c ctx.Ctx) ([]*whitelist.Currency, error) {
	res := []*whitelist.Currency{}
	for _, cur := range r.curs {
		cp := cur
		res = append(res, &cp)
	}
	return res, nil
}

func (r *memCurrencyRepo) Create(c ctx.Ctx, cur whitelist.Currency) error {
	r.curs[cur.Address.ToLower()] = cur
	return nil
}

func (r *memCurrencyRepo) Delete(c ctx.Ctx, address domain.Address) error {
	delete(r.curs, address.ToLower())
	return nil
}

type buyerKey struct {
	collection domain.Address
	tokenId    domain.TokenId
	buyer      domain.Address
}

type memBuyerRepo struct {
	entries map[buyerKey]whitelist.BuyerEntry
}

func (r *memBuyerRepo) key(collection domain.Address, tokenId domain.TokenId, buyer domain.Address) buyerKey {
	return buyerKey{collection.ToLower(), tokenId, buyer.ToLower()}
}

func (r *memBuyerRepo) FindOne(c ctx.Ctx, collection domain.Address, tokenId domain.TokenId, buyer domain.Address) (*whitelist.BuyerEntry, error) {
	entry, ok := r.entries[r.key(collection, tokenId, buyer)]
	if !ok {
		return nil, nil
	}
	return &entry, nil
}

func (r *memBuyerRepo) FindAll(c ctx.Ctx, collection domain.Address, tokenId domain.TokenId) ([]*whitelist.BuyerEntry, error) {
	res := []*whitelist.BuyerEntry{}
	for k, entry := range r.entries {
		if k.collection == collection.ToLower() && k.tokenId == tokenId {
			cp := entry
			res = append(res, &cp)
		}
	}
	return res, nil
}

func (r *memBuyerRepo) Create(c ctx.Ctx, entry whitelist.BuyerEntry) error {
	r.entries[r.key(entry.Collection, entry.TokenId, entry.Buyer)] = entry
	return nil
}

func (r *memBuyerRepo) Delete(c ctx.Ctx, collection domain.Address, tokenId domain.TokenId, buyer domain.Address) error {
	delete(r.entries, r.key(collection, tokenId, buyer))
	return nil
}

func (r *memBuyerRepo) DeleteAll(c ctx.Ctx, collection domain.Address, tokenId domain.TokenId) error {
	for k := range r.entries {
		if k.collection == collection.ToLower() && k.tokenId == tokenId {
			delete(r.entries, k)
		}
	}
	return nil
}

type tokenKey struct {
	collection domain.Address
	tokenId    domain.TokenId
}

type tokenBalanceKey struct {
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
	balances  map[tokenBalanceKey]token.Balance
	approvals map[approvalKey]token.OperatorApproval
}

func newMemTokenRepo() *memTokenRepo {
	return &memTokenRepo{
		tokens:    map[tokenKey]token.Token{},
		balances:  map[tokenBalanceKey]token.Balance{},
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
	b, ok := r.balances[tokenBalanceKey{collection.ToLower(), tokenId, holder.ToLower()}]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (r *memTokenRepo) UpsertBalance(c ctx.Ctx, b *token.Balance) error {
	cp := *b
	cp.Collection = cp.Collection.ToLower()
	cp.Holder = cp.Holder.ToLower()
	r.balances[tokenBalanceKey{cp.Collection, cp.TokenId, cp.Holder}] = cp
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

type ledgerBalanceKey struct {
	currency domain.Address
	account  domain.Address
}

type allowanceKey struct {
	currency domain.Address
	account  domain.Address
	spender  domain.Address
}

type memLedgerRepo struct {
	balances   map[ledgerBalanceKey]ledger.Balance
	allowances map[allowanceKey]ledger.Allowance
}

func newMemLedgerRepo() *memLedgerRepo {
	return &memLedgerRepo{
		balances:   map[ledgerBalanceKey]ledger.Balance{},
		allowances: map[allowanceKey]ledger.Allowance{},
	}
}

func (r *memLedgerRepo) FindBalance(c ctx.Ctx, currency, account domain.Address) (*ledger.Balance, error) {
	b, ok := r.balances[ledgerBalanceKey{currency.ToLower(), account.ToLower()}]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (r *memLedgerRepo) UpsertBalance(c ctx.Ctx, b *ledger.Balance) error {
	cp := *b
	cp.Currency = cp.Currency.ToLower()
	cp.Account = cp.Account.ToLower()
	r.balances[ledgerBalanceKey{cp.Currency, cp.Account}] = cp
	return nil
}

func (r *memLedgerRepo) FindAllowance(c ctx.Ctx, currency, account, spender domain.Address) (*ledger.Allowance, error) {
	a, ok := r.allowances[allowanceKey{currency.ToLower(), account.ToLower(), spender.ToLower()}]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (r *memLedgerRepo) UpsertAllowance(c ctx.Ctx, a *ledger.Allowance) error {
	cp := *a
	cp.Currency = cp.Currency.ToLower()
	cp.Account = cp.Account.ToLower()
	cp.Spender = cp.Spender.ToLower()
	r.allowances[allowanceKey{cp.Currency, cp.Account, cp.Spender}] = cp
	return nil
}

// ----- fixture -----

var (
	owner    = domain.Address("0x5409ed021d9299bf6814279a6a1411a7e866a631")
	seller   = domain.Address("0x6ecbe1db9ef729cbe972c83fb886247691fb6beb")
	buyer    = domain.Address("0xe36ea790bc9d7ab70c55260c66d52b1eca985f84")
	stranger = domain.Address("0xe834ec434c5b9c9e4975b2df2a300c8a9d61d8e1")

	diamondAddress = domain.Address("0x00000000000000000000000000000000000d1a01")
	collectionAddr = domain.Address("0x00000000000000000000000000000000000000c1")
	erc20Addr      = domain.Address("0x00000000000000000000000000000000000000e2")

	uniqueTokenId = domain.TokenId("1")
	multiTokenId  = domain.TokenId("2")
)

type fixture struct {
	uc       listing.Usecase
	settings settings.Usecase
	wl       whitelist.Usecase
	tokens   token.Usecase
	ledger   ledger.Usecase
}

func passthroughMongo() *qmocks.Mongo {
	q := &qmocks.Mongo{}
	q.On("RunWithTransaction", mock.Anything, mock.Anything).
		Return(func(c ctx.Ctx, run func(ctx.Ctx) error) error {
			return run(c)
		})
	return q
}

func newFixture(t *testing.T) *fixture {
	req := require.New(t)
	c := ctx.Background()

	settingsUC := settings_usecase.New(&memSettingsRepo{})
	req.NoError(settingsUC.Init(c, owner, 1000, 3))

	listings := newMemListingRepo()
	buyers := &memBuyerRepo{entries: map[buyerKey]whitelist.BuyerEntry{}}
	wl := whitelist_usecase.New(
		&memCollectionRepo{cols: map[domain.Address]whitelist.Collection{}},
		&memCurrencyRepo{curs: map[domain.Address]whitelist.Currency{}},
		buyers,
		listings,
		settingsUC,
	)
	tokens := token_usecase.New(newMemTokenRepo())
	ledgerUC := ledger_usecase.New(newMemLedgerRepo())

	req.NoError(wl.AddCollection(c, owner, whitelist.Collection{Address: collectionAddr, Name: "Test"}))
	req.NoError(wl.AddCurrency(c, owner, whitelist.Currency{Address: erc20Addr, Symbol: "USDX", Decimals: 6}))

	req.NoError(tokens.Mint(c, &token.Token{
		Collection: collectionAddr,
		TokenId:    uniqueTokenId,
		TokenType:  domain.TokenTypeUnique,
		Owner:      seller,
	}, 0))
	req.NoError(tokens.Mint(c, &token.Token{
		Collection: collectionAddr,
		TokenId:    multiTokenId,
		TokenType:  domain.TokenTypeMultiUnit,
		Owner:      seller,
	}, 10))
	req.NoError(tokens.SetApprovalForAll(c, seller, collectionAddr, diamondAddress, true))

	return &fixture{
		uc:       New(passthroughMongo(), listings, buyers, wl, settingsUC, tokens, ledgerUC, diamondAddress),
		settings: settingsUC,
		wl:       wl,
		tokens:   tokens,
		ledger:   ledgerUC,
	}
}

func uniquePayload() *listing.CreateListingPayload {
	return &listing.CreateListingPayload{
		Collection: collectionAddr,
		TokenId:    uniqueTokenId,
		Quantity:   1,
		Price:      "1000",
	}
}

// ----- tests -----

func TestCreateListing(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()
	fx := newFixture(t)

	cases := []struct {
		name    string
		mutate  func(p *listing.CreateListingPayload)
		wantErr error
	}{
		{
			name:    "zero price",
			mutate:  func(p *listing.CreateListingPayload) { p.Price = "0" },
			wantErr: domain.ErrInvalidPrice,
		},
		{
			name:    "malformed price",
			mutate:  func(p *listing.CreateListingPayload) { p.Price = "1.5" },
			wantErr: domain.ErrInvalidPrice,
		},
		{
			name:    "collection not whitelisted",
			mutate:  func(p *listing.CreateListingPayload) { p.Collection = "0x00000000000000000000000000000000000000c9" },
			wantErr: domain.ErrNotWhitelisted,
		},
		{
			name:    "currency not allowed",
			mutate:  func(p *listing.CreateListingPayload) { p.Currency = "0x00000000000000000000000000000000000000e9" },
			wantErr: domain.ErrInvalidCurrency,
		},
		{
			name:    "unique token requires quantity 1",
			mutate:  func(p *listing.CreateListingPayload) { p.Quantity = 2 },
			wantErr: domain.ErrInvalidQuantity,
		},
		{
			name: "initial buyers without whitelist flag",
			mutate: func(p *listing.CreateListingPayload) {
				p.InitialBuyers = []domain.Address{buyer}
			},
			wantErr: domain.ErrBadParamInput,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := uniquePayload()
			tc.mutate(p)
			_, err := fx.uc.CreateListing(c, seller, p)
			require.ErrorIs(t, err, tc.wantErr)
		})
	}

	// only the holder may list
	_, err := fx.uc.CreateListing(c, stranger, uniquePayload())
	req.ErrorIs(err, domain.ErrNotTokenOwner)

	l, err := fx.uc.CreateListing(c, seller, uniquePayload())
	req.NoError(err)
	req.Equal(uint64(1), l.ListingId)
	req.Equal(seller, l.Seller)

	// one active listing per token
	_, err = fx.uc.CreateListing(c, seller, uniquePayload())
	req.ErrorIs(err, domain.ErrAlreadyListed)

	// revoked approval blocks new listings
	req.NoError(fx.tokens.SetApprovalForAll(c, seller, collectionAddr, diamondAddress, false))
	_, err = fx.uc.CreateListing(c, seller, &listing.CreateListingPayload{
		Collection: collectionAddr,
		TokenId:    multiTokenId,
		Quantity:   5,
		Price:      "1000",
	})
	req.ErrorIs(err, domain.ErrMissingApproval)
}

func TestCreateListingWithInitialBuyers(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()
	fx := newFixture(t)

	p := uniquePayload()
	p.BuyerWhitelistEnabled = true
	p.InitialBuyers = []domain.Address{
		"0x0000000000000000000000000000000000000011",
		"0x0000000000000000000000000000000000000012",
		"0x0000000000000000000000000000000000000013",
		"0x0000000000000000000000000000000000000014",
	}
	_, err := fx.uc.CreateListing(c, seller, p)
	req.ErrorIs(err, domain.ErrBatchTooLarge)

	p.InitialBuyers = []domain.Address{buyer}
	_, err = fx.uc.CreateListing(c, seller, p)
	req.NoError(err)

	ok, err := fx.wl.IsWhitelistedBuyer(c, collectionAddr, uniqueTokenId, buyer)
	req.NoError(err)
	req.True(ok)
}

func TestCreateListingMultiUnit(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()
	fx := newFixture(t)

	p := &listing.CreateListingPayload{
		Collection: collectionAddr,
		TokenId:    multiTokenId,
		Price:      "500",
	}
	_, err := fx.uc.CreateListing(c, seller, p)
	req.ErrorIs(err, domain.ErrInvalidQuantity)

	// seller holds 10 units
	p.Quantity = 11
	_, err = fx.uc.CreateListing(c, seller, p)
	req.ErrorIs(err, domain.ErrNotTokenOwner)

	p.Quantity = 10
	l, err := fx.uc.CreateListing(c, seller, p)
	req.NoError(err)
	req.Equal(uint64(10), l.Quantity)
}

func TestUpdateListing(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()
	fx := newFixture(t)

	_, err := fx.uc.UpdateListing(c, seller, &listing.UpdateListingPayload{ListingId: 99, Quantity: 1, Price: "1"})
	req.ErrorIs(err, domain.ErrNotFound)

	l, err := fx.uc.CreateListing(c, seller, uniquePayload())
	req.NoError(err)

	_, err = fx.uc.UpdateListing(c, stranger, &listing.UpdateListingPayload{ListingId: l.ListingId, Quantity: 1, Price: "2000"})
	req.ErrorIs(err, domain.ErrNotSeller)

	updated, err := fx.uc.UpdateListing(c, seller, &listing.UpdateListingPayload{
		ListingId: l.ListingId,
		Quantity:  1,
		Price:     "2000",
		Currency:  erc20Addr,
	})
	req.NoError(err)
	req.Equal("2000", updated.Price)
	req.Equal(erc20Addr, updated.Currency)
}

func TestPurchaseNative(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()
	fx := newFixture(t)

	l, err := fx.uc.CreateListing(c, seller, uniquePayload())
	req.NoError(err)

	_, err = fx.uc.PurchaseListing(c, buyer, 99, big.NewInt(1000))
	req.ErrorIs(err, domain.ErrNotFound)

	// the seller cannot buy its own listing
	_, err = fx.uc.PurchaseListing(c, seller, l.ListingId, big.NewInt(1000))
	req.ErrorIs(err, domain.ErrBadParamInput)

	// attached value must match the price exactly
	_, err = fx.uc.PurchaseListing(c, buyer, l.ListingId, nil)
	req.ErrorIs(err, domain.ErrPaymentMismatch)
	_, err = fx.uc.PurchaseListing(c, buyer, l.ListingId, big.NewInt(999))
	req.ErrorIs(err, domain.ErrPaymentMismatch)

	receipt, err := fx.uc.PurchaseListing(c, buyer, l.ListingId, big.NewInt(1000))
	req.NoError(err)

	// fee 1000 of 100000 on price 1000 is 10
	req.Equal("1000", receipt.Price)
	req.Equal("10", receipt.Fee)
	req.Equal("990", receipt.SellerPayout)

	sellerBal, err := fx.ledger.BalanceOf(c, domain.EmptyAddress, seller)
	req.NoError(err)
	req.Zero(sellerBal.Cmp(big.NewInt(990)))
	feeBal, err := fx.ledger.BalanceOf(c, domain.EmptyAddress, diamondAddress)
	req.NoError(err)
	req.Zero(feeBal.Cmp(big.NewInt(10)))

	tokenOwner, err := fx.tokens.OwnerOf(c, collectionAddr, uniqueTokenId)
	req.NoError(err)
	req.Equal(buyer, tokenOwner)

	// the listing is terminal, the id is never reused
	_, err = fx.uc.GetListing(c, l.ListingId)
	req.ErrorIs(err, domain.ErrNotFound)
	_, err = fx.uc.PurchaseListing(c, buyer, l.ListingId, big.NewInt(1000))
	req.ErrorIs(err, domain.ErrNotFound)

	req.NoError(fx.tokens.SetApprovalForAll(c, buyer, collectionAddr, diamondAddress, true))
	relisted, err := fx.uc.CreateListing(c, buyer, uniquePayload())
	req.NoError(err)
	req.Greater(relisted.ListingId, l.ListingId)
}

func TestPurchaseCurrency(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()
	fx := newFixture(t)

	p := uniquePayload()
	p.Price = "1500000"
	p.Currency = erc20Addr
	l, err := fx.uc.CreateListing(c, seller, p)
	req.NoError(err)

	price := big.NewInt(1500000)

	// currency listings reject attached native value
	_, err = fx.uc.PurchaseListing(c, buyer, l.ListingId, price)
	req.ErrorIs(err, domain.ErrPaymentMismatch)

	// no pre-approval
	_, err = fx.uc.PurchaseListing(c, buyer, l.ListingId, nil)
	req.ErrorIs(err, domain.ErrInsufficientAllowance)

	req.NoError(fx.ledger.Deposit(c, erc20Addr, buyer, price))
	req.NoError(fx.ledger.Approve(c, buyer, erc20Addr, diamondAddress, price))

	receipt, err := fx.uc.PurchaseListing(c, buyer, l.ListingId, nil)
	req.NoError(err)
	req.Equal("15000", receipt.Fee)
	req.Equal("1485000", receipt.SellerPayout)

	buyerBal, err := fx.ledger.BalanceOf(c, erc20Addr, buyer)
	req.NoError(err)
	req.Zero(buyerBal.Sign())
	sellerBal, err := fx.ledger.BalanceOf(c, erc20Addr, seller)
	req.NoError(err)
	req.Zero(sellerBal.Cmp(big.NewInt(1485000)))
	feeBal, err := fx.ledger.BalanceOf(c, erc20Addr, diamondAddress)
	req.NoError(err)
	req.Zero(feeBal.Cmp(big.NewInt(15000)))
}

func TestPurchaseBuyerGate(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()
	fx := newFixture(t)

	p := uniquePayload()
	p.BuyerWhitelistEnabled = true
	p.InitialBuyers = []domain.Address{buyer}
	l, err := fx.uc.CreateListing(c, seller, p)
	req.NoError(err)

	_, err = fx.uc.PurchaseListing(c, stranger, l.ListingId, big.NewInt(1000))
	req.ErrorIs(err, domain.ErrNotWhitelisted)

	_, err = fx.uc.PurchaseListing(c, buyer, l.ListingId, big.NewInt(1000))
	req.NoError(err)

	// settlement cleared the buyer set with the listing
	ok, err := fx.wl.IsWhitelistedBuyer(c, collectionAddr, uniqueTokenId, buyer)
	req.NoError(err)
	req.False(ok)
}

func TestPausedGates(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()
	fx := newFixture(t)

	l, err := fx.uc.CreateListing(c, seller, uniquePayload())
	req.NoError(err)

	req.NoError(fx.settings.Pause(c, owner))

	_, err = fx.uc.CreateListing(c, seller, &listing.CreateListingPayload{
		Collection: collectionAddr,
		TokenId:    multiTokenId,
		Quantity:   5,
		Price:      "100",
	})
	req.ErrorIs(err, domain.ErrPaused)
	_, err = fx.uc.UpdateListing(c, seller, &listing.UpdateListingPayload{ListingId: l.ListingId, Quantity: 1, Price: "2000"})
	req.ErrorIs(err, domain.ErrPaused)
	_, err = fx.uc.PurchaseListing(c, buyer, l.ListingId, big.NewInt(1000))
	req.ErrorIs(err, domain.ErrPaused)

	// cancel remains available while paused
	req.NoError(fx.uc.CancelListing(c, seller, l.ListingId))
}

func TestCancelListing(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()
	fx := newFixture(t)

	req.ErrorIs(fx.uc.CancelListing(c, seller, 99), domain.ErrNotFound)

	l, err := fx.uc.CreateListing(c, seller, uniquePayload())
	req.NoError(err)

	req.ErrorIs(fx.uc.CancelListing(c, stranger, l.ListingId), domain.ErrNotSeller)
	req.NoError(fx.uc.CancelListing(c, seller, l.ListingId))
	_, err = fx.uc.GetListing(c, l.ListingId)
	req.ErrorIs(err, domain.ErrNotFound)

	// the contract owner may cancel any listing
	l, err = fx.uc.CreateListing(c, seller, uniquePayload())
	req.NoError(err)
	req.NoError(fx.uc.CancelListing(c, owner, l.ListingId))
}

func TestCleanListing(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()
	fx := newFixture(t)

	l, err := fx.uc.CreateListing(c, seller, uniquePayload())
	req.NoError(err)

	// backed and approved, nothing to clean
	req.ErrorIs(fx.uc.CleanListing(c, stranger, l.ListingId), domain.ErrStillValid)

	// revoked approval invalidates the listing; cleaning is permissionless
	req.NoError(fx.tokens.SetApprovalForAll(c, seller, collectionAddr, diamondAddress, false))
	req.NoError(fx.uc.CleanListing(c, stranger, l.ListingId))
	_, err = fx.uc.GetListing(c, l.ListingId)
	req.ErrorIs(err, domain.ErrNotFound)
}

func TestCleanSweep(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()
	fx := newFixture(t)

	removed, err := fx.uc.CleanSweep(c)
	req.NoError(err)
	req.Empty(removed)

	l1, err := fx.uc.CreateListing(c, seller, uniquePayload())
	req.NoError(err)
	l2, err := fx.uc.CreateListing(c, seller, &listing.CreateListingPayload{
		Collection: collectionAddr,
		TokenId:    multiTokenId,
		Quantity:   10,
		Price:      "500",
	})
	req.NoError(err)

	// seller moves the unique token away, its listing silently dies
	req.NoError(fx.tokens.Transfer(c, collectionAddr, uniqueTokenId, seller, stranger, 1))

	removed, err = fx.uc.CleanSweep(c)
	req.NoError(err)
	req.Equal([]uint64{l1.ListingId}, removed)

	_, err = fx.uc.GetListing(c, l1.ListingId)
	req.ErrorIs(err, domain.ErrNotFound)
	still, err := fx.uc.GetListing(c, l2.ListingId)
	req.NoError(err)
	req.Equal(l2.ListingId, still.ListingId)
}

func TestGetListings(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()
	fx := newFixture(t)

	next, err := fx.uc.GetNextListingId(c)
	req.NoError(err)
	req.Equal(uint64(1), next)

	_, err = fx.uc.CreateListing(c, seller, uniquePayload())
	req.NoError(err)

	listings, err := fx.uc.GetListings(c, listing.WithSeller(seller))
	req.NoError(err)
	req.Len(listings, 1)
	listings, err = fx.uc.GetListings(c, listing.WithSeller(stranger))
	req.NoError(err)
	req.Empty(listings)

	l, err := fx.uc.GetListingByToken(c, collectionAddr, uniqueTokenId)
	req.NoError(err)
	req.Equal(uniqueTokenId, l.TokenId)
	_, err = fx.uc.GetListingByToken(c, collectionAddr, "99")
	req.ErrorIs(err, domain.ErrNotFound)

	next, err = fx.uc.GetNextListingId(c)
	req.NoError(err)
	req.Equal(uint64(2), next)
}

func TestDisplayPrice(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()
	fx := newFixture(t)

	p := uniquePayload()
	p.Price = "1500000000000000000"
	l, err := fx.uc.CreateListing(c, seller, p)
	req.NoError(err)

	// native currency renders with 18 decimals
	display, err := fx.uc.DisplayPrice(c, l.ListingId)
	req.NoError(err)
	req.Equal("1.5", display)

	p2 := &listing.CreateListingPayload{
		Collection: collectionAddr,
		TokenId:    multiTokenId,
		Quantity:   10,
		Price:      "2500000",
		Currency:   erc20Addr,
	}
	l2, err := fx.uc.CreateListing(c, seller, p2)
	req.NoError(err)

	display, err = fx.uc.DisplayPrice(c, l2.ListingId)
	req.NoError(err)
	req.Equal("2.5", display)
}
