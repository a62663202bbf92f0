package settings

import (
	"github.com/ideationmarket/goapi/base/ctx"
	"github.com/ideationmarket/goapi/domain"
)

// Settings is the diamond's singleton configuration document: ownership,
// the global circuit breaker, fee parameters and the buyer whitelist
// batch cap.
type Settings struct {
	Owner                      domain.Address `json:"owner" bson:"owner"`
	PendingOwner               domain.Address `json:"pendingOwner" bson:"pendingOwner"`
	Paused                     bool           `json:"paused" bson:"paused"`
	InnovationFee              uint32         `json:"innovationFee" bson:"innovationFee"`
	BuyerWhitelistMaxBatchSize uint16         `json:"buyerWhitelistMaxBatchSize" bson:"buyerWhitelistMaxBatchSize"`
}

type Repo interface {
	// Get returns nil when the settings document was never initialized
	Get(c ctx.Ctx) (*Settings, error)
	Upsert(c ctx.Ctx, s *Settings) error
}

type Usecase interface {
	// Init seeds the settings document once; later calls are no-ops.
	Init(c ctx.Ctx, owner domain.Address, fee uint32, maxBatchSize uint16) error

	Owner(c ctx.Ctx) (domain.Address, error)
	PendingOwner(c ctx.Ctx) (domain.Address, error)
	// TransferOwnership begins the two-step handover
	TransferOwnership(c ctx.Ctx, caller, newOwner domain.Address) error
	// AcceptOwnership completes it; only the pending owner may call
	AcceptOwnership(c ctx.Ctx, caller domain.Address) error

	Pause(c ctx.Ctx, caller domain.Address) error
	Unpause(c ctx.Ctx, caller domain.Address) error
	IsPaused(c ctx.Ctx) (bool, error)

	SetInnovationFee(c ctx.Ctx, caller domain.Address, fee uint32) error
	GetInnovationFee(c ctx.Ctx) (uint32, error)

	SetBuyerWhitelistMaxBatchSize(c ctx.Ctx, caller domain.Address, size uint16) error
	GetBuyerWhitelistMaxBatchSize(c ctx.Ctx) (uint16, error)

	// RequireOwner returns domain.ErrNotOwner unless caller is the owner
	RequireOwner(c ctx.Ctx, caller domain.Address) error
	// RequireNotPaused returns domain.ErrPaused while paused
	RequireNotPaused(c ctx.Ctx) error
}
