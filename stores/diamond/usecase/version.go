package usecase

import (
	"encoding/binary"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/ideationmarket/goapi/base/ctx"
	"github.com/ideationmarket/goapi/base/log"
	"github.com/ideationmarket/goapi/domain"
	"github.com/ideationmarket/goapi/domain/diamond"
	"github.com/ideationmarket/goapi/domain/settings"
)

type versionImpl struct {
	registry diamond.RegistryRepo
	versions diamond.VersionRepo
	loupe    diamond.LoupeUsecase
	settings settings.Usecase

	chainId        domain.ChainId
	diamondAddress domain.Address
}

func NewVersionUsecase(
	registry diamond.RegistryRepo,
	versions diamond.VersionRepo,
	loupe diamond.LoupeUsecase,
	settings settings.Usecase,
	chainId domain.ChainId,
	diamondAddress domain.Address,
) diamond.VersionUsecase {
	return &versionImpl{
		registry:       registry,
		versions:       versions,
		loupe:          loupe,
		settings:       settings,
		chainId:        chainId,
		diamondAddress: diamondAddress,
	}
}

// ComputeImplementationId hashes the canonical registry structure:
// groups sorted by facet address ascending, selectors sorted by their
// unsigned 4-byte value, each group length-prefixed, the whole preimage
// domain-separated by chain id and diamond address. The result changes
// iff the routing table's effective content changes.
func (im *versionImpl) ComputeImplementationId(c ctx.Ctx) (string, error) {
	facets, err := im.loupe.Facets(c)
	if err != nil {
		c.WithField("err", err).Error("loupe.Facets failed")
		return "", err
	}

	preimage := make([]byte, 0, 32+len(facets)*64)

	var chainId [8]byte
	binary.BigEndian.PutUint64(chainId[:], uint64(im.chainId))
	preimage = append(preimage, chainId[:]...)
	preimage = append(preimage, common.HexToAddress(string(im.diamondAddress)).Bytes()...)

	for _, facet := range facets {
		preimage = append(preimage, common.HexToAddress(string(facet.FacetAddress)).Bytes()...)

		var count [4]byte
		binary.BigEndian.PutUint32(count[:], uint32(len(facet.FunctionSelectors)))
		preimage = append(preimage, count[:]...)

		for _, sel := range facet.FunctionSelectors {
			b, err := sel.Bytes()
			if err != nil {
				return "", err
			}
			preimage = append(preimage, b...)
		}
	}

	return fmt.Sprintf("0x%x", crypto.Keccak256(preimage)), nil
}

func (im *versionImpl) SetVersion(c ctx.Ctx, caller domain.Address, versionString, implementationId string) error {
	if err := im.settings.RequireOwner(c, caller); err != nil {
		return err
	}
	if len(versionString) == 0 || len(implementationId) == 0 {
		return domain.ErrBadParamInput
	}

	// the stored fingerprint must match the live registry, never the
	// caller's word for it
	liveId, err := im.ComputeImplementationId(c)
	if err != nil {
		return err
	}
	if liveId != implementationId {
		c.WithFields(log.Fields{
			"submitted": implementationId,
			"live":      liveId,
		}).Warn("submitted fingerprint does not match live registry")
		return domain.ErrBadParamInput
	}

	current, err := im.versions.Get(c, diamond.VersionSlotCurrent)
	if err != nil {
		c.WithField("err", err).Error("versions.Get failed")
		return err
	}
	if current != nil {
		if err := im.versions.Set(c, diamond.VersionSlotPrevious, &diamond.Version{
			VersionString:    current.VersionString,
			ImplementationId: current.ImplementationId,
		}); err != nil {
			return err
		}
	}
	return im.versions.Set(c, diamond.VersionSlotCurrent, &diamond.Version{
		VersionString:    versionString,
		ImplementationId: implementationId,
	})
}

func (im *versionImpl) GetVersion(c ctx.Ctx) (*diamond.Version, error) {
	return im.versions.Get(c, diamond.VersionSlotCurrent)
}

func (im *versionImpl) GetPreviousVersion(c ctx.Ctx) (*diamond.Version, error) {
	return im.versions.Get(c, diamond.VersionSlotPrevious)
}

func (im *versionImpl) GetVersionString(c ctx.Ctx) (string, error) {
	version, err := im.versions.Get(c, diamond.VersionSlotCurrent)
	if err != nil {
		return "", err
	}
	if version == nil {
		return "", nil
	}
	return version.VersionString, nil
}
