package usecase

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ideationmarket/goapi/base/ctx"
	"github.com/ideationmarket/goapi/domain"
	"github.com/ideationmarket/goapi/domain/diamond"
	settings_usecase "github.com/ideationmarket/goapi/stores/settings/usecase"
)

const (
	testChainId        = domain.ChainId(11155111)
	testDiamondAddress = domain.Address("0x00000000000000000000000000000000000d1a01")
)

type versionFixture struct {
	registry *memRegistry
	versions *memVersions
	version  diamond.VersionUsecase
}

func newVersionFixture(t *testing.T, chainId domain.ChainId, diamondAddress domain.Address) *versionFixture {
	registry := newMemRegistry()
	versions := newMemVersions()
	settingsUC := settings_usecase.New(&memSettingsRepo{})
	require.NoError(t, settingsUC.Init(ctx.Background(), testOwner, 1000, 300))

	return &versionFixture{
		registry: registry,
		versions: versions,
		version:  NewVersionUsecase(registry, versions, NewLoupeUsecase(registry), settingsUC, chainId, diamondAddress),
	}
}

func TestComputeImplementationId(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()

	fx := newVersionFixture(t, testChainId, testDiamondAddress)
	req.NoError(fx.registry.Bind(c, "0x1f931c1c", facetA))
	req.NoError(fx.registry.Bind(c, "0x7a0ed627", facetB))
	req.NoError(fx.registry.Bind(c, "0x01ffc9a7", facetB))

	id, err := fx.version.ComputeImplementationId(c)
	req.NoError(err)
	req.Len(id, 66)

	again, err := fx.version.ComputeImplementationId(c)
	req.NoError(err)
	req.Equal(id, again)

	// binding order does not matter, only the effective routing table
	permuted := newVersionFixture(t, testChainId, testDiamondAddress)
	req.NoError(permuted.registry.Bind(c, "0x01ffc9a7", facetB))
	req.NoError(permuted.registry.Bind(c, "0x7a0ed627", facetB))
	req.NoError(permuted.registry.Bind(c, "0x1f931c1c", facetA))
	permutedId, err := permuted.version.ComputeImplementationId(c)
	req.NoError(err)
	req.Equal(id, permutedId)

	// rebinding a selector to another facet changes the fingerprint
	req.NoError(fx.registry.Bind(c, "0x01ffc9a7", facetA))
	rebound, err := fx.version.ComputeImplementationId(c)
	req.NoError(err)
	req.NotEqual(id, rebound)

	// chain id and diamond address are part of the preimage
	otherChain := newVersionFixture(t, testChainId+1, testDiamondAddress)
	req.NoError(otherChain.registry.Bind(c, "0x01ffc9a7", facetB))
	req.NoError(otherChain.registry.Bind(c, "0x7a0ed627", facetB))
	req.NoError(otherChain.registry.Bind(c, "0x1f931c1c", facetA))
	otherChainId, err := otherChain.version.ComputeImplementationId(c)
	req.NoError(err)
	req.NotEqual(id, otherChainId)

	otherDiamond := newVersionFixture(t, testChainId, "0x00000000000000000000000000000000000d1a02")
	req.NoError(otherDiamond.registry.Bind(c, "0x01ffc9a7", facetB))
	req.NoError(otherDiamond.registry.Bind(c, "0x7a0ed627", facetB))
	req.NoError(otherDiamond.registry.Bind(c, "0x1f931c1c", facetA))
	otherDiamondId, err := otherDiamond.version.ComputeImplementationId(c)
	req.NoError(err)
	req.NotEqual(id, otherDiamondId)
}

func TestSetVersion(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()

	fx := newVersionFixture(t, testChainId, testDiamondAddress)
	req.NoError(fx.registry.Bind(c, "0x1f931c1c", facetA))

	liveId, err := fx.version.ComputeImplementationId(c)
	req.NoError(err)

	req.ErrorIs(fx.version.SetVersion(c, testStranger, "v1.0.0", liveId), domain.ErrNotOwner)
	req.ErrorIs(fx.version.SetVersion(c, testOwner, "", liveId), domain.ErrBadParamInput)
	req.ErrorIs(fx.version.SetVersion(c, testOwner, "v1.0.0", ""), domain.ErrBadParamInput)

	// a stale fingerprint is rejected
	req.ErrorIs(fx.version.SetVersion(c, testOwner, "v1.0.0", "0xdeadbeef"), domain.ErrBadParamInput)

	req.NoError(fx.version.SetVersion(c, testOwner, "v1.0.0", liveId))

	current, err := fx.version.GetVersion(c)
	req.NoError(err)
	req.Equal("v1.0.0", current.VersionString)
	req.Equal(liveId, current.ImplementationId)

	previous, err := fx.version.GetPreviousVersion(c)
	req.NoError(err)
	req.Nil(previous)

	versionString, err := fx.version.GetVersionString(c)
	req.NoError(err)
	req.Equal("v1.0.0", versionString)

	// the registry changed, the old fingerprint no longer verifies
	req.NoError(fx.registry.Bind(c, "0x7a0ed627", facetB))
	req.ErrorIs(fx.version.SetVersion(c, testOwner, "v1.1.0", liveId), domain.ErrBadParamInput)

	newId, err := fx.version.ComputeImplementationId(c)
	req.NoError(err)
	req.NoError(fx.version.SetVersion(c, testOwner, "v1.1.0", newId))

	// the demoted version keeps its own fingerprint
	current, err = fx.version.GetVersion(c)
	req.NoError(err)
	req.Equal("v1.1.0", current.VersionString)
	previous, err = fx.version.GetPreviousVersion(c)
	req.NoError(err)
	req.Equal("v1.0.0", previous.VersionString)
	req.Equal(liveId, previous.ImplementationId)
}

func TestGetVersionBeforeAnyRelease(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()

	fx := newVersionFixture(t, testChainId, testDiamondAddress)

	current, err := fx.version.GetVersion(c)
	req.NoError(err)
	req.Nil(current)

	versionString, err := fx.version.GetVersionString(c)
	req.NoError(err)
	req.Empty(versionString)
}
