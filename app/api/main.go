package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/viper"

	"github.com/go-playground/validator/v10"
	"github.com/ideationmarket/goapi/base/ctx"
	"github.com/ideationmarket/goapi/base/database/mongoclient"
	"github.com/ideationmarket/goapi/base/database/redisclient"
	"github.com/ideationmarket/goapi/base/log"
	"github.com/ideationmarket/goapi/base/metrics"
	bSelector "github.com/ideationmarket/goapi/base/selector"
	bValidator "github.com/ideationmarket/goapi/base/validator"
	"github.com/ideationmarket/goapi/domain"
	"github.com/ideationmarket/goapi/domain/diamond"
	mmiddleware "github.com/ideationmarket/goapi/middleware"
	"github.com/ideationmarket/goapi/service/dispatcher"
	"github.com/ideationmarket/goapi/service/query"
	"github.com/ideationmarket/goapi/service/redis"
	auth_delivery "github.com/ideationmarket/goapi/stores/auth/delivery/http"
	auth_middleware "github.com/ideationmarket/goapi/stores/auth/delivery/http/middleware"
	auth_usecase "github.com/ideationmarket/goapi/stores/auth/usecase"
	diamond_delivery "github.com/ideationmarket/goapi/stores/diamond/delivery/http"
	diamond_facet "github.com/ideationmarket/goapi/stores/diamond/facet"
	diamond_repository "github.com/ideationmarket/goapi/stores/diamond/repository"
	diamond_usecase "github.com/ideationmarket/goapi/stores/diamond/usecase"
	hc_delivery "github.com/ideationmarket/goapi/stores/healthcheck/delivery/http"
	hc_repo "github.com/ideationmarket/goapi/stores/healthcheck/repository"
	hc_usecase "github.com/ideationmarket/goapi/stores/healthcheck/usecase"
	ledger_delivery "github.com/ideationmarket/goapi/stores/ledger/delivery/http"
	ledger_repository "github.com/ideationmarket/goapi/stores/ledger/repository"
	ledger_usecase "github.com/ideationmarket/goapi/stores/ledger/usecase"
	listing_delivery "github.com/ideationmarket/goapi/stores/listing/delivery/http"
	listing_facet "github.com/ideationmarket/goapi/stores/listing/facet"
	listing_repository "github.com/ideationmarket/goapi/stores/listing/repository"
	listing_usecase "github.com/ideationmarket/goapi/stores/listing/usecase"
	settings_delivery "github.com/ideationmarket/goapi/stores/settings/delivery/http"
	settings_facet "github.com/ideationmarket/goapi/stores/settings/facet"
	settings_repository "github.com/ideationmarket/goapi/stores/settings/repository"
	settings_usecase "github.com/ideationmarket/goapi/stores/settings/usecase"
	token_delivery "github.com/ideationmarket/goapi/stores/token/delivery/http"
	token_repository "github.com/ideationmarket/goapi/stores/token/repository"
	token_usecase "github.com/ideationmarket/goapi/stores/token/usecase"
	whitelist_delivery "github.com/ideationmarket/goapi/stores/whitelist/delivery/http"
	whitelist_facet "github.com/ideationmarket/goapi/stores/whitelist/facet"
	whitelist_repository "github.com/ideationmarket/goapi/stores/whitelist/repository"
	whitelist_usecase "github.com/ideationmarket/goapi/stores/whitelist/usecase"
)

func init() {
	viper.SetConfigType("yaml")
	viper.SetConfigFile(`infra/configs/config.yaml`)
	err := viper.ReadInConfig()
	if err != nil {
		panic(err)
	}

	if viper.GetBool(`debug`) {
		log.Log().Info("Service RUN on DEBUG mode")
	}
}

func main() {
	// init echo
	e := echo.New()
	e.Use(middleware.Recover())
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{}))
	e.Use(middleware.RequestID())
	middL := mmiddleware.InitMiddleware()
	e.Use(middL.ResponseLogger())
	e.Use(middL.AddContext())
	e.Use(middleware.CORS())
	e.Validator = bValidator.NewCustomValidator(validator.New())

	context := ctx.Background()

	// init mongo client
	context.Info("init mongo")
	uri := viper.GetString("mongo.uri")
	authDBName := viper.GetString("mongo.authDBName")
	dbName := viper.GetString("mongo.dbName")
	enableSSL := viper.GetBool("mongo.enableSSL")
	checkIndex := viper.GetBool("mongo.checkIndex")
	mongoClient := mongoclient.MustConnectMongoClient(uri, authDBName, dbName, enableSSL, true, 2)
	q := query.New(mongoClient, checkIndex)

	// init Redis service
	context.Info("init redis cache")
	redisCacheName := viper.GetString("redis_cache.name")
	redisCacheURI := viper.GetString("redis_cache.uri")
	redisCachePwd := viper.GetString("redis_cache.password")
	redisCachePoolMultiplier := viper.GetFloat64("redis_cache.poolMultiplier")
	redisCachePool := redisclient.MustConnectRedis(redisCacheURI, redisCachePwd, redisclient.RedisParam{
		PoolMultiplier: redisCachePoolMultiplier,
		Retry:          true,
	})
	redisCache := redis.New(redisCacheName, metrics.New(redisCacheName), &redis.Pools{
		Src: redisCachePool,
	})

	mmiddleware.SetupCache(redisCache)

	chainId := domain.ChainId(viper.GetInt64("diamond.chainId"))
	diamondAddress := domain.Address(viper.GetString("diamond.address")).ToLower()

	// construct repository, usecase and delivery
	hcRepo := hc_repo.New(mongoClient, redisCache)
	registryRepo := diamond_repository.NewRegistryRepo(q)
	versionRepo := diamond_repository.NewVersionRepo(q)
	settingsRepo := settings_repository.NewSettingsRepo(q)
	collectionRepo := whitelist_repository.NewCollectionRepo(q)
	currencyRepo := whitelist_repository.NewCurrencyRepo(q)
	buyerRepo := whitelist_repository.NewBuyerRepo(q)
	listingRepo := listing_repository.NewListingRepo(q)
	tokenRepo := token_repository.New(q)
	ledgerRepo := ledger_repository.New(q)

	disp := dispatcher.New(registryRepo)

	hc := hc_usecase.New(hcRepo)
	settings := settings_usecase.New(settingsRepo)
	loupe := diamond_usecase.NewLoupeUsecase(registryRepo)
	cut := diamond_usecase.NewCutUsecase(q, registryRepo, settings, disp)
	version := diamond_usecase.NewVersionUsecase(registryRepo, versionRepo, loupe, settings, chainId, diamondAddress)
	whitelist := whitelist_usecase.New(collectionRepo, currencyRepo, buyerRepo, listingRepo, settings)
	token := token_usecase.New(tokenRepo)
	ledger := ledger_usecase.New(ledgerRepo)
	listing := listing_usecase.New(q, listingRepo, buyerRepo, whitelist, settings, token, ledger, diamondAddress)

	// register facet code, then bind selectors through the genesis cut
	cutFacet := diamond_facet.NewCutFacet(domain.Address(viper.GetString("diamond.facets.cut")), cut)
	loupeFacet := diamond_facet.NewLoupeFacet(domain.Address(viper.GetString("diamond.facets.loupe")), loupe, version)
	adminFacet := settings_facet.New(domain.Address(viper.GetString("diamond.facets.admin")), settings)
	whitelistFacet := whitelist_facet.New(domain.Address(viper.GetString("diamond.facets.whitelist")), whitelist)
	marketFacet := listing_facet.New(domain.Address(viper.GetString("diamond.facets.market")), listing)

	facets := []diamond.Implementation{cutFacet, loupeFacet, adminFacet, whitelistFacet, marketFacet}
	for _, f := range facets {
		if err := disp.Register(f); err != nil {
			log.Log().WithField("err", err).Panic("dispatcher.Register failed")
		}
	}

	if err := bootstrapDiamond(context, registryRepo, disp, cut, adminFacet, facets); err != nil {
		log.Log().WithField("err", err).Panic("bootstrapDiamond failed")
	}

	auth := auth_usecase.New(viper.GetString("auth.jwtSecret"), viper.GetString("auth.signatureMsg"))
	authMiddleware := auth_middleware.New(auth)

	hc_delivery.New(e, hc)
	auth_delivery.New(e, auth, viper.GetString("auth.signatureMsg"))
	diamond_delivery.New(e, disp, authMiddleware)
	settings_delivery.New(e, disp, authMiddleware)
	whitelist_delivery.New(e, disp, authMiddleware)
	listing_delivery.New(e, disp, authMiddleware)
	token_delivery.New(e, token, authMiddleware)
	ledger_delivery.New(e, ledger, authMiddleware)

	e.GET("/check", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"address": c.Get("address").(domain.Address),
		})
	}, authMiddleware.Auth())

	go func() {
		if err := e.Start(viper.GetString("server.address")); err != nil && err != http.ErrServerClosed {
			log.Log().WithField("err", err).Error("shutting down the server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 10 seconds.
	// Use a buffered channel to avoid missing signals as recommended for signal.Notify
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	sig := <-quit
	log.Log().WithField("signal", sig).Info("received signal")
	ctx, cancel := ctx.WithTimeout(context, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Log().WithField("err", err).Error("shutting down the server")
	} else {
		log.Log().Info("shutdown server successfully")
	}
}

// bootstrapDiamond performs the genesis deployment on an empty routing
// table: it seeds the settings document through the initializer, then
// binds every registered facet's selectors with a single cut. On a
// populated table it does nothing; later changes go through upgrades.
func bootstrapDiamond(
	c ctx.Ctx,
	registry diamond.RegistryRepo,
	disp diamond.Dispatcher,
	cut diamond.CutUsecase,
	adminFacet diamond.Implementation,
	facets []diamond.Implementation,
) error {
	entries, err := registry.FindAll(c)
	if err != nil {
		return err
	}
	if len(entries) > 0 {
		return nil
	}

	owner := domain.Address(viper.GetString("diamond.owner")).ToLower()

	if _, err := disp.Invoke(c, adminFacet.Address(), &diamond.Call{
		Caller:   owner,
		Selector: bSelector.FromSignature(settings_facet.SigInit),
		Args: map[string]interface{}{
			"owner":         owner,
			"innovationFee": viper.GetUint32("diamond.innovationFee"),
			"maxBatchSize":  viper.GetUint32("diamond.buyerWhitelistMaxBatchSize"),
		},
	}); err != nil {
		return err
	}

	// the initializer selector stays unrouted
	initSelector := bSelector.FromSignature(settings_facet.SigInit)

	cuts := []diamond.FacetCut{}
	for _, f := range facets {
		selectors := []domain.Selector{}
		for s := range f.Handlers() {
			if s == initSelector {
				continue
			}
			selectors = append(selectors, s)
		}
		cuts = append(cuts, diamond.FacetCut{
			FacetAddress: f.Address(),
			Action:       diamond.FacetCutActionAdd,
			Selectors:    selectors,
		})
	}

	c.WithField("facets", len(cuts)).Info("binding genesis selectors")
	return cut.DiamondCut(c, owner, cuts, domain.EmptyAddress, nil)
}
