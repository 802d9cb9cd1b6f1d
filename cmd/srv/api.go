package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/questx-lab/petquest/internal/middleware"
	"github.com/questx-lab/petquest/internal/model"
	"github.com/questx-lab/petquest/pkg/prometheus"
	"github.com/questx-lab/petquest/pkg/router"
	"github.com/questx-lab/petquest/pkg/xcontext"
	"github.com/rs/cors"

	"github.com/urfave/cli/v2"
)

func (s *srv) startApi(*cli.Context) error {
	cfg := xcontext.Configs(s.ctx)
	s.ctx = xcontext.WithDB(s.ctx, s.newDatabase())
	s.migrateDB()
	s.loadRedisClient()
	s.loadPublisher()
	s.loadRepos()
	s.loadLedger()
	s.loadDomains()
	s.loadEngine()
	s.loadRouter()

	ctx, stop := signal.NotifyContext(s.ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The api process delivers its own ledger transactions, a standalone
	// dispatcher only picks up what is left after a restart.
	if s.dispatcher != nil {
		go s.dispatcher.Run(ctx)
	}

	go func() {
		if err := prometheus.Serve(ctx, cfg.PrometheusServer.Address()); err != nil {
			xcontext.Logger(s.ctx).Errorf("Prometheus server stopped: %v", err)
		}
	}()

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.ApiServer.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	httpSrv := &http.Server{
		Addr:    cfg.ApiServer.Address(),
		Handler: corsHandler.Handler(s.router.Handler()),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			xcontext.Logger(s.ctx).Errorf("Cannot shutdown the server: %v", err)
		}
	}()

	xcontext.Logger(s.ctx).Infof("Starting server on %s", cfg.ApiServer.Address())
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	xcontext.Logger(s.ctx).Infof("Server stopped")
	return nil
}

func (s *srv) loadRouter() {
	cfg := xcontext.Configs(s.ctx)
	rateLimiter := middleware.NewRateLimiter(cfg.ApiServer.RateLimit, cfg.ApiServer.Burst)

	s.router = router.New(s.ctx)
	s.router.Before(middleware.WithStartTime())
	s.router.AddCloser(middleware.Logger())
	s.router.AddCloser(middleware.Prometheus())

	// Public API, reads are authenticated by permits inside the request.
	publicRouter := s.router.Branch()
	publicRouter.Before(rateLimiter.Middleware())
	{
		router.GET(publicRouter, "/wallet/login", s.walletAuthDomain.Login)
		router.POST(publicRouter, "/wallet/verify", s.walletAuthDomain.Verify)

		router.GET(publicRouter, "/actions", s.getActions)
		router.POST(publicRouter, "/query/myPets", s.queryDomain.MyPets)
		router.POST(publicRouter, "/query/myQuests", s.queryDomain.MyQuests)
		router.POST(publicRouter, "/query/myQuestHistory", s.queryDomain.MyQuestHistory)
		router.POST(publicRouter, "/query/myBalance", s.queryDomain.MyBalance)
		router.POST(publicRouter, "/query/myBattles", s.queryDomain.MyBattles)
		router.GET(publicRouter, "/query/allPets", s.queryDomain.AllPets)
	}

	// Messages need the access token of the sender.
	authRouter := s.router.Branch()
	authRouter.Before(middleware.Authenticate(s.tokenEngine))
	authRouter.Before(rateLimiter.Middleware())
	{
		router.POST(authRouter, "/execute", s.execute)
	}
}

func (s *srv) execute(ctx context.Context, req *model.ExecuteRequest) (*model.ExecuteResponse, error) {
	return s.engine.Execute(ctx, xcontext.RequestUserID(ctx), time.Now(), *req)
}

func (s *srv) getActions(context.Context, *model.GetActionsRequest) (*model.GetActionsResponse, error) {
	return &model.GetActionsResponse{Actions: s.engine.Actions()}, nil
}
