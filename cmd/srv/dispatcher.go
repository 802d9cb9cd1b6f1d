package main

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/questx-lab/petquest/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startDispatcher(*cli.Context) error {
	s.ctx = xcontext.WithDB(s.ctx, s.newDatabase())
	s.migrateDB()
	s.loadRedisClient()
	s.loadPublisher()
	s.loadRepos()
	s.loadLedger()

	if s.dispatcher == nil {
		return errors.New("the dispatcher needs the evm ledger backend")
	}

	// Compensations are game messages, so the dispatcher runs the engine too.
	s.loadDomains()
	s.loadEngine()

	ctx, stop := signal.NotifyContext(s.ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	xcontext.Logger(s.ctx).Infof("Starting ledger dispatcher")
	s.dispatcher.Run(ctx)
	xcontext.Logger(s.ctx).Infof("Ledger dispatcher stopped")
	return nil
}
