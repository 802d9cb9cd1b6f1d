package main

import (
	"fmt"

	"github.com/questx-lab/petquest/internal/model"
	"github.com/questx-lab/petquest/pkg/ethutil"
	"github.com/questx-lab/petquest/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startInstantiate(cctx *cli.Context) error {
	s.ctx = xcontext.WithDB(s.ctx, s.newDatabase())
	s.migrateDB()
	s.loadPublisher()
	s.loadRepos()
	s.loadLedger()
	s.loadDomains()

	ctx := xcontext.WithDBTransaction(s.ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	_, err := s.adminDomain.Instantiate(ctx, &model.InstantiateRequest{
		Admin:    cctx.String("admin"),
		MaxStats: cctx.Int("max-stats"),
		Entropy:  cctx.String("entropy"),
	})
	if err != nil {
		return err
	}

	if err := xcontext.WithCommitDBTransaction(ctx); err != nil {
		return err
	}

	xcontext.Logger(s.ctx).Infof("Game is instantiated")
	return nil
}

func (s *srv) startLedgerFund(cctx *cli.Context) error {
	s.ctx = xcontext.WithDB(s.ctx, s.newDatabase())
	s.migrateDB()
	s.loadPublisher()
	s.loadRepos()
	s.loadLedger()

	if err := s.requireLocalLedger(); err != nil {
		return err
	}

	address, ok := ethutil.NormalizeAddress(cctx.String("address"))
	if !ok {
		return fmt.Errorf("invalid address %s", cctx.String("address"))
	}
	amount := cctx.Uint64("amount")

	ctx := xcontext.WithDBTransaction(s.ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := s.localLedger.Mint(ctx, address, amount); err != nil {
		return err
	}

	allowance, err := s.localLedger.BalanceOf(ctx, address)
	if err != nil {
		return err
	}

	if err := s.localLedger.Approve(ctx, address, allowance); err != nil {
		return err
	}

	if err := xcontext.WithCommitDBTransaction(ctx); err != nil {
		return err
	}

	fmt.Printf("%s now holds %d LOOT, all of it spendable by the engine\n", address, allowance)
	return nil
}

func (s *srv) startLedgerBalance(cctx *cli.Context) error {
	s.ctx = xcontext.WithDB(s.ctx, s.newDatabase())
	s.migrateDB()
	s.loadPublisher()
	s.loadRepos()
	s.loadLedger()

	address, ok := ethutil.NormalizeAddress(cctx.String("address"))
	if !ok {
		return fmt.Errorf("invalid address %s", cctx.String("address"))
	}

	balance, err := s.bridge.BalanceOf(s.ctx, address)
	if err != nil {
		return err
	}

	pets, err := s.bridge.TokensOf(s.ctx, address)
	if err != nil {
		return err
	}

	fmt.Printf("balance: %d LOOT\npets: %v\n", balance, pets)
	return nil
}
