package domain

import (
	"context"
	"errors"

	"github.com/questx-lab/petquest/internal/entity"
	"github.com/questx-lab/petquest/internal/model"
	"github.com/questx-lab/petquest/internal/repository"
	"github.com/questx-lab/petquest/pkg/errorx"
	"github.com/questx-lab/petquest/pkg/xcontext"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

type AdminDomain interface {
	Instantiate(context.Context, *model.InstantiateRequest) (*model.InstantiateResponse, error)
	AddMinters(context.Context, *model.AddMintersRequest) (*model.AddMintersResponse, error)
	ChangeAdmin(context.Context, *model.ChangeAdminRequest) (*model.ChangeAdminResponse, error)
	RevokePermit(context.Context, *model.RevokePermitRequest) (*model.RevokePermitResponse, error)
}

type adminDomain struct {
	gameConfigRepo repository.GameConfigRepository
	permitRepo     repository.PermitRepository
	gate           AuthorizationGate
}

func NewAdminDomain(
	gameConfigRepo repository.GameConfigRepository,
	permitRepo repository.PermitRepository,
	gate AuthorizationGate,
) *adminDomain {
	return &adminDomain{
		gameConfigRepo: gameConfigRepo,
		permitRepo:     permitRepo,
		gate:           gate,
	}
}

// Instantiate creates the game configuration. Missing parameters are taken
// from the game section of the configuration file.
func (d *adminDomain) Instantiate(
	ctx context.Context, req *model.InstantiateRequest,
) (*model.InstantiateResponse, error) {
	gameCfg := xcontext.Configs(ctx).Game

	adminAddress := req.Admin
	if adminAddress == "" {
		adminAddress = gameCfg.Admin
	}

	admin, err := normalizeAddress(adminAddress)
	if err != nil {
		return nil, err
	}

	maxStats := req.MaxStats
	if maxStats == 0 {
		maxStats = gameCfg.MaxStats
	}

	if maxStats < minMaxStat {
		return nil, errorx.New(errorx.BadRequest, "Max stats must be at least %d", minMaxStat)
	}

	entropy := req.Entropy
	if entropy == "" {
		entropy = gameCfg.Entropy
	}

	_, err = d.gameConfigRepo.Get(ctx)
	if err == nil {
		return nil, errorx.New(errorx.AlreadyExists, "Game is already instantiated")
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		xcontext.Logger(ctx).Errorf("Cannot get game config: %v", err)
		return nil, errorx.Unknown
	}

	err = d.gameConfigRepo.Create(ctx, &entity.GameConfig{
		Admin:    admin,
		MaxStats: maxStats,
		Entropy:  entropy,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create game config: %v", err)
		return nil, errorx.Unknown
	}

	return &model.InstantiateResponse{}, nil
}

func (d *adminDomain) AddMinters(
	ctx context.Context, req *model.AddMintersRequest,
) (*model.AddMintersResponse, error) {
	if err := d.requireAdmin(ctx); err != nil {
		return nil, err
	}

	minters := []string{}
	for _, m := range req.Minters {
		minter, err := normalizeAddress(m)
		if err != nil {
			return nil, err
		}

		if !slices.Contains(minters, minter) {
			minters = append(minters, minter)
		}
	}

	if err := d.gameConfigRepo.AddMinters(ctx, minters); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot add minters: %v", err)
		return nil, errorx.Unknown
	}

	return &model.AddMintersResponse{}, nil
}

func (d *adminDomain) ChangeAdmin(
	ctx context.Context, req *model.ChangeAdminRequest,
) (*model.ChangeAdminResponse, error) {
	if err := d.requireAdmin(ctx); err != nil {
		return nil, err
	}

	admin, err := normalizeAddress(req.Address)
	if err != nil {
		return nil, err
	}

	if err := d.gameConfigRepo.UpdateAdmin(ctx, admin); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot update admin: %v", err)
		return nil, errorx.Unknown
	}

	return &model.ChangeAdminResponse{}, nil
}

func (d *adminDomain) RevokePermit(
	ctx context.Context, req *model.RevokePermitRequest,
) (*model.RevokePermitResponse, error) {
	sender, err := d.gate.Sender(ctx)
	if err != nil {
		return nil, err
	}

	if req.PermitName == "" {
		return nil, errorx.New(errorx.BadRequest, "Require a permit name")
	}

	if err := d.permitRepo.Revoke(ctx, sender, req.PermitName); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot revoke permit: %v", err)
		return nil, errorx.Unknown
	}

	return &model.RevokePermitResponse{}, nil
}

func (d *adminDomain) requireAdmin(ctx context.Context) error {
	sender, err := d.gate.Sender(ctx)
	if err != nil {
		return err
	}

	cfg, err := loadGameConfig(ctx, d.gameConfigRepo)
	if err != nil {
		return err
	}

	if sender != cfg.Admin {
		xcontext.Logger(ctx).Debugf("Sender %s is not the admin", sender)
		return errorx.New(errorx.Unauthorized, "Only the admin can do this action")
	}

	return nil
}
