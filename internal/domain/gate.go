package domain

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/questx-lab/petquest/internal/entity"
	"github.com/questx-lab/petquest/internal/ledger"
	"github.com/questx-lab/petquest/internal/model"
	"github.com/questx-lab/petquest/internal/repository"
	"github.com/questx-lab/petquest/pkg/errorx"
	"github.com/questx-lab/petquest/pkg/ethutil"
	"github.com/questx-lab/petquest/pkg/xcontext"
	"golang.org/x/exp/slices"
)

const (
	PermitScopeOwner   = "owner"
	PermitScopeBalance = "balance"
	PermitScopeHistory = "history"
)

// AuthorizationGate decides who is calling. Mutations trust the verified
// message sender, reads trust signed permits. It never changes any state.
type AuthorizationGate interface {
	// Sender returns the verified sender of the current message.
	Sender(ctx context.Context) (string, error)

	// AuthorizePet loads the pet and checks that the sender owns it.
	AuthorizePet(ctx context.Context, petID string) (*entity.Pet, string, error)

	// VerifyPermits returns the subject of the first valid permit granting
	// scope.
	VerifyPermits(ctx context.Context, permits []model.Permit, scope string) (string, error)
}

type authorizationGate struct {
	petRepo    repository.PetRepository
	permitRepo repository.PermitRepository
	nft        ledger.NonFungibleToken
}

func NewAuthorizationGate(
	petRepo repository.PetRepository,
	permitRepo repository.PermitRepository,
	nft ledger.NonFungibleToken,
) *authorizationGate {
	return &authorizationGate{
		petRepo:    petRepo,
		permitRepo: permitRepo,
		nft:        nft,
	}
}

func (g *authorizationGate) Sender(ctx context.Context) (string, error) {
	sender := xcontext.RequestUserID(ctx)
	if sender == "" {
		return "", errorx.New(errorx.Unauthenticated, "Unauthenticated sender")
	}

	return sender, nil
}

func (g *authorizationGate) AuthorizePet(ctx context.Context, petID string) (*entity.Pet, string, error) {
	sender, err := g.Sender(ctx)
	if err != nil {
		return nil, "", err
	}

	pet, err := getPet(ctx, g.petRepo, petID)
	if err != nil {
		return nil, "", err
	}

	owner, err := g.nft.OwnerOf(ctx, petID)
	if err != nil {
		return nil, "", err
	}

	if !strings.EqualFold(owner, sender) {
		xcontext.Logger(ctx).Debugf("Sender %s is not the owner of %s", sender, petID)
		return nil, "", errorx.New(errorx.Unauthorized, "You are not the owner of %s", petID)
	}

	return pet, sender, nil
}

func (g *authorizationGate) VerifyPermits(
	ctx context.Context, permits []model.Permit, scope string,
) (string, error) {
	if len(permits) == 0 {
		return "", errorx.New(errorx.PermitInvalid, "No permit provided")
	}

	var lastErr error
	for _, permit := range permits {
		subject, err := g.verifyPermit(ctx, permit, scope)
		if err == nil {
			return subject, nil
		}

		xcontext.Logger(ctx).Debugf("Permit %s of %s is rejected: %v", permit.PermitName, permit.Subject, err)
		lastErr = err
	}

	return "", lastErr
}

func (g *authorizationGate) verifyPermit(ctx context.Context, permit model.Permit, scope string) (string, error) {
	cfg := xcontext.Configs(ctx).Game

	subject, ok := ethutil.NormalizeAddress(permit.Subject)
	if !ok {
		return "", errorx.New(errorx.PermitInvalid, "Invalid permit subject")
	}

	if permit.ChainID != cfg.ChainID {
		return "", errorx.New(errorx.PermitInvalid, "Permit is issued for another chain")
	}

	targeted := slices.ContainsFunc(permit.AllowedTargets, func(target string) bool {
		return strings.EqualFold(target, cfg.ContractAddress)
	})
	if !targeted {
		return "", errorx.New(errorx.PermitInvalid, "Permit does not allow this contract")
	}

	if !slices.Contains(permit.Permissions, scope) && !slices.Contains(permit.Permissions, PermitScopeOwner) {
		return "", errorx.New(errorx.PermitInvalid, "Permit does not allow scope %s", scope)
	}

	payload, err := PermitPayload(permit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot build permit payload: %v", err)
		return "", errorx.Unknown
	}

	signer, err := ethutil.RecoverText(payload, permit.Signature)
	if err != nil || signer != subject {
		return "", errorx.New(errorx.PermitInvalid, "Invalid permit signature")
	}

	revoked, err := g.permitRepo.IsRevoked(ctx, subject, permit.PermitName)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot check permit revocation: %v", err)
		return "", errorx.Unknown
	}

	if revoked {
		return "", errorx.New(errorx.PermitInvalid, "Permit %s is revoked", permit.PermitName)
	}

	return subject, nil
}

type permitPayload struct {
	PermitName     string   `json:"permit_name"`
	AllowedTargets []string `json:"allowed_targets"`
	Permissions    []string `json:"permissions"`
	ChainID        int64    `json:"chain_id"`
}

// PermitPayload is the message a subject signs with personal_sign to issue a
// permit. Targets are lower-cased and both lists are sorted, so the payload
// does not depend on the order chosen by the client.
func PermitPayload(permit model.Permit) ([]byte, error) {
	targets := make([]string, 0, len(permit.AllowedTargets))
	for _, target := range permit.AllowedTargets {
		targets = append(targets, strings.ToLower(target))
	}

	permissions := append([]string{}, permit.Permissions...)
	slices.Sort(targets)
	slices.Sort(permissions)

	return json.Marshal(permitPayload{
		PermitName:     permit.PermitName,
		AllowedTargets: targets,
		Permissions:    permissions,
		ChainID:        permit.ChainID,
	})
}
