package ledger

import (
	"context"
	"errors"

	"github.com/questx-lab/petquest/internal/entity"
	"github.com/questx-lab/petquest/internal/repository"
	"github.com/questx-lab/petquest/pkg/errorx"
	"gorm.io/gorm"
)

// localLedger keeps both tokens in the engine database. Every call joins the
// transaction of the current message, so a failed message leaves no trace in
// the ledger either.
type localLedger struct {
	ledgerRepo repository.LedgerRepository
	escrow     string
}

func NewLocalLedger(ledgerRepo repository.LedgerRepository, escrow string) *localLedger {
	return &localLedger{ledgerRepo: ledgerRepo, escrow: escrow}
}

func (l *localLedger) Escrow() string {
	return l.escrow
}

// Approve sets the amount of tokens the engine may spend on behalf of owner.
func (l *localLedger) Approve(ctx context.Context, owner string, amount uint64) error {
	if err := l.ledgerRepo.SetAllowance(ctx, owner, l.escrow, amount); err != nil {
		return unknown(ctx, "Cannot set allowance of %s: %v", owner, err)
	}

	return nil
}

func (l *localLedger) Allowance(ctx context.Context, owner string) (uint64, error) {
	allowance, err := l.ledgerRepo.GetAllowance(ctx, owner, l.escrow)
	if err != nil {
		return 0, unknown(ctx, "Cannot get allowance of %s: %v", owner, err)
	}

	return allowance, nil
}

func (l *localLedger) Pull(ctx context.Context, owner string, amount uint64) error {
	if amount == 0 {
		return nil
	}

	if err := l.spend(ctx, owner, amount); err != nil {
		return err
	}

	if err := l.ledgerRepo.IncreaseBalance(ctx, l.escrow, amount); err != nil {
		return unknown(ctx, "Cannot increase escrow balance: %v", err)
	}

	return nil
}

func (l *localLedger) Pay(ctx context.Context, recipient string, amount uint64) error {
	if amount == 0 {
		return nil
	}

	err := l.ledgerRepo.DecreaseBalance(ctx, l.escrow, amount)
	if err != nil {
		if errors.Is(err, repository.ErrNotEnough) {
			return unknown(ctx, "Escrow cannot pay %d to %s", amount, recipient)
		}

		return unknown(ctx, "Cannot decrease escrow balance: %v", err)
	}

	if err := l.ledgerRepo.IncreaseBalance(ctx, recipient, amount); err != nil {
		return unknown(ctx, "Cannot increase balance of %s: %v", recipient, err)
	}

	return nil
}

func (l *localLedger) Mint(ctx context.Context, recipient string, amount uint64) error {
	if amount == 0 {
		return nil
	}

	if err := l.ledgerRepo.IncreaseBalance(ctx, recipient, amount); err != nil {
		return unknown(ctx, "Cannot mint to %s: %v", recipient, err)
	}

	return nil
}

func (l *localLedger) Burn(ctx context.Context, owner string, amount uint64) error {
	if amount == 0 {
		return nil
	}

	return l.spend(ctx, owner, amount)
}

func (l *localLedger) BalanceOf(ctx context.Context, owner string) (uint64, error) {
	balance, err := l.ledgerRepo.GetBalance(ctx, owner)
	if err != nil {
		return 0, unknown(ctx, "Cannot get balance of %s: %v", owner, err)
	}

	return balance, nil
}

// spend removes amount from the owner balance and from the allowance granted
// to the escrow.
func (l *localLedger) spend(ctx context.Context, owner string, amount uint64) error {
	allowance, err := l.ledgerRepo.GetAllowance(ctx, owner, l.escrow)
	if err != nil {
		return unknown(ctx, "Cannot get allowance of %s: %v", owner, err)
	}

	if allowance < amount {
		return insufficientFunds("Allowance is not enough, got %d, need %d", allowance, amount)
	}

	err = l.ledgerRepo.DecreaseBalance(ctx, owner, amount)
	if err != nil {
		if errors.Is(err, repository.ErrNotEnough) {
			return insufficientFunds("Balance is not enough to spend %d", amount)
		}

		return unknown(ctx, "Cannot decrease balance of %s: %v", owner, err)
	}

	if err := l.ledgerRepo.DecreaseAllowance(ctx, owner, l.escrow, amount); err != nil {
		return unknown(ctx, "Cannot decrease allowance of %s: %v", owner, err)
	}

	return nil
}

func (l *localLedger) MintNFT(ctx context.Context, recipient, tokenID string) error {
	_, err := l.ledgerRepo.GetPetToken(ctx, tokenID)
	if err == nil {
		return errorx.New(errorx.AlreadyExists, "Token %s already exists", tokenID)
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return unknown(ctx, "Cannot get token %s: %v", tokenID, err)
	}

	if err := l.ledgerRepo.CreatePetToken(ctx, &entity.PetToken{TokenID: tokenID, Owner: recipient}); err != nil {
		return unknown(ctx, "Cannot mint token %s: %v", tokenID, err)
	}

	return nil
}

func (l *localLedger) BurnNFT(ctx context.Context, tokenID string) error {
	if err := l.ledgerRepo.DeletePetToken(ctx, tokenID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tokenNotFound(tokenID)
		}

		return unknown(ctx, "Cannot burn token %s: %v", tokenID, err)
	}

	return nil
}

func (l *localLedger) OwnerOf(ctx context.Context, tokenID string) (string, error) {
	token, err := l.ledgerRepo.GetPetToken(ctx, tokenID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", tokenNotFound(tokenID)
		}

		return "", unknown(ctx, "Cannot get token %s: %v", tokenID, err)
	}

	return token.Owner, nil
}

func (l *localLedger) TokensOf(ctx context.Context, owner string) ([]string, error) {
	tokens, err := l.ledgerRepo.GetPetTokensByOwner(ctx, owner)
	if err != nil {
		return nil, unknown(ctx, "Cannot get tokens of %s: %v", owner, err)
	}

	ids := []string{}
	for _, token := range tokens {
		ids = append(ids, token.TokenID)
	}

	sortTokenIDs(ids)
	return ids, nil
}
