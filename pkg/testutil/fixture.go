package testutil

import (
	"context"
	"crypto/ecdsa"

	"github.com/questx-lab/petquest/internal/entity"
	"github.com/questx-lab/petquest/internal/repository"
	"github.com/questx-lab/petquest/pkg/ethutil"
	"github.com/questx-lab/petquest/pkg/xcontext"
)

const fixtureSecret = "petquest-fixture"

func PrivateKey(name string) *ecdsa.PrivateKey {
	key, err := ethutil.GeneratePrivateKey([]byte(fixtureSecret), []byte(name))
	if err != nil {
		panic(err)
	}

	return key
}

// Address returns a stable checksummed address for a test user name.
func Address(name string) string {
	address, err := ethutil.GeneratePublicKey([]byte(fixtureSecret), []byte(name))
	if err != nil {
		panic(err)
	}

	return address.Hex()
}

var (
	Admin = Address("admin")
	Alice = Address("alice")
	Bob   = Address("bob")
	Carol = Address("carol")
)

func Escrow(ctx context.Context) string {
	address, ok := ethutil.NormalizeAddress(xcontext.Configs(ctx).Game.ContractAddress)
	if !ok {
		panic("invalid contract address")
	}

	return address
}

func InsertGameConfig(ctx context.Context) *entity.GameConfig {
	cfg := &entity.GameConfig{
		Admin:    Admin,
		MaxStats: 20,
		Entropy:  xcontext.Configs(ctx).Game.Entropy,
	}

	if err := repository.NewGameConfigRepository().Create(ctx, cfg); err != nil {
		panic(err)
	}

	return cfg
}

// Fund gives amount LOOT to address on the local ledger and lets the engine
// spend all of it.
func Fund(ctx context.Context, address string, amount uint64) {
	ledgerRepo := repository.NewLedgerRepository()
	if err := ledgerRepo.IncreaseBalance(ctx, address, amount); err != nil {
		panic(err)
	}

	if err := ledgerRepo.SetAllowance(ctx, address, Escrow(ctx), amount); err != nil {
		panic(err)
	}
}

// InsertPet creates a free pet owned by owner on the local ledger.
func InsertPet(ctx context.Context, owner string, current, max entity.Stats) *entity.Pet {
	counter, err := repository.NewGameConfigRepository().IncreasePetCounter(ctx)
	if err != nil {
		panic(err)
	}

	pet := &entity.Pet{
		Base:    entity.Base{ID: entity.PetID(counter)},
		Serial:  counter,
		Current: current,
		Max:     max,
	}

	for _, stat := range []entity.Stat{
		entity.StatHealth, entity.StatStrength, entity.StatStamina, entity.StatIntelligence, entity.StatLuck,
	} {
		pet.UpgradeCosts.Set(stat, current.Get(stat)*5)
	}

	if err := repository.NewPetRepository().Create(ctx, pet); err != nil {
		panic(err)
	}

	err = repository.NewLedgerRepository().CreatePetToken(ctx, &entity.PetToken{TokenID: pet.ID, Owner: owner})
	if err != nil {
		panic(err)
	}

	return pet
}

func UniformStats(v int) entity.Stats {
	return entity.Stats{Health: v, Strength: v, Stamina: v, Intelligence: v, Luck: v}
}
