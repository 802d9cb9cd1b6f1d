package entity

import (
	"time"

	"github.com/questx-lab/petquest/pkg/enum"
)

type TokenBalance struct {
	Address   string `gorm:"primaryKey"`
	UpdatedAt time.Time
	Amount    uint64
}

type TokenAllowance struct {
	Owner     string `gorm:"primaryKey"`
	Spender   string `gorm:"primaryKey"`
	UpdatedAt time.Time
	Amount    uint64
}

type PetToken struct {
	TokenID   string `gorm:"primaryKey"`
	CreatedAt time.Time
	Owner     string `gorm:"index"`
}

type LedgerTransactionKind string

var (
	LedgerTransferFrom = enum.New(LedgerTransactionKind("transfer_from"))
	LedgerTransfer     = enum.New(LedgerTransactionKind("transfer"))
	LedgerMint         = enum.New(LedgerTransactionKind("mint"))
	LedgerBurnFrom     = enum.New(LedgerTransactionKind("burn_from"))
	LedgerMintNFT      = enum.New(LedgerTransactionKind("mint_nft"))
	LedgerBurnNFT      = enum.New(LedgerTransactionKind("burn_nft"))
)

type LedgerTransactionStatus string

var (
	LedgerTransactionPending   = enum.New(LedgerTransactionStatus("pending"))
	LedgerTransactionSubmitted = enum.New(LedgerTransactionStatus("submitted"))
	LedgerTransactionSuccess   = enum.New(LedgerTransactionStatus("success"))
	LedgerTransactionFailed    = enum.New(LedgerTransactionStatus("failed"))
)

// LedgerTransaction is a sub-message to one of the external token contracts.
// It is recorded inside the message transaction and delivered after commit.
type LedgerTransaction struct {
	SnowFlakeBase

	MessageIndex uint64 `gorm:"index"`
	Kind         LedgerTransactionKind
	FromAddress  string `gorm:"index"`
	ToAddress    string
	Amount       uint64
	TokenID      string `gorm:"index"`

	// Reference ties the sub-message to the game object it funds, e.g. a
	// battle wager.
	Reference string `gorm:"index"`

	Status LedgerTransactionStatus `gorm:"index"`
	TxHash string
	Error  string
}
