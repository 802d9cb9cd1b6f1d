package model

type BattlePetRequest struct {
	PetID      string `json:"pet_id"`
	OtherPetID string `json:"other_pet_id"`
	Wager      uint64 `json:"wager"`
}

type BattlePetResponse struct {
	BattleID string `json:"battle_id"`
}

type AcceptBattleRequest struct {
	BattleID string `json:"battle_id"`
}

type AcceptBattleResponse struct {
	WinnerPetID string `json:"winner_pet_id"`
}

type DeclineBattleRequest struct {
	BattleID string `json:"battle_id"`
}

type DeclineBattleResponse struct{}

type CancelBattleRequest struct {
	BattleID string `json:"battle_id"`
}

type CancelBattleResponse struct{}

type ClaimBattleRequest struct {
	BattleID string `json:"battle_id"`
	PetID    string `json:"pet_id"`
}

type ClaimBattleResponse struct {
	Won    bool   `json:"won"`
	Amount uint64 `json:"amount"`
}

type VoidBattleResult struct {
	BattleID     string `json:"battle_id"`
	UnfundedSide string `json:"unfunded_side"`
	LedgerTxID   int64  `json:"ledger_tx_id"`
}
