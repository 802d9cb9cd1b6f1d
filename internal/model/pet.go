package model

type MintPetRequest struct {
	Recipient string `json:"recipient"`
	Amount    int    `json:"amount"`
}

type MintPetResponse struct {
	PetIDs []string `json:"pet_ids"`
}

type ReleasePetRequest struct {
	PetID string `json:"pet_id"`
}

type ReleasePetResponse struct{}

type UpgradePetStatsRequest struct {
	PetID string `json:"pet_id"`
	Stat  string `json:"stat"`
}

type UpgradePetStatsResponse struct {
	Value int    `json:"value"`
	Cost  uint64 `json:"cost"`
}
