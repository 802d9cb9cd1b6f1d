package model

type SendPetOnQuestRequest struct {
	PetID     string `json:"pet_id"`
	QuestType string `json:"quest_type"`
}

type SendPetOnQuestResponse struct {
	Quest Quest `json:"quest"`
}

type ClaimQuestRewardsRequest struct {
	QuestType string `json:"quest_type"`
}

type ClaimQuestRewardsResponse struct {
	PetID   string `json:"pet_id"`
	Outcome string `json:"outcome"`
	Loot    uint64 `json:"loot"`
}
