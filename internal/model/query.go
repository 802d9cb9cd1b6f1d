package model

type MyPetsRequest struct {
	Owner   string   `json:"owner"`
	Permits []Permit `json:"permits"`
}

type MyPetsResponse struct {
	Pets []Pet `json:"pets"`
}

type MyQuestsRequest struct {
	Permits []Permit `json:"permits"`
}

type MyQuestsResponse struct {
	Quests []Quest `json:"quests"`
}

type MyQuestHistoryRequest struct {
	Permits []Permit `json:"permits"`
	Offset  int      `json:"offset"`
	Limit   int      `json:"limit"`
}

type MyQuestHistoryResponse struct {
	History []QuestHistoryEntry `json:"history"`
	Total   int64               `json:"total"`
}

type MyBalanceRequest struct {
	Owner   string   `json:"owner"`
	Permits []Permit `json:"permits"`
}

type MyBalanceResponse struct {
	Balance uint64 `json:"balance"`
}

type MyBattlesRequest struct {
	Permits []Permit `json:"permits"`
}

type MyBattlesResponse struct {
	Battles []Battle `json:"battles"`
}

type AllPetsRequest struct{}

type AllPetsResponse struct {
	PetIDs []string `json:"pet_ids"`
}
