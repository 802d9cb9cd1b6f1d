package model

type AccessToken struct {
	Address string `json:"address"`
}

type Stats struct {
	Health       int `json:"health"`
	Strength     int `json:"strength"`
	Stamina      int `json:"stamina"`
	Intelligence int `json:"intelligence"`
	Luck         int `json:"luck"`
}

type PetLock struct {
	Kind      string `json:"kind"`
	QuestType string `json:"quest_type,omitempty"`
	StartedAt string `json:"started_at,omitempty"`
	EndsAt    string `json:"ends_at,omitempty"`
	BattleID  string `json:"battle_id,omitempty"`
}

type Pet struct {
	ID           string  `json:"id"`
	Owner        string  `json:"owner,omitempty"`
	Current      Stats   `json:"current"`
	Max          Stats   `json:"max"`
	UpgradeCosts Stats   `json:"upgrade_costs"`
	Lock         PetLock `json:"lock"`
}

type QuestLoot struct {
	Fail            uint64 `json:"fail"`
	Pass            uint64 `json:"pass"`
	ExceptionalPass uint64 `json:"exceptional_pass"`
}

type Quest struct {
	QuestType           string    `json:"quest_type"`
	Stat                string    `json:"stat"`
	Status              string    `json:"status"`
	BaseLoot            int       `json:"base_loot"`
	Difficulty          int       `json:"difficulty"`
	DifficultyIncrement int       `json:"difficulty_increment"`
	TimesWon            int       `json:"times_won"`
	PetID               string    `json:"pet_id,omitempty"`
	Outcome             string    `json:"outcome,omitempty"`
	Loot                QuestLoot `json:"loot"`
	StartedAt           string    `json:"started_at,omitempty"`
	FinishedExploring   string    `json:"finished_exploring,omitempty"`
	FinishedCooldown    string    `json:"finished_cooldown,omitempty"`
}

type QuestHistoryEntry struct {
	PetID         string `json:"pet_id"`
	QuestType     string `json:"quest_type"`
	TimeStarted   string `json:"time_started"`
	TimeEnded     string `json:"time_ended"`
	LootCollected uint64 `json:"loot_collected"`
	Outcome       string `json:"outcome"`
}

type Battle struct {
	ID              string `json:"id"`
	PetID           string `json:"pet_id"`
	OtherPetID      string `json:"other_pet_id"`
	Initiator       string `json:"initiator"`
	Opponent        string `json:"opponent,omitempty"`
	Wager           uint64 `json:"wager"`
	Status          string `json:"status"`
	WinnerPetID     string `json:"winner_pet_id,omitempty"`
	PetClaimed      bool   `json:"pet_claimed"`
	OtherPetClaimed bool   `json:"other_pet_claimed"`
	CreatedAt       string `json:"created_at"`
}

// Permit is an off-chain signed statement by Subject allowing the holder to
// read the data of Subject within Permissions.
type Permit struct {
	Subject        string   `json:"subject"`
	PermitName     string   `json:"permit_name"`
	AllowedTargets []string `json:"allowed_targets"`
	Permissions    []string `json:"permissions"`
	ChainID        int64    `json:"chain_id"`
	Signature      string   `json:"signature"`
}
