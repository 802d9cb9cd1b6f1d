package config

import (
	"fmt"
	"time"

	"github.com/questx-lab/petquest/pkg/logger"
)

type Configs struct {
	Env string `toml:"env" env:"ENV"`

	Log              logger.Config    `toml:"log" envPrefix:"LOG_"`
	Database         DatabaseConfigs  `toml:"database" envPrefix:"DATABASE_"`
	ApiServer        APIServerConfigs `toml:"api_server" envPrefix:"API_SERVER_"`
	PrometheusServer ServerConfigs    `toml:"prometheus_server" envPrefix:"PROMETHEUS_SERVER_"`
	Auth             AuthConfigs      `toml:"auth" envPrefix:"AUTH_"`
	Redis            RedisConfigs     `toml:"redis" envPrefix:"REDIS_"`
	Kafka            KafkaConfigs     `toml:"kafka" envPrefix:"KAFKA_"`
	Game             GameConfigs      `toml:"game" envPrefix:"GAME_"`
	Ledger           LedgerConfigs    `toml:"ledger" envPrefix:"LEDGER_"`
}

type DatabaseConfigs struct {
	// Driver is either mysql or sqlite.
	Driver   string `toml:"driver" env:"DRIVER"`
	Host     string `toml:"host" env:"HOST"`
	Port     string `toml:"port" env:"PORT"`
	Database string `toml:"database" env:"DATABASE"`
	User     string `toml:"user" env:"USER"`
	Password string `toml:"password" env:"PASSWORD"`
	LogLevel string `toml:"log_level" env:"LOG_LEVEL"`
}

func (d *DatabaseConfigs) ConnectionString() string {
	if d.Driver == "sqlite" {
		return d.Database
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Database,
	)
}

type ServerConfigs struct {
	Host string `toml:"host" env:"HOST"`
	Port string `toml:"port" env:"PORT"`
}

func (c ServerConfigs) Address() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

type APIServerConfigs struct {
	ServerConfigs

	MaxLimit     int `toml:"max_limit" env:"MAX_LIMIT"`
	DefaultLimit int `toml:"default_limit" env:"DEFAULT_LIMIT"`

	// RateLimit is the number of requests per second allowed for a client, Burst
	// is the bucket size.
	RateLimit float64 `toml:"rate_limit" env:"RATE_LIMIT"`
	Burst     int     `toml:"burst" env:"BURST"`

	AllowedOrigins []string `toml:"allowed_origins" env:"ALLOWED_ORIGINS"`
}

type AuthConfigs struct {
	TokenSecret   string        `toml:"token_secret" env:"TOKEN_SECRET"`
	AccessToken   TokenConfigs  `toml:"access_token" envPrefix:"ACCESS_TOKEN_"`
	LoginNonceTTL time.Duration `toml:"login_nonce_ttl" env:"LOGIN_NONCE_TTL"`
}

type TokenConfigs struct {
	Name       string        `toml:"name" env:"NAME"`
	Expiration time.Duration `toml:"expiration" env:"EXPIRATION"`
}

type RedisConfigs struct {
	Addr string `toml:"addr" env:"ADDR"`

	// SequencerTTL bounds how long a crashed replica can hold the message
	// sequencer.
	SequencerTTL time.Duration `toml:"sequencer_ttl" env:"SEQUENCER_TTL"`
}

func (c RedisConfigs) Enabled() bool {
	return c.Addr != ""
}

type KafkaConfigs struct {
	Addr        string `toml:"addr" env:"ADDR"`
	EventsTopic string `toml:"events_topic" env:"EVENTS_TOPIC"`
}

func (c KafkaConfigs) Enabled() bool {
	return c.Addr != ""
}

type GameConfigs struct {
	// ContractAddress is the address of the engine itself. Escrowed wagers are
	// held by this address and permits must list it as an allowed target.
	ContractAddress string `toml:"contract_address" env:"CONTRACT_ADDRESS"`
	ChainID         int64  `toml:"chain_id" env:"CHAIN_ID"`

	// Admin, MaxStats and Entropy are only read when the game is instantiated.
	Admin    string `toml:"admin" env:"ADMIN"`
	MaxStats int    `toml:"max_stats" env:"MAX_STATS"`
	Entropy  string `toml:"entropy" env:"ENTROPY"`

	QuestExploreTime  time.Duration `toml:"quest_explore_time" env:"QUEST_EXPLORE_TIME"`
	QuestCooldown     time.Duration `toml:"quest_cooldown" env:"QUEST_COOLDOWN"`
	MaxMintPerMessage int           `toml:"max_mint_per_message" env:"MAX_MINT_PER_MESSAGE"`
}

type LedgerConfigs struct {
	// Backend is either local or evm.
	Backend string `toml:"backend" env:"BACKEND"`

	RPC         string `toml:"rpc" env:"RPC"`
	ChainID     int64  `toml:"chain_id" env:"CHAIN_ID"`
	LootAddress string `toml:"loot_address" env:"LOOT_ADDRESS"`
	PetAddress  string `toml:"pet_address" env:"PET_ADDRESS"`
	SecretKey   string `toml:"secret_key" env:"SECRET_KEY"`
	GasLimit    uint64 `toml:"gas_limit" env:"GAS_LIMIT"`
	BatchSize   int    `toml:"batch_size" env:"BATCH_SIZE"`

	DispatchInterval time.Duration `toml:"dispatch_interval" env:"DISPATCH_INTERVAL"`
}
