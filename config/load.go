package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

const EnvPrefix = "PETQUEST_"

func Default() Configs {
	return Configs{
		Env: "local",
		Database: DatabaseConfigs{
			Driver:   "sqlite",
			Database: "petquest.db",
		},
		ApiServer: APIServerConfigs{
			ServerConfigs: ServerConfigs{Port: "8080"},
			MaxLimit:      50,
			DefaultLimit:  10,
			RateLimit:     10,
			Burst:         20,
		},
		PrometheusServer: ServerConfigs{Port: "9090"},
		Auth: AuthConfigs{
			AccessToken: TokenConfigs{
				Name:       "access_token",
				Expiration: 24 * time.Hour,
			},
			LoginNonceTTL: 5 * time.Minute,
		},
		Redis: RedisConfigs{SequencerTTL: 10 * time.Second},
		Kafka: KafkaConfigs{EventsTopic: "petquest.events"},
		Game: GameConfigs{
			ContractAddress:   "0x00000000000000000000000000000000000a11ce",
			ChainID:           1,
			MaxStats:          20,
			QuestExploreTime:  30 * time.Second,
			QuestCooldown:     60 * time.Second,
			MaxMintPerMessage: 10,
		},
		Ledger: LedgerConfigs{
			Backend:          "local",
			GasLimit:         300000,
			BatchSize:        20,
			DispatchInterval: 5 * time.Second,
		},
	}
}

// Load reads the toml file at path on top of the defaults, then applies
// PETQUEST_ prefixed environment variables. An empty path skips the file.
func Load(path string) (Configs, error) {
	cfg := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Configs{}, fmt.Errorf("cannot decode config file %s: %w", path, err)
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Configs{}, fmt.Errorf("cannot parse environment variables: %w", err)
	}

	return cfg, nil
}
