package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/snowflake"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/questx-lab/petquest/config"
	"github.com/questx-lab/petquest/internal/domain"
	"github.com/questx-lab/petquest/internal/domain/outcome"
	"github.com/questx-lab/petquest/internal/engine"
	"github.com/questx-lab/petquest/internal/entity"
	"github.com/questx-lab/petquest/internal/ledger"
	"github.com/questx-lab/petquest/internal/model"
	"github.com/questx-lab/petquest/internal/repository"
	"github.com/questx-lab/petquest/pkg/authenticator"
	"github.com/questx-lab/petquest/pkg/ethutil"
	"github.com/questx-lab/petquest/pkg/kafka"
	"github.com/questx-lab/petquest/pkg/logger"
	"github.com/questx-lab/petquest/pkg/pubsub"
	"github.com/questx-lab/petquest/pkg/router"
	"github.com/questx-lab/petquest/pkg/xcontext"
	"github.com/questx-lab/petquest/pkg/xredis"
	"github.com/urfave/cli/v2"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type srv struct {
	app *cli.App
	ctx context.Context

	redisClient xredis.Client
	publisher   pubsub.Publisher
	ethClient   *ethclient.Client
	localLedger interface {
		ledger.Bridge
		Approve(ctx context.Context, owner string, amount uint64) error
	}
	bridge     ledger.Bridge
	dispatcher *ledger.Dispatcher

	gameConfigRepo    repository.GameConfigRepository
	petRepo           repository.PetRepository
	questSlotRepo     repository.QuestSlotRepository
	questHistoryRepo  repository.QuestHistoryRepository
	battleRepo        repository.BattleRepository
	permitRepo        repository.PermitRepository
	ledgerRepo        repository.LedgerRepository
	ledgerTxRepo      repository.LedgerTransactionRepository
	tokenEngine       authenticator.TokenEngine[model.AccessToken]
	authorizationGate domain.AuthorizationGate
	historyLog        domain.HistoryLog

	petDomain        domain.PetDomain
	questDomain      domain.QuestDomain
	battleDomain     domain.BattleDomain
	adminDomain      domain.AdminDomain
	queryDomain      domain.QueryDomain
	walletAuthDomain domain.WalletAuthDomain

	engine *engine.Engine
	router *router.Router
}

func (s *srv) loadConfig(cctx *cli.Context) error {
	cfg, err := config.Load(cctx.String("config"))
	if err != nil {
		return err
	}

	node, err := snowflake.NewNode(0)
	if err != nil {
		return err
	}

	s.ctx = context.Background()
	s.ctx = xcontext.WithConfigs(s.ctx, cfg)
	s.ctx = xcontext.WithLogger(s.ctx, logger.NewLogger(cfg.Log))
	s.ctx = xcontext.WithSnowFlake(s.ctx, node)
	return nil
}

func (s *srv) newDatabase() *gorm.DB {
	cfg := xcontext.Configs(s.ctx).Database

	logLevel := gormlogger.Silent
	switch cfg.LogLevel {
	case "error":
		logLevel = gormlogger.Error
	case "warn":
		logLevel = gormlogger.Warn
	case "info":
		logLevel = gormlogger.Info
	}
	gormCfg := &gorm.Config{Logger: gormlogger.Default.LogMode(logLevel)}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.ConnectionString())
	case "mysql":
		dialector = mysql.New(mysql.Config{
			DSN:                       cfg.ConnectionString(), // data source name
			DefaultStringSize:         256,                    // default size for string fields
			DisableDatetimePrecision:  true,                   // disable datetime precision, which not supported before MySQL 5.6
			DontSupportRenameIndex:    true,                   // drop & create when rename index, rename index not supported before MySQL 5.7, MariaDB
			DontSupportRenameColumn:   true,                   // `change` when rename column, rename column not supported before MySQL 8, MariaDB
			SkipInitializeWithVersion: false,                  // auto configure based on currently MySQL version
		})
	default:
		panic(fmt.Sprintf("unsupported database driver %s", cfg.Driver))
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		panic(err)
	}

	if cfg.Driver == "sqlite" {
		// sqlite allows a single writer.
		sqlDB, err := db.DB()
		if err != nil {
			panic(err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	return db
}

func (s *srv) migrateDB() {
	if err := entity.MigrateTable(s.ctx); err != nil {
		panic(err)
	}
}

func (s *srv) loadRedisClient() {
	cfg := xcontext.Configs(s.ctx).Redis
	if !cfg.Enabled() {
		xcontext.Logger(s.ctx).Warnf("Redis is not configured, running as a single replica")
		return
	}

	redisClient, err := xredis.NewClient(s.ctx)
	if err != nil {
		panic(err)
	}

	s.redisClient = redisClient
}

func (s *srv) loadPublisher() {
	cfg := xcontext.Configs(s.ctx).Kafka
	if !cfg.Enabled() {
		xcontext.Logger(s.ctx).Warnf("Kafka is not configured, events are dropped")
		s.publisher = kafka.NopPublisher{}
		return
	}

	publisher, err := kafka.NewPublisher("petquest", []string{cfg.Addr})
	if err != nil {
		panic(err)
	}

	s.publisher = publisher
}

func (s *srv) loadRepos() {
	s.gameConfigRepo = repository.NewGameConfigRepository()
	s.petRepo = repository.NewPetRepository()
	s.questSlotRepo = repository.NewQuestSlotRepository()
	s.questHistoryRepo = repository.NewQuestHistoryRepository()
	s.battleRepo = repository.NewBattleRepository()
	s.permitRepo = repository.NewPermitRepository()
	s.ledgerRepo = repository.NewLedgerRepository()
	s.ledgerTxRepo = repository.NewLedgerTransactionRepository()
}

func (s *srv) loadLedger() {
	cfg := xcontext.Configs(s.ctx)

	switch cfg.Ledger.Backend {
	case "local":
		escrow, ok := ethutil.NormalizeAddress(cfg.Game.ContractAddress)
		if !ok {
			panic(fmt.Sprintf("invalid contract address %s", cfg.Game.ContractAddress))
		}

		local := ledger.NewLocalLedger(s.ledgerRepo, escrow)
		s.localLedger = local
		s.bridge = local

	case "evm":
		ethClient, err := ethclient.DialContext(s.ctx, cfg.Ledger.RPC)
		if err != nil {
			panic(err)
		}
		s.ethClient = ethClient

		operatorKey, err := ledger.OperatorKey(cfg.Ledger.SecretKey)
		if err != nil {
			panic(err)
		}

		s.bridge = ledger.NewEVMLedger(
			ethClient,
			ethcommon.HexToAddress(cfg.Ledger.LootAddress),
			ethcommon.HexToAddress(cfg.Ledger.PetAddress),
			crypto.PubkeyToAddress(operatorKey.PublicKey),
			s.ledgerTxRepo,
		)

		s.dispatcher = ledger.NewDispatcher(s.ctx, ethClient, s.ledgerTxRepo, s.publisher, operatorKey)

	default:
		panic(fmt.Sprintf("unsupported ledger backend %s", cfg.Ledger.Backend))
	}
}

func (s *srv) loadDomains() {
	cfg := xcontext.Configs(s.ctx)

	s.tokenEngine = authenticator.NewTokenEngine[model.AccessToken](
		cfg.Auth.TokenSecret, cfg.Auth.AccessToken.Expiration)
	s.authorizationGate = domain.NewAuthorizationGate(s.petRepo, s.permitRepo, s.bridge)
	s.historyLog = domain.NewHistoryLog(s.questHistoryRepo)

	s.petDomain = domain.NewPetDomain(s.gameConfigRepo, s.petRepo, s.questSlotRepo, s.battleRepo, s.bridge,
		s.authorizationGate)
	s.questDomain = domain.NewQuestDomain(s.gameConfigRepo, s.petRepo, s.questSlotRepo, s.historyLog,
		s.bridge, s.authorizationGate, outcome.NewLinearQuestPolicy())
	s.battleDomain = domain.NewBattleDomain(s.gameConfigRepo, s.petRepo, s.battleRepo, s.bridge,
		s.authorizationGate, outcome.NewLinearBattlePolicy())
	s.adminDomain = domain.NewAdminDomain(s.gameConfigRepo, s.permitRepo, s.authorizationGate)
	s.queryDomain = domain.NewQueryDomain(s.petRepo, s.questSlotRepo, s.battleRepo, s.historyLog,
		s.bridge, s.authorizationGate)
	s.walletAuthDomain = domain.NewWalletAuthDomain(s.tokenEngine, s.redisClient)
}

func (s *srv) loadEngine() {
	var waker engine.Waker
	if s.dispatcher != nil {
		waker = s.dispatcher
	}

	s.engine = engine.New(
		s.gameConfigRepo,
		engine.NewSequencer(s.redisClient, xcontext.Configs(s.ctx).Redis.SequencerTTL),
		s.petDomain,
		s.questDomain,
		s.battleDomain,
		s.adminDomain,
		s.publisher,
		waker,
	)

	if s.dispatcher != nil {
		s.dispatcher.SetCompensator(s.engine)
	}
}

// requireLocalLedger fails the command unless the local backend is used.
func (s *srv) requireLocalLedger() error {
	if s.localLedger == nil {
		return errors.New("this command needs the local ledger backend")
	}

	return nil
}
