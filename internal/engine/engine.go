// Package engine applies messages one at a time. A message either changes the
// state completely or not at all, and only its committed effects leave the
// process.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"
	"github.com/questx-lab/petquest/internal/common"
	"github.com/questx-lab/petquest/internal/domain"
	"github.com/questx-lab/petquest/internal/entity"
	"github.com/questx-lab/petquest/internal/model"
	"github.com/questx-lab/petquest/internal/repository"
	"github.com/questx-lab/petquest/pkg/errorx"
	"github.com/questx-lab/petquest/pkg/pubsub"
	"github.com/questx-lab/petquest/pkg/xcontext"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

const (
	ActionMintPet           = "mint_pet"
	ActionReleasePet        = "release_pet"
	ActionUpgradePetStats   = "upgrade_pet_stats"
	ActionSendPetOnQuest    = "send_pet_on_quest"
	ActionClaimQuestRewards = "claim_quest_rewards"
	ActionBattlePet         = "battle_pet"
	ActionAcceptBattle      = "accept_battle"
	ActionDeclineBattle     = "decline_battle"
	ActionCancelBattle      = "cancel_battle"
	ActionClaimBattle       = "claim_battle"
	ActionAddMinters        = "add_minters"
	ActionChangeAdmin       = "change_admin"
	ActionRevokePermit      = "revoke_permit"

	// actionVoidBattle is applied by the engine itself when a wager never
	// reached the escrow.
	actionVoidBattle = "void_battle"
)

// Waker is notified after every committed message, the ledger dispatcher uses
// it to send recorded sub-messages without waiting for its next tick.
type Waker interface {
	Wake()
}

type action func(ctx context.Context, params map[string]any) (any, error)

type Engine struct {
	gameConfigRepo repository.GameConfigRepository
	sequencer      *Sequencer
	publisher      pubsub.Publisher
	waker          Waker
	battleDomain   domain.BattleDomain
	actions        map[string]action
}

func New(
	gameConfigRepo repository.GameConfigRepository,
	sequencer *Sequencer,
	petDomain domain.PetDomain,
	questDomain domain.QuestDomain,
	battleDomain domain.BattleDomain,
	adminDomain domain.AdminDomain,
	publisher pubsub.Publisher,
	waker Waker,
) *Engine {
	return &Engine{
		gameConfigRepo: gameConfigRepo,
		sequencer:      sequencer,
		publisher:      publisher,
		waker:          waker,
		battleDomain:   battleDomain,
		actions: map[string]action{
			ActionMintPet:           handle(petDomain.Mint),
			ActionReleasePet:        handle(petDomain.Release),
			ActionUpgradePetStats:   handle(petDomain.Upgrade),
			ActionSendPetOnQuest:    handle(questDomain.Send),
			ActionClaimQuestRewards: handle(questDomain.Claim),
			ActionBattlePet:         handle(battleDomain.Challenge),
			ActionAcceptBattle:      handle(battleDomain.Accept),
			ActionDeclineBattle:     handle(battleDomain.Decline),
			ActionCancelBattle:      handle(battleDomain.Cancel),
			ActionClaimBattle:       handle(battleDomain.Claim),
			ActionAddMinters:        handle(adminDomain.AddMinters),
			ActionChangeAdmin:       handle(adminDomain.ChangeAdmin),
			ActionRevokePermit:      handle(adminDomain.RevokePermit),
		},
	}
}

// Actions returns the names of all supported actions, sorted.
func (e *Engine) Actions() []string {
	names := maps.Keys(e.actions)
	slices.Sort(names)
	return names
}

// Execute applies the message of sender at blockTime. Nothing is persisted if
// an error is returned.
func (e *Engine) Execute(
	ctx context.Context, sender string, blockTime time.Time, msg model.ExecuteRequest,
) (*model.ExecuteResponse, error) {
	if len(msg) != 1 {
		return nil, errorx.New(errorx.BadRequest, "A message must contain exactly one action")
	}

	var name string
	var params map[string]any
	for k, v := range msg {
		name, params = k, v
	}

	act, ok := e.actions[name]
	if !ok {
		return nil, errorx.New(errorx.BadRequest, "Unknown action %s", name)
	}

	release, err := e.sequencer.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	ctx = xcontext.WithRequestUserID(ctx, sender)
	ctx = xcontext.WithBlockTime(ctx, blockTime)
	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	index, err := e.gameConfigRepo.IncreaseMessageCounter(ctx)
	if err != nil {
		e.count(name, "failure")
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.InvalidState, "Game is not instantiated")
		}

		xcontext.Logger(ctx).Errorf("Cannot increase message counter: %v", err)
		return nil, errorx.Unknown
	}
	ctx = xcontext.WithMessageIndex(ctx, index)

	result, err := act(ctx, params)
	if err != nil {
		e.count(name, "failure")
		return nil, err
	}

	if err := xcontext.WithCommitDBTransaction(ctx); err != nil {
		e.count(name, "failure")
		xcontext.Logger(ctx).Errorf("Cannot commit message %d: %v", index, err)
		return nil, errorx.Unknown
	}

	e.count(name, "success")
	if e.waker != nil {
		e.waker.Wake()
	}
	e.publish(ctx, index, name, sender, blockTime, result)

	return &model.ExecuteResponse{MessageIndex: index, Action: name, Result: result}, nil
}

// Compensate undoes the game effects of a ledger sub-message that failed on
// chain. A failed wager pull voids its battle, other kinds have nothing to
// undo. It is ordered with messages and gets its own message index.
func (e *Engine) Compensate(ctx context.Context, tx *entity.LedgerTransaction) error {
	if tx.Kind != entity.LedgerTransferFrom {
		return nil
	}

	battleID, side, ok := entity.ParseBattleWagerReference(tx.Reference)
	if !ok {
		return nil
	}

	release, err := e.sequencer.Acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	blockTime := time.Now()
	ctx = xcontext.WithBlockTime(ctx, blockTime)
	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	index, err := e.gameConfigRepo.IncreaseMessageCounter(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot increase message counter: %v", err)
		return errorx.Unknown
	}
	ctx = xcontext.WithMessageIndex(ctx, index)

	if err := e.battleDomain.VoidUnfunded(ctx, battleID, side); err != nil {
		e.count(actionVoidBattle, "failure")
		return err
	}

	if err := xcontext.WithCommitDBTransaction(ctx); err != nil {
		e.count(actionVoidBattle, "failure")
		xcontext.Logger(ctx).Errorf("Cannot commit message %d: %v", index, err)
		return errorx.Unknown
	}

	e.count(actionVoidBattle, "success")
	if e.waker != nil {
		e.waker.Wake()
	}

	result := &model.VoidBattleResult{BattleID: battleID, UnfundedSide: string(side), LedgerTxID: tx.ID}
	e.publish(ctx, index, actionVoidBattle, tx.FromAddress, blockTime, result)
	return nil
}

func (e *Engine) count(action, status string) {
	common.PromCounters[common.MessageTotal].WithLabelValues(action, status).Inc()
}

func (e *Engine) publish(
	ctx context.Context, index uint64, action, sender string, blockTime time.Time, result any,
) {
	if e.publisher == nil {
		return
	}

	event := model.Event{
		ID:           uuid.NewString(),
		Type:         model.EventMessageExecuted,
		MessageIndex: index,
		Action:       action,
		Sender:       sender,
		Time:         blockTime.UTC().Format(model.DefaultTimeLayout),
		Data:         result,
	}

	b, err := json.Marshal(event)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot marshal event: %v", err)
		return
	}

	topic := xcontext.Configs(ctx).Kafka.EventsTopic
	if err := e.publisher.Publish(ctx, topic, &pubsub.Pack{Key: []byte(sender), Msg: b}); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot publish message %d: %v", index, err)
	}
}

func handle[Req, Resp any](f func(context.Context, *Req) (*Resp, error)) action {
	return func(ctx context.Context, params map[string]any) (any, error) {
		req := new(Req)
		if err := decode(params, req); err != nil {
			xcontext.Logger(ctx).Debugf("Cannot decode parameters: %v", err)
			return nil, errorx.New(errorx.BadRequest, "Invalid parameters: %v", err)
		}

		return f(ctx, req)
	}
}

func decode(params map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           out,
	})
	if err != nil {
		return err
	}

	return decoder.Decode(params)
}
