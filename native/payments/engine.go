package payments

import (
	"errors"
	"time"

	"creatorpay/core/events"
	"creatorpay/native/bank"
	"creatorpay/native/common"
	"creatorpay/native/fees"
)

type engineState interface {
	PaymentsPlatformGet() (*PlatformConfig, bool, error)
	PaymentsPlatformPut(cfg *PlatformConfig) error
	PaymentsVaultGet(key [32]byte) (*CreatorVault, bool, error)
	PaymentsVaultPut(vault *CreatorVault) error
	PaymentsSubscriptionGet(subscriber, creator [20]byte) (*Subscription, bool, error)
	PaymentsSubscriptionPut(sub *Subscription) error
	PaymentsTipGet(tipper [20]byte, index uint64) (*TipRecord, bool, error)
	PaymentsTipPut(tip *TipRecord) error
	bank.Ledger
}

// Engine runs creator settlement: fee splitting, vault accounting and the
// subscription state machine. It performs no locking; callers apply one
// operation at a time against a state view they can discard on error.
type Engine struct {
	state   engineState
	emitter events.Emitter
	nowFn   func() int64
}

// NewEngine constructs a settlement engine with default dependencies.
func NewEngine() *Engine {
	return &Engine{
		emitter: events.NoopEmitter{},
		nowFn: func() int64 {
			return time.Now().Unix()
		},
	}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetEmitter configures the event emitter used by the engine.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetNowFunc overrides the time source used for deterministic testing.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

func (e *Engine) emit(evt events.Event) {
	if e == nil || evt == nil || e.emitter == nil {
		return
	}
	e.emitter.Emit(evt)
}

func (e *Engine) now() int64 {
	if e == nil || e.nowFn == nil {
		return time.Now().Unix()
	}
	return e.nowFn()
}

func (e *Engine) ready() error {
	if e == nil || e.state == nil {
		return errNilState
	}
	return nil
}

func (e *Engine) platform() (*PlatformConfig, error) {
	cfg, ok, err := e.state.PaymentsPlatformGet()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrPlatformNotInitialized
	}
	return cfg, nil
}

func (e *Engine) vault(key [32]byte) (*CreatorVault, error) {
	vault, ok, err := e.state.PaymentsVaultGet(key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrVaultNotFound
	}
	return vault, nil
}

// settle charges gross from payer, routes the fee to the configured recipient
// and the remainder to the vault owner, then credits the vault in memory. The
// caller persists the vault. Every check runs before the first transfer.
func (e *Engine) settle(payer [20]byte, cfg *PlatformConfig, vault *CreatorVault, gross uint64) (Settlement, error) {
	fee, net, err := fees.Split(gross, cfg.FeeBasisPoints)
	if err != nil {
		if errors.Is(err, fees.ErrInvalidRate) {
			return Settlement{}, ErrInvalidFeeBasisPoints
		}
		return Settlement{}, ErrArithmeticOverflow
	}
	credited := vault.Clone()
	if err := credited.Credit(net); err != nil {
		return Settlement{}, err
	}
	balance, err := e.state.Balance(payer)
	if err != nil {
		return Settlement{}, err
	}
	if balance < gross {
		return Settlement{}, ErrInsufficientFunds
	}
	if fee > 0 {
		if err := e.transfer(payer, cfg.FeeRecipient, fee); err != nil {
			return Settlement{}, err
		}
	}
	if err := e.transfer(payer, vault.Creator, net); err != nil {
		return Settlement{}, err
	}
	*vault = *credited
	return Settlement{Gross: gross, Fee: fee, Net: net}, nil
}

func (e *Engine) transfer(from, to [20]byte, amount uint64) error {
	err := bank.Transfer(e.state, from, to, amount)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bank.ErrInsufficientFunds):
		return ErrInsufficientFunds
	case errors.Is(err, common.ErrArithmeticOverflow):
		return ErrArithmeticOverflow
	default:
		return err
	}
}

// Platform returns the platform configuration.
func (e *Engine) Platform() (*PlatformConfig, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	return e.platform()
}

// Vault returns the vault stored under key.
func (e *Engine) Vault(key [32]byte) (*CreatorVault, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	return e.vault(key)
}

// VaultByCreator returns the vault owned by creator.
func (e *Engine) VaultByCreator(creator [20]byte) (*CreatorVault, error) {
	return e.Vault(VaultKey(creator))
}

// Subscription returns the subscription of subscriber to creator.
func (e *Engine) Subscription(subscriber, creator [20]byte) (*Subscription, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	sub, ok, err := e.state.PaymentsSubscriptionGet(subscriber, creator)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrSubscriptionNotFound
	}
	return sub, nil
}

// TipRecord returns tip number index sent by tipper.
func (e *Engine) TipRecord(tipper [20]byte, index uint64) (*TipRecord, bool, error) {
	if err := e.ready(); err != nil {
		return nil, false, err
	}
	return e.state.PaymentsTipGet(tipper, index)
}
