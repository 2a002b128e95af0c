package core

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"creatorpay/core/events"
	"creatorpay/core/state"
	"creatorpay/core/types"
	"creatorpay/crypto"
	"creatorpay/native/common"
	"creatorpay/native/payments"
	"creatorpay/observability"
	"creatorpay/storage"
)

// Receipt describes a committed request.
type Receipt struct {
	Hash      string        `json:"hash"`
	Type      string        `json:"type"`
	Signer    string        `json:"signer"`
	Nonce     uint64        `json:"nonce"`
	Timestamp int64         `json:"timestamp"`
	Events    []types.Event `json:"events"`
	Result    interface{}   `json:"result,omitempty"`
}

// StateProcessor applies signed settlement requests to the committed store.
// Requests are serialized; each one runs against a private overlay that is
// committed in a single batch on success and dropped on failure. Events
// reach the configured emitter only after the commit.
type StateProcessor struct {
	mu      sync.RWMutex
	db      storage.Database
	network string
	emitter events.Emitter
	nowFn   func() int64
	lastNow int64
	pauses  common.PauseView
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewStateProcessor wires a processor over db for the named network.
func NewStateProcessor(db storage.Database, network string) *StateProcessor {
	return &StateProcessor{
		db:      db,
		network: network,
		emitter: events.NoopEmitter{},
		nowFn:   func() int64 { return time.Now().Unix() },
		logger:  slog.Default(),
		tracer:  otel.Tracer("creatorpay/core"),
	}
}

// SetEmitter configures where committed events are published.
func (sp *StateProcessor) SetEmitter(emitter events.Emitter) {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	if emitter == nil {
		sp.emitter = events.NoopEmitter{}
		return
	}
	sp.emitter = emitter
}

// SetNowFunc overrides the clock. The processor never lets time run
// backwards even if the supplied clock does.
func (sp *StateProcessor) SetNowFunc(now func() int64) {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	if now == nil {
		sp.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	sp.nowFn = now
}

// SetPauses configures the operator pause switches.
func (sp *StateProcessor) SetPauses(p common.PauseView) {
	sp.mu.Lock()
	sp.pauses = p
	sp.mu.Unlock()
}

func (sp *StateProcessor) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	sp.mu.Lock()
	sp.logger = logger
	sp.mu.Unlock()
}

// Network returns the deployment name requests must be signed for.
func (sp *StateProcessor) Network() string { return sp.network }

func (sp *StateProcessor) clock() int64 {
	now := sp.nowFn()
	if now < sp.lastNow {
		return sp.lastNow
	}
	return now
}

var moduleByType = map[types.RequestType]string{
	types.RequestInitializePlatform:  "platform",
	types.RequestInitializeVault:     "vaults",
	types.RequestTip:                 "tips",
	types.RequestSubscribe:           "subscriptions",
	types.RequestProcessSubscription: "subscriptions",
	types.RequestCancelSubscription:  "subscriptions",
	types.RequestWithdraw:            "withdrawals",
}

// ApplyRequest verifies and applies req atomically.
func (sp *StateProcessor) ApplyRequest(ctx context.Context, req *types.Request) (receipt *Receipt, err error) {
	if req == nil {
		return nil, ErrNilRequest
	}
	ctx, span := sp.tracer.Start(ctx, "core.ApplyRequest", trace.WithAttributes(
		attribute.String("request.type", req.Type.String()),
		attribute.Int64("request.nonce", int64(req.Nonce)),
	))
	started := time.Now()
	defer func() {
		observability.Settlement().ObserveRequest(req.Type.String(), outcomeOf(err), time.Since(started))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.Network != sp.network {
		return nil, fmt.Errorf("%w: got %q want %q", ErrWrongNetwork, req.Network, sp.network)
	}
	module, ok := moduleByType[req.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRequestType, req.Type)
	}
	signer, err := req.From()
	if err != nil {
		return nil, err
	}
	hash, err := req.Hash()
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("request.signer", crypto.Format(signer)))

	sp.mu.Lock()
	defer sp.mu.Unlock()

	if err := common.Guard(sp.pauses, module); err != nil {
		return nil, fmt.Errorf("%s: %w", module, err)
	}
	// A request cancelled while waiting for the lock is never applied.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	overlay := state.NewOverlay(sp.db)
	manager := state.NewManager(overlay)
	committed := false
	defer func() {
		if !committed {
			overlay.Discard()
		}
	}()

	expected, err := manager.Nonce(signer)
	if err != nil {
		return nil, err
	}
	if req.Nonce != expected {
		return nil, fmt.Errorf("%w: got %d want %d", ErrNonceMismatch, req.Nonce, expected)
	}

	now := sp.clock()
	buffer := &events.Buffer{}
	engine := payments.NewEngine()
	engine.SetState(manager)
	engine.SetEmitter(buffer)
	engine.SetNowFunc(func() int64 { return now })

	result, err := sp.dispatch(engine, signer, req)
	if err != nil {
		sp.logger.Debug("request rejected",
			slog.String("type", req.Type.String()),
			slog.String("signer", crypto.Format(signer)),
			slog.String("kind", payments.ErrorKind(err)),
			slog.Any("error", err))
		if ConsumesNonce(err) {
			if burnErr := sp.consumeNonce(signer, expected+1); burnErr != nil {
				return nil, fmt.Errorf("core: consume nonce: %w", burnErr)
			}
		}
		return nil, err
	}
	if err := manager.SetNonce(signer, expected+1); err != nil {
		return nil, err
	}
	if err := overlay.Commit(); err != nil {
		return nil, fmt.Errorf("core: commit: %w", err)
	}
	committed = true
	sp.lastNow = now

	emitted := buffer.Events()
	receipt = &Receipt{
		Hash:      "0x" + hex.EncodeToString(hash),
		Type:      req.Type.String(),
		Signer:    crypto.Format(signer),
		Nonce:     req.Nonce,
		Timestamp: now,
		Events:    make([]types.Event, 0, len(emitted)),
		Result:    result,
	}
	for _, evt := range emitted {
		if wire := events.ToWire(evt); wire != nil {
			receipt.Events = append(receipt.Events, *wire.Clone())
		}
	}
	// Published under the lock so observers see events in commit order.
	buffer.Flush(sp.emitter)

	sp.logger.Info("request applied",
		slog.String("type", receipt.Type),
		slog.String("signer", receipt.Signer),
		slog.Uint64("nonce", req.Nonce),
		slog.String("hash", receipt.Hash))
	return receipt, nil
}

// ConsumesNonce reports whether a request failing with err used up its nonce.
// Settlement rejections and malformed payloads do; a signed request rejected
// once can never be replayed later. Network, signature, nonce and pause
// failures leave the nonce untouched.
func ConsumesNonce(err error) bool {
	return err == nil || payments.ErrorKind(err) != "" || errors.Is(err, ErrInvalidPayload)
}

// consumeNonce advances the signer's nonce in its own batch. The rejected
// request's overlay is discarded separately.
func (sp *StateProcessor) consumeNonce(signer [20]byte, next uint64) error {
	overlay := state.NewOverlay(sp.db)
	if err := state.NewManager(overlay).SetNonce(signer, next); err != nil {
		overlay.Discard()
		return err
	}
	return overlay.Commit()
}

func (sp *StateProcessor) dispatch(engine *payments.Engine, signer [20]byte, req *types.Request) (interface{}, error) {
	switch req.Type {
	case types.RequestInitializePlatform:
		var p types.InitializePlatformPayload
		if err := decode(req, &p); err != nil {
			return nil, err
		}
		recipient, err := parseAccount("feeRecipient", p.FeeRecipient)
		if err != nil {
			return nil, err
		}
		cfg, err := engine.InitializePlatform(signer, recipient, p.FeeBasisPoints)
		if err != nil {
			return nil, err
		}
		return newPlatformView(cfg), nil

	case types.RequestInitializeVault:
		vault, _, err := engine.InitializeVault(signer)
		if err != nil {
			return nil, err
		}
		return newVaultView(vault), nil

	case types.RequestTip:
		var p types.TipPayload
		if err := decode(req, &p); err != nil {
			return nil, err
		}
		vaultKey, creator, err := parseTarget(p.Vault, p.Creator)
		if err != nil {
			return nil, err
		}
		record, _, err := engine.Tip(signer, payments.TipParams{
			Vault:   vaultKey,
			Creator: creator,
			Amount:  p.Amount,
			Post:    p.Post,
			Index:   p.Index,
		})
		if err != nil {
			return nil, err
		}
		return newTipView(record), nil

	case types.RequestSubscribe:
		var p types.SubscribePayload
		if err := decode(req, &p); err != nil {
			return nil, err
		}
		vaultKey, creator, err := parseTarget(p.Vault, p.Creator)
		if err != nil {
			return nil, err
		}
		sub, _, err := engine.Subscribe(signer, payments.SubscribeParams{
			Vault:          vaultKey,
			Creator:        creator,
			AmountPerMonth: p.AmountPerMonth,
		})
		if err != nil {
			return nil, err
		}
		return newSubscriptionView(sub), nil

	case types.RequestProcessSubscription:
		var p types.ProcessSubscriptionPayload
		if err := decode(req, &p); err != nil {
			return nil, err
		}
		vaultKey, creator, err := parseTarget(p.Vault, p.Creator)
		if err != nil {
			return nil, err
		}
		sub, _, err := engine.ProcessSubscription(signer, payments.ProcessParams{Vault: vaultKey, Creator: creator})
		if err != nil {
			return nil, err
		}
		return newSubscriptionView(sub), nil

	case types.RequestCancelSubscription:
		var p types.CancelSubscriptionPayload
		if err := decode(req, &p); err != nil {
			return nil, err
		}
		vaultKey, err := parseVault(p.Vault)
		if err != nil {
			return nil, err
		}
		sub, err := engine.CancelSubscription(signer, vaultKey)
		if err != nil {
			return nil, err
		}
		return newSubscriptionView(sub), nil

	case types.RequestWithdraw:
		var p types.WithdrawPayload
		if err := decode(req, &p); err != nil {
			return nil, err
		}
		vaultKey, err := parseVault(p.Vault)
		if err != nil {
			return nil, err
		}
		vault, err := engine.Withdraw(signer, vaultKey, p.Amount)
		if err != nil {
			return nil, err
		}
		return newVaultView(vault), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownRequestType, req.Type)
}

func decode(req *types.Request, out interface{}) error {
	if err := req.DecodePayload(out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return nil
}

func parseAccount(field, value string) ([20]byte, error) {
	addr, err := crypto.ParseAccount(value)
	if err != nil {
		return addr, fmt.Errorf("%w: %s: %v", ErrInvalidPayload, field, err)
	}
	return addr, nil
}

func parseVault(ref string) ([32]byte, error) {
	key, err := payments.ParseVaultRef(ref)
	if err != nil {
		return key, fmt.Errorf("%w: vault: %v", ErrInvalidPayload, err)
	}
	return key, nil
}

func parseTarget(vaultRef, creator string) ([32]byte, [20]byte, error) {
	key, err := parseVault(vaultRef)
	if err != nil {
		return key, [20]byte{}, err
	}
	addr, err := parseAccount("creator", creator)
	if err != nil {
		return key, addr, err
	}
	return key, addr, nil
}

func outcomeOf(err error) string {
	if err == nil {
		return "success"
	}
	if kind := payments.ErrorKind(err); kind != "" {
		return kind
	}
	switch {
	case errors.Is(err, ErrNonceMismatch):
		return "NonceMismatch"
	case errors.Is(err, ErrWrongNetwork):
		return "WrongNetwork"
	case errors.Is(err, ErrInvalidPayload):
		return "InvalidPayload"
	case errors.Is(err, types.ErrInvalidSignature), errors.Is(err, types.ErrMissingSignature):
		return "InvalidSignature"
	case errors.Is(err, common.ErrModulePaused):
		return "ModulePaused"
	}
	return "error"
}
