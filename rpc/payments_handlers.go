package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"creatorpay/core/types"
	"creatorpay/crypto"
	"creatorpay/native/payments"
)

type vaultParams struct {
	Vault   string `json:"vault,omitempty"`
	Creator string `json:"creator,omitempty"`
}

type subscriptionParams struct {
	Subscriber string `json:"subscriber"`
	Creator    string `json:"creator"`
}

type tipParams struct {
	Tipper string `json:"tipper"`
	Index  string `json:"index"`
}

type accountParams struct {
	Address string `json:"address"`
}

type auditParams struct {
	After int64 `json:"after,omitempty"`
	Limit int   `json:"limit,omitempty"`
}

type balanceResult struct {
	Address string `json:"address"`
	Balance string `json:"balance"`
	Nonce   uint64 `json:"nonce"`
}

type nonceResult struct {
	Address string `json:"address"`
	Nonce   uint64 `json:"nonce"`
}

func decodeParam(params []json.RawMessage, out interface{}) error {
	if len(params) != 1 {
		return invalidParams("expected a single parameter object")
	}
	dec := json.NewDecoder(strings.NewReader(string(params[0])))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return invalidParams(fmt.Sprintf("invalid parameter object: %v", err))
	}
	return nil
}

func parseAddressParam(field, value string) ([20]byte, error) {
	addr, err := crypto.ParseAccount(strings.TrimSpace(value))
	if err != nil {
		return addr, invalidParams(fmt.Sprintf("invalid %s: %v", field, err))
	}
	return addr, nil
}

func (s *Server) submitRequest(ctx context.Context, params []json.RawMessage) (interface{}, error) {
	var req types.Request
	if err := decodeParam(params, &req); err != nil {
		return nil, err
	}
	receipt, err := s.processor.ApplyRequest(ctx, &req)
	if err != nil {
		return nil, err
	}
	if subject, _ := ctx.Value(contextKeySubject).(string); subject != "" {
		s.logger.Info("authenticated submission",
			slog.String("requestid", RequestID(ctx)),
			slog.String("hash", receipt.Hash),
			slog.String("subject", subject))
	}
	return receipt, nil
}

func (s *Server) getPlatform(ctx context.Context, params []json.RawMessage) (interface{}, error) {
	if len(params) > 0 {
		return nil, invalidParams("payments_getPlatform takes no parameters")
	}
	return s.processor.Platform()
}

func (s *Server) getVault(ctx context.Context, params []json.RawMessage) (interface{}, error) {
	var p vaultParams
	if err := decodeParam(params, &p); err != nil {
		return nil, err
	}
	switch {
	case p.Vault != "" && p.Creator != "":
		return nil, invalidParams("provide either vault or creator, not both")
	case p.Vault != "":
		key, err := payments.ParseVaultRef(p.Vault)
		if err != nil {
			return nil, invalidParams(fmt.Sprintf("invalid vault: %v", err))
		}
		return s.processor.Vault(key)
	case p.Creator != "":
		creator, err := parseAddressParam("creator", p.Creator)
		if err != nil {
			return nil, err
		}
		return s.processor.VaultByCreator(creator)
	}
	return nil, invalidParams("vault or creator required")
}

func (s *Server) getSubscription(ctx context.Context, params []json.RawMessage) (interface{}, error) {
	var p subscriptionParams
	if err := decodeParam(params, &p); err != nil {
		return nil, err
	}
	subscriber, err := parseAddressParam("subscriber", p.Subscriber)
	if err != nil {
		return nil, err
	}
	creator, err := parseAddressParam("creator", p.Creator)
	if err != nil {
		return nil, err
	}
	return s.processor.Subscription(subscriber, creator)
}

func (s *Server) getTip(ctx context.Context, params []json.RawMessage) (interface{}, error) {
	var p tipParams
	if err := decodeParam(params, &p); err != nil {
		return nil, err
	}
	tipper, err := parseAddressParam("tipper", p.Tipper)
	if err != nil {
		return nil, err
	}
	index, err := strconv.ParseUint(strings.TrimSpace(p.Index), 10, 64)
	if err != nil {
		return nil, invalidParams("index must be a base-10 uint64")
	}
	tip, err := s.processor.Tip(tipper, index)
	if err != nil {
		return nil, err
	}
	if tip == nil {
		return nil, &rpcFailure{status: http.StatusNotFound, err: RPCError{Code: codeNotFound, Message: "tip not found"}}
	}
	return tip, nil
}

func (s *Server) getBalance(ctx context.Context, params []json.RawMessage) (interface{}, error) {
	var p accountParams
	if err := decodeParam(params, &p); err != nil {
		return nil, err
	}
	addr, err := parseAddressParam("address", p.Address)
	if err != nil {
		return nil, err
	}
	balance, err := s.processor.Balance(addr)
	if err != nil {
		return nil, err
	}
	nonce, err := s.processor.Nonce(addr)
	if err != nil {
		return nil, err
	}
	return balanceResult{Address: crypto.Format(addr), Balance: strconv.FormatUint(balance, 10), Nonce: nonce}, nil
}

func (s *Server) getNonce(ctx context.Context, params []json.RawMessage) (interface{}, error) {
	var p accountParams
	if err := decodeParam(params, &p); err != nil {
		return nil, err
	}
	addr, err := parseAddressParam("address", p.Address)
	if err != nil {
		return nil, err
	}
	nonce, err := s.processor.Nonce(addr)
	if err != nil {
		return nil, err
	}
	return nonceResult{Address: crypto.Format(addr), Nonce: nonce}, nil
}

func (s *Server) getAuditLog(ctx context.Context, params []json.RawMessage) (interface{}, error) {
	if s.audit == nil {
		return nil, &rpcFailure{status: http.StatusNotFound, err: RPCError{Code: codeMethodNotFound, Message: "audit log not enabled"}}
	}
	var p auditParams
	if len(params) > 0 {
		if err := decodeParam(params, &p); err != nil {
			return nil, err
		}
	}
	if p.After < 0 || p.Limit < 0 || p.Limit > 1000 {
		return nil, invalidParams("after must be >= 0 and limit within [0,1000]")
	}
	return s.audit.List(ctx, p.After, p.Limit)
}

func (s *Server) errorKinds(ctx context.Context, params []json.RawMessage) (interface{}, error) {
	return payments.ErrorKinds(), nil
}
