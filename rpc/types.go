package rpc

import (
	"encoding/json"
	"errors"
	"net/http"

	"creatorpay/core"
	"creatorpay/core/types"
	"creatorpay/crypto"
	"creatorpay/native/common"
	"creatorpay/native/payments"
)

const (
	jsonRPCVersion  = "2.0"
	maxRequestBytes = 1 << 20 // 1 MiB
)

const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeServerError    = -32000
	codeUnauthorized   = -32001
	codeNotFound       = -32004
	codeRateLimited    = -32020
	codeRejected       = -32050
	codeNonceMismatch  = -32051
	codeWrongNetwork   = -32052
	codeBadSignature   = -32053
	codeModulePaused   = -32054
)

type RPCRequest struct {
	JSONRPC string            `json:"jsonrpc"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
	ID      interface{}       `json:"id"`
}

type RPCResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *RPCError   `json:"error,omitempty"`
}

type RPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func (e *RPCError) Error() string { return e.Message }

// ErrorData carries the settlement error kind so clients can branch on it
// without parsing messages.
type ErrorData struct {
	Kind string `json:"kind"`
}

func writeError(w http.ResponseWriter, status int, id interface{}, code int, message string, data interface{}) {
	if status <= 0 {
		status = http.StatusBadRequest
	}
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	errObj := &RPCError{Code: code, Message: message}
	if data != nil {
		errObj.Data = data
	}
	resp := RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Error: errObj}
	_ = json.NewEncoder(w).Encode(resp)
}

func writeResult(w http.ResponseWriter, id interface{}, result interface{}) {
	resp := RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Result: result}
	_ = json.NewEncoder(w).Encode(resp)
}

func invalidParams(message string) *rpcFailure {
	return &rpcFailure{status: http.StatusBadRequest, err: RPCError{Code: codeInvalidParams, Message: message}}
}

// rpcFailure pairs a JSON-RPC error with the HTTP status it is served with.
type rpcFailure struct {
	status int
	err    RPCError
}

// classify maps a processor error onto its JSON-RPC representation.
func classify(err error) *rpcFailure {
	if err == nil {
		return nil
	}
	var failure *rpcFailure
	if errors.As(err, &failure) {
		return failure
	}
	fail := func(status, code int, kind string) *rpcFailure {
		var data interface{}
		if kind != "" {
			data = ErrorData{Kind: kind}
		}
		return &rpcFailure{status: status, err: RPCError{Code: code, Message: err.Error(), Data: data}}
	}

	kind := payments.ErrorKind(err)
	switch {
	case errors.Is(err, payments.ErrVaultNotFound),
		errors.Is(err, payments.ErrSubscriptionNotFound),
		errors.Is(err, payments.ErrPlatformNotInitialized):
		return fail(http.StatusNotFound, codeNotFound, kind)
	case errors.Is(err, payments.ErrUnauthorized):
		return fail(http.StatusForbidden, codeRejected, kind)
	case kind != "":
		return fail(http.StatusUnprocessableEntity, codeRejected, kind)
	case errors.Is(err, core.ErrNonceMismatch):
		return fail(http.StatusConflict, codeNonceMismatch, "NonceMismatch")
	case errors.Is(err, core.ErrWrongNetwork):
		return fail(http.StatusBadRequest, codeWrongNetwork, "WrongNetwork")
	case errors.Is(err, types.ErrMissingSignature), errors.Is(err, types.ErrInvalidSignature):
		return fail(http.StatusBadRequest, codeBadSignature, "InvalidSignature")
	case errors.Is(err, common.ErrModulePaused):
		return fail(http.StatusServiceUnavailable, codeModulePaused, "ModulePaused")
	case errors.Is(err, core.ErrInvalidPayload), errors.Is(err, core.ErrUnknownRequestType),
		errors.Is(err, crypto.ErrInvalidAddressLength), errors.Is(err, crypto.ErrUnexpectedPrefix):
		return fail(http.StatusBadRequest, codeInvalidParams, "InvalidPayload")
	}
	return &rpcFailure{status: http.StatusInternalServerError, err: RPCError{Code: codeServerError, Message: "internal error"}}
}

func (f *rpcFailure) Error() string { return f.err.Message }
