package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type rpcError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *rpcError) Error() string {
	var data struct {
		Kind string `json:"kind"`
	}
	if len(e.Data) > 0 && json.Unmarshal(e.Data, &data) == nil && data.Kind != "" {
		return fmt.Sprintf("RPC error %d (%s): %s", e.Code, data.Kind, e.Message)
	}
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

var httpClient = &http.Client{Timeout: 15 * time.Second}

// rpcCall is swapped out in tests.
var rpcCall = callRPC

func callRPC(method string, params interface{}, requireAuth bool) (json.RawMessage, error) {
	payload := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  method,
		"params":  []interface{}{},
	}
	if params != nil {
		payload["params"] = []interface{}{params}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequest(http.MethodPost, strings.TrimRight(rpcEndpoint, "/")+"/rpc", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if requireAuth {
		if token := strings.TrimSpace(rpcAuthToken); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var rpcResp struct {
		Result json.RawMessage `json:"result"`
		Error  *rpcError       `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return nil, fmt.Errorf("failed to decode RPC response (HTTP %d): %w", resp.StatusCode, err)
	}
	if rpcResp.Error != nil {
		return nil, rpcResp.Error
	}
	return rpcResp.Result, nil
}

func runQuery(method string, params interface{}, stdout, stderr io.Writer) int {
	result, err := rpcCall(method, params, false)
	if err != nil {
		return printError(stderr, err.Error())
	}
	writeResult(stdout, result)
	return 0
}

func writeResult(w io.Writer, result json.RawMessage) {
	if len(result) == 0 {
		fmt.Fprintln(w, "null")
		return
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, result, "", "  "); err != nil {
		w.Write(result)
		fmt.Fprintln(w)
		return
	}
	pretty.WriteByte('\n')
	w.Write(pretty.Bytes())
}
