package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"creatorpay/core/events"
	"creatorpay/core/types"
	"creatorpay/crypto"
	"creatorpay/native/payments"
)

// submit signs payload with the key at keyPath, using the signer's current
// nonce, and sends it to payments_submitRequest.
func submit(keyPath string, typ types.RequestType, payload interface{}, stdout, stderr io.Writer) int {
	key, err := loadSigner(keyPath)
	if err != nil {
		return printError(stderr, err.Error())
	}
	return sendSigned(key, typ, payload, stdout, stderr)
}

func sendSigned(key *crypto.PrivateKey, typ types.RequestType, payload interface{}, stdout, stderr io.Writer) int {
	signer := key.PubKey().Address().String()

	raw, err := rpcCall("payments_getNonce", map[string]string{"address": signer}, false)
	if err != nil {
		return printError(stderr, fmt.Sprintf("fetch nonce: %v", err))
	}
	var nonce struct {
		Nonce uint64 `json:"nonce"`
	}
	if err := json.Unmarshal(raw, &nonce); err != nil {
		return printError(stderr, fmt.Sprintf("decode nonce: %v", err))
	}

	req, err := types.NewRequest(typ, networkName, nonce.Nonce, payload)
	if err != nil {
		return printError(stderr, err.Error())
	}
	if err := req.Sign(key.PrivateKey); err != nil {
		return printError(stderr, fmt.Sprintf("sign request: %v", err))
	}
	receipt, err := rpcCall("payments_submitRequest", req, true)
	if err != nil {
		return printError(stderr, err.Error())
	}
	writeResult(stdout, receipt)
	return 0
}

// vaultFor returns the explicit vault reference or derives the creator's.
func vaultFor(vault, creator string) (string, error) {
	if v := strings.TrimSpace(vault); v != "" {
		if _, err := payments.ParseVaultRef(v); err != nil {
			return "", err
		}
		return v, nil
	}
	addr, err := crypto.ParseAccount(strings.TrimSpace(creator))
	if err != nil {
		return "", fmt.Errorf("--creator: %w", err)
	}
	return events.VaultRef(payments.VaultKey(addr)), nil
}

func parseAmountFlag(name, value string) (uint64, error) {
	amount, err := strconv.ParseUint(strings.TrimSpace(value), 10, 64)
	if err != nil || amount == 0 {
		return 0, fmt.Errorf("--%s must be a positive integer", name)
	}
	return amount, nil
}

func runInitPlatform(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("init-platform", stderr)
	keyPath := fs.String("key", "", "authority keystore")
	recipient := fs.String("fee-recipient", "", "account that receives platform fees")
	bps := fs.Uint("fee-bps", 0, "fee in basis points (0-10000)")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if _, err := crypto.ParseAccount(strings.TrimSpace(*recipient)); err != nil {
		return printError(stderr, fmt.Sprintf("--fee-recipient: %v", err))
	}
	if *bps > 10_000 {
		return printError(stderr, "--fee-bps must be <= 10000")
	}
	return submit(*keyPath, types.RequestInitializePlatform, types.InitializePlatformPayload{
		FeeRecipient:   strings.TrimSpace(*recipient),
		FeeBasisPoints: uint32(*bps),
	}, stdout, stderr)
}

func runInitVault(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("init-vault", stderr)
	keyPath := fs.String("key", "", "creator keystore")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	return submit(*keyPath, types.RequestInitializeVault, nil, stdout, stderr)
}

func runTip(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("tip", stderr)
	keyPath := fs.String("key", "", "tipper keystore")
	creator := fs.String("creator", "", "creator address")
	vault := fs.String("vault", "", "vault reference (derived from --creator when empty)")
	amountStr := fs.String("amount", "", "tip amount")
	post := fs.String("post", "", "optional post identifier")
	index := fs.Uint64("index", 0, "tip index, unique per tipper")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	amount, err := parseAmountFlag("amount", *amountStr)
	if err != nil {
		return printError(stderr, err.Error())
	}
	ref, err := vaultFor(*vault, *creator)
	if err != nil {
		return printError(stderr, err.Error())
	}
	return submit(*keyPath, types.RequestTip, types.TipPayload{
		Vault:   ref,
		Creator: strings.TrimSpace(*creator),
		Amount:  amount,
		Post:    *post,
		Index:   *index,
	}, stdout, stderr)
}

func runSubscribe(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("subscribe", stderr)
	keyPath := fs.String("key", "", "subscriber keystore")
	creator := fs.String("creator", "", "creator address")
	vault := fs.String("vault", "", "vault reference (derived from --creator when empty)")
	amountStr := fs.String("amount", "", "amount charged per month")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	amount, err := parseAmountFlag("amount", *amountStr)
	if err != nil {
		return printError(stderr, err.Error())
	}
	ref, err := vaultFor(*vault, *creator)
	if err != nil {
		return printError(stderr, err.Error())
	}
	return submit(*keyPath, types.RequestSubscribe, types.SubscribePayload{
		Vault:          ref,
		Creator:        strings.TrimSpace(*creator),
		AmountPerMonth: amount,
	}, stdout, stderr)
}

func runRenew(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("renew", stderr)
	keyPath := fs.String("key", "", "subscriber keystore")
	creator := fs.String("creator", "", "creator address")
	vault := fs.String("vault", "", "vault reference (derived from --creator when empty)")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	ref, err := vaultFor(*vault, *creator)
	if err != nil {
		return printError(stderr, err.Error())
	}
	return submit(*keyPath, types.RequestProcessSubscription, types.ProcessSubscriptionPayload{
		Vault:   ref,
		Creator: strings.TrimSpace(*creator),
	}, stdout, stderr)
}

func runCancel(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("cancel", stderr)
	keyPath := fs.String("key", "", "subscriber keystore")
	creator := fs.String("creator", "", "creator address")
	vault := fs.String("vault", "", "vault reference (derived from --creator when empty)")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	ref, err := vaultFor(*vault, *creator)
	if err != nil {
		return printError(stderr, err.Error())
	}
	return submit(*keyPath, types.RequestCancelSubscription, types.CancelSubscriptionPayload{Vault: ref}, stdout, stderr)
}

func runWithdraw(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("withdraw", stderr)
	keyPath := fs.String("key", "", "creator keystore")
	amountStr := fs.String("amount", "", "amount to withdraw")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	amount, err := parseAmountFlag("amount", *amountStr)
	if err != nil {
		return printError(stderr, err.Error())
	}
	key, err := loadSigner(*keyPath)
	if err != nil {
		return printError(stderr, err.Error())
	}
	ref := events.VaultRef(payments.VaultKey(key.PubKey().Address().Raw()))
	return sendSigned(key, types.RequestWithdraw, types.WithdrawPayload{Vault: ref, Amount: amount}, stdout, stderr)
}

func runVault(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("vault", stderr)
	creator := fs.String("creator", "", "creator address")
	vault := fs.String("vault", "", "vault reference")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	params := map[string]string{}
	if v := strings.TrimSpace(*creator); v != "" {
		params["creator"] = v
	}
	if v := strings.TrimSpace(*vault); v != "" {
		params["vault"] = v
	}
	if len(params) != 1 {
		return printError(stderr, "exactly one of --creator or --vault is required")
	}
	return runQuery("payments_getVault", params, stdout, stderr)
}

func runSubscription(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("subscription", stderr)
	subscriber := fs.String("subscriber", "", "subscriber address")
	creator := fs.String("creator", "", "creator address")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if strings.TrimSpace(*subscriber) == "" || strings.TrimSpace(*creator) == "" {
		return printError(stderr, "--subscriber and --creator are required")
	}
	return runQuery("payments_getSubscription", map[string]string{
		"subscriber": strings.TrimSpace(*subscriber),
		"creator":    strings.TrimSpace(*creator),
	}, stdout, stderr)
}
