package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"creatorpay/config"
)

var (
	rpcEndpoint  = defaultRPCEndpoint()
	rpcAuthToken = os.Getenv("CREATORPAY_RPC_TOKEN")
	networkName  = defaultNetwork()
)

const keyPassEnv = "CREATORPAY_KEY_PASS"

func main() {
	args, err := applyGlobalFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	os.Exit(run(args, os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(stderr, usage())
		return 1
	}
	switch args[0] {
	case "keygen":
		return runKeygen(args[1:], stdout, stderr)
	case "address":
		return runAddress(args[1:], stdout, stderr)
	case "init-platform":
		return runInitPlatform(args[1:], stdout, stderr)
	case "init-vault":
		return runInitVault(args[1:], stdout, stderr)
	case "tip":
		return runTip(args[1:], stdout, stderr)
	case "subscribe":
		return runSubscribe(args[1:], stdout, stderr)
	case "renew":
		return runRenew(args[1:], stdout, stderr)
	case "cancel":
		return runCancel(args[1:], stdout, stderr)
	case "withdraw":
		return runWithdraw(args[1:], stdout, stderr)
	case "platform":
		return runQuery("payments_getPlatform", nil, stdout, stderr)
	case "vault":
		return runVault(args[1:], stdout, stderr)
	case "subscription":
		return runSubscription(args[1:], stdout, stderr)
	case "balance":
		if len(args) != 2 {
			return printError(stderr, "usage: creatorpayctl balance <address>")
		}
		return runQuery("payments_getBalance", map[string]string{"address": args[1]}, stdout, stderr)
	case "export":
		return runExport(args[1:], stdout, stderr)
	case "audit-verify":
		return runAuditVerify(args[1:], stdout, stderr)
	case "help", "-h", "--help":
		fmt.Fprintln(stdout, usage())
		return 0
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", args[0])
		fmt.Fprintln(stderr, usage())
		return 1
	}
}

func defaultRPCEndpoint() string {
	if v := strings.TrimSpace(os.Getenv("RPC_URL")); v != "" {
		return v
	}
	return "http://localhost:8080"
}

func defaultNetwork() string {
	if v := strings.TrimSpace(os.Getenv("CREATORPAY_NETWORK")); v != "" {
		return v
	}
	return config.DefaultNetworkName
}

// applyGlobalFlags strips --rpc and --network from anywhere in args.
func applyGlobalFlags(args []string) ([]string, error) {
	globals := map[string]*string{"--rpc": &rpcEndpoint, "--network": &networkName}
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		name, value, inline := strings.Cut(args[i], "=")
		target, ok := globals[name]
		if !ok {
			out = append(out, args[i])
			continue
		}
		if !inline {
			if i+1 >= len(args) {
				return nil, fmt.Errorf("missing value for %s", name)
			}
			i++
			value = args[i]
		}
		*target = strings.TrimSpace(value)
	}
	return out, nil
}

func printError(w io.Writer, msg string) int {
	fmt.Fprintf(w, "Error: %s\n", msg)
	return 1
}

func usage() string {
	return strings.TrimSpace(`Usage:
  creatorpayctl [--rpc URL] [--network NAME] <command> [flags]

Keys:
  keygen        Create an encrypted signing key
  address       Print the address of a signing key

Settlement:
  init-platform Configure the fee recipient and fee rate (once)
  init-vault    Open the signer's creator vault
  tip           Tip a creator
  subscribe     Start a monthly subscription to a creator
  renew         Charge the next period of a subscription
  cancel        Cancel a subscription
  withdraw      Record a withdrawal from the signer's vault

Queries:
  platform      Show the platform configuration
  vault         Show a creator vault
  subscription  Show a subscription
  balance       Show an account balance and nonce

Audit:
  export        Export settlements from the audit log (parquet, csv, jsonl)
  audit-verify  Recompute the audit log digest chain
`)
}
