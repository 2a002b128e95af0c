package exports

import (
	"fmt"
	"strconv"

	"creatorpay/core/events"
	"creatorpay/native/fees"
	"creatorpay/storage/audit"
)

// Flow labels group events by how money moved.
const (
	FlowTip          = "tip"
	FlowSubscription = "subscription"
	FlowWithdrawal   = "withdrawal"
	FlowLifecycle    = "lifecycle"
)

// Row is the flattened, export-friendly form of one audit entry.
type Row struct {
	Sequence  int64  `json:"sequence"`
	Type      string `json:"type"`
	Flow      string `json:"flow"`
	Payer     string `json:"payer,omitempty"`
	Creator   string `json:"creator,omitempty"`
	Gross     uint64 `json:"gross,string"`
	Fee       uint64 `json:"fee,string"`
	Net       uint64 `json:"net,string"`
	Timestamp int64  `json:"timestamp"`
	Digest    string `json:"digest"`
}

// Rows flattens audit entries. Amount attributes that fail to parse are
// reported instead of silently zeroed.
func Rows(entries []audit.Entry) ([]Row, error) {
	out := make([]Row, 0, len(entries))
	for _, entry := range entries {
		attrs := entry.Attributes
		row := Row{
			Sequence:  entry.Sequence,
			Type:      entry.Type,
			Flow:      FlowLifecycle,
			Timestamp: entry.Timestamp,
			Digest:    entry.Digest,
		}
		var amountKey string
		switch entry.Type {
		case events.TypeTipSent:
			row.Flow, row.Payer, row.Creator, amountKey = FlowTip, attrs["from"], attrs["to"], "amount"
		case events.TypeSubscriptionCreated:
			row.Flow, row.Payer, row.Creator, amountKey = FlowSubscription, attrs["subscriber"], attrs["creator"], "amountPerMonth"
		case events.TypeSubscriptionProcessed:
			row.Flow, row.Payer, row.Creator, amountKey = FlowSubscription, attrs["subscriber"], attrs["creator"], "amount"
		case events.TypeWithdrawal:
			row.Flow, row.Creator, amountKey = FlowWithdrawal, attrs["creator"], "amount"
		case events.TypeSubscriptionCancelled:
			row.Payer, row.Creator = attrs["subscriber"], attrs["creator"]
		case events.TypeVaultInitialized:
			row.Creator = attrs["creator"]
		}
		if amountKey != "" {
			var err error
			if row.Gross, err = parseAmount(attrs, amountKey); err != nil {
				return nil, fmt.Errorf("exports: entry %d: %w", entry.Sequence, err)
			}
			if row.Flow != FlowWithdrawal {
				if row.Fee, err = parseAmount(attrs, "fee"); err != nil {
					return nil, fmt.Errorf("exports: entry %d: %w", entry.Sequence, err)
				}
				if row.Net, err = parseAmount(attrs, "net"); err != nil {
					return nil, fmt.Errorf("exports: entry %d: %w", entry.Sequence, err)
				}
			} else {
				row.Net = row.Gross
			}
		}
		out = append(out, row)
	}
	return out, nil
}

func parseAmount(attrs map[string]string, key string) (uint64, error) {
	v, err := strconv.ParseUint(attrs[key], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("attribute %s: %w", key, err)
	}
	return v, nil
}

// Summary totals settlement volume per flow.
type Summary struct {
	Tips          fees.Totals `json:"tips"`
	Subscriptions fees.Totals `json:"subscriptions"`
	Withdrawals   fees.Totals `json:"withdrawals"`
}

// Summarize folds rows into per-flow totals.
func Summarize(rows []Row) (Summary, error) {
	var s Summary
	for _, row := range rows {
		var totals *fees.Totals
		switch row.Flow {
		case FlowTip:
			totals = &s.Tips
		case FlowSubscription:
			totals = &s.Subscriptions
		case FlowWithdrawal:
			totals = &s.Withdrawals
		default:
			continue
		}
		if err := totals.Add(row.Gross, row.Fee, row.Net); err != nil {
			return s, fmt.Errorf("exports: %s totals: %w", row.Flow, err)
		}
	}
	return s, nil
}
