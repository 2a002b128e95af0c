package payments

import (
	"strings"

	"creatorpay/core/events"
)

// Tip pays a one-off amount from tipper to the creator owning p.Vault and
// records the tip under (tipper, p.Index).
func (e *Engine) Tip(tipper [20]byte, p TipParams) (*TipRecord, Settlement, error) {
	if err := e.ready(); err != nil {
		return nil, Settlement{}, err
	}
	cfg, err := e.platform()
	if err != nil {
		return nil, Settlement{}, err
	}
	vault, err := e.vault(p.Vault)
	if err != nil {
		return nil, Settlement{}, err
	}
	if p.Amount == 0 {
		return nil, Settlement{}, ErrInvalidAmount
	}
	if tipper == vault.Creator {
		return nil, Settlement{}, ErrCannotTipSelf
	}
	if p.Creator != vault.Creator {
		return nil, Settlement{}, ErrInvalidCreatorAccount
	}
	_, exists, err := e.state.PaymentsTipGet(tipper, p.Index)
	if err != nil {
		return nil, Settlement{}, err
	}
	if exists {
		return nil, Settlement{}, ErrTipRecordExists
	}

	settled, err := e.settle(tipper, cfg, vault, p.Amount)
	if err != nil {
		return nil, Settlement{}, err
	}
	if err := e.state.PaymentsVaultPut(vault); err != nil {
		return nil, Settlement{}, err
	}
	now := e.now()
	record := &TipRecord{
		From:      tipper,
		To:        vault.Creator,
		Amount:    settled.Net,
		Post:      strings.TrimSpace(p.Post),
		Index:     p.Index,
		Timestamp: now,
	}
	if err := e.state.PaymentsTipPut(record); err != nil {
		return nil, Settlement{}, err
	}
	e.emit(events.TipSent{
		From:      tipper,
		To:        vault.Creator,
		Amount:    settled.Gross,
		Fee:       settled.Fee,
		Net:       settled.Net,
		Post:      record.Post,
		Index:     p.Index,
		Timestamp: now,
	})
	return record, settled, nil
}
