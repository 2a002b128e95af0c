package payments

import (
	"creatorpay/core/events"
	"creatorpay/native/fees"
)

// InitializePlatform creates the singleton fee configuration. The signer
// becomes the platform authority.
func (e *Engine) InitializePlatform(authority, feeRecipient [20]byte, feeBasisPoints uint32) (*PlatformConfig, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if feeBasisPoints > fees.MaxBasisPoints {
		return nil, ErrInvalidFeeBasisPoints
	}
	_, exists, err := e.state.PaymentsPlatformGet()
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrPlatformExists
	}
	cfg := &PlatformConfig{
		Authority:      authority,
		FeeBasisPoints: uint16(feeBasisPoints),
		FeeRecipient:   feeRecipient,
	}
	if err := e.state.PaymentsPlatformPut(cfg); err != nil {
		return nil, err
	}
	e.emit(events.PlatformUpdated{
		Authority:      cfg.Authority,
		FeeRecipient:   cfg.FeeRecipient,
		FeeBasisPoints: cfg.FeeBasisPoints,
		Timestamp:      e.now(),
	})
	return cfg, nil
}
