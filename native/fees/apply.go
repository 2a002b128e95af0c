package fees

import (
	"errors"

	"github.com/holiman/uint256"

	"creatorpay/native/common"
)

const (
	// BasisPointsDenominator is the divisor applied to fee rates.
	BasisPointsDenominator = 10_000
	// MaxBasisPoints caps the fee rate at 100%.
	MaxBasisPoints = BasisPointsDenominator
	// DefaultBasisPoints is the platform fee suggested for new deployments (2%).
	DefaultBasisPoints = 200
)

// ErrInvalidRate is returned when a rate above MaxBasisPoints is supplied.
var ErrInvalidRate = errors.New("fees: rate exceeds 10000 basis points")

// Split divides a gross amount into the platform fee and the creator's net
// share. The fee is floor(amount*rate/10000) and net is the remainder, so
// fee+net always equals amount. The intermediate product must fit in 64 bits;
// otherwise common.ErrArithmeticOverflow is returned rather than widening.
func Split(amount uint64, rateBps uint16) (fee, net uint64, err error) {
	if rateBps > MaxBasisPoints {
		return 0, 0, ErrInvalidRate
	}
	if rateBps == 0 || amount == 0 {
		return 0, amount, nil
	}
	product, overflow := new(uint256.Int).MulOverflow(uint256.NewInt(amount), uint256.NewInt(uint64(rateBps)))
	if overflow || !product.IsUint64() {
		return 0, 0, common.ErrArithmeticOverflow
	}
	fee = product.Uint64() / BasisPointsDenominator
	net, err = common.CheckedSub(amount, fee)
	if err != nil {
		return 0, 0, err
	}
	return fee, net, nil
}

// Totals aggregates gross, fee and net volume for reporting.
type Totals struct {
	Count uint64
	Gross uint64
	Fee   uint64
	Net   uint64
}

// Add folds one settlement into the running totals. The totals are left
// unchanged when any counter would overflow.
func (t *Totals) Add(gross, fee, net uint64) error {
	next := *t
	var err error
	if next.Count, err = common.CheckedAdd(next.Count, 1); err != nil {
		return err
	}
	if next.Gross, err = common.CheckedAdd(next.Gross, gross); err != nil {
		return err
	}
	if next.Fee, err = common.CheckedAdd(next.Fee, fee); err != nil {
		return err
	}
	if next.Net, err = common.CheckedAdd(next.Net, net); err != nil {
		return err
	}
	*t = next
	return nil
}
