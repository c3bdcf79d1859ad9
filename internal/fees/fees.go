// Package fees computes the three-way split of a trade fee between the asset
// creator, an optional referrer and the protocol vault.
package fees

import "github.com/rovshanmuradov/token-lp/internal/mathx"

// BpsDenominator is the basis-point scale: 10000 bps = 100%.
const BpsDenominator = 10_000

// Split is one trade fee broken down by beneficiary. The parts always sum to
// the original fee; floor-division remainders accrue to the protocol.
type Split struct {
	Creator  uint64
	Referral uint64
	Protocol uint64
}

// Compute splits fee according to the basis-point shares. The creator share
// is taken off the whole fee first; the referral share, when a referral is
// present, is taken off what remains; the protocol keeps the rest.
func Compute(fee uint64, creatorShareBps, referralShareBps uint16, hasReferral bool) (Split, error) {
	creatorFee, err := mathx.MulDiv(fee, uint64(creatorShareBps), BpsDenominator)
	if err != nil {
		return Split{}, err
	}
	remaining, err := mathx.Sub(fee, creatorFee)
	if err != nil {
		return Split{}, err
	}

	if !hasReferral {
		return Split{Creator: creatorFee, Protocol: remaining}, nil
	}

	referralFee, err := mathx.MulDiv(remaining, uint64(referralShareBps), BpsDenominator)
	if err != nil {
		return Split{}, err
	}
	protocolFee, err := mathx.Sub(remaining, referralFee)
	if err != nil {
		return Split{}, err
	}
	return Split{Creator: creatorFee, Referral: referralFee, Protocol: protocolFee}, nil
}

// Total returns the sum of the three parts.
func (s Split) Total() uint64 {
	return s.Creator + s.Referral + s.Protocol
}
