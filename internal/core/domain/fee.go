package domain

// The platform fee is 1.5% of the transfer amount, expressed as a
// per-mille fraction so the computation stays in integer arithmetic.
const (
	feeRateNumerator   = 15
	feeRateDenominator = 1000
)

// ComputeFee returns the platform fee in satoshis for a transfer.
// Internal transfers are fee-exempt. External transfers pay 1.5% of the
// amount, rounded half up: exact .5 satoshi fractions round away from
// zero, so 100 satoshis -> fee 2 (1.5 rounds up).
func ComputeFee(amountSatoshis int64, internal bool) int64 {
	if internal {
		return 0
	}
	return (amountSatoshis*feeRateNumerator + feeRateDenominator/2) / feeRateDenominator
}
