package keeper

import (
	"math"

	sdkmath "cosmossdk.io/math"

	"onchainwager/x/wager/types"
)

func addUint64Checked(a uint64, b uint64, field string) (uint64, error) {
	if a > ^uint64(0)-b {
		return 0, types.ErrArithmeticOverflow.Wrapf("%s overflows uint64", field)
	}
	return a + b, nil
}

func mulUint64Checked(a uint64, b uint64, field string) (uint64, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	if a > ^uint64(0)/b {
		return 0, types.ErrArithmeticOverflow.Wrapf("%s overflows uint64", field)
	}
	return a * b, nil
}

// percentOf returns floor(amount * percent / 100). The intermediate product is
// computed at 256-bit width so it cannot overflow.
func percentOf(amount uint64, percent uint32) uint64 {
	if percent >= 100 {
		return amount
	}
	return sdkmath.NewUint(amount).
		Mul(sdkmath.NewUint(uint64(percent))).
		Quo(sdkmath.NewUint(100)).
		Uint64()
}

// addInt64AndU64Checked adds an unsigned duration to a unix timestamp.
func addInt64AndU64Checked(base int64, delta uint64, field string) (int64, error) {
	if delta > uint64(math.MaxInt64) {
		return 0, types.ErrArithmeticOverflow.Wrapf("%s overflows int64", field)
	}
	d := int64(delta)
	if base > math.MaxInt64-d {
		return 0, types.ErrArithmeticOverflow.Wrapf("%s overflows int64", field)
	}
	return base + d, nil
}
