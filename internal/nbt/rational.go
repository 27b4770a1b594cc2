package nbt

import "math/big"

// MaxDenominator bounds the denominator produced by ApproximateFraction.
// DESIGN.md's Open Question decision: fixed at 2^16 so constant scores the
// optimizer emits for the denominator stay within a comfortably
// displayable int range, rather than the original Python's
// Fraction.limit_denominator(10**6).
const MaxDenominator = 1 << 16

// ApproximateFraction reduces a float multiplier to a numerator/denominator
// pair with the denominator bounded by MaxDenominator. The exact value from
// math/big.Rat.SetFloat64 is used when its denominator fits; otherwise the
// result comes from limitDenominator's continued-fraction convergents.
func ApproximateFraction(f float64) (numerator, denominator int64) {
	if f == 0 {
		return 0, 1
	}
	r := new(big.Rat).SetFloat64(f)
	if r == nil {
		return 0, 1
	}
	num, den := r.Num(), r.Denom()
	if den.IsInt64() && den.Int64() <= MaxDenominator {
		return num.Int64(), den.Int64()
	}
	return limitDenominator(r, MaxDenominator)
}

// limitDenominator returns the last continued-fraction convergent of r whose
// denominator is <= max. Semiconvergents are not considered, so the result
// is not always the closest such rational.
func limitDenominator(r *big.Rat, max int64) (int64, int64) {
	neg := r.Sign() < 0
	if neg {
		r = new(big.Rat).Neg(r)
	}

	p0, q0 := int64(0), int64(1)
	p1, q1 := int64(1), int64(0)

	num := new(big.Int).Set(r.Num())
	den := new(big.Int).Set(r.Denom())

	for {
		if den.Sign() == 0 {
			break
		}
		a := new(big.Int).Div(num, den)
		ai := a.Int64()

		p2 := ai*p1 + p0
		q2 := ai*q1 + q0
		if q2 > max {
			break
		}
		p0, q0 = p1, q1
		p1, q1 = p2, q2

		num, den = den, new(big.Int).Mod(num, den)
	}

	if q1 == 0 {
		q1 = 1
	}
	if neg {
		p1 = -p1
	}
	return p1, q1
}
