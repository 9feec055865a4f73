package comma

import "math"

const (
	floatBits       = 32
	expBits         = 8
	bias            = 1<<(expBits-1) - 1
	significandBits = floatBits - expBits - 1
	expMask         = 1<<expBits - 1
	significandMask = 1<<significandBits - 1
	signBit         = uint32(1) << (floatBits - 1)
)

// Float32Bits is the native 1/8/23 reinterpretation used on the wire.
func Float32Bits(f float32) uint32 {
	return math.Float32bits(f)
}

func Float32FromBits(u uint32) float32 {
	return math.Float32frombits(u)
}

// Pack754_32 builds the IEEE-754 single layout arithmetically, for peers
// that cannot reinterpret float memory. Zero packs to all-zero bits. Values
// below the normal range flush to signed zero; infinities and NaN use the
// native encoding.
func Pack754_32(f float32) uint32 {
	if f == 0 {
		return 0
	}
	if math.IsInf(float64(f), 0) || math.IsNaN(float64(f)) {
		return math.Float32bits(f)
	}

	var sign uint32
	fnorm := float64(f)
	if fnorm < 0 {
		sign = signBit
		fnorm = -fnorm
	}

	shift := 0
	for fnorm >= 2.0 {
		fnorm /= 2.0
		shift++
	}
	for fnorm < 1.0 {
		fnorm *= 2.0
		shift--
	}
	fnorm -= 1.0

	exp := shift + bias
	if exp <= 0 {
		return sign
	}
	significand := uint32(fnorm * (float64(1<<significandBits) + 0.5))
	return sign | uint32(exp)<<significandBits | significand
}

// Unpack754_32 reverses Pack754_32. A zero exponent field decodes as signed
// zero, the inverse of the flush in Pack754_32.
func Unpack754_32(u uint32) float32 {
	if u == 0 {
		return 0
	}
	exp := int((u >> significandBits) & expMask)
	if exp == expMask {
		return math.Float32frombits(u)
	}
	if exp == 0 {
		if u&signBit != 0 {
			return float32(math.Copysign(0, -1))
		}
		return 0
	}

	result := float64(u&significandMask) / float64(1<<significandBits)
	result += 1.0
	result = math.Ldexp(result, exp-bias)

	if u&signBit != 0 {
		result = -result
	}
	return float32(result)
}
