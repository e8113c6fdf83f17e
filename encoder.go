package rover

// encoderModulus is 2^16, the wraparound period of a raw encoder count.
const encoderModulus = 1 << 16

// FixEncoderDelta implements the encoder-delta convention: given the
// raw (b - a) mod 2^16 difference between two wraparound-unsigned encoder
// samples, returns the signed minimum-magnitude delta.
//
// Grounded directly on original_source/openrover/openrover_data.py's
// fix_encoder_delta. Python's modulo is non-negative for a positive
// modulus; Go's % matches it here because raw is unsigned.
func FixEncoderDelta(raw uint32) int32 {
	delta := raw % encoderModulus
	if delta < encoderModulus/2 {
		return int32(delta)
	}
	return int32(delta) - encoderModulus
}
