package rover

import "testing"

func TestFixEncoderDelta(t *testing.T) {
	cases := []struct {
		raw  uint32
		want int32
	}{
		{0, 0},
		{1, 1},
		{32767, 32767},
		{32768, -32768},
		{65535, -1},
		{65536, 0}, // wraps a full modulus
	}
	for _, c := range cases {
		if got := FixEncoderDelta(c.raw); got != c.want {
			t.Errorf("FixEncoderDelta(%d) = %d, want %d", c.raw, got, c.want)
		}
	}
}
