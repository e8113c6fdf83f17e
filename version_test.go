package rover

import "testing"

func TestParseFirmwareVersion(t *testing.T) {
	cases := []struct {
		in   string
		want FirmwareVersion
	}{
		{"1", FirmwareVersion{1, 0, 0}},
		{"1.7", FirmwareVersion{1, 7, 0}},
		{"1.7.2", FirmwareVersion{1, 7, 2}},
	}
	for _, c := range cases {
		got, err := ParseFirmwareVersion(c.in)
		if err != nil {
			t.Fatalf("ParseFirmwareVersion(%q): %v", c.in, err)
		}
		if got != c.want {
			t.Errorf("ParseFirmwareVersion(%q) = %+v, want %+v", c.in, got, c.want)
		}
	}
}

func TestParseFirmwareVersionInvalid(t *testing.T) {
	for _, in := range []string{"", "1.2.3.4", "x.y", "-1"} {
		if _, err := ParseFirmwareVersion(in); err == nil {
			t.Errorf("ParseFirmwareVersion(%q): expected error, got nil", in)
		}
	}
}

func TestFirmwareVersionOrdering(t *testing.T) {
	v1 := MustParseFirmwareVersion("1.2.0")
	v2 := MustParseFirmwareVersion("1.10.0")
	if !v1.Less(v2) {
		t.Errorf("expected %s < %s", v1, v2)
	}
	if v2.Less(v1) {
		t.Errorf("expected %s to not be < %s", v2, v1)
	}
	if !v1.LessOrEqual(v1) {
		t.Errorf("expected %s <= %s", v1, v1)
	}
}

func TestDecodeFirmwareVersionLegacyMagics(t *testing.T) {
	if got := decodeFirmwareVersion(legacyVersionPre13); got != (FirmwareVersion{0, 0, 0}) {
		t.Errorf("decodeFirmwareVersion(16421) = %+v, want 0.0.0", got)
	}
	if got := decodeFirmwareVersion(legacyVersionV100); got != (FirmwareVersion{1, 0, 0}) {
		t.Errorf("decodeFirmwareVersion(40621) = %+v, want 1.0.0", got)
	}
}

func TestDecodeFirmwareVersionOrdinary(t *testing.T) {
	v := FirmwareVersion{Major: 1, Minor: 9, Patch: 3}
	got := decodeFirmwareVersion(v.rawValue())
	if got != v {
		t.Errorf("round trip through rawValue/decodeFirmwareVersion = %+v, want %+v", got, v)
	}
}
