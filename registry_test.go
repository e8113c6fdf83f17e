package rover

import "testing"

func TestLookupDataElementKnownAndUnknown(t *testing.T) {
	e, ok := LookupDataElement(40)
	if !ok {
		t.Fatal("expected index 40 (release version) to be known")
	}
	if e.Name != "release version" {
		t.Errorf("element 40 name = %q, want %q", e.Name, "release version")
	}
	if _, ok := LookupDataElement(255); ok {
		t.Error("expected index 255 to be unknown")
	}
}

func TestDataElementSupportedRange(t *testing.T) {
	e, ok := LookupDataElement(52) // battery A status, since 1.2
	if !ok {
		t.Fatal("expected index 52 to be known")
	}
	if e.Supported(MustParseFirmwareVersion("1.0")) {
		t.Error("expected element 52 unsupported before 1.2")
	}
	if !e.Supported(MustParseFirmwareVersion("1.2")) {
		t.Error("expected element 52 supported at 1.2")
	}
}

func TestDataElementUntilRange(t *testing.T) {
	e, ok := LookupDataElement(50) // drive mode, removed in 1.7
	if !ok {
		t.Fatal("expected index 50 to be known")
	}
	if !e.Supported(MustParseFirmwareVersion("1.0")) {
		t.Error("expected element 50 supported before 1.7")
	}
	if e.Supported(MustParseFirmwareVersion("1.7")) {
		t.Error("expected element 50 unsupported at 1.7")
	}
}

func TestDataElementNotImplemented(t *testing.T) {
	e, ok := LookupDataElement(2)
	if !ok {
		t.Fatal("expected index 2 to be known")
	}
	if e.Supported(MustParseFirmwareVersion("99.0")) {
		t.Error("expected NotImplemented element to never be supported")
	}
}

func TestDataElementEncodeUnsupported(t *testing.T) {
	e, _ := LookupDataElement(0) // fixedCurrent, not encodable
	if _, err := e.Encode(float64(1)); err == nil {
		t.Error("expected error encoding a non-encodable data element")
	}
}

func TestLookupSettingElement(t *testing.T) {
	s, ok := LookupSettingElement(VerbSetFanAuto)
	if !ok {
		t.Fatal("expected VerbSetFanAuto to be a known setting")
	}
	if s.Name == "" {
		t.Error("expected a non-empty setting name")
	}
	if _, ok := LookupSettingElement(VerbGetData); ok {
		t.Error("did not expect VerbGetData to be a settings verb")
	}
}
