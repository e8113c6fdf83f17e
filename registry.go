package rover

import "fmt"

// DataElement pins one telemetry slot index to an immutable descriptor:
// name, codec, optional description, and the firmware-version range over
// which the controller actually populates it.
//
// Reimplemented as a process-wide constant map built once at package init
// (dataElements below) rather than a lazily mutated registry.
type DataElement struct {
	Index          byte
	Name           string
	Description    string
	NotImplemented bool
	Since          *FirmwareVersion
	Until          *FirmwareVersion

	codec codec
}

// Supported reports whether the controller is expected to populate this
// element at the given firmware version.
func (d DataElement) Supported(version FirmwareVersion) bool {
	if d.NotImplemented {
		return false
	}
	if d.Since != nil && version.Less(*d.Since) {
		return false
	}
	if d.Until != nil && d.Until.LessOrEqual(version) {
		return false
	}
	return true
}

// Decode applies this element's codec to a 2-byte payload.
func (d DataElement) Decode(payload [2]byte) (interface{}, error) {
	return d.codec.decode(payload)
}

// Encode applies this element's codec in the write direction. Elements
// whose codec is u16, charger state or drive mode support it; others
// return a KindProtocol error.
func (d DataElement) Encode(value interface{}) ([2]byte, error) {
	enc, ok := d.codec.(encodableCodec)
	if !ok {
		return [2]byte{}, newError(KindProtocol, fmt.Sprintf("data element %d (%s) is not encodable", d.Index, d.Name), nil)
	}
	return enc.encode(value)
}

func since(v string) *FirmwareVersion {
	ver := MustParseFirmwareVersion(v)
	return &ver
}

func until(v string) *FirmwareVersion {
	ver := MustParseFirmwareVersion(v)
	return &ver
}

var fixedCurrent = fixedCodec{step: 34, zero: 0}
var fixedVoltageExternal = fixedCodec{step: 58, zero: 0}
var fixedPercentage = fixedCodec{step: 100, zero: 0}
var fixedFanSpeed = fixedCodec{step: 240, zero: 0}
var fixedDecikelvin = fixedCodec{step: 10, zero: 2731.5}
var fixedMillisUnsigned = fixedCodec{step: 1000, zero: 0}
var fixedMillisSigned = fixedCodec{step: 1000, zero: 0, signed: true}

// dataElementList is the authoritative, ordered telemetry registry.
var dataElementList = []DataElement{
	{Index: 0, Name: "battery (A+B) current (external)", Description: "total current from batteries", codec: fixedCurrent},
	{Index: 2, Name: "left motor speed", NotImplemented: true, codec: u16Codec{}},
	{Index: 4, Name: "right motor speed", NotImplemented: true, codec: u16Codec{}},
	{Index: 6, Name: "flipper position 1", Description: "flipper position sensor 1. 0=15 degrees; 1024=330 degrees", codec: u16Codec{}},
	{Index: 8, Name: "flipper position 2", Description: "flipper position sensor 2. 0=15 degrees; 1024=330 degrees", codec: u16Codec{}},
	{Index: 10, Name: "left motor current", codec: fixedCurrent},
	{Index: 12, Name: "right motor current", codec: fixedCurrent},
	{Index: 14, Name: "left motor encoder count", Description: "wraparound; increments forward, decrements backward", Since: since("1.4"), codec: u16Codec{}},
	{Index: 16, Name: "right motor encoder count", Description: "wraparound; increments forward, decrements backward", Since: since("1.4"), codec: u16Codec{}},
	{Index: 18, Name: "motors fault flag", NotImplemented: true, codec: u16Codec{}},
	{Index: 20, Name: "left motor temperature", codec: u16Codec{}},
	{Index: 22, Name: "right motor temperature", NotImplemented: true, codec: u16Codec{}},
	{Index: 24, Name: "battery A voltage (external)", codec: fixedVoltageExternal},
	{Index: 26, Name: "battery B voltage (external)", codec: fixedVoltageExternal},
	{Index: 28, Name: "left motor encoder interval", Description: "0 when stopped, else proportional to motor period", codec: u16Codec{}},
	{Index: 30, Name: "right motor encoder interval", Description: "0 when stopped, else proportional to motor period", codec: u16Codec{}},
	{Index: 32, Name: "flipper motor encoder interval", NotImplemented: true, codec: u16Codec{}},
	{Index: 34, Name: "battery A state of charge", Description: "0.0=empty, 1.0=full", codec: fixedPercentage},
	{Index: 36, Name: "battery B state of charge", Description: "0.0=empty, 1.0=full", codec: fixedPercentage},
	{Index: 38, Name: "battery charging state", codec: chargerStateCodec{}},
	{Index: 40, Name: "release version", codec: firmwareVersionCodec{}},
	{Index: 42, Name: "battery A current (external)", codec: fixedCurrent},
	{Index: 44, Name: "battery B current (external)", codec: fixedCurrent},
	{Index: 46, Name: "motor flipper angle", codec: u16Codec{}},
	{Index: 48, Name: "fan speed", codec: fixedFanSpeed},
	{Index: 50, Name: "drive mode", Until: until("1.7"), codec: driveModeCodec{}},
	{Index: 52, Name: "battery A status", Since: since("1.2"), codec: batteryStatusCodec{}},
	{Index: 54, Name: "battery B status", Since: since("1.2"), codec: batteryStatusCodec{}},
	{Index: 56, Name: "battery A mode", Since: since("1.2"), codec: u16Codec{}},
	{Index: 58, Name: "battery B mode", Since: since("1.2"), codec: u16Codec{}},
	{Index: 60, Name: "battery A temperature (internal)", Since: since("1.2"), codec: fixedDecikelvin},
	{Index: 62, Name: "battery B temperature (internal)", Since: since("1.2"), codec: fixedDecikelvin},
	{Index: 64, Name: "battery A voltage (internal)", Since: since("1.2"), codec: fixedMillisUnsigned},
	{Index: 66, Name: "battery B voltage (internal)", Since: since("1.2"), codec: fixedMillisUnsigned},
	{Index: 68, Name: "battery A current (internal)", Description: ">0 charging, <0 discharging", Since: since("1.2"), codec: fixedMillisSigned},
	{Index: 70, Name: "battery B current (internal)", Description: ">0 charging, <0 discharging", Since: since("1.2"), codec: fixedMillisSigned},
	{Index: 72, Name: "left motor status", Since: since("1.7"), codec: motorStatusCodec{}},
	{Index: 74, Name: "right motor status", Since: since("1.7"), codec: motorStatusCodec{}},
	{Index: 76, Name: "flipper motor status", Since: since("1.7"), codec: motorStatusCodec{}},
	{Index: 78, Name: "fan 1 duty", Since: since("1.9"), codec: fixedFanSpeed},
	{Index: 80, Name: "fan 2 duty", Since: since("1.9"), codec: fixedFanSpeed},
	{Index: 82, Name: "system fault flags", Since: since("1.10"), codec: systemFaultCodec{}},
}

// dataElements is the index → DataElement lookup built once at init.
var dataElements = buildDataElementIndex()

func buildDataElementIndex() map[byte]DataElement {
	m := make(map[byte]DataElement, len(dataElementList))
	for _, e := range dataElementList {
		m[e.Index] = e
	}
	return m
}

// LookupDataElement returns the descriptor for idx and whether it is known
// to the registry. An unknown index is not an error by itself.
func LookupDataElement(idx byte) (DataElement, bool) {
	e, ok := dataElements[idx]
	return e, ok
}

// SettingElement pins one settings verb (3..18, write-only) to a name and
// description.
type SettingElement struct {
	Verb        CommandVerb
	Name        string
	Description string
}

var settingElementList = []SettingElement{
	{VerbSetDriveType, "drive type", "selects the drivetrain configuration"},
	{VerbSetPIDP, "pid proportional gain", "scaled proportional gain byte"},
	{VerbSetPIDI, "pid integral gain", "scaled integral gain byte"},
	{VerbSetPIDD, "pid derivative gain", "scaled derivative gain byte"},
	{VerbSetEncoderInterval, "encoder sample interval", "sample interval byte"},
	{VerbSetOvercurrentLeft, "left motor overcurrent threshold", ""},
	{VerbSetOvercurrentRight, "right motor overcurrent threshold", ""},
	{VerbSetOvercurrentFlipper, "flipper overcurrent threshold", ""},
	{VerbSetFanAuto, "automatic fan control", "0=manual, 1=automatic"},
	{VerbSetFlipperSpeedLimit, "flipper max speed", ""},
	{VerbSetWheelEncoderPoleCount, "wheel encoder pole count", ""},
	{VerbSetBrakeOnZero, "brake on zero effort", "0=coast, 1=brake"},
	{VerbSetLowBatteryCutoff, "low battery cutoff threshold", ""},
	{VerbSetSoundEnable, "sound enable", "0=silent, 1=enabled"},
	{VerbSetOvertempCutoff, "motor overtemperature cutoff", ""},
}

var settingElements = buildSettingElementIndex()

func buildSettingElementIndex() map[CommandVerb]SettingElement {
	m := make(map[CommandVerb]SettingElement, len(settingElementList))
	for _, e := range settingElementList {
		m[e.Verb] = e
	}
	return m
}

// LookupSettingElement returns the descriptor for a settings verb and
// whether it is known to the registry.
func LookupSettingElement(verb CommandVerb) (SettingElement, bool) {
	e, ok := settingElements[verb]
	return e, ok
}
