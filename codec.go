package rover

import (
	"encoding/binary"
	"fmt"
	"math"
)

// codec is the bidirectional mapping between a 2-byte telemetry payload and
// a typed value, implemented as a closed set of function-based variants
// rather than a ReadDataFormat/WriteDataFormat class hierarchy — each
// variant below plays the role one of those format classes would, dispatched
// through the codec interface instead of through inheritance.
type codec interface {
	decode(payload [2]byte) (interface{}, error)
}

// encodableCodec is implemented by the codecs the registry also allows
// callers to encode into an outbound payload (motor-effort-style writes
// aside, which travel in different frame bytes — see Effort below).
type encodableCodec interface {
	codec
	encode(value interface{}) ([2]byte, error)
}

// --- u16 ---

type u16Codec struct{}

func (u16Codec) decode(p [2]byte) (interface{}, error) {
	return binary.BigEndian.Uint16(p[:]), nil
}

func (u16Codec) encode(value interface{}) ([2]byte, error) {
	n, ok := value.(uint16)
	if !ok {
		return [2]byte{}, newError(KindProtocol, fmt.Sprintf("u16 codec: unexpected type %T", value), nil)
	}
	var p [2]byte
	binary.BigEndian.PutUint16(p[:], n)
	return p, nil
}

// --- i16 ---

type i16Codec struct{}

func (i16Codec) decode(p [2]byte) (interface{}, error) {
	return int16(binary.BigEndian.Uint16(p[:])), nil
}

// --- fixed(base, step, zero) ---

// fixedCodec implements the fixed-point codec: value = (raw - zero) / step.
// signed selects whether raw is interpreted as u16 or i16.
type fixedCodec struct {
	step   float64
	zero   float64
	signed bool
}

func (f fixedCodec) decode(p [2]byte) (interface{}, error) {
	var raw float64
	if f.signed {
		raw = float64(int16(binary.BigEndian.Uint16(p[:])))
	} else {
		raw = float64(binary.BigEndian.Uint16(p[:]))
	}
	return (raw - f.zero) / f.step, nil
}

// --- charger state ---

type chargerStateCodec struct{}

const chargerActiveMagic = 0xDADA

func (chargerStateCodec) decode(p [2]byte) (interface{}, error) {
	return binary.BigEndian.Uint16(p[:]) == chargerActiveMagic, nil
}

func (chargerStateCodec) encode(value interface{}) ([2]byte, error) {
	on, ok := value.(bool)
	if !ok {
		return [2]byte{}, newError(KindProtocol, fmt.Sprintf("charger state codec: unexpected type %T", value), nil)
	}
	var p [2]byte
	if on {
		binary.BigEndian.PutUint16(p[:], chargerActiveMagic)
	}
	return p, nil
}

// --- battery status flags ---

// BatteryStatus is a bit-set of battery alarm/state flags (data elements
// 52, 54).
type BatteryStatus uint16

const (
	BatteryOverchargedAlarm        BatteryStatus = 0x8000
	BatteryTerminateChargeAlarm    BatteryStatus = 0x4000
	BatteryOverTempAlarm           BatteryStatus = 0x1000
	BatteryTerminateDischargeAlarm BatteryStatus = 0x0800
	BatteryRemainingCapacityAlarm  BatteryStatus = 0x0200
	BatteryRemainingTimeAlarm      BatteryStatus = 0x0100
	BatteryInitialized             BatteryStatus = 0x0080
	BatteryDischarging             BatteryStatus = 0x0040
	BatteryFullyCharged            BatteryStatus = 0x0020
	BatteryFullyDischarged         BatteryStatus = 0x0010
)

// Has reports whether all bits in mask are set.
func (b BatteryStatus) Has(mask BatteryStatus) bool {
	return b&mask == mask
}

type batteryStatusCodec struct{}

func (batteryStatusCodec) decode(p [2]byte) (interface{}, error) {
	return BatteryStatus(binary.BigEndian.Uint16(p[:])), nil
}

// --- motor status flags ---

// MotorStatus is a bit-set of per-motor state flags (data elements 72, 74, 76).
type MotorStatus uint16

const (
	MotorFault1    MotorStatus = 1 << 0
	MotorFault2    MotorStatus = 1 << 1
	MotorDecayMode MotorStatus = 1 << 2
	MotorReverse   MotorStatus = 1 << 3
	MotorBrake     MotorStatus = 1 << 4
	MotorCoast     MotorStatus = 1 << 5
)

func (m MotorStatus) Has(mask MotorStatus) bool {
	return m&mask == mask
}

type motorStatusCodec struct{}

func (motorStatusCodec) decode(p [2]byte) (interface{}, error) {
	return MotorStatus(binary.BigEndian.Uint16(p[:])), nil
}

// --- system fault flags ---

// SystemFault is a bit-set of controller-wide sticky fault flags (data
// element 82).
type SystemFault uint16

const (
	FaultOverspeed   SystemFault = 1 << 0
	FaultOvercurrent SystemFault = 1 << 1
)

func (f SystemFault) Has(mask SystemFault) bool {
	return f&mask == mask
}

type systemFaultCodec struct{}

func (systemFaultCodec) decode(p [2]byte) (interface{}, error) {
	return SystemFault(binary.BigEndian.Uint16(p[:])), nil
}

// --- drive mode ---

// DriveMode selects the controller's closed- vs open-loop speed control
// (data element 50, removed in firmware 1.7+).
type DriveMode uint16

const (
	DriveModeOpenLoop   DriveMode = 0
	DriveModeClosedLoop DriveMode = 1
)

type driveModeCodec struct{}

func (driveModeCodec) decode(p [2]byte) (interface{}, error) {
	return DriveMode(binary.BigEndian.Uint16(p[:])), nil
}

func (driveModeCodec) encode(value interface{}) ([2]byte, error) {
	m, ok := value.(DriveMode)
	if !ok {
		return [2]byte{}, newError(KindProtocol, fmt.Sprintf("drive mode codec: unexpected type %T", value), nil)
	}
	var p [2]byte
	binary.BigEndian.PutUint16(p[:], uint16(m))
	return p, nil
}

// --- firmware version ---

type firmwareVersionCodec struct{}

func (firmwareVersionCodec) decode(p [2]byte) (interface{}, error) {
	return decodeFirmwareVersion(binary.BigEndian.Uint16(p[:])), nil
}

// --- motor effort (single byte, used only in the three motor-effort
// frame positions, never as a 2-byte telemetry payload) ---

// Effort is a motor/fan command in [-1, +1]; -1 is full reverse, +1 is full
// forward, 0 is brake.
type Effort float64

const (
	effortZeroByte = 125
	effortScale    = 125.0
)

// validate reports an error if e is outside [-1, 1].
func (e Effort) validate() error {
	if e < -1 || e > 1 {
		return newError(KindProtocol, fmt.Sprintf("motor effort %v out of range [-1, 1]", float64(e)), nil)
	}
	return nil
}

// encodeByte implements round(e*125)+125, clamped to [0, 250], rounding
// half to even (Go's math.RoundToEven matches the source's use of Python's
// banker's-rounding round()).
func (e Effort) encodeByte() byte {
	raw := math.RoundToEven(float64(e)*effortScale) + effortZeroByte
	if raw < 0 {
		raw = 0
	}
	if raw > 250 {
		raw = 250
	}
	return byte(raw)
}

// decodeEffort is the inverse of encodeByte.
func decodeEffort(b byte) Effort {
	return Effort((float64(b) - effortZeroByte) / effortScale)
}
