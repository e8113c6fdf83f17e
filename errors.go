package rover

import "fmt"

// Kind classifies a RoverError the way modbus.Exception classifies a protocol
// exception code: a small closed set that callers can switch on.
type Kind byte

const (
	// KindDeviceNotFound indicates that no candidate serial port could be
	// opened and probed successfully during discovery.
	KindDeviceNotFound Kind = iota + 1
	// KindDeviceAccess indicates an open failed due to permissions, the
	// port already being in use, or the path not naming a serial device.
	KindDeviceAccess
	// KindDeviceClosed indicates an operation was attempted after Close
	// or after the underlying port reached end-of-stream.
	KindDeviceClosed
	// KindBadChecksum indicates a frame failed checksum verification.
	// Recoverable: the engine resynchronizes on the next start byte.
	KindBadChecksum
	// KindBadResponse indicates a reply index did not match the index
	// expected by a GetData sequence, or an index unknown to the registry.
	KindBadResponse
	// KindTimeout indicates a deadline expired while awaiting a reply.
	KindTimeout
	// KindProtocol is the catch-all for conditions outside the above,
	// such as a partial frame at end-of-stream.
	KindProtocol
)

func (k Kind) String() string {
	switch k {
	case KindDeviceNotFound:
		return "device not found"
	case KindDeviceAccess:
		return "device access"
	case KindDeviceClosed:
		return "device closed"
	case KindBadChecksum:
		return "bad checksum"
	case KindBadResponse:
		return "bad response"
	case KindTimeout:
		return "timeout"
	case KindProtocol:
		return "protocol"
	default:
		return fmt.Sprintf("kind %d", byte(k))
	}
}

// RoverError is the single domain error type used across the driver. It
// carries a Kind tag and, where available, the error that caused it.
//
// Uses an exported type backed by an unexported constructor, the same
// split an Exception/exception pair would use, but collapses to a single
// concrete type since this protocol has one error shape (a kind plus an
// optional cause) rather than one variant per wire exception code.
type RoverError struct {
	Kind    Kind
	Message string
	Cause   error
}

var _ error = (*RoverError)(nil)

func newError(kind Kind, message string, cause error) *RoverError {
	return &RoverError{Kind: kind, Message: message, Cause: cause}
}

func (e *RoverError) Error() string {
	prefix := "rover: " + e.Kind.String()
	if e.Message != "" {
		prefix += ": " + e.Message
	}
	if e.Cause != nil {
		return prefix + ": " + e.Cause.Error()
	}
	return prefix
}

// Unwrap allows errors.Is/errors.As to see through to the underlying cause.
func (e *RoverError) Unwrap() error {
	return e.Cause
}

// IsKind reports whether the first RoverError found in err's Unwrap chain
// has the given kind.
func IsKind(err error, kind Kind) bool {
	var re *RoverError
	for err != nil {
		if re2, ok := err.(*RoverError); ok {
			re = re2
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return re != nil && re.Kind == kind
}

// DeviceNotFoundError aggregates the per-candidate failures encountered by
// OpenRover when no serial port responded to the version probe.
type DeviceNotFoundError struct {
	Attempts []PortAttempt
}

// PortAttempt records one candidate port and the error it failed with.
type PortAttempt struct {
	Port string
	Err  error
}

func (e *DeviceNotFoundError) Error() string {
	if len(e.Attempts) == 0 {
		return "rover: device not found: no candidate serial ports"
	}
	msg := "rover: device not found, tried:"
	for _, a := range e.Attempts {
		msg += fmt.Sprintf(" [%s: %v]", a.Port, a.Err)
	}
	return msg
}

// Unwrap exposes the Kind through the shared RoverError machinery so
// IsKind(err, KindDeviceNotFound) reports true.
func (e *DeviceNotFoundError) Unwrap() error {
	return newError(KindDeviceNotFound, "", nil)
}
