package rover

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// getDataTimeout bounds how long a single GetData/GetDataItems call waits
// for its reply before giving up, composed via context.WithTimeout around
// the caller's own context. It also bounds OpenRover's per-candidate probe.
const getDataTimeout = 1 * time.Second

// restartRetryDelay is the spacing between the repeated Restart frames:
// the reboot itself may eat the ack, so the command is sent more than
// once rather than waited on.
const restartRetryDelay = 50 * time.Millisecond

// Rover is the facade (C5) over one connected controller: it owns the
// latched motor efforts, issues commands, and demultiplexes telemetry
// replies one at a time off the engine's single inbound stream.
type Rover struct {
	engine *Engine

	mu                   sync.Mutex
	mLeft, mRight, mFlip Effort
	version              FirmwareVersion
	versionKnown         bool
}

// NewRover wraps an already-constructed Engine. Most callers should use
// OpenRover instead, which also performs discovery.
func NewRover(engine *Engine) *Rover {
	return &Rover{engine: engine}
}

// SetMotorSpeeds latches the three motor efforts for the next SendSpeed
// call (and every other outbound frame, since every frame carries all
// three). It does not itself send a frame.
func (r *Rover) SetMotorSpeeds(left, right, flip Effort) error {
	for _, e := range []Effort{left, right, flip} {
		if err := e.validate(); err != nil {
			return err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mLeft, r.mRight, r.mFlip = left, right, flip
	return nil
}

// SendSpeed re-sends the latched motor efforts as a no-op command frame.
// Callers drive the rover by calling this periodically; the controller
// treats a stale latch as a timeout and stops the motors.
func (r *Rover) SendSpeed() error {
	r.mu.Lock()
	left, right, flip := r.mLeft, r.mRight, r.mFlip
	r.mu.Unlock()
	return r.engine.WriteNoWait(left, right, flip, VerbNOP, 0)
}

// SetFanSpeed commands the cooling fan to run at fraction of full speed
// ([0, 1]), alongside whatever motor efforts are currently latched.
func (r *Rover) SetFanSpeed(fraction float64) error {
	if fraction < 0 || fraction > 1 {
		return newError(KindProtocol, "fan speed fraction out of range [0, 1]", nil)
	}
	arg := byte(fraction*fixedFanSpeed.step + 0.5)
	r.mu.Lock()
	left, right, flip := r.mLeft, r.mRight, r.mFlip
	r.mu.Unlock()
	return r.engine.WriteNoWait(left, right, flip, VerbSetFanSpeed, arg)
}

// ClearSystemFault asks the controller to clear its latched fault flags
// (data element 82).
func (r *Rover) ClearSystemFault() error {
	r.mu.Lock()
	left, right, flip := r.mLeft, r.mRight, r.mFlip
	r.mu.Unlock()
	return r.engine.WriteNoWait(left, right, flip, VerbClearSystemFault, 0)
}

// FlipperCalibrate asks the controller to re-home the flipper encoder. The
// arg byte is set equal to the verb byte itself, a safety interlock
// against the command being triggered by accidental or corrupted traffic.
func (r *Rover) FlipperCalibrate() error {
	r.mu.Lock()
	left, right, flip := r.mLeft, r.mRight, r.mFlip
	r.mu.Unlock()
	return r.engine.WriteNoWait(left, right, flip, VerbFlipperCalibrate, byte(VerbFlipperCalibrate))
}

// ReloadSettings asks the controller to reload its settings from flash,
// discarding any uncommitted SetSetting calls.
func (r *Rover) ReloadSettings() error {
	r.mu.Lock()
	left, right, flip := r.mLeft, r.mRight, r.mFlip
	r.mu.Unlock()
	return r.engine.WriteNoWait(left, right, flip, VerbReloadSettings, 0)
}

// CommitSettings asks the controller to persist its current settings to
// flash.
func (r *Rover) CommitSettings() error {
	r.mu.Lock()
	left, right, flip := r.mLeft, r.mRight, r.mFlip
	r.mu.Unlock()
	return r.engine.WriteNoWait(left, right, flip, VerbCommitSettings, 0)
}

// SetSetting writes one byte to the named settings verb. The write is
// held in the controller's working copy until CommitSettings persists it.
func (r *Rover) SetSetting(verb CommandVerb, value byte) error {
	if _, ok := LookupSettingElement(verb); !ok {
		return newError(KindProtocol, "unknown settings verb", nil)
	}
	r.mu.Lock()
	left, right, flip := r.mLeft, r.mRight, r.mFlip
	r.mu.Unlock()
	return r.engine.WriteNoWait(left, right, flip, verb, value)
}

// Restart asks the controller to reboot, optionally into its bootloader.
// The request frame is repeated restartAttempts times, since the reboot
// itself races with (and may eat) the host's own write — there is no ack
// to wait for.
func (r *Rover) Restart(ctx context.Context, intoBootloader bool) error {
	arg := restartArgReboot
	if intoBootloader {
		arg = restartArgBootloader
	}
	r.mu.Lock()
	left, right, flip := r.mLeft, r.mRight, r.mFlip
	r.mu.Unlock()
	for i := 0; i < restartAttempts; i++ {
		if err := r.engine.WriteNoWait(left, right, flip, VerbRestart, arg); err != nil {
			return err
		}
		if i < restartAttempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(restartRetryDelay):
			}
		}
	}
	return nil
}

// GetData requests one telemetry element by index and returns its
// decoded value once a matching reply arrives, or a KindTimeout error if
// none arrives within getDataTimeout. Replies for other indices
// encountered along the way are not discarded as errors: they were
// requested by someone else sharing the same engine (or are simply
// unsolicited), and are silently skipped in favor of continuing to read
// the single shared stream.
func (r *Rover) GetData(ctx context.Context, index byte) (interface{}, error) {
	if _, ok := LookupDataElement(index); !ok {
		return nil, newError(KindProtocol, "unknown data element index", nil)
	}
	r.mu.Lock()
	left, right, flip := r.mLeft, r.mRight, r.mFlip
	r.mu.Unlock()
	if err := r.engine.WriteNoWait(left, right, flip, VerbGetData, index); err != nil {
		return nil, err
	}

	getCtx, cancel := context.WithTimeout(ctx, getDataTimeout)
	defer cancel()
	for {
		gotIndex, value, err := r.engine.ReadOne(getCtx)
		if err != nil {
			return nil, deadlineToTimeout(getCtx, err, fmt.Sprintf("waiting for data element %d", index))
		}
		if gotIndex == index {
			return value, nil
		}
	}
}

// GetDataItems requests several telemetry elements and returns a map from
// index to decoded value once all have been seen, bounded by a single
// getDataTimeout covering the whole batch. It issues one request per
// distinct index up front, then drains replies off the shared stream until
// every requested index has answered, in whatever order they arrive.
//
// A reply index that is neither one of the requested indices nor known
// to the registry at all is reported as KindBadResponse: unlike GetData,
// every request read back here was issued by this call, so an index
// outside that set while the call is still waiting indicates either
// stream corruption that slipped past the checksum, or a firmware index
// this registry does not know about — either way, worth surfacing rather
// than silently dropping. A reply for an index this registry does
// recognize but that this call did not request is not an error: another
// concurrent caller sharing the same engine may have asked for it.
func (r *Rover) GetDataItems(ctx context.Context, indices []byte) (map[byte]interface{}, error) {
	r.mu.Lock()
	left, right, flip := r.mLeft, r.mRight, r.mFlip
	r.mu.Unlock()

	want := make(map[byte]bool, len(indices))
	for _, idx := range indices {
		if _, ok := LookupDataElement(idx); !ok {
			return nil, newError(KindProtocol, "unknown data element index", nil)
		}
		want[idx] = true
	}
	sent := make(map[byte]bool, len(want))
	for _, idx := range indices {
		if sent[idx] {
			continue
		}
		sent[idx] = true
		if err := r.engine.WriteNoWait(left, right, flip, VerbGetData, idx); err != nil {
			return nil, err
		}
	}

	getCtx, cancel := context.WithTimeout(ctx, getDataTimeout)
	defer cancel()
	result := make(map[byte]interface{}, len(indices))
	for len(result) < len(want) {
		gotIndex, value, err := r.engine.ReadOne(getCtx)
		if err != nil {
			return nil, deadlineToTimeout(getCtx, err, "waiting for data elements")
		}
		if want[gotIndex] {
			result[gotIndex] = value
			continue
		}
		if _, ok := LookupDataElement(gotIndex); !ok {
			return nil, newError(KindBadResponse, fmt.Sprintf("unexpected reply index %d while awaiting a batch", gotIndex), nil)
		}
	}
	return result, nil
}

// deadlineToTimeout reclassifies a context error from a GetData-family
// getCtx as KindTimeout when it was this call's own budget that expired,
// leaving a cancellation originating from the caller's outer context
// untouched.
func deadlineToTimeout(getCtx context.Context, err error, message string) error {
	if getCtx.Err() == context.DeadlineExceeded {
		return newError(KindTimeout, message, err)
	}
	return err
}

// OpenRover enumerates candidate serial ports (FTDI USB-to-serial devices)
// and returns the first one that answers a release-version probe within
// getDataTimeout. If none answer, it returns a *DeviceNotFoundError
// aggregating every candidate's failure.
func OpenRover(ctx context.Context, cfg SerialConfig) (*Rover, error) {
	candidates, err := ListCandidatePorts()
	if err != nil {
		return nil, err
	}
	var attempts []PortAttempt
	for _, path := range candidates {
		rv, version, err := tryOpenRover(ctx, path, cfg)
		if err != nil {
			attempts = append(attempts, PortAttempt{Port: path, Err: err})
			continue
		}
		rv.mu.Lock()
		rv.version = version
		rv.versionKnown = true
		rv.mu.Unlock()
		return rv, nil
	}
	return nil, &DeviceNotFoundError{Attempts: attempts}
}

func tryOpenRover(ctx context.Context, path string, cfg SerialConfig) (*Rover, FirmwareVersion, error) {
	link, err := OpenSerialEndpoint(path, cfg)
	if err != nil {
		return nil, FirmwareVersion{}, err
	}
	rv := NewRover(NewEngine(link))

	value, err := rv.GetData(ctx, dataIndexReleaseVersion)
	if err != nil {
		link.Close()
		return nil, FirmwareVersion{}, err
	}
	version, ok := value.(FirmwareVersion)
	if !ok {
		link.Close()
		return nil, FirmwareVersion{}, newError(KindBadResponse, "release version element did not decode to a version", nil)
	}
	return rv, version, nil
}

// Version returns the firmware version discovered when the rover was
// opened. The second return is false if the rover was constructed
// directly through NewRover rather than OpenRover.
func (r *Rover) Version() (FirmwareVersion, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.version, r.versionKnown
}

// Close releases the underlying serial port.
func (r *Rover) Close() error {
	return r.engine.link.Close()
}

// dataIndexReleaseVersion is data element 40, used by OpenRover's probe.
const dataIndexReleaseVersion = 40
