package rover

import (
	"context"
)

// fifoLock is a channel-based mutex: a lock attempt can be cancelled by
// the caller's context, and goroutines blocked on the channel are served
// in the order they started waiting.
type fifoLock chan struct{}

func newFifoLock() fifoLock {
	l := make(fifoLock, 1)
	l <- struct{}{}
	return l
}

func (l fifoLock) lock(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-l:
		return nil
	}
}

func (l fifoLock) unlock() {
	l <- struct{}{}
}

// Engine is the protocol engine (C4): it sequences logical outbound
// messages and inbound telemetry frames over a single SerialEndpoint.
//
// There is deliberately no per-index demultiplexer here. A write never
// waits for "its" reply; a read never asks for a specific index. Frames
// arrive in whatever order the firmware emits them, and ReadOne hands
// the caller the next one, named by the index embedded in the frame
// itself. Reintroducing a futures-per-index dispatcher would silently
// assume a request/response pairing the wire protocol does not make.
type Engine struct {
	link frameLink
	rx   fifoLock
}

// frameLink is the transport surface the engine needs. *SerialEndpoint
// satisfies it; tests substitute an in-memory fake.
type frameLink interface {
	ReadUntil(ctx context.Context, terminator byte) ([]byte, error)
	ReadExactly(ctx context.Context, n int) ([]byte, error)
	WriteNoWait(data []byte) error
	Flush(ctx context.Context, n int) error
	Close() error
}

// NewEngine wraps an already-opened serial endpoint.
func NewEngine(link frameLink) *Engine {
	return &Engine{link: link, rx: newFifoLock()}
}

// WriteNoWait encodes and sends one outbound command frame: the three
// motor efforts, a command verb, and its argument byte. It does not
// suspend waiting for a reply, matching the write_nowait contract of the
// underlying serial endpoint.
func (e *Engine) WriteNoWait(mLeft, mRight, mFlip Effort, verb CommandVerb, arg byte) error {
	for _, eff := range []Effort{mLeft, mRight, mFlip} {
		if err := eff.validate(); err != nil {
			return err
		}
	}
	payload := [outboundPayloadSize]byte{
		mLeft.encodeByte(),
		mRight.encodeByte(),
		mFlip.encodeByte(),
		byte(verb),
		arg,
	}
	frame := encodeFrame(payload)
	return e.link.WriteNoWait(frame[:])
}

// Flush forwards to the link's Flush with a threshold of zero bytes.
func (e *Engine) Flush(ctx context.Context) error {
	return e.link.Flush(ctx, 0)
}

// ReadOne reads and decodes the next inbound telemetry frame, resyncing
// on the start byte and discarding any frame that fails its checksum. It
// holds the engine's fifo lock for the duration of one frame read, so
// concurrent callers are served strictly in arrival order.
//
// An index the registry does not recognize is not treated as corruption:
// a warning is logged and the frame is returned with its payload decoded
// as a raw big-endian uint16.
func (e *Engine) ReadOne(ctx context.Context) (index byte, value interface{}, err error) {
	if err := e.rx.lock(ctx); err != nil {
		return 0, nil, err
	}
	defer e.rx.unlock()

	for {
		if _, err := e.link.ReadUntil(ctx, frameStartByte); err != nil {
			return 0, nil, err
		}
		rest, err := e.link.ReadExactly(ctx, inboundFrameSize-1)
		if err != nil {
			return 0, nil, err
		}
		var payload [inboundPayloadSize]byte
		copy(payload[:], rest[:inboundPayloadSize])
		cksum := rest[inboundPayloadSize]

		body, err := decodeBody(payload, cksum)
		if err != nil {
			warnf("dropping frame with bad checksum, resynchronizing: %v", err)
			continue
		}

		elem, ok := LookupDataElement(body.index)
		if !ok {
			warnf("unknown data element index %d, decoding payload as raw u16", body.index)
			return body.index, uint16(body.hi)<<8 | uint16(body.lo), nil
		}
		v, err := elem.Decode([2]byte{body.hi, body.lo})
		if err != nil {
			return body.index, nil, err
		}
		return body.index, v, nil
	}
}
