package rover

import (
	"context"
	"testing"
	"time"
)

// fakeLink is an in-memory frameLink: writes append to out, reads are
// served from a preloaded byte queue. Like the real serial endpoint, a
// read with nothing available blocks (polling) until more data would
// arrive or ctx is done, rather than failing immediately — this is what
// lets a GetData call against an empty fakeLink exercise a real timeout.
type fakeLink struct {
	out    [][]byte
	in     []byte
	closed bool
}

func (f *fakeLink) WriteNoWait(data []byte) error {
	cp := make([]byte, len(data))
	copy(cp, data)
	f.out = append(f.out, cp)
	return nil
}

func (f *fakeLink) Flush(ctx context.Context, n int) error { return nil }

func (f *fakeLink) Close() error {
	f.closed = true
	return nil
}

func (f *fakeLink) ReadUntil(ctx context.Context, terminator byte) ([]byte, error) {
	for {
		for i, b := range f.in {
			if b == terminator {
				line := f.in[:i+1]
				f.in = f.in[i+1:]
				return line, nil
			}
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Millisecond):
		}
	}
}

func (f *fakeLink) ReadExactly(ctx context.Context, n int) ([]byte, error) {
	for len(f.in) < n {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Millisecond):
		}
	}
	out := f.in[:n]
	f.in = f.in[n:]
	return out, nil
}

// frameBytes builds a 5-byte inbound reply frame: start byte, index, hi,
// lo, checksum over (index, hi, lo).
func frameBytes(index, hi, lo byte) []byte {
	payload := [inboundPayloadSize]byte{index, hi, lo}
	frame := make([]byte, inboundFrameSize)
	frame[0] = frameStartByte
	copy(frame[1:1+inboundPayloadSize], payload[:])
	frame[inboundFrameSize-1] = checksum(payload[:])
	return frame
}

func TestEngineReadOneDecodesFrame(t *testing.T) {
	link := &fakeLink{in: frameBytes(40, 0x27, 0x11)} // 10001 -> 1.0.1
	e := NewEngine(link)

	index, value, err := e.ReadOne(context.Background())
	if err != nil {
		t.Fatalf("ReadOne: %v", err)
	}
	if index != 40 {
		t.Errorf("index = %d, want 40", index)
	}
	v, ok := value.(FirmwareVersion)
	if !ok {
		t.Fatalf("value type = %T, want FirmwareVersion", value)
	}
	if want := (FirmwareVersion{1, 0, 1}); v != want {
		t.Errorf("decoded version = %+v, want %+v", v, want)
	}
}

func TestEngineReadOneResyncsAfterBadChecksum(t *testing.T) {
	bad := frameBytes(40, 0x00, 0x01)
	bad[len(bad)-1] ^= 0xFF // corrupt the checksum byte
	good := frameBytes(24, 0x00, 0x3A)

	link := &fakeLink{in: append(bad, good...)}
	e := NewEngine(link)

	index, _, err := e.ReadOne(context.Background())
	if err != nil {
		t.Fatalf("ReadOne after corrupted frame: %v", err)
	}
	if index != 24 {
		t.Errorf("index after resync = %d, want 24", index)
	}
}

func TestEngineReadOneUnknownIndex(t *testing.T) {
	link := &fakeLink{in: frameBytes(99, 0, 0)}
	e := NewEngine(link)

	index, value, err := e.ReadOne(context.Background())
	if err != nil {
		t.Fatalf("ReadOne: %v", err)
	}
	if index != 99 || value != uint16(0) {
		t.Errorf("ReadOne(unknown index) = (%d, %v), want (99, uint16(0))", index, value)
	}
}

func TestEngineWriteNoWaitEncodesFrame(t *testing.T) {
	link := &fakeLink{}
	e := NewEngine(link)

	if err := e.WriteNoWait(0.5, -0.5, 0, VerbGetData, 40); err != nil {
		t.Fatalf("WriteNoWait: %v", err)
	}
	if len(link.out) != 1 {
		t.Fatalf("expected one written frame, got %d", len(link.out))
	}
	frame := link.out[0]
	if len(frame) != outboundFrameSize || frame[0] != frameStartByte {
		t.Errorf("unexpected frame shape: %v", frame)
	}
	if frame[4] != byte(VerbGetData) || frame[5] != 40 {
		t.Errorf("frame verb/arg = (%d, %d), want (%d, 40)", frame[4], frame[5], byte(VerbGetData))
	}
}

func TestEngineWriteNoWaitRejectsOutOfRangeEffort(t *testing.T) {
	link := &fakeLink{}
	e := NewEngine(link)
	if err := e.WriteNoWait(1.5, 0, 0, VerbNOP, 0); err == nil {
		t.Error("expected error for out-of-range effort")
	}
}
