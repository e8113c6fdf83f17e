package rover

import (
	"context"
	"testing"
)

func TestRoverSetMotorSpeedsValidation(t *testing.T) {
	rv := NewRover(NewEngine(&fakeLink{}))
	if err := rv.SetMotorSpeeds(2, 0, 0); err == nil {
		t.Error("expected error for out-of-range left effort")
	}
	if err := rv.SetMotorSpeeds(0.5, -0.5, 0); err != nil {
		t.Fatalf("SetMotorSpeeds: %v", err)
	}
}

func TestRoverSendSpeedEncodesLatchedEfforts(t *testing.T) {
	link := &fakeLink{}
	rv := NewRover(NewEngine(link))
	if err := rv.SetMotorSpeeds(1, -1, 0); err != nil {
		t.Fatalf("SetMotorSpeeds: %v", err)
	}
	if err := rv.SendSpeed(); err != nil {
		t.Fatalf("SendSpeed: %v", err)
	}
	if len(link.out) != 1 {
		t.Fatalf("expected one frame written, got %d", len(link.out))
	}
	frame := link.out[0]
	if frame[1] != Effort(1).encodeByte() || frame[2] != Effort(-1).encodeByte() {
		t.Errorf("frame motor bytes = (%d, %d), want (%d, %d)", frame[1], frame[2], Effort(1).encodeByte(), Effort(-1).encodeByte())
	}
}

func TestRoverGetDataSkipsMismatchedReplies(t *testing.T) {
	link := &fakeLink{in: append(frameBytes(24, 0, 100), frameBytes(40, 0x27, 0x11)...)}
	rv := NewRover(NewEngine(link))

	value, err := rv.GetData(context.Background(), 40)
	if err != nil {
		t.Fatalf("GetData: %v", err)
	}
	v, ok := value.(FirmwareVersion)
	if !ok || v != (FirmwareVersion{1, 0, 1}) {
		t.Errorf("GetData(40) = %v, want FirmwareVersion{1,0,1}", value)
	}
	if len(link.out) != 1 {
		t.Fatalf("expected exactly one request frame, got %d", len(link.out))
	}
	if link.out[0][4] != byte(VerbGetData) || link.out[0][5] != 40 {
		t.Errorf("request frame verb/arg = (%d, %d)", link.out[0][4], link.out[0][5])
	}
}

func TestRoverGetDataUnknownIndex(t *testing.T) {
	rv := NewRover(NewEngine(&fakeLink{}))
	if _, err := rv.GetData(context.Background(), 255); err == nil {
		t.Error("expected error requesting an unknown data element index")
	}
}

func TestRoverGetDataItemsCollectsAll(t *testing.T) {
	link := &fakeLink{in: append(frameBytes(24, 0, 100), frameBytes(26, 0, 50)...)}
	rv := NewRover(NewEngine(link))

	items, err := rv.GetDataItems(context.Background(), []byte{24, 26})
	if err != nil {
		t.Fatalf("GetDataItems: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(items))
	}
	if _, ok := items[24]; !ok {
		t.Error("expected item 24 in result")
	}
	if _, ok := items[26]; !ok {
		t.Error("expected item 26 in result")
	}
}

func TestRoverGetDataItemsUnexpectedIndexIsBadResponse(t *testing.T) {
	link := &fakeLink{in: frameBytes(255, 0, 0)} // 255 is not a registered data element
	rv := NewRover(NewEngine(link))

	_, err := rv.GetDataItems(context.Background(), []byte{24})
	if !IsKind(err, KindBadResponse) {
		t.Errorf("GetDataItems with an unregistered reply index: got %v, want KindBadResponse", err)
	}
}

func TestRoverGetDataTimesOut(t *testing.T) {
	link := &fakeLink{} // never produces a reply
	rv := NewRover(NewEngine(link))

	_, err := rv.GetData(context.Background(), 40)
	if !IsKind(err, KindTimeout) {
		t.Errorf("GetData with no reply: got %v, want KindTimeout", err)
	}
}

func TestRoverFlipperCalibrateSetsSafetyInterlockArg(t *testing.T) {
	link := &fakeLink{}
	rv := NewRover(NewEngine(link))
	if err := rv.FlipperCalibrate(); err != nil {
		t.Fatalf("FlipperCalibrate: %v", err)
	}
	frame := link.out[0]
	if frame[4] != byte(VerbFlipperCalibrate) || frame[5] != byte(VerbFlipperCalibrate) {
		t.Errorf("flipper calibrate frame verb/arg = (%d, %d), want both %d", frame[4], frame[5], byte(VerbFlipperCalibrate))
	}
}

func TestRoverSetSettingRejectsUnknownVerb(t *testing.T) {
	rv := NewRover(NewEngine(&fakeLink{}))
	if err := rv.SetSetting(VerbGetData, 1); err == nil {
		t.Error("expected error setting a non-settings verb")
	}
}

func TestRoverSetSettingEncodesVerbAndValue(t *testing.T) {
	link := &fakeLink{}
	rv := NewRover(NewEngine(link))
	if err := rv.SetSetting(VerbSetFanAuto, 1); err != nil {
		t.Fatalf("SetSetting: %v", err)
	}
	frame := link.out[0]
	if frame[4] != byte(VerbSetFanAuto) || frame[5] != 1 {
		t.Errorf("frame verb/arg = (%d, %d), want (%d, 1)", frame[4], frame[5], byte(VerbSetFanAuto))
	}
}

func TestRoverRestartRepeatsFrame(t *testing.T) {
	link := &fakeLink{}
	rv := NewRover(NewEngine(link))
	if err := rv.Restart(context.Background(), false); err != nil {
		t.Fatalf("Restart: %v", err)
	}
	if len(link.out) != restartAttempts {
		t.Fatalf("expected %d restart frames, got %d", restartAttempts, len(link.out))
	}
	for _, frame := range link.out {
		if frame[4] != byte(VerbRestart) || frame[5] != restartArgReboot {
			t.Errorf("restart frame verb/arg = (%d, %d)", frame[4], frame[5])
		}
	}
}
