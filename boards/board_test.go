package boards

import (
	"testing"

	"i2cstack-go/hal/i2cm"
)

func TestSelectedTimingFits(t *testing.T) {
	tm, err := i2cm.ComputeTiming(Selected.ClockHz, Selected.Mode, Selected.Duty)
	if err != nil {
		t.Fatalf("%s: %v", Selected.Name, err)
	}
	if tm.SCLHz() > Selected.Mode.Hz() {
		t.Fatalf("%s: SCL %d exceeds %d", Selected.Name, tm.SCLHz(), Selected.Mode.Hz())
	}
	if Selected.RTCAddr == 0 || Selected.RTCAddr >= 0x80 {
		t.Fatalf("rtc address %#x", Selected.RTCAddr)
	}
}
