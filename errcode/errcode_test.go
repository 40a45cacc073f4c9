package errcode

import (
	"errors"
	"testing"
)

func TestCodesAreStableStrings(t *testing.T) {
	cases := map[string]Code{
		"ok":                 OK,
		"busy":               Busy,
		"invalid_params":     InvalidParams,
		"timeout":            Timeout,
		"nack":               NoAcknowledge,
		"bus_error":          BusError,
		"arbitration_lost":   ArbitrationLost,
		"config_unsupported": ConfigUnsupported,
		"bus_in_use":         BusInUse,
		"unknown_bus":        UnknownBus,
		"error":              Error,
	}
	for want, c := range cases {
		if c.Error() != want {
			t.Fatalf("code %q mismatch: got %q", want, c.Error())
		}
	}
}

func TestOf(t *testing.T) {
	if Of(nil) != OK {
		t.Fatal("nil should map to ok")
	}
	if Of(NoAcknowledge) != NoAcknowledge {
		t.Fatal("bare code not extracted")
	}
	if Of(&E{C: BusError, Op: "send"}) != BusError {
		t.Fatal("wrapped code not extracted")
	}
	if Of(errors.New("boom")) != Error {
		t.Fatal("foreign error should map to generic code")
	}
}

func TestWrapKeepsCode(t *testing.T) {
	err := Wrap("ds1307.read", ArbitrationLost)
	if !errors.Is(err, ArbitrationLost) {
		t.Fatalf("errors.Is failed for %v", err)
	}
	if got := err.Error(); got != "ds1307.read: arbitration_lost" {
		t.Fatalf("unexpected message %q", got)
	}
	if Wrap("x", nil) != nil {
		t.Fatal("wrapping nil should stay nil")
	}
}

func TestRetryable(t *testing.T) {
	for _, c := range []Code{Busy, NoAcknowledge, ArbitrationLost} {
		if !Retryable(c) {
			t.Fatalf("%s should be retryable", c)
		}
	}
	for _, c := range []Code{BusError, ConfigUnsupported, Timeout, InvalidParams} {
		if Retryable(c) {
			t.Fatalf("%s should not be retryable", c)
		}
	}
}

func TestUnknownBusKeepsCause(t *testing.T) {
	err := &E{C: UnknownBus, Op: "i2c.open", Err: errors.New(`no bus "7"`)}
	if got := err.Error(); got != `i2c.open: unknown_bus: no bus "7"` {
		t.Fatalf("message %q", got)
	}
	if Of(err) != UnknownBus || Retryable(Of(err)) {
		t.Fatal("unknown bus must not be retryable")
	}
}
