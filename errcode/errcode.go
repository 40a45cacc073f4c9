package errcode

// Code is a stable, caller-facing error identifier.
// It is a string newtype, comparable, allocation-free, and implements error,
// so it can be returned from interrupt context and compared with ==.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable).
const (
	OK            Code = "ok"
	Busy          Code = "busy"
	InvalidParams Code = "invalid_params"
	Timeout       Code = "timeout"

	// Bus conditions reported by the transfer engines.
	NoAcknowledge   Code = "nack"
	BusError        Code = "bus_error"
	ArbitrationLost Code = "arbitration_lost"

	// Configuration and ownership.
	ConfigUnsupported Code = "config_unsupported"
	BusInUse          Code = "bus_in_use"
	UnknownBus        Code = "unknown_bus"

	Error Code = "error" // generic fallback
)

// E is an optional wrapper when we want to keep context and a cause.
// It allocates, so the transfer path never builds one; host tools and
// device drivers may.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	s := string(e.C)
	if e.Op != "" {
		s = e.Op + ": " + s
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	} else if e.Err != nil && e.Err.Error() != string(e.C) {
		s += ": " + e.Err.Error()
	}
	return s
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Is lets errors.Is(err, errcode.NoAcknowledge) match a wrapped code.
func (e *E) Is(target error) bool {
	c, ok := target.(Code)
	return ok && c == e.C
}

// Wrap attaches an operation name to err, keeping its code.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &E{C: Of(err), Op: op, Err: err}
}

// Of extracts a Code from an error, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	if c, ok := err.(Code); ok {
		return c
	}
	type coder interface{ Code() Code }
	if x, ok := err.(coder); ok {
		return x.Code()
	}
	type unwrapper interface{ Unwrap() error }
	if u, ok := err.(unwrapper); ok {
		return Of(u.Unwrap())
	}
	return Error
}

// Retryable reports whether a caller may reasonably reissue the transfer
// without first revalidating the bus. The engines never retry on their own.
func Retryable(c Code) bool {
	switch c {
	case Busy, NoAcknowledge, ArbitrationLost:
		return true
	}
	return false
}
