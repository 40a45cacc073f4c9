package i2cirq

import (
	"context"

	"tinygo.org/x/drivers"

	"i2cstack-go/errcode"
	"i2cstack-go/hal/i2cm"
)

var _ drivers.I2C = Bus{}

// Bus runs device-driver transactions on the interrupt engine. A write
// followed by a read holds the bus and reads after a repeated START.
type Bus struct {
	W   *Worker
	H   *i2cm.Handle
	Ctx context.Context // nil means context.Background
}

func (b Bus) Tx(addr uint16, w, r []byte) error {
	if addr == 0 || addr >= 0x80 {
		return errcode.InvalidParams
	}
	ctx := b.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	a := uint8(addr)
	if len(w) > 0 || len(r) == 0 {
		if err := b.W.Send(ctx, b.H, w, a, len(r) > 0); err != nil {
			return err
		}
	}
	if len(r) == 0 {
		return nil
	}
	return b.W.Receive(ctx, b.H, r, a, false)
}
