package stusb4500

import (
	"errors"
	"testing"

	"periph.io/x/conn/v3/i2c/i2ctest"
)

const testAddr = uint16(DefaultAddress)

func writeOp(b ...byte) i2ctest.IO {
	return i2ctest.IO{Addr: testAddr, W: b}
}

func readOps(r Register, data ...byte) []i2ctest.IO {
	return []i2ctest.IO{
		{Addr: testAddr, W: []byte{byte(r)}},
		{Addr: testAddr, R: data},
	}
}

func newPlayback(t *testing.T, ops ...[]i2ctest.IO) (*Dev, *i2ctest.Playback) {
	t.Helper()
	p := &i2ctest.Playback{}
	for _, o := range ops {
		p.Ops = append(p.Ops, o...)
	}
	d, err := New(p, DefaultAddress)
	if err != nil {
		t.Fatal(err)
	}
	return d, p
}

func closePlayback(t *testing.T, p *i2ctest.Playback) {
	t.Helper()
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
}

type failBus struct {
	err error
}

func (f failBus) Tx(uint16, []byte, []byte) error {
	return f.err
}

func TestRegisterReads(t *testing.T) {
	d, p := newPlayback(t,
		readOps(RegCTRL0, 0x5A),
		readOps(RegRDOStatus, 0x01, 0x02, 0x03, 0x04),
		readOps(RegRWBuffer, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08),
	)
	b, err := d.readByte(RegCTRL0)
	if err != nil || b != 0x5A {
		t.Errorf("readByte() = %#x, %v", b, err)
	}
	w, err := d.readWord(RegRDOStatus)
	if err != nil || w != 0x04030201 {
		t.Errorf("readWord() = %#x, %v", w, err)
	}
	dw, err := d.readDoubleWord(RegRWBuffer)
	if err != nil || dw != 0x0807060504030201 {
		t.Errorf("readDoubleWord() = %#x, %v", dw, err)
	}
	closePlayback(t, p)
}

func TestRegisterWrites(t *testing.T) {
	d, p := newPlayback(t, []i2ctest.IO{
		writeOp(0x97, 0xFA),
		writeOp(0x85, 0x96, 0x90, 0x01, 0x00),
		writeOp(0x53, 0xF0, 0x00, 0xB0, 0xAA, 0x00, 0x45, 0x00, 0x00),
	})
	if err := d.writeByte(RegCTRL1, 0xFA); err != nil {
		t.Fatal(err)
	}
	if err := d.writeWord(RegDPMSNKPDO1, 0x00019096); err != nil {
		t.Fatal(err)
	}
	if err := d.writeDoubleWord(RegRWBuffer, 0x00004500AAB000F0); err != nil {
		t.Fatal(err)
	}
	closePlayback(t, p)
}

func TestTransportError(t *testing.T) {
	busErr := errors.New("bus stuck")
	d, err := New(failBus{busErr}, DefaultAddress)
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name string
		op   Register
		kind string
		fn   func() error
	}{
		{"readByte", RegCTRL0, "select", func() error { _, err := d.readByte(RegCTRL0); return err }},
		{"readWord", RegRDOStatus, "select", func() error { _, err := d.readWord(RegRDOStatus); return err }},
		{"writeDoubleWord", RegRWBuffer, "write", func() error { return d.writeDoubleWord(RegRWBuffer, 1) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.fn()
			if !errors.Is(err, busErr) {
				t.Fatalf("error = %v, want wrapped %v", err, busErr)
			}
			var te *TransportError
			if !errors.As(err, &te) {
				t.Fatalf("error %T is not a *TransportError", err)
			}
			if te.Register != tt.op || te.Op != tt.kind {
				t.Errorf("TransportError = %+v, want %s on %s", te, tt.kind, tt.op)
			}
		})
	}
}

func TestRegisterString(t *testing.T) {
	if got := RegCTRL0.String(); got != "FTP_CTRL_0" {
		t.Errorf("String() = %q", got)
	}
	if got := Register(0x42).String(); got != "0x42" {
		t.Errorf("String() = %q", got)
	}
}
