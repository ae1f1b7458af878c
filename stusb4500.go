// Package stusb4500 implements a driver for the STUSB4500 USB Type-C Power
// Delivery sink controller from STMicroelectronics.
//
// The STUSB4500 negotiates power autonomously based on up to three sink PDOs.
// This driver reads and changes those PDOs at runtime, reads the negotiated
// RDO, handles alerts and programs the non-volatile memory which holds the
// power-on defaults.
//
// All methods block on the I²C bus. A Dev is not safe for concurrent use.
package stusb4500

import (
	"github.com/oxplot/go-stusb4500/pdo"
)

// PDOChannel selects one of the three sink PDO registers.
type PDOChannel uint8

// Sink PDO channels. PDO1 is always 5V.
const (
	PDO1 PDOChannel = iota
	PDO2
	PDO3
)

func (c PDOChannel) register() (Register, bool) {
	switch c {
	case PDO1:
		return RegDPMSNKPDO1, true
	case PDO2:
		return RegDPMSNKPDO2, true
	case PDO3:
		return RegDPMSNKPDO3, true
	}
	return 0, false
}

// Dev is a handle to a STUSB4500.
type Dev struct {
	bus   I2C
	addr  Address
	cfg   config
	state NVMState

	// Write buffer reused by register writes: register address plus up to 8
	// bytes of data.
	buf [9]byte
}

// New returns a driver for the STUSB4500 at addr on bus. No bus transaction
// is made.
func New(bus I2C, addr Address, opts ...Option) (*Dev, error) {
	if !addr.Valid() {
		return nil, ErrOutOfRange
	}
	d := &Dev{bus: bus, addr: addr}
	for _, o := range opts {
		o(&d.cfg)
	}
	return d, nil
}

// Addr returns the I²C address of the device.
func (d *Dev) Addr() Address {
	return d.addr
}

// DeviceID returns the content of the DEVICE_ID register.
func (d *Dev) DeviceID() (uint8, error) {
	return d.readByte(RegDeviceID)
}

// ClearInterrupts reads all interrupt status registers, which clears any
// pending interrupt.
func (d *Dev) ClearInterrupts() error {
	var regs [interruptRegs]byte
	return d.readRegister(RegPortStatus0, regs[:])
}

// SetAlertsMask sets the alert mask. A set bit prevents the corresponding
// alert from asserting the ALERT pin.
func (d *Dev) SetAlertsMask(mask Alert) error {
	return d.writeByte(RegAlertStatus1Mask, uint8(mask))
}

// GetAlerts returns the active alerts. Reading clears them on the device.
func (d *Dev) GetAlerts() (Alert, error) {
	v, err := d.readByte(RegAlertStatus1)
	if err != nil {
		return AlertNone, err
	}
	return Alert(v) & alertAll, nil
}

// SoftReset sends a soft reset message to the source which triggers a new
// power negotiation using the current sink PDOs. It does not wait for the
// negotiation to complete.
func (d *Dev) SoftReset() error {
	if err := d.writeByte(RegTXHeaderL, txHeaderSoftReset); err != nil {
		return err
	}
	return d.writeByte(RegPDCommandCtrl, pdCommandSendMsg)
}

// SetPDO writes p to the sink PDO register of channel ch. Only Fixed supply
// PDOs are accepted, anything else yields ErrInvalidPDO without touching the
// device. The change takes effect on the next negotiation (see SoftReset).
func (d *Dev) SetPDO(ch PDOChannel, p pdo.PDO) error {
	if p.Type() != pdo.TypeFixedSupply {
		return ErrInvalidPDO
	}
	r, ok := ch.register()
	if !ok {
		return ErrOutOfRange
	}
	return d.writeWord(r, uint32(p))
}

// SetFixedPDO encodes f and writes it to channel ch.
func (d *Dev) SetFixedPDO(ch PDOChannel, f pdo.Fixed) error {
	p, err := f.Encode()
	if err != nil {
		return err
	}
	return d.SetPDO(ch, p)
}

// GetPDO reads the sink PDO of channel ch.
func (d *Dev) GetPDO(ch PDOChannel) (pdo.Fixed, error) {
	r, ok := ch.register()
	if !ok {
		return pdo.Fixed{}, ErrOutOfRange
	}
	v, err := d.readWord(r)
	if err != nil {
		return pdo.Fixed{}, err
	}
	return pdo.Decode(pdo.PDO(v))
}

// GetCurrentRDO returns the request data object of the current contract.
func (d *Dev) GetCurrentRDO() (pdo.RDO, error) {
	v, err := d.readWord(RegRDOStatus)
	if err != nil {
		return 0, err
	}
	return pdo.RDO(v), nil
}

// SetPDOCount sets how many sink PDOs, starting at PDO1, are advertised.
// n must be between 1 and 3.
func (d *Dev) SetPDOCount(n uint8) error {
	if n < 1 || n > 3 {
		return ErrOutOfRange
	}
	return d.writeByte(RegDPMPDONumb, n)
}

// PDOCount returns how many sink PDOs are advertised.
func (d *Dev) PDOCount() (uint8, error) {
	v, err := d.readByte(RegDPMPDONumb)
	return v & 0b111, err
}
