// Package stusb4500test provides an in-memory STUSB4500 for testing drivers
// without hardware.
//
// Device answers register reads and writes like the real chip, including
// auto-incrementing multi-byte access, read-to-clear status registers and the
// NVM command interface behind FTP_CTRL_0/FTP_CTRL_1.
package stusb4500test

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
)

// Register addresses understood by the simulator.
const (
	regAlertStatus1   = 0x0B
	regPortStatus0    = 0x0D
	regTypeCMonStat0  = 0x0F
	regCCHWFaultStat0 = 0x12
	regDeviceID       = 0x2F
	regRWBuffer       = 0x53
	regDPMPDONumb     = 0x70
	regPassword       = 0x95
	regCTRL0          = 0x96
	regCTRL1          = 0x97

	ctrl0Request = 1 << 4
	ctrl0Sector  = 0b111

	unlockPassword = 0x47
)

const (
	cmdRead           = 0x00
	cmdWritePL        = 0x01
	cmdWriteSER       = 0x02
	cmdEraseSector    = 0x05
	cmdProgSector     = 0x06
	cmdSoftProgSector = 0x07
)

// Sectors is the number of NVM sectors.
const Sectors = 5

// Registers cleared when read.
var clearOnRead = map[uint8]bool{
	regAlertStatus1:   true,
	regPortStatus0:    true,
	regTypeCMonStat0:  true,
	regCCHWFaultStat0: true,
}

// ErrNACK is returned when a transaction targets another address.
var ErrNACK = errors.New("stusb4500test: address not acknowledged")

// Device is a simulated STUSB4500. The zero value is not usable, use
// NewDevice.
type Device struct {
	sync.Mutex

	Addr uint16

	// Regs is the register file.
	Regs [256]byte

	// NVM holds the content of the five NVM sectors.
	NVM [Sectors]uint64

	// BusyPolls is how many reads of FTP_CTRL_0 keep reporting the request
	// bit after an NVM command starts. Negative keeps it set forever.
	BusyPolls int

	// FailAt makes the FailAt-th transaction (counting from 1) return Err.
	FailAt int
	Err    error

	// Counters.
	Transactions int
	Writes       int // transactions with a write phase
	Polls        int // reads of FTP_CTRL_0

	ptr     uint8
	busy    int
	latch   uint64
	ser     uint8 // sector erase register, one bit per sector
	softPrg uint8 // sectors soft programmed since the last erase
	erased  uint8 // sectors erased and not yet programmed
}

// NewDevice returns a simulated device answering on addr.
func NewDevice(addr uint16) *Device {
	d := &Device{Addr: addr}
	d.Regs[regDeviceID] = 0x25
	d.Regs[regDPMPDONumb] = 3
	return d
}

// Word returns the 32 bit little endian value of register r.
func (d *Device) Word(r uint8) uint32 {
	d.Lock()
	defer d.Unlock()
	return binary.LittleEndian.Uint32(d.Regs[r : int(r)+4])
}

// SetWord sets the 32 bit little endian value of register r.
func (d *Device) SetWord(r uint8, v uint32) {
	d.Lock()
	defer d.Unlock()
	binary.LittleEndian.PutUint32(d.Regs[r:int(r)+4], v)
}

// Locked returns true if the NVM password is not set.
func (d *Device) Locked() bool {
	d.Lock()
	defer d.Unlock()
	return d.Regs[regPassword] != unlockPassword
}

// Tx implements the I²C transaction used by the driver. A write of a single
// byte sets the register pointer; longer writes store data from w[0] on. A
// read returns registers from the pointer on.
func (d *Device) Tx(addr uint16, w, r []byte) error {
	d.Lock()
	defer d.Unlock()
	d.Transactions++
	if d.FailAt > 0 && d.Transactions == d.FailAt {
		if d.Err != nil {
			return d.Err
		}
		return fmt.Errorf("stusb4500test: injected failure on transaction %d", d.Transactions)
	}
	if addr != d.Addr {
		return ErrNACK
	}
	if len(w) > 0 {
		d.Writes++
		d.ptr = w[0]
		for i, b := range w[1:] {
			d.store(w[0]+uint8(i), b)
		}
	}
	for i := range r {
		r[i] = d.load(d.ptr + uint8(i))
	}
	return nil
}

func (d *Device) store(reg, v uint8) {
	d.Regs[reg] = v
	if reg == regCTRL0 && v&ctrl0Request != 0 {
		d.startCommand()
	}
}

func (d *Device) load(reg uint8) uint8 {
	if reg == regCTRL0 {
		d.Polls++
		if d.busy > 0 {
			d.busy--
		} else if d.busy == 0 {
			d.Regs[regCTRL0] &^= ctrl0Request
		}
	}
	v := d.Regs[reg]
	if clearOnRead[reg] {
		d.Regs[reg] = 0
	}
	return v
}

// startCommand runs the NVM command in FTP_CTRL_1 immediately. Only the
// completion signal is delayed by BusyPolls.
func (d *Device) startCommand() {
	d.busy = d.BusyPolls
	if d.Regs[regPassword] != unlockPassword {
		return
	}
	sector := d.Regs[regCTRL0] & ctrl0Sector
	buf := d.Regs[regRWBuffer : regRWBuffer+8]
	switch cmd := d.Regs[regCTRL1] & 0b111; cmd {
	case cmdRead:
		if sector < Sectors {
			binary.LittleEndian.PutUint64(buf, d.NVM[sector])
		}
	case cmdWritePL:
		d.latch = binary.LittleEndian.Uint64(buf)
	case cmdWriteSER:
		d.ser = d.Regs[regCTRL1] >> 3
	case cmdSoftProgSector:
		d.softPrg |= d.ser
	case cmdEraseSector:
		for s := uint8(0); s < Sectors; s++ {
			if d.ser&(1<<s) != 0 && d.softPrg&(1<<s) != 0 {
				d.NVM[s] = 0
				d.erased |= 1 << s
			}
		}
		d.softPrg = 0
	case cmdProgSector:
		if sector < Sectors {
			// Programming can only set bits of an erased sector.
			if d.erased&(1<<sector) != 0 {
				d.NVM[sector] = d.latch
				d.erased &^= 1 << sector
			} else {
				d.NVM[sector] |= d.latch
			}
		}
	}
}
