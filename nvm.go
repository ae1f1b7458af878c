package stusb4500

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/jpillora/backoff"
)

const (
	// NVMSectors is the number of 64 bit sectors in the NVM.
	NVMSectors = 5

	// NVMSize is the size of an NVM image in bytes.
	NVMSize = NVMSectors * 8
)

// NVM is the content of the non-volatile memory, one 64 bit word per sector.
type NVM [NVMSectors]uint64

// FactoryNVM is the NVM content the STUSB4500 ships with.
var FactoryNVM = NVMFromBytes([NVMSize]byte{
	0xF0, 0x00, 0xB0, 0xAA, 0x00, 0x45, 0x00, 0x00,
	0x10, 0x40, 0x9C, 0x1C, 0xF0, 0x01, 0x00, 0xDF,
	0x02, 0x40, 0x0F, 0x00, 0x32, 0x00, 0xFC, 0xF1,
	0x00, 0x19, 0x54, 0xAF, 0xF5, 0x35, 0x5F, 0x00,
	0x00, 0x2D, 0x2C, 0x21, 0x43, 0x00, 0x40, 0xFB,
})

// Bytes serializes n with each sector little endian, in sector order.
func (n NVM) Bytes() [NVMSize]byte {
	var b [NVMSize]byte
	for i, s := range n {
		binary.LittleEndian.PutUint64(b[i*8:], s)
	}
	return b
}

// NVMFromBytes is the inverse of NVM.Bytes.
func NVMFromBytes(b [NVMSize]byte) NVM {
	var n NVM
	for i := range n {
		n[i] = binary.LittleEndian.Uint64(b[i*8:])
	}
	return n
}

// ParseNVM parses an NVM image written as hex. Octets may be prefixed with
// 0x and separated by whitespace, so the output of NVM.String is accepted.
func ParseNVM(s string) (NVM, error) {
	s = strings.NewReplacer("0x", "", "0X", "").Replace(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	data, err := hex.DecodeString(s)
	if err != nil {
		return NVM{}, fmt.Errorf("stusb4500: invalid nvm data: %w", err)
	}
	if len(data) != NVMSize {
		return NVM{}, &NVMSizeError{Size: len(data)}
	}
	var b [NVMSize]byte
	copy(b[:], data)
	return NVMFromBytes(b), nil
}

// String returns a hex dump of n, one sector per line.
func (n NVM) String() string {
	var sb strings.Builder
	b := n.Bytes()
	for i, v := range b {
		if i > 0 {
			if i%8 == 0 {
				sb.WriteByte('\n')
			} else {
				sb.WriteByte(' ')
			}
		}
		fmt.Fprintf(&sb, "0x%02X", v)
	}
	return sb.String()
}

// NVMStep is a step of the NVM programming sequence.
type NVMStep uint8

// NVM programming steps. Every NVM operation starts and, when the device is
// responsive, ends in NVMLocked.
const (
	NVMLocked NVMStep = iota
	NVMUnlocked
	NVMErasing
	NVMProgramming
	NVMReading
)

// NVMState is the last NVM state reached by a Dev. Sector is only meaningful
// while programming or reading.
type NVMState struct {
	Step   NVMStep
	Sector uint8
}

func (s NVMState) String() string {
	switch s.Step {
	case NVMLocked:
		return "locked"
	case NVMUnlocked:
		return "unlocked"
	case NVMErasing:
		return "erasing"
	case NVMProgramming:
		return fmt.Sprintf("programming sector %d", s.Sector)
	case NVMReading:
		return fmt.Sprintf("reading sector %d", s.Sector)
	default:
		return "INVALID"
	}
}

// NVMState returns the last NVM state reached. After a failed NVM operation
// it tells how far the sequence got, including whether the device was
// locked again.
func (d *Dev) NVMState() NVMState {
	return d.state
}

// ReadNVM reads all sectors of the NVM.
func (d *Dev) ReadNVM() (NVM, error) {
	var n NVM
	err := d.unlockedNVM(func() error {
		for s := range n {
			v, err := d.readNVMSector(uint8(s))
			if err != nil {
				return err
			}
			n[s] = v
		}
		return nil
	})
	if err != nil {
		return NVM{}, err
	}
	return n, nil
}

// ReadNVMBytes reads the NVM in its byte serialized form.
func (d *Dev) ReadNVMBytes() ([NVMSize]byte, error) {
	n, err := d.ReadNVM()
	if err != nil {
		return [NVMSize]byte{}, err
	}
	return n.Bytes(), nil
}

// WriteNVM erases the whole NVM and programs n into it. The new content only
// takes effect after the device is power cycled or reset.
//
// A failed write may leave the NVM erased or partially programmed. The caller
// should repeat the full write once the bus is usable again.
func (d *Dev) WriteNVM(n NVM) error {
	return d.unlockedNVM(func() error {
		if err := d.eraseNVM(); err != nil {
			return err
		}
		for s, v := range n {
			if err := d.writeNVMSector(uint8(s), v); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteNVMBytes writes an NVM image in its byte serialized form.
func (d *Dev) WriteNVMBytes(b [NVMSize]byte) error {
	return d.WriteNVM(NVMFromBytes(b))
}

// unlockedNVM runs op between unlocking and locking the NVM. op is skipped if
// unlocking fails. Locking is always attempted and its error is returned
// alongside any earlier one.
func (d *Dev) unlockedNVM(op func() error) error {
	err := d.setNVMLock(false)
	if err == nil {
		err = op()
	}
	if lerr := d.setNVMLock(true); lerr != nil {
		return errors.Join(err, lerr)
	}
	return err
}

func (d *Dev) setNVMLock(lock bool) error {
	pw, next := uint8(nvmPasswordUnlock), NVMState{Step: NVMUnlocked}
	if lock {
		pw, next = nvmPasswordLock, NVMState{Step: NVMLocked}
	}
	if err := d.writeByte(RegPassword, pw); err != nil {
		return err
	}
	if err := d.nvmWait(); err != nil {
		return err
	}
	d.state = next
	return nil
}

// eraseNVM erases all sectors. Sectors are soft programmed before the erase
// as required by the device.
func (d *Dev) eraseNVM() error {
	d.state = NVMState{Step: NVMErasing}
	if err := d.nvmCommand(nvmCmdWriteSER|nvmSERAll, 0); err != nil {
		return err
	}
	if err := d.nvmCommand(nvmCmdSoftProgSector, 0); err != nil {
		return err
	}
	return d.nvmCommand(nvmCmdEraseSector, 0)
}

func (d *Dev) writeNVMSector(sector uint8, v uint64) error {
	d.state = NVMState{Step: NVMProgramming, Sector: sector}
	if err := d.writeDoubleWord(RegRWBuffer, v); err != nil {
		return err
	}
	if err := d.nvmCommand(nvmCmdWritePL, 0); err != nil {
		return err
	}
	return d.nvmCommand(nvmCmdProgSector, sector)
}

func (d *Dev) readNVMSector(sector uint8) (uint64, error) {
	d.state = NVMState{Step: NVMReading, Sector: sector}
	if err := d.nvmCommand(nvmCmdRead, sector); err != nil {
		return 0, err
	}
	return d.readDoubleWord(RegRWBuffer)
}

// nvmCommand loads cmd into FTP_CTRL_1, starts it on sector and waits for it
// to complete.
func (d *Dev) nvmCommand(cmd, sector uint8) error {
	if err := d.writeByte(RegCTRL1, cmd); err != nil {
		return err
	}
	if err := d.writeByte(RegCTRL0, ctrl0Default|(sector&ctrl0Sector)); err != nil {
		return err
	}
	return d.nvmWait()
}

// nvmWait polls FTP_CTRL_0 until the request bit clears.
func (d *Dev) nvmWait() error {
	var b *backoff.Backoff
	if d.cfg.pollMin > 0 {
		b = &backoff.Backoff{Min: d.cfg.pollMin, Max: d.cfg.pollMax, Factor: 2}
	}
	for polls := 1; ; polls++ {
		v, err := d.readByte(RegCTRL0)
		if err != nil {
			return err
		}
		if v&ctrl0Request == 0 {
			return nil
		}
		if d.cfg.maxPolls > 0 && polls >= d.cfg.maxPolls {
			return &PollTimeoutError{State: d.state, Polls: polls}
		}
		if b != nil {
			time.Sleep(b.Duration())
		}
	}
}
