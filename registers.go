package stusb4500

import (
	"encoding/binary"
	"fmt"
)

// Register is the address of a STUSB4500 register. Values match the
// datasheet register map and must never change.
type Register uint8

// Registers used by the driver.
const (
	RegAlertStatus1     Register = 0x0B
	RegAlertStatus1Mask Register = 0x0C
	RegPortStatus0      Register = 0x0D
	RegPortStatus1      Register = 0x0E
	RegPDCommandCtrl    Register = 0x1A
	RegDeviceID         Register = 0x2F
	RegTXHeaderL        Register = 0x51
	RegRWBuffer         Register = 0x53
	RegDPMPDONumb       Register = 0x70
	RegDPMSNKPDO1       Register = 0x85
	RegDPMSNKPDO2       Register = 0x89
	RegDPMSNKPDO3       Register = 0x8D
	RegRDOStatus        Register = 0x91
	RegPassword         Register = 0x95
	RegCTRL0            Register = 0x96
	RegCTRL1            Register = 0x97
)

func (r Register) String() string {
	switch r {
	case RegAlertStatus1:
		return "ALERT_STATUS_1"
	case RegAlertStatus1Mask:
		return "ALERT_STATUS_1_MASK"
	case RegPortStatus0:
		return "PORT_STATUS_0"
	case RegPortStatus1:
		return "PORT_STATUS_1"
	case RegPDCommandCtrl:
		return "PD_COMMAND_CTRL"
	case RegDeviceID:
		return "DEVICE_ID"
	case RegTXHeaderL:
		return "TX_HEADER_LOW"
	case RegRWBuffer:
		return "RW_BUFFER"
	case RegDPMPDONumb:
		return "DPM_PDO_NUMB"
	case RegDPMSNKPDO1:
		return "DPM_SNK_PDO1"
	case RegDPMSNKPDO2:
		return "DPM_SNK_PDO2"
	case RegDPMSNKPDO3:
		return "DPM_SNK_PDO3"
	case RegRDOStatus:
		return "RDO_REG_STATUS"
	case RegPassword:
		return "FTP_CUST_PASSWORD"
	case RegCTRL0:
		return "FTP_CTRL_0"
	case RegCTRL1:
		return "FTP_CTRL_1"
	default:
		return fmt.Sprintf("0x%02X", uint8(r))
	}
}

// FTP_CTRL_0 bits.
const (
	ctrl0Power   = 1 << 7
	ctrl0ResetN  = 1 << 6
	ctrl0Request = 1 << 4 // set to start a command, cleared by the device when done
	ctrl0Sector  = 0b111

	ctrl0Default = ctrl0Power | ctrl0ResetN | ctrl0Request
)

// FTP_CTRL_1 NVM opcodes.
const (
	nvmCmdRead           = 0x00
	nvmCmdWritePL        = 0x01 // load RW_BUFFER into the program latches
	nvmCmdWriteSER       = 0x02 // write the sector erase register
	nvmCmdReadPL         = 0x03
	nvmCmdReadSER        = 0x04
	nvmCmdEraseSector    = 0x05
	nvmCmdProgSector     = 0x06
	nvmCmdSoftProgSector = 0x07

	nvmSERAll = 0xF8 // sector erase mask selecting all five sectors
)

const (
	nvmPasswordUnlock = 0x47
	nvmPasswordLock   = 0x00
)

// Values written by SoftReset.
const (
	txHeaderSoftReset = 0x0D
	pdCommandSendMsg  = 0x26
)

// Number of interrupt status registers starting at PORT_STATUS_0 that are
// read to clear pending interrupts.
const interruptRegs = 10

func (d *Dev) readByte(r Register) (uint8, error) {
	var buf [1]byte
	if err := d.readRegister(r, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func (d *Dev) readWord(r Register) (uint32, error) {
	var buf [4]byte
	if err := d.readRegister(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

func (d *Dev) readDoubleWord(r Register) (uint64, error) {
	var buf [8]byte
	if err := d.readRegister(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

func (d *Dev) writeByte(r Register, v uint8) error {
	d.buf[0] = byte(r)
	d.buf[1] = v
	return d.tx("write", r, d.buf[:2], nil)
}

func (d *Dev) writeWord(r Register, v uint32) error {
	d.buf[0] = byte(r)
	binary.LittleEndian.PutUint32(d.buf[1:], v)
	return d.tx("write", r, d.buf[:5], nil)
}

func (d *Dev) writeDoubleWord(r Register, v uint64) error {
	d.buf[0] = byte(r)
	binary.LittleEndian.PutUint64(d.buf[1:], v)
	return d.tx("write", r, d.buf[:9], nil)
}

// readRegister selects r and then reads len(p) bytes starting at r into p.
func (d *Dev) readRegister(r Register, p []byte) error {
	d.buf[0] = byte(r)
	if err := d.tx("select", r, d.buf[:1], nil); err != nil {
		return err
	}
	return d.tx("read", r, nil, p)
}

func (d *Dev) tx(op string, r Register, w, p []byte) error {
	if err := d.bus.Tx(uint16(d.addr), w, p); err != nil {
		return &TransportError{Op: op, Register: r, Err: err}
	}
	return nil
}
