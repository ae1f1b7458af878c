// Package pdo encodes and decodes the USB Power Delivery data objects held in
// the sink PDO and RDO registers of the STUSB4500.
//
// Only the Fixed supply shape can be written to the device. Other shapes are
// representable so that they can be recognised and rejected.
package pdo

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3/physic"
)

var (
	// ErrInvalid is returned when a data object is not a Fixed supply PDO.
	ErrInvalid = errors.New("stusb4500: invalid pdo")

	// ErrOutOfRange is returned when a value does not fit its bit field.
	ErrOutOfRange = errors.New("stusb4500: value out of range")
)

const (
	voltageStep = 50 * physic.MilliVolt
	currentStep = 10 * physic.MilliAmpere
	powerStep   = 250 * physic.MilliWatt

	fieldMax = 1<<10 - 1 // voltage, current and power fields are all 10 bits
)

// PDO is a generic Power Data Object as stored on the wire. Based on its type,
// it should be converted to a specific PDO type to extract fields.
type PDO uint32

// Type returns the type of the power data object.
func (o PDO) Type() Type {
	h := (o >> 30) & 0b11
	if h == 0b11 {
		return Type((((o >> 28) & 0b11) << 3) | 0b100 | h)
	}
	return Type(h)
}

func (o PDO) String() string {
	switch o.Type() {
	case TypeFixedSupply:
		f, _ := Decode(o)
		return f.String()
	case TypeVariableSupply:
		v := VariablePDO(o)
		return fmt.Sprintf("Variable %.2f-%.2fV @ %.2fA (not supported)",
			float32(v.MinVoltage())/1000, float32(v.MaxVoltage())/1000, float32(v.Current())/1000)
	case TypeBattery:
		b := BatteryPDO(o)
		return fmt.Sprintf("Battery %.2f-%.2fV @ %.2fW (not supported)",
			float32(b.MinVoltage())/1000, float32(b.MaxVoltage())/1000, float32(b.Power())/1000)
	case TypePPS:
		return "Programmable (not supported)"
	case TypeEPRAVS:
		return "EPRAVS (not supported)"
	default:
		return "INVALID!"
	}
}

// Type represents the type of a power data object.
type Type uint8

// Power data object types.
const (
	TypeFixedSupply    Type = 0b00
	TypeBattery        Type = 0b01
	TypeVariableSupply Type = 0b10
	TypePPS            Type = 0b00111 // augmented PDO, value specific to this package
	TypeEPRAVS         Type = 0b01111 // augmented PDO, value specific to this package
)

// FixedFlags holds the capability bits of a Fixed sink PDO (bits 29 to 23 of
// the wire word, shifted down to bit 0). The two lowest bits hold the fast
// role swap required current.
type FixedFlags uint8

// Capability bits of a Fixed sink PDO.
const (
	FlagDualRoleData FixedFlags = 1 << (iota + 2)
	FlagUSBCommunicationsCapable
	FlagUnconstrainedPower
	FlagHigherCapability
	FlagDualRolePower

	flagsMax FixedFlags = 1<<7 - 1
)

// Has returns true if all flags in v are set.
func (f FixedFlags) Has(v FixedFlags) bool {
	return f&v == v
}

// FastRoleSwap returns the fast role swap required current field.
func (f FixedFlags) FastRoleSwap() FastRoleSwap {
	return FastRoleSwap(f & 0b11)
}

// SetFastRoleSwap sets the fast role swap required current field.
func (f *FixedFlags) SetFastRoleSwap(s FastRoleSwap) {
	*f = (*f &^ 0b11) | FixedFlags(s&0b11)
}

func (f FixedFlags) String() string {
	s := ""
	for _, n := range []struct {
		flag FixedFlags
		name string
	}{
		{FlagDualRolePower, "DRP"},
		{FlagHigherCapability, "HigherCap"},
		{FlagUnconstrainedPower, "Unconstrained"},
		{FlagUSBCommunicationsCapable, "USBComm"},
		{FlagDualRoleData, "DRD"},
	} {
		if f.Has(n.flag) {
			if s != "" {
				s += "|"
			}
			s += n.name
		}
	}
	if frs := f.FastRoleSwap(); frs != FastRoleSwapNone {
		if s != "" {
			s += "|"
		}
		s += "FRS:" + frs.String()
	}
	if s == "" {
		return "none"
	}
	return s
}

// FastRoleSwap is the current a sink needs from the new source after a fast
// role swap.
type FastRoleSwap uint8

// Fast role swap required currents.
const (
	FastRoleSwapNone    FastRoleSwap = 0b00
	FastRoleSwapDefault FastRoleSwap = 0b01
	FastRoleSwap1A5     FastRoleSwap = 0b10
	FastRoleSwap3A0     FastRoleSwap = 0b11
)

func (s FastRoleSwap) String() string {
	switch s {
	case FastRoleSwapNone:
		return "None"
	case FastRoleSwapDefault:
		return "Default"
	case FastRoleSwap1A5:
		return "1.5A"
	default:
		return "3A"
	}
}

// Fixed is a decoded Fixed supply sink PDO. Voltage and Current are in device
// units: 50mV and 10mA steps respectively.
type Fixed struct {
	Voltage uint16
	Current uint16
	Flags   FixedFlags
}

// EncodeFixed packs a Fixed supply PDO. Voltage and current are in device
// units and must fit in 10 bits, flags in 7 bits. Out of range values yield
// ErrOutOfRange instead of being truncated.
func EncodeFixed(voltage, current uint16, flags FixedFlags) (PDO, error) {
	if voltage > fieldMax || current > fieldMax || flags > flagsMax {
		return 0, ErrOutOfRange
	}
	return PDO(uint32(flags)<<23 | uint32(voltage)<<10 | uint32(current)), nil
}

// NewFixed returns a Fixed PDO from physical values, rounded down to the
// nearest 50mV and 10mA.
func NewFixed(v physic.ElectricPotential, c physic.ElectricCurrent, flags FixedFlags) (Fixed, error) {
	if v < 0 || c < 0 || v/voltageStep > fieldMax || c/currentStep > fieldMax || flags > flagsMax {
		return Fixed{}, ErrOutOfRange
	}
	return Fixed{
		Voltage: uint16(v / voltageStep),
		Current: uint16(c / currentStep),
		Flags:   flags,
	}, nil
}

// Encode packs f into its wire representation.
func (f Fixed) Encode() (PDO, error) {
	return EncodeFixed(f.Voltage, f.Current, f.Flags)
}

// Decode unpacks a Fixed supply PDO. ErrInvalid is returned for any other
// type of PDO. Every word carrying the Fixed type decodes successfully.
func Decode(o PDO) (Fixed, error) {
	if o.Type() != TypeFixedSupply {
		return Fixed{}, ErrInvalid
	}
	return Fixed{
		Voltage: uint16((o >> 10) & fieldMax),
		Current: uint16(o & fieldMax),
		Flags:   FixedFlags((o >> 23) & PDO(flagsMax)),
	}, nil
}

// Potential returns the voltage of f.
func (f Fixed) Potential() physic.ElectricPotential {
	return physic.ElectricPotential(f.Voltage) * voltageStep
}

// MaxCurrent returns the operational current of f.
func (f Fixed) MaxCurrent() physic.ElectricCurrent {
	return physic.ElectricCurrent(f.Current) * currentStep
}

func (f Fixed) String() string {
	return fmt.Sprintf("Fixed %.2fV @ max. %.2fA [%s]",
		float64(f.Potential())/float64(physic.Volt), float64(f.MaxCurrent())/float64(physic.Ampere), f.Flags)
}

// VariablePDO represents a Variable Supply sink Power Data Object.
type VariablePDO uint32

// NewVariablePDO returns a new blank VariablePDO.
func NewVariablePDO() VariablePDO {
	return VariablePDO(TypeVariableSupply) << 30
}

// MaxVoltage returns maximum voltage in millivolts.
func (o VariablePDO) MaxVoltage() uint16 {
	return uint16(((o >> 20) & fieldMax) * 50)
}

// SetMaxVoltage will round the given voltage down to the nearest 50mV.
func (o *VariablePDO) SetMaxVoltage(v uint16) {
	*o = (*o & ^(VariablePDO(fieldMax) << 20)) | ((VariablePDO(v)/50)&fieldMax)<<20
}

// MinVoltage returns minimum voltage in millivolts.
func (o VariablePDO) MinVoltage() uint16 {
	return uint16(((o >> 10) & fieldMax) * 50)
}

// SetMinVoltage will round the given voltage down to the nearest 50mV.
func (o *VariablePDO) SetMinVoltage(v uint16) {
	*o = (*o & ^(VariablePDO(fieldMax) << 10)) | ((VariablePDO(v)/50)&fieldMax)<<10
}

// Current returns operational current in milliamps.
func (o VariablePDO) Current() uint16 {
	return uint16((o & fieldMax) * 10)
}

// SetCurrent will round the given current down to the nearest 10mA.
func (o *VariablePDO) SetCurrent(c uint16) {
	*o = (*o & ^VariablePDO(fieldMax)) | (VariablePDO(c)/10)&fieldMax
}

// BatteryPDO represents a Battery Supply sink Power Data Object.
type BatteryPDO uint32

// NewBatteryPDO returns a new blank BatteryPDO.
func NewBatteryPDO() BatteryPDO {
	return BatteryPDO(TypeBattery) << 30
}

// MaxVoltage returns maximum voltage in millivolts.
func (o BatteryPDO) MaxVoltage() uint16 {
	return uint16(((o >> 20) & fieldMax) * 50)
}

// SetMaxVoltage will round the given voltage down to the nearest 50mV.
func (o *BatteryPDO) SetMaxVoltage(v uint16) {
	*o = (*o & ^(BatteryPDO(fieldMax) << 20)) | ((BatteryPDO(v)/50)&fieldMax)<<20
}

// MinVoltage returns minimum voltage in millivolts.
func (o BatteryPDO) MinVoltage() uint16 {
	return uint16(((o >> 10) & fieldMax) * 50)
}

// SetMinVoltage will round the given voltage down to the nearest 50mV.
func (o *BatteryPDO) SetMinVoltage(v uint16) {
	*o = (*o & ^(BatteryPDO(fieldMax) << 10)) | ((BatteryPDO(v)/50)&fieldMax)<<10
}

// Power returns operational power in milliwatts.
func (o BatteryPDO) Power() uint32 {
	return uint32(o&fieldMax) * uint32(powerStep/physic.MilliWatt)
}

// SetPower will round the given power down to the nearest 250mW.
func (o *BatteryPDO) SetPower(p uint32) {
	*o = (*o & ^BatteryPDO(fieldMax)) | BatteryPDO(p/250)&fieldMax
}
