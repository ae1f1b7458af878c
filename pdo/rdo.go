package pdo

import (
	"fmt"

	"periph.io/x/conn/v3/physic"
)

// RDO represents the Request Data Object of the contract currently
// negotiated with the source. It is read-only telemetry, so any bit pattern
// is accepted.
type RDO uint32

// ObjectPosition returns the position number of the requested PDO in the
// source capability message, starting at 1. Zero means no contract.
func (o RDO) ObjectPosition() uint8 {
	return uint8((o >> 28) & 0b111)
}

// GiveBack returns true if the give back flag is set.
func (o RDO) GiveBack() bool {
	return o&(1<<27) != 0
}

// CapabilityMismatch returns true if the sink reported that none of the
// source capabilities satisfied it.
func (o RDO) CapabilityMismatch() bool {
	return o&(1<<26) != 0
}

// USBCommunicationsCapable returns true if the sink has USB data lines.
func (o RDO) USBCommunicationsCapable() bool {
	return o&(1<<25) != 0
}

// NoUSBSuspend returns true if the sink requested not to be suspended.
func (o RDO) NoUSBSuspend() bool {
	return o&(1<<24) != 0
}

// UnchunkedExtendedMessages returns true if unchunked extended messages are
// supported.
func (o RDO) UnchunkedExtendedMessages() bool {
	return o&(1<<23) != 0
}

// OperatingCurrent returns the requested operating current.
func (o RDO) OperatingCurrent() physic.ElectricCurrent {
	return physic.ElectricCurrent((o>>10)&fieldMax) * currentStep
}

// MaxOperatingCurrent returns the requested maximum operating current.
func (o RDO) MaxOperatingCurrent() physic.ElectricCurrent {
	return physic.ElectricCurrent(o&fieldMax) * currentStep
}

func (o RDO) String() string {
	if o.ObjectPosition() == 0 {
		return "no contract"
	}
	var mismatch string
	if o.CapabilityMismatch() {
		mismatch = " (capability mismatch)"
	}
	return fmt.Sprintf("PDO #%d @ %.2fA (max. %.2fA)%s", o.ObjectPosition(),
		float64(o.OperatingCurrent())/float64(physic.Ampere),
		float64(o.MaxOperatingCurrent())/float64(physic.Ampere), mismatch)
}
