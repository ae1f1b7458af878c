package pdo

import (
	"errors"
	"testing"

	"periph.io/x/conn/v3/physic"
)

func TestEncodeFixedKnownWords(t *testing.T) {
	tests := []struct {
		name    string
		voltage uint16
		current uint16
		flags   FixedFlags
		want    PDO
	}{
		{"5V 1.5A", 100, 150, 0, 0x00019096},
		{"5V 3A usb comm", 100, 300, FlagUSBCommunicationsCapable, 0x0401912C},
		{"20V 5A", 400, 500, 0, 0x000641F4},
		{"all flags", 0, 0, flagsMax, 0x3F800000},
		{"max fields", fieldMax, fieldMax, 0, 0x000FFFFF},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodeFixed(tt.voltage, tt.current, tt.flags)
			if err != nil {
				t.Fatalf("EncodeFixed() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("EncodeFixed() = %#08x, want %#08x", uint32(got), uint32(tt.want))
			}
			if got.Type() != TypeFixedSupply {
				t.Errorf("Type() = %v, want fixed", got.Type())
			}
		})
	}
}

func TestEncodeFixedOutOfRange(t *testing.T) {
	tests := []struct {
		name    string
		voltage uint16
		current uint16
		flags   FixedFlags
	}{
		{"voltage", fieldMax + 1, 0, 0},
		{"current", 0, fieldMax + 1, 0},
		{"flags", 0, 0, flagsMax + 1},
		{"all", 0xFFFF, 0xFFFF, 0xFF},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := EncodeFixed(tt.voltage, tt.current, tt.flags); !errors.Is(err, ErrOutOfRange) {
				t.Errorf("EncodeFixed() error = %v, want ErrOutOfRange", err)
			}
		})
	}
}

func TestFixedRoundTrip(t *testing.T) {
	for v := uint16(0); v <= fieldMax; v += 31 {
		for c := uint16(0); c <= fieldMax; c += 37 {
			for f := FixedFlags(0); f <= flagsMax; f += 9 {
				w, err := EncodeFixed(v, c, f)
				if err != nil {
					t.Fatalf("EncodeFixed(%d, %d, %d) error = %v", v, c, uint8(f), err)
				}
				again, _ := EncodeFixed(v, c, f)
				if again != w {
					t.Fatalf("EncodeFixed(%d, %d, %d) not idempotent: %#x != %#x", v, c, uint8(f), uint32(again), uint32(w))
				}
				got, err := Decode(w)
				if err != nil {
					t.Fatalf("Decode(%#x) error = %v", uint32(w), err)
				}
				if want := (Fixed{v, c, f}); got != want {
					t.Fatalf("Decode(EncodeFixed()) = %+v, want %+v", got, want)
				}
			}
		}
	}
}

func TestDecodeRejectsNonFixed(t *testing.T) {
	v := NewVariablePDO()
	v.SetMinVoltage(5000)
	v.SetMaxVoltage(12000)
	v.SetCurrent(2000)
	b := NewBatteryPDO()
	b.SetPower(15000)
	tests := []struct {
		name string
		pdo  PDO
		typ  Type
	}{
		{"variable", PDO(v), TypeVariableSupply},
		{"battery", PDO(b), TypeBattery},
		{"pps", 0xC0000000, TypePPS},
		{"epr avs", 0xD0000000, TypeEPRAVS},
		{"all ones", 0xFFFFFFFF, 0b11111},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.pdo.Type(); got != tt.typ {
				t.Errorf("Type() = %#b, want %#b", got, tt.typ)
			}
			if _, err := Decode(tt.pdo); !errors.Is(err, ErrInvalid) {
				t.Errorf("Decode() error = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestDecodeFixedIgnoresReservedBits(t *testing.T) {
	got, err := Decode(0x00719096)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if want := (Fixed{Voltage: 100, Current: 150}); got != want {
		t.Errorf("Decode() = %+v, want %+v", got, want)
	}
}

func TestNewFixed(t *testing.T) {
	f, err := NewFixed(9*physic.Volt+20*physic.MilliVolt, 2*physic.Ampere+5*physic.MilliAmpere, FlagDualRoleData)
	if err != nil {
		t.Fatalf("NewFixed() error = %v", err)
	}
	if want := (Fixed{Voltage: 180, Current: 200, Flags: FlagDualRoleData}); f != want {
		t.Errorf("NewFixed() = %+v, want %+v", f, want)
	}
	if got := f.Potential(); got != 9*physic.Volt {
		t.Errorf("Potential() = %s, want 9V", got)
	}
	if got := f.MaxCurrent(); got != 2*physic.Ampere {
		t.Errorf("MaxCurrent() = %s, want 2A", got)
	}

	if _, err := NewFixed(60*physic.Volt, physic.Ampere, 0); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("NewFixed(60V) error = %v, want ErrOutOfRange", err)
	}
	if _, err := NewFixed(5*physic.Volt, -physic.Ampere, 0); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("NewFixed(-1A) error = %v, want ErrOutOfRange", err)
	}
}

func TestFixedFlags(t *testing.T) {
	var f FixedFlags
	f.SetFastRoleSwap(FastRoleSwap1A5)
	f |= FlagDualRolePower | FlagUnconstrainedPower
	if f.FastRoleSwap() != FastRoleSwap1A5 {
		t.Errorf("FastRoleSwap() = %v, want 1.5A", f.FastRoleSwap())
	}
	if !f.Has(FlagDualRolePower | FlagUnconstrainedPower) {
		t.Errorf("Has() = false for set flags %08b", uint8(f))
	}
	if f.Has(FlagHigherCapability) {
		t.Errorf("Has(FlagHigherCapability) = true for %08b", uint8(f))
	}
	if got, want := f.String(), "DRP|Unconstrained|FRS:1.5A"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	w, _ := EncodeFixed(0, 0, f)
	if w != 0x29000000 {
		t.Errorf("EncodeFixed() = %#08x, want 0x29000000", uint32(w))
	}
}

func TestSinkVariableAndBattery(t *testing.T) {
	v := NewVariablePDO()
	v.SetMaxVoltage(20000)
	v.SetMinVoltage(5025)
	v.SetCurrent(3001)
	if v.MaxVoltage() != 20000 || v.MinVoltage() != 5000 || v.Current() != 3000 {
		t.Errorf("variable = %d-%dmV %dmA", v.MinVoltage(), v.MaxVoltage(), v.Current())
	}
	b := NewBatteryPDO()
	b.SetPower(45000)
	b.SetMinVoltage(9000)
	if b.Power() != 45000 || b.MinVoltage() != 9000 || PDO(b).Type() != TypeBattery {
		t.Errorf("battery = %dmW %dmV type %v", b.Power(), b.MinVoltage(), PDO(b).Type())
	}
}

func TestRDO(t *testing.T) {
	r := RDO(0x2401912C | 1<<23)
	if r.ObjectPosition() != 2 {
		t.Errorf("ObjectPosition() = %d, want 2", r.ObjectPosition())
	}
	if !r.CapabilityMismatch() || r.GiveBack() || r.USBCommunicationsCapable() || r.NoUSBSuspend() {
		t.Errorf("flags decoded wrong for %#08x", uint32(r))
	}
	if !r.UnchunkedExtendedMessages() {
		t.Errorf("UnchunkedExtendedMessages() = false")
	}
	if got := r.OperatingCurrent(); got != physic.Ampere {
		t.Errorf("OperatingCurrent() = %s, want 1A", got)
	}
	if got := r.MaxOperatingCurrent(); got != 3*physic.Ampere {
		t.Errorf("MaxOperatingCurrent() = %s, want 3A", got)
	}
	if got := RDO(0).String(); got != "no contract" {
		t.Errorf("String() = %q", got)
	}
}
