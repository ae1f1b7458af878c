package stusb4500

// Address is the 7 bit I²C address of a STUSB4500.
type Address uint16

// DefaultAddress is the address of a STUSB4500 with both address pins tied
// low.
const DefaultAddress Address = 0x28

// StrapAddress returns the address selected by the ADDR1 and ADDR0 pins. True
// means the pin is tied high.
func StrapAddress(a1, a0 bool) Address {
	a := DefaultAddress
	if a1 {
		a |= 1 << 1
	}
	if a0 {
		a |= 1 << 0
	}
	return a
}

// Valid returns true if a fits in 7 bits.
func (a Address) Valid() bool {
	return a <= 0x7F
}
