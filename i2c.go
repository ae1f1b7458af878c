package stusb4500

// I2C defines a minimum interface to I²C hardware with a single Tx method
// which allows the driver to work across many different µControllers and host
// platforms. Both periph.io's i2c.Bus and TinyGo's machine.I2C satisfy it.
type I2C interface {

	// Tx performs a write and then a read transfer placing the result in r.
	//
	// Passing a nil value for w or r skips the transfer corresponding to write
	// or read, respectively. The driver always passes exactly one of them, so
	// the register address and data phases are separate transactions.
	Tx(addr uint16, w, r []byte) error
}
