package cpu

// lda loads the accumulator and sets the Zero/Negative flags from the result.
func (c *CPU) lda(mode AddressingMode) int {
	value, crossed := c.getOperand(mode)
	c.A = value
	c.setZN(c.A)
	return accessCycles(mode) + extraPageCycle(mode, crossed)
}

// ldx loads the X register.
func (c *CPU) ldx(mode AddressingMode) int {
	value, crossed := c.getOperand(mode)
	c.X = value
	c.setZN(c.X)
	return accessCycles(mode) + extraPageCycle(mode, crossed)
}

// ldy loads the Y register.
func (c *CPU) ldy(mode AddressingMode) int {
	value, crossed := c.getOperand(mode)
	c.Y = value
	c.setZN(c.Y)
	return accessCycles(mode) + extraPageCycle(mode, crossed)
}

// sta stores the accumulator.
func (c *CPU) sta(mode AddressingMode) int {
	addr, _ := c.getOperandAddress(mode)
	c.write(addr, c.A)
	return storeCycles(mode)
}

// stx stores the X register.
func (c *CPU) stx(mode AddressingMode) int {
	addr, _ := c.getOperandAddress(mode)
	c.write(addr, c.X)
	return storeCycles(mode)
}

// sty stores the Y register.
func (c *CPU) sty(mode AddressingMode) int {
	addr, _ := c.getOperandAddress(mode)
	c.write(addr, c.Y)
	return storeCycles(mode)
}

// setZN sets the Zero and Negative flags from a just-computed result, the
// pattern shared by nearly every instruction that touches A, X, or Y.
func (c *CPU) setZN(value uint8) {
	c.setFlag(FlagZero, value == 0)
	c.setFlag(FlagNegative, value&0x80 != 0)
}
