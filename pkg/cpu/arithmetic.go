package cpu

// addWithCarry implements binary-mode addition into the accumulator. The
// 2A03 wires the 6502's decimal flag to nothing, so this is the only add
// path the chip ever executes regardless of the Decimal flag's state.
func (c *CPU) addWithCarry(value uint8) {
	carry := uint16(0)
	if c.getFlag(FlagCarry) {
		carry = 1
	}
	sum := uint16(c.A) + uint16(value) + carry

	overflow := (c.A^value)&0x80 == 0 && (c.A^uint8(sum))&0x80 != 0
	c.setFlag(FlagOverflow, overflow)
	c.setFlag(FlagCarry, sum > 0xFF)

	c.A = uint8(sum)
	c.setZN(c.A)
}

// subtractWithBorrow implements SBC as the classic ADC-with-inverted-operand
// identity, so the carry/overflow logic only has to exist in one place.
func (c *CPU) subtractWithBorrow(value uint8) {
	c.addWithCarry(^value)
}

// adc - Add Memory to Accumulator with Carry.
func (c *CPU) adc(mode AddressingMode) int {
	value, crossed := c.getOperand(mode)
	c.addWithCarry(value)
	return accessCycles(mode) + extraPageCycle(mode, crossed)
}

// sbc - Subtract Memory from Accumulator with Borrow.
func (c *CPU) sbc(mode AddressingMode) int {
	value, crossed := c.getOperand(mode)
	c.subtractWithBorrow(value)
	return accessCycles(mode) + extraPageCycle(mode, crossed)
}

// compareTo is the shared CMP/CPX/CPY core: subtract without storing the
// result, setting Carry/Zero/Negative from the comparison.
func (c *CPU) compareTo(reg uint8, value uint8) {
	result := reg - value
	c.setFlag(FlagCarry, reg >= value)
	c.setZN(result)
}

// cmp - Compare Memory with Accumulator.
func (c *CPU) cmp(mode AddressingMode) int {
	value, crossed := c.getOperand(mode)
	c.compareTo(c.A, value)
	return accessCycles(mode) + extraPageCycle(mode, crossed)
}

// cpx - Compare Memory with X Register.
func (c *CPU) cpx(mode AddressingMode) int {
	value, crossed := c.getOperand(mode)
	c.compareTo(c.X, value)
	return accessCycles(mode) + extraPageCycle(mode, crossed)
}

// cpy - Compare Memory with Y Register.
func (c *CPU) cpy(mode AddressingMode) int {
	value, crossed := c.getOperand(mode)
	c.compareTo(c.Y, value)
	return accessCycles(mode) + extraPageCycle(mode, crossed)
}

// bit - Test Bits in Memory with Accumulator. Zero reflects A&value, while
// Negative and Overflow are copied straight from bits 7 and 6 of the operand.
func (c *CPU) bit(mode AddressingMode) int {
	value, _ := c.getOperand(mode)
	c.setFlag(FlagZero, c.A&value == 0)
	c.setFlag(FlagNegative, value&0x80 != 0)
	c.setFlag(FlagOverflow, value&0x40 != 0)
	return accessCycles(mode)
}
