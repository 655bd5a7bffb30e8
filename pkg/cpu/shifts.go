package cpu

// asl - Arithmetic Shift Left. Handles both the accumulator and memory
// addressing forms, since the 6502 encodes them as the same mnemonic.
func (c *CPU) asl(mode AddressingMode) int {
	if mode == AddrAccumulator {
		c.setFlag(FlagCarry, c.A&0x80 != 0)
		c.A <<= 1
		c.setZN(c.A)
		return 2
	}
	addr, _ := c.getOperandAddress(mode)
	value := c.read(addr)
	c.setFlag(FlagCarry, value&0x80 != 0)
	result := value << 1
	c.setZN(result)
	c.write(addr, result)
	return rmwCycles(mode)
}

// lsr - Logical Shift Right.
func (c *CPU) lsr(mode AddressingMode) int {
	if mode == AddrAccumulator {
		c.setFlag(FlagCarry, c.A&0x01 != 0)
		c.A >>= 1
		c.setZN(c.A)
		return 2
	}
	addr, _ := c.getOperandAddress(mode)
	value := c.read(addr)
	c.setFlag(FlagCarry, value&0x01 != 0)
	result := value >> 1
	c.setZN(result)
	c.write(addr, result)
	return rmwCycles(mode)
}

// rol - Rotate Left through Carry.
func (c *CPU) rol(mode AddressingMode) int {
	carryIn := uint8(0)
	if c.getFlag(FlagCarry) {
		carryIn = 1
	}
	if mode == AddrAccumulator {
		c.setFlag(FlagCarry, c.A&0x80 != 0)
		c.A = (c.A << 1) | carryIn
		c.setZN(c.A)
		return 2
	}
	addr, _ := c.getOperandAddress(mode)
	value := c.read(addr)
	c.setFlag(FlagCarry, value&0x80 != 0)
	result := (value << 1) | carryIn
	c.setZN(result)
	c.write(addr, result)
	return rmwCycles(mode)
}

// ror - Rotate Right through Carry.
func (c *CPU) ror(mode AddressingMode) int {
	carryIn := uint8(0)
	if c.getFlag(FlagCarry) {
		carryIn = 0x80
	}
	if mode == AddrAccumulator {
		c.setFlag(FlagCarry, c.A&0x01 != 0)
		c.A = (c.A >> 1) | carryIn
		c.setZN(c.A)
		return 2
	}
	addr, _ := c.getOperandAddress(mode)
	value := c.read(addr)
	c.setFlag(FlagCarry, value&0x01 != 0)
	result := (value >> 1) | carryIn
	c.setZN(result)
	c.write(addr, result)
	return rmwCycles(mode)
}

// inc - Increment Memory.
func (c *CPU) inc(mode AddressingMode) int {
	addr, _ := c.getOperandAddress(mode)
	result := c.read(addr) + 1
	c.setZN(result)
	c.write(addr, result)
	return rmwCycles(mode)
}

// dec - Decrement Memory.
func (c *CPU) dec(mode AddressingMode) int {
	addr, _ := c.getOperandAddress(mode)
	result := c.read(addr) - 1
	c.setZN(result)
	c.write(addr, result)
	return rmwCycles(mode)
}

// inx, dex, iny, dey - increment/decrement the index registers.
func (c *CPU) inx(_ AddressingMode) int { c.X++; c.setZN(c.X); return 2 }
func (c *CPU) dex(_ AddressingMode) int { c.X--; c.setZN(c.X); return 2 }
func (c *CPU) iny(_ AddressingMode) int { c.Y++; c.setZN(c.Y); return 2 }
func (c *CPU) dey(_ AddressingMode) int { c.Y--; c.setZN(c.Y); return 2 }
