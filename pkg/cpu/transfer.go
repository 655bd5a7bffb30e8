package cpu

// Register-to-register transfers. TXS is the one exception that does not
// touch the Zero/Negative flags, since it only ever feeds the stack pointer.
func (c *CPU) tax(_ AddressingMode) int { c.X = c.A; c.setZN(c.X); return 2 }
func (c *CPU) txa(_ AddressingMode) int { c.A = c.X; c.setZN(c.A); return 2 }
func (c *CPU) tay(_ AddressingMode) int { c.Y = c.A; c.setZN(c.Y); return 2 }
func (c *CPU) tya(_ AddressingMode) int { c.A = c.Y; c.setZN(c.A); return 2 }
func (c *CPU) txs(_ AddressingMode) int { c.SP = c.X; return 2 }
func (c *CPU) tsx(_ AddressingMode) int { c.X = c.SP; c.setZN(c.X); return 2 }

// Processor-status flag instructions.
func (c *CPU) clc(_ AddressingMode) int { c.setFlag(FlagCarry, false); return 2 }
func (c *CPU) sec(_ AddressingMode) int { c.setFlag(FlagCarry, true); return 2 }
func (c *CPU) cli(_ AddressingMode) int { c.setFlag(FlagInterrupt, false); return 2 }
func (c *CPU) sei(_ AddressingMode) int { c.setFlag(FlagInterrupt, true); return 2 }
func (c *CPU) clv(_ AddressingMode) int { c.setFlag(FlagOverflow, false); return 2 }
func (c *CPU) cld(_ AddressingMode) int { c.setFlag(FlagDecimal, false); return 2 }
func (c *CPU) sed(_ AddressingMode) int { c.setFlag(FlagDecimal, true); return 2 }

// pha/pla/php/plp - the stack-oriented instructions. PHP always pushes with
// the Break bit set; PLP sets the Unused bit and masks Break back out,
// matching how the status byte is represented internally.
func (c *CPU) pha(_ AddressingMode) int {
	c.push(c.A)
	return 3
}

func (c *CPU) pla(_ AddressingMode) int {
	c.A = c.pop()
	c.setZN(c.A)
	return 4
}

func (c *CPU) php(_ AddressingMode) int {
	c.push(c.P | FlagBreak)
	return 3
}

func (c *CPU) plp(_ AddressingMode) int {
	c.P = c.pop()
	c.P |= FlagUnused
	c.P &^= FlagBreak
	return 4
}
