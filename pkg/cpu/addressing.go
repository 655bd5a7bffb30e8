package cpu

// AddressingMode identifies how an instruction's operand is located in
// memory. The 6502 reuses the same handful of modes across almost every
// opcode, so resolving them is factored out of the instruction bodies.
type AddressingMode int

const (
	AddrImplied AddressingMode = iota
	AddrAccumulator
	AddrImmediate
	AddrZeroPage
	AddrZeroPageX
	AddrZeroPageY
	AddrRelative
	AddrAbsolute
	AddrAbsoluteX
	AddrAbsoluteY
	AddrIndirect
	AddrIndexedIndirect
	AddrIndirectIndexed
)

// crossesPage reports whether two addresses fall in different 256-byte
// pages, the condition that triggers a bus-cycle penalty on indexed reads.
func crossesPage(a, b uint16) bool {
	return a&0xFF00 != b&0xFF00
}

// indexedAddress computes base+index for the three indexed addressing modes
// that share NMOS 6502's carry-penalty quirk: crossing a page boundary costs
// an extra cycle, spent on a dummy read at the un-carried address.
func (c *CPU) indexedAddress(base uint16, index uint8) (uint16, bool) {
	addr := base + uint16(index)
	crossed := crossesPage(base, addr)
	if crossed {
		wrapped := (base & 0xFF00) | (addr & 0x00FF)
		c.read(wrapped)
	}
	return addr, crossed
}

// getOperandAddress resolves the effective address for mode, advancing PC
// past any operand bytes the mode consumes. Implied and accumulator modes
// have no memory operand and return false for the cycle-penalty flag.
func (c *CPU) getOperandAddress(mode AddressingMode) (uint16, bool) {
	switch mode {
	case AddrImplied, AddrAccumulator:
		return 0, false

	case AddrImmediate:
		addr := c.PC
		c.PC++
		return addr, false

	case AddrZeroPage:
		addr := uint16(c.read(c.PC))
		c.PC++
		return addr, false

	case AddrZeroPageX:
		addr := uint16(c.read(c.PC) + c.X)
		c.PC++
		return addr & 0xFF, false

	case AddrZeroPageY:
		addr := uint16(c.read(c.PC) + c.Y)
		c.PC++
		return addr & 0xFF, false

	case AddrRelative:
		offset := int8(c.read(c.PC))
		c.PC++
		target := uint16(int32(c.PC) + int32(offset))
		return target, crossesPage(c.PC, target)

	case AddrAbsolute:
		addr := c.read16(c.PC)
		c.PC += 2
		return addr, false

	case AddrAbsoluteX:
		base := c.read16(c.PC)
		c.PC += 2
		return c.indexedAddress(base, c.X)

	case AddrAbsoluteY:
		base := c.read16(c.PC)
		c.PC += 2
		return c.indexedAddress(base, c.Y)

	case AddrIndirect:
		// JMP's indirect fetch replicates the NMOS bug where a pointer
		// ending in $xxFF wraps within the same page instead of crossing it.
		ptr := c.read16(c.PC)
		c.PC += 2
		if ptr&0xFF == 0xFF {
			lo := c.read(ptr)
			hi := c.read(ptr & 0xFF00)
			return uint16(hi)<<8 | uint16(lo), false
		}
		return c.read16(ptr), false

	case AddrIndexedIndirect: // (zp,X)
		zp := c.read(c.PC)
		c.PC++
		ptr := (uint16(zp) + uint16(c.X)) & 0xFF
		lo := c.read(ptr)
		hi := c.read((ptr + 1) & 0xFF)
		return uint16(hi)<<8 | uint16(lo), false

	case AddrIndirectIndexed: // (zp),Y
		zp := c.read(c.PC)
		c.PC++
		lo := c.read(uint16(zp))
		hi := c.read((uint16(zp) + 1) & 0xFF)
		base := uint16(hi)<<8 | uint16(lo)
		return c.indexedAddress(base, c.Y)
	}

	return 0, false
}

// getOperand fetches the operand's value. Accumulator mode reads the A
// register directly rather than dereferencing an address.
func (c *CPU) getOperand(mode AddressingMode) (uint8, bool) {
	if mode == AddrAccumulator {
		return c.A, false
	}
	addr, crossed := c.getOperandAddress(mode)
	return c.read(addr), crossed
}
