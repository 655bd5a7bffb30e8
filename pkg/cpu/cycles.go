package cpu

// accessCycles returns the base cycle cost of a read-only operand fetch
// (loads, compares, and the arithmetic/logical group). Indexed modes that
// can cross a page boundary get their +1 from extraPageCycle separately.
func accessCycles(mode AddressingMode) int {
	switch mode {
	case AddrImmediate:
		return 2
	case AddrZeroPage:
		return 3
	case AddrZeroPageX, AddrZeroPageY:
		return 4
	case AddrAbsolute:
		return 4
	case AddrAbsoluteX, AddrAbsoluteY:
		return 4
	case AddrIndexedIndirect:
		return 6
	case AddrIndirectIndexed:
		return 5
	default:
		return 2
	}
}

// extraPageCycle charges the one-cycle penalty NMOS 6502s pay when an
// indexed read's effective address lands in a different page than its base.
func extraPageCycle(mode AddressingMode, crossed bool) int {
	if !crossed {
		return 0
	}
	switch mode {
	case AddrAbsoluteX, AddrAbsoluteY, AddrIndirectIndexed:
		return 1
	}
	return 0
}

// storeCycles covers STA/STX/STY (and SAX, which shares the same addressing
// footprint): stores never pay a page-cross penalty since the write always
// targets the final address.
func storeCycles(mode AddressingMode) int {
	switch mode {
	case AddrZeroPage:
		return 3
	case AddrZeroPageX, AddrZeroPageY:
		return 4
	case AddrAbsolute:
		return 4
	case AddrAbsoluteX, AddrAbsoluteY:
		return 5
	case AddrIndexedIndirect:
		return 6
	case AddrIndirectIndexed:
		return 6
	default:
		return 3
	}
}

// rmwCycles covers the official read-modify-write group: ASL/LSR/ROL/ROR
// and INC/DEC. Accumulator mode never reaches this helper since it mutates
// the A register directly and always costs 2 cycles.
func rmwCycles(mode AddressingMode) int {
	switch mode {
	case AddrZeroPage:
		return 5
	case AddrZeroPageX:
		return 6
	case AddrAbsolute:
		return 6
	case AddrAbsoluteX:
		return 7
	default:
		return 2
	}
}

// illegalRMWCycles covers the undocumented read-modify-write-then-combine
// opcodes (SLO/RLA/SRE/RRA/DCP/ISB), which support a wider addressing
// footprint than the official RMW group and never discount a page cross.
func illegalRMWCycles(mode AddressingMode) int {
	switch mode {
	case AddrAbsolute:
		return 6
	case AddrAbsoluteX, AddrAbsoluteY:
		return 7
	case AddrZeroPage:
		return 5
	case AddrZeroPageX:
		return 6
	case AddrIndexedIndirect, AddrIndirectIndexed:
		return 8
	default:
		return 2
	}
}
