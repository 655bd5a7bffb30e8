package cpu

// opFn is a method expression type: CPU.lda, CPU.sta, and so on all satisfy
// it, which lets dispatchTable hold plain function values instead of a
// 256-way type switch.
type opFn func(*CPU, AddressingMode) int

type opcode struct {
	fn   opFn
	mode AddressingMode
}

// dispatchTable maps every opcode byte to its handler and addressing mode.
// Entries left zero-valued (fn == nil) are opcodes real cartridges never
// execute - the JAM/KIL family that locks the bus, and the handful of
// highly unstable undocumented opcodes (XAA, AHX, TAS, SHX, SHY, LAS) whose
// behavior varies by temperature and chip revision on real hardware.
// executeInstruction treats a missing entry as a 2-cycle no-op.
var dispatchTable = [256]opcode{
	0x00: {(*CPU).brk, AddrImplied},
	0x01: {(*CPU).ora, AddrIndexedIndirect},
	0x03: {(*CPU).slo, AddrIndexedIndirect},
	0x04: {(*CPU).nopZeroPage, AddrZeroPage},
	0x05: {(*CPU).ora, AddrZeroPage},
	0x06: {(*CPU).asl, AddrZeroPage},
	0x07: {(*CPU).slo, AddrZeroPage},
	0x08: {(*CPU).php, AddrImplied},
	0x09: {(*CPU).ora, AddrImmediate},
	0x0A: {(*CPU).asl, AddrAccumulator},
	0x0B: {(*CPU).aac, AddrImmediate},
	0x0C: {(*CPU).nopAbsolute, AddrAbsolute},
	0x0D: {(*CPU).ora, AddrAbsolute},
	0x0E: {(*CPU).asl, AddrAbsolute},
	0x0F: {(*CPU).slo, AddrAbsolute},

	0x10: {(*CPU).bpl, AddrRelative},
	0x11: {(*CPU).ora, AddrIndirectIndexed},
	0x13: {(*CPU).slo, AddrIndirectIndexed},
	0x14: {(*CPU).nopZeroPageX, AddrZeroPageX},
	0x15: {(*CPU).ora, AddrZeroPageX},
	0x16: {(*CPU).asl, AddrZeroPageX},
	0x17: {(*CPU).slo, AddrZeroPageX},
	0x18: {(*CPU).clc, AddrImplied},
	0x19: {(*CPU).ora, AddrAbsoluteY},
	0x1A: {(*CPU).nop, AddrImplied},
	0x1B: {(*CPU).slo, AddrAbsoluteY},
	0x1C: {(*CPU).nopAbsoluteX, AddrAbsoluteX},
	0x1D: {(*CPU).ora, AddrAbsoluteX},
	0x1E: {(*CPU).asl, AddrAbsoluteX},
	0x1F: {(*CPU).slo, AddrAbsoluteX},

	0x20: {(*CPU).jsr, AddrAbsolute},
	0x21: {(*CPU).and, AddrIndexedIndirect},
	0x23: {(*CPU).rla, AddrIndexedIndirect},
	0x24: {(*CPU).bit, AddrZeroPage},
	0x25: {(*CPU).and, AddrZeroPage},
	0x26: {(*CPU).rol, AddrZeroPage},
	0x27: {(*CPU).rla, AddrZeroPage},
	0x28: {(*CPU).plp, AddrImplied},
	0x29: {(*CPU).and, AddrImmediate},
	0x2A: {(*CPU).rol, AddrAccumulator},
	0x2B: {(*CPU).aac, AddrImmediate},
	0x2C: {(*CPU).bit, AddrAbsolute},
	0x2D: {(*CPU).and, AddrAbsolute},
	0x2E: {(*CPU).rol, AddrAbsolute},
	0x2F: {(*CPU).rla, AddrAbsolute},

	0x30: {(*CPU).bmi, AddrRelative},
	0x31: {(*CPU).and, AddrIndirectIndexed},
	0x33: {(*CPU).rla, AddrIndirectIndexed},
	0x34: {(*CPU).nopZeroPageX, AddrZeroPageX},
	0x35: {(*CPU).and, AddrZeroPageX},
	0x36: {(*CPU).rol, AddrZeroPageX},
	0x37: {(*CPU).rla, AddrZeroPageX},
	0x38: {(*CPU).sec, AddrImplied},
	0x39: {(*CPU).and, AddrAbsoluteY},
	0x3A: {(*CPU).nop, AddrImplied},
	0x3B: {(*CPU).rla, AddrAbsoluteY},
	0x3C: {(*CPU).nopAbsoluteX, AddrAbsoluteX},
	0x3D: {(*CPU).and, AddrAbsoluteX},
	0x3E: {(*CPU).rol, AddrAbsoluteX},
	0x3F: {(*CPU).rla, AddrAbsoluteX},

	0x40: {(*CPU).rti, AddrImplied},
	0x41: {(*CPU).eor, AddrIndexedIndirect},
	0x43: {(*CPU).sre, AddrIndexedIndirect},
	0x44: {(*CPU).nopZeroPage, AddrZeroPage},
	0x45: {(*CPU).eor, AddrZeroPage},
	0x46: {(*CPU).lsr, AddrZeroPage},
	0x47: {(*CPU).sre, AddrZeroPage},
	0x48: {(*CPU).pha, AddrImplied},
	0x49: {(*CPU).eor, AddrImmediate},
	0x4A: {(*CPU).lsr, AddrAccumulator},
	0x4B: {(*CPU).asr, AddrImmediate},
	0x4C: {(*CPU).jmp, AddrAbsolute},
	0x4D: {(*CPU).eor, AddrAbsolute},
	0x4E: {(*CPU).lsr, AddrAbsolute},
	0x4F: {(*CPU).sre, AddrAbsolute},

	0x50: {(*CPU).bvc, AddrRelative},
	0x51: {(*CPU).eor, AddrIndirectIndexed},
	0x53: {(*CPU).sre, AddrIndirectIndexed},
	0x54: {(*CPU).nopZeroPageX, AddrZeroPageX},
	0x55: {(*CPU).eor, AddrZeroPageX},
	0x56: {(*CPU).lsr, AddrZeroPageX},
	0x57: {(*CPU).sre, AddrZeroPageX},
	0x58: {(*CPU).cli, AddrImplied},
	0x59: {(*CPU).eor, AddrAbsoluteY},
	0x5A: {(*CPU).nop, AddrImplied},
	0x5B: {(*CPU).sre, AddrAbsoluteY},
	0x5C: {(*CPU).nopAbsoluteX, AddrAbsoluteX},
	0x5D: {(*CPU).eor, AddrAbsoluteX},
	0x5E: {(*CPU).lsr, AddrAbsoluteX},
	0x5F: {(*CPU).sre, AddrAbsoluteX},

	0x60: {(*CPU).rts, AddrImplied},
	0x61: {(*CPU).adc, AddrIndexedIndirect},
	0x63: {(*CPU).rra, AddrIndexedIndirect},
	0x64: {(*CPU).nopZeroPage, AddrZeroPage},
	0x65: {(*CPU).adc, AddrZeroPage},
	0x66: {(*CPU).ror, AddrZeroPage},
	0x67: {(*CPU).rra, AddrZeroPage},
	0x68: {(*CPU).pla, AddrImplied},
	0x69: {(*CPU).adc, AddrImmediate},
	0x6A: {(*CPU).ror, AddrAccumulator},
	0x6B: {(*CPU).arr, AddrImmediate},
	0x6C: {(*CPU).jmp, AddrIndirect},
	0x6D: {(*CPU).adc, AddrAbsolute},
	0x6E: {(*CPU).ror, AddrAbsolute},
	0x6F: {(*CPU).rra, AddrAbsolute},

	0x70: {(*CPU).bvs, AddrRelative},
	0x71: {(*CPU).adc, AddrIndirectIndexed},
	0x73: {(*CPU).rra, AddrIndirectIndexed},
	0x74: {(*CPU).nopZeroPageX, AddrZeroPageX},
	0x75: {(*CPU).adc, AddrZeroPageX},
	0x76: {(*CPU).ror, AddrZeroPageX},
	0x77: {(*CPU).rra, AddrZeroPageX},
	0x78: {(*CPU).sei, AddrImplied},
	0x79: {(*CPU).adc, AddrAbsoluteY},
	0x7A: {(*CPU).nop, AddrImplied},
	0x7B: {(*CPU).rra, AddrAbsoluteY},
	0x7C: {(*CPU).nopAbsoluteX, AddrAbsoluteX},
	0x7D: {(*CPU).adc, AddrAbsoluteX},
	0x7E: {(*CPU).ror, AddrAbsoluteX},
	0x7F: {(*CPU).rra, AddrAbsoluteX},

	0x80: {(*CPU).nopImmediate, AddrImmediate},
	0x81: {(*CPU).sta, AddrIndexedIndirect},
	0x82: {(*CPU).nopImmediate, AddrImmediate},
	0x83: {(*CPU).sax, AddrIndexedIndirect},
	0x84: {(*CPU).sty, AddrZeroPage},
	0x85: {(*CPU).sta, AddrZeroPage},
	0x86: {(*CPU).stx, AddrZeroPage},
	0x87: {(*CPU).sax, AddrZeroPage},
	0x88: {(*CPU).dey, AddrImplied},
	0x89: {(*CPU).nopImmediate, AddrImmediate},
	0x8A: {(*CPU).txa, AddrImplied},
	0x8C: {(*CPU).sty, AddrAbsolute},
	0x8D: {(*CPU).sta, AddrAbsolute},
	0x8E: {(*CPU).stx, AddrAbsolute},
	0x8F: {(*CPU).sax, AddrAbsolute},

	0x90: {(*CPU).bcc, AddrRelative},
	0x91: {(*CPU).sta, AddrIndirectIndexed},
	0x94: {(*CPU).sty, AddrZeroPageX},
	0x95: {(*CPU).sta, AddrZeroPageX},
	0x96: {(*CPU).stx, AddrZeroPageY},
	0x97: {(*CPU).sax, AddrZeroPageY},
	0x98: {(*CPU).tya, AddrImplied},
	0x99: {(*CPU).sta, AddrAbsoluteY},
	0x9A: {(*CPU).txs, AddrImplied},
	0x9D: {(*CPU).sta, AddrAbsoluteX},

	0xA0: {(*CPU).ldy, AddrImmediate},
	0xA1: {(*CPU).lda, AddrIndexedIndirect},
	0xA2: {(*CPU).ldx, AddrImmediate},
	0xA3: {(*CPU).lax, AddrIndexedIndirect},
	0xA4: {(*CPU).ldy, AddrZeroPage},
	0xA5: {(*CPU).lda, AddrZeroPage},
	0xA6: {(*CPU).ldx, AddrZeroPage},
	0xA7: {(*CPU).lax, AddrZeroPage},
	0xA8: {(*CPU).tay, AddrImplied},
	0xA9: {(*CPU).lda, AddrImmediate},
	0xAA: {(*CPU).tax, AddrImplied},
	0xAB: {(*CPU).atx, AddrImmediate},
	0xAC: {(*CPU).ldy, AddrAbsolute},
	0xAD: {(*CPU).lda, AddrAbsolute},
	0xAE: {(*CPU).ldx, AddrAbsolute},
	0xAF: {(*CPU).lax, AddrAbsolute},

	0xB0: {(*CPU).bcs, AddrRelative},
	0xB1: {(*CPU).lda, AddrIndirectIndexed},
	0xB3: {(*CPU).lax, AddrIndirectIndexed},
	0xB4: {(*CPU).ldy, AddrZeroPageX},
	0xB5: {(*CPU).lda, AddrZeroPageX},
	0xB6: {(*CPU).ldx, AddrZeroPageY},
	0xB7: {(*CPU).lax, AddrZeroPageY},
	0xB8: {(*CPU).clv, AddrImplied},
	0xB9: {(*CPU).lda, AddrAbsoluteY},
	0xBA: {(*CPU).tsx, AddrImplied},
	0xBC: {(*CPU).ldy, AddrAbsoluteX},
	0xBD: {(*CPU).lda, AddrAbsoluteX},
	0xBE: {(*CPU).ldx, AddrAbsoluteY},
	0xBF: {(*CPU).lax, AddrAbsoluteY},

	0xC0: {(*CPU).cpy, AddrImmediate},
	0xC1: {(*CPU).cmp, AddrIndexedIndirect},
	0xC2: {(*CPU).nopImmediate, AddrImmediate},
	0xC3: {(*CPU).dcp, AddrIndexedIndirect},
	0xC4: {(*CPU).cpy, AddrZeroPage},
	0xC5: {(*CPU).cmp, AddrZeroPage},
	0xC6: {(*CPU).dec, AddrZeroPage},
	0xC7: {(*CPU).dcp, AddrZeroPage},
	0xC8: {(*CPU).iny, AddrImplied},
	0xC9: {(*CPU).cmp, AddrImmediate},
	0xCA: {(*CPU).dex, AddrImplied},
	0xCB: {(*CPU).axs, AddrImmediate},
	0xCC: {(*CPU).cpy, AddrAbsolute},
	0xCD: {(*CPU).cmp, AddrAbsolute},
	0xCE: {(*CPU).dec, AddrAbsolute},
	0xCF: {(*CPU).dcp, AddrAbsolute},

	0xD0: {(*CPU).bne, AddrRelative},
	0xD1: {(*CPU).cmp, AddrIndirectIndexed},
	0xD3: {(*CPU).dcp, AddrIndirectIndexed},
	0xD4: {(*CPU).nopZeroPageX, AddrZeroPageX},
	0xD5: {(*CPU).cmp, AddrZeroPageX},
	0xD6: {(*CPU).dec, AddrZeroPageX},
	0xD7: {(*CPU).dcp, AddrZeroPageX},
	0xD8: {(*CPU).cld, AddrImplied},
	0xD9: {(*CPU).cmp, AddrAbsoluteY},
	0xDA: {(*CPU).nop, AddrImplied},
	0xDB: {(*CPU).dcp, AddrAbsoluteY},
	0xDC: {(*CPU).nopAbsoluteX, AddrAbsoluteX},
	0xDD: {(*CPU).cmp, AddrAbsoluteX},
	0xDE: {(*CPU).dec, AddrAbsoluteX},
	0xDF: {(*CPU).dcp, AddrAbsoluteX},

	0xE0: {(*CPU).cpx, AddrImmediate},
	0xE1: {(*CPU).sbc, AddrIndexedIndirect},
	0xE2: {(*CPU).nopImmediate, AddrImmediate},
	0xE3: {(*CPU).isb, AddrIndexedIndirect},
	0xE4: {(*CPU).cpx, AddrZeroPage},
	0xE5: {(*CPU).sbc, AddrZeroPage},
	0xE6: {(*CPU).inc, AddrZeroPage},
	0xE7: {(*CPU).isb, AddrZeroPage},
	0xE8: {(*CPU).inx, AddrImplied},
	0xE9: {(*CPU).sbc, AddrImmediate},
	0xEA: {(*CPU).nop, AddrImplied},
	0xEB: {(*CPU).sbc, AddrImmediate},
	0xEC: {(*CPU).cpx, AddrAbsolute},
	0xED: {(*CPU).sbc, AddrAbsolute},
	0xEE: {(*CPU).inc, AddrAbsolute},
	0xEF: {(*CPU).isb, AddrAbsolute},

	0xF0: {(*CPU).beq, AddrRelative},
	0xF1: {(*CPU).sbc, AddrIndirectIndexed},
	0xF3: {(*CPU).isb, AddrIndirectIndexed},
	0xF4: {(*CPU).nopZeroPageX, AddrZeroPageX},
	0xF5: {(*CPU).sbc, AddrZeroPageX},
	0xF6: {(*CPU).inc, AddrZeroPageX},
	0xF7: {(*CPU).isb, AddrZeroPageX},
	0xF8: {(*CPU).sed, AddrImplied},
	0xF9: {(*CPU).sbc, AddrAbsoluteY},
	0xFA: {(*CPU).nop, AddrImplied},
	0xFB: {(*CPU).isb, AddrAbsoluteY},
	0xFC: {(*CPU).nopAbsoluteX, AddrAbsoluteX},
	0xFD: {(*CPU).sbc, AddrAbsoluteX},
	0xFE: {(*CPU).inc, AddrAbsoluteX},
	0xFF: {(*CPU).isb, AddrAbsoluteX},
}

// executeInstruction looks up opcode in dispatchTable and runs its handler.
// Unmapped opcodes (JAM/KIL and the unstable undocumented instructions) cost
// 2 cycles and otherwise do nothing, the same fallback the table-free
// version of this CPU used for an opcode it didn't recognize.
func (c *CPU) executeInstruction(code uint8) int {
	entry := dispatchTable[code]
	if entry.fn == nil {
		return 2
	}
	return entry.fn(c, entry.mode)
}
