package cpu

import (
	"github.com/patchbay-retro/nescore/pkg/dump"
	"github.com/patchbay-retro/nescore/pkg/logger"
	"github.com/patchbay-retro/nescore/pkg/memory"
)

// CPU represents the 6502 processor
type CPU struct {
	// Registers
	A  uint8  // Accumulator
	X  uint8  // X register
	Y  uint8  // Y register
	SP uint8  // Stack pointer
	PC uint16 // Program counter
	P  uint8  // Status register

	// Memory interface
	Memory *memory.Memory

	// Cycle counting
	Cycles int

	// Interrupt flags
	NMI bool
	IRQ bool

	// crashed latches once a KIL/JAM opcode is decoded. Real 6502 silicon
	// locks up permanently on these; Step becomes a no-op once set.
	crashed bool

	// Debug fields for freeze detection
	lastPC       uint16
	stuckCounter int
}

// Status flag bits
const (
	FlagCarry     = 1 << 0 // C
	FlagZero      = 1 << 1 // Z
	FlagInterrupt = 1 << 2 // I
	FlagDecimal   = 1 << 3 // D
	FlagBreak     = 1 << 4 // B
	FlagUnused    = 1 << 5 // -
	FlagOverflow  = 1 << 6 // V
	FlagNegative  = 1 << 7 // N
)

// New creates a new CPU instance
func New(mem *memory.Memory) *CPU {
	return &CPU{
		Memory: mem,
		SP:     0xFD,
		P:      FlagUnused | FlagInterrupt,
	}
}

// Reset resets the CPU to initial state
func (c *CPU) Reset() {
	c.A = 0
	c.X = 0
	c.Y = 0
	c.SP = 0xFD
	c.P = FlagUnused | FlagInterrupt
	c.NMI = false
	c.IRQ = false
	c.crashed = false

	// Read reset vector
	resetVector := c.read16(0xFFFC)
	c.PC = resetVector
	c.Cycles = 0
}

// Step executes one instruction (servicing a pending interrupt first, if
// any) and returns the number of CPU cycles it took. Polling interrupts
// here, before fetching the next opcode, is equivalent to polling after
// the previous instruction retired - which is what real 6502 hardware
// does on its next-to-last cycle.
func (c *CPU) Step() int {
	if c.crashed {
		return 2
	}

	if c.NMI {
		logger.LogCPU("NMI triggered at PC=$%04X", c.PC)
		c.NMI = false
		c.handleNMI()
		return 7
	}

	if c.IRQ && !c.getFlag(FlagInterrupt) {
		logger.LogCPU("IRQ serviced at PC=$%04X", c.PC)
		c.handleIRQ()
		return 7
	}

	opcode := c.read(c.PC)
	c.PC++

	cycles := c.executeInstruction(opcode)
	c.Cycles += cycles

	return cycles
}

// executeInstruction is implemented in instructions.go

// handleNMI handles Non-Maskable Interrupt. Hardware interrupts push the
// status register with the B flag clear, unlike BRK.
func (c *CPU) handleNMI() {
	logger.LogCPU("NMI triggered: PC=$%04X, pushing to stack", c.PC)
	c.push16(c.PC)
	c.push((c.P &^ FlagBreak) | FlagUnused)
	c.setFlag(FlagInterrupt, true)
	nmiVector := c.read16(0xFFFA)
	logger.LogCPU("NMI vector: $%04X, jumping to NMI handler", nmiVector)
	c.PC = nmiVector
}

// handleIRQ handles Interrupt Request
func (c *CPU) handleIRQ() {
	c.push16(c.PC)
	c.push((c.P &^ FlagBreak) | FlagUnused)
	c.setFlag(FlagInterrupt, true)
	c.PC = c.read16(0xFFFE)
}

// Crash locks the CPU up the way real hardware does on an illegal KIL/JAM
// opcode: Step stops fetching entirely until the next Reset.
func (c *CPU) Crash() {
	c.crashed = true
}

// HasCrashed reports whether a KIL/JAM opcode has halted the CPU.
func (c *CPU) HasCrashed() bool {
	return c.crashed
}

// Flag operations
func (c *CPU) getFlag(flag uint8) bool {
	return c.P&flag != 0
}

func (c *CPU) setFlag(flag uint8, value bool) {
	if value {
		c.P |= flag
	} else {
		c.P &^= flag
	}
}

// Memory operations
func (c *CPU) read(addr uint16) uint8 {
	return c.Memory.Read(addr)
}

func (c *CPU) write(addr uint16, value uint8) {
	c.Memory.Write(addr, value)
	if addr == 0x4014 {
		// OAM DMA steals 513 CPU cycles, 514 if it starts on an odd cycle
		// (one extra alignment cycle before the transfer begins).
		if c.Cycles%2 != 0 {
			c.Cycles += 514
		} else {
			c.Cycles += 513
		}
	}
}

func (c *CPU) read16(addr uint16) uint16 {
	lo := uint16(c.read(addr))
	hi := uint16(c.read(addr + 1))
	return hi<<8 | lo
}

// Stack operations
func (c *CPU) push(value uint8) {
	c.write(0x100|uint16(c.SP), value)
	c.SP--
}

func (c *CPU) pop() uint8 {
	c.SP++
	return c.read(0x100 | uint16(c.SP))
}

func (c *CPU) push16(value uint16) {
	c.push(uint8(value >> 8))
	c.push(uint8(value & 0xFF))
}

func (c *CPU) pop16() uint16 {
	lo := uint16(c.pop())
	hi := uint16(c.pop())
	return hi<<8 | lo
}

// TriggerNMI latches a Non-Maskable Interrupt. NMI is edge-triggered: the
// facade calls this once per rising edge of the PPU's /NMI line, not once
// per cycle the line is held low.
func (c *CPU) TriggerNMI() {
	c.NMI = true
}

// SetIRQLine sets the level of the CPU's maskable interrupt input, which
// the facade drives from the logical OR of every IRQ source (APU frame
// counter, DMC, mapper). Unlike NMI this is level-triggered: as long as
// any source holds the line, Step keeps re-requesting service once the I
// flag is clear.
func (c *CPU) SetIRQLine(asserted bool) {
	c.IRQ = asserted
}

// TriggerIRQ is a convenience wrapper for a single-shot IRQ source that
// does not track its own line state.
func (c *CPU) TriggerIRQ() {
	c.IRQ = true
}

// Read exposes a raw bus read to callers outside the package (the
// facade's external read/write API). It goes through the normal bus
// path, so register reads retain their side effects (e.g. $2002
// clearing vblank) rather than being stripped for "safe" inspection.
func (c *CPU) Read(addr uint16) uint8 {
	return c.read(addr)
}

// Write exposes a raw bus write the same way Read exposes a raw read.
func (c *CPU) Write(addr uint16, value uint8) {
	c.write(addr, value)
}

// GetFlag returns the state of a flag (public method for testing)
func (c *CPU) GetFlag(flag uint8) bool {
	return c.getFlag(flag)
}

// DumpSize returns the number of bytes Dump writes.
func (c *CPU) DumpSize() int {
	return dump.MeasureSize(32, c.Dump)
}

// Dump walks every register and interrupt-latch field in a fixed order
// for save states. CPU work RAM lives in Memory/mapper, not here.
func (c *CPU) Dump(cur *dump.Cursor) {
	cur.U8(&c.A)
	cur.U8(&c.X)
	cur.U8(&c.Y)
	cur.U8(&c.SP)
	cur.U16(&c.PC)
	cur.U8(&c.P)
	cur.Bool(&c.NMI)
	cur.Bool(&c.IRQ)
	cur.Bool(&c.crashed)
	cycles := uint32(c.Cycles)
	cur.U32(&cycles)
	c.Cycles = int(cycles)
}
