// Package mapper implements the cartridge memory-mapper layer: a single
// tagged-variant struct that owns the cartridge's byte array and bank
// table, and dispatches read_cpu/write_cpu/read_ppu/write_ppu/tick by a
// switch on the mapper ID rather than through an interface, so the
// per-cycle bus path never pays vtable overhead.
package mapper

import (
	"fmt"

	"github.com/patchbay-retro/nescore/pkg/dump"
	"github.com/patchbay-retro/nescore/pkg/rom"
)

// ID names one of the ten supported mapper variants.
type ID int

const (
	NROM     ID = 0
	MMC1     ID = 1
	UxROM    ID = 2
	CNROM    ID = 3
	MMC3     ID = 4
	AxROM    ID = 7
	MMC2     ID = 9
	MMC4     ID = 10
	UNROM512 ID = 30
	GxROM    ID = 66
)

// Mapper is the cartridge. It embeds Base (shared bank table + memory) and
// carries every variant's register fields flatly so that a single Dump
// call can walk the whole thing regardless of which ID is active.
type Mapper struct {
	Base
	ID ID

	// MMC1 serial port + internal registers.
	mmc1Shift     uint8
	mmc1ShiftN    uint8
	mmc1Control   uint8
	mmc1CHRBank0  uint8
	mmc1CHRBank1  uint8
	mmc1PRGBank   uint8
	mmc1LastWrite uint64 // tick counter of the previous serial write, for debounce

	// UxROM / UNROM512 / GxROM / CNROM / AxROM: a single bank select
	// register covers all of these simple mappers.
	simpleBank uint8

	// UNROM512 also picks mirroring per a write-bit table.
	unrom512Mirror rom.Mirroring

	// MMC3 bank-select + IRQ counter.
	mmc3BankSelect  uint8
	mmc3BankRegs    [8]uint8
	mmc3PRGRAMProt  uint8
	mmc3IRQLatch    uint8
	mmc3IRQCounter  uint8
	mmc3IRQReload   bool
	mmc3IRQEnabled  bool
	mmc3IRQPending  bool
	mmc3A12Was1     bool
	mmc3TickAtRise  uint64
	mmc3HasRisenYet bool

	// MMC2/MMC4 CHR latches.
	mmc2Latch0   uint8 // 0 or 1, selects between mmc2CHR0a/mmc2CHR0b
	mmc2Latch1   uint8
	mmc2CHR0a    uint8
	mmc2CHR0b    uint8
	mmc2CHR1a    uint8
	mmc2CHR1b    uint8
	mmc2PRGBank  uint8 // only used by MMC2 (8 KiB switchable)
	mmc4PRGBank  uint8 // 16 KiB switchable variant

	// Shared cartridge-clock counter, advanced once per PPU tick. Used
	// by MMC3's A12 filter to approximate "~10 CPU cycles since the
	// previous rise" without needing the facade to pass raw CPU cycles.
	ppuTicks uint64

	irqLine bool // generic IRQ line, set by MMC3; read by the facade
}

// New constructs a Mapper from parsed ROM metadata, erroring for any ID
// rom.Load did not already reject.
func New(r *rom.ROM) (*Mapper, error) {
	switch ID(r.MapperID) {
	case NROM:
		return newNROM(r), nil
	case MMC1:
		return newMMC1(r), nil
	case UxROM:
		return newUxROM(r), nil
	case CNROM:
		return newCNROM(r), nil
	case MMC3:
		return newMMC3(r), nil
	case AxROM:
		return newAxROM(r), nil
	case MMC2:
		return newMMC2(r), nil
	case MMC4:
		return newMMC4(r), nil
	case UNROM512:
		return newUNROM512(r), nil
	case GxROM:
		return newGxROM(r), nil
	default:
		return nil, &rom.UnsupportedMapperError{MapperID: r.MapperID}
	}
}

// Tick advances any cartridge-internal clock. Called from PPU.Step once
// per PPU dot. Only used directly by variants without address-driven
// clocking (none of the ten do today; MMC3 clocks from A12 edges observed
// in ReadPPU/WritePPU instead), but every variant still gets the shared
// tick counter advanced for timing filters.
func (m *Mapper) Tick() {
	m.ppuTicks++
}

// ReadCPU intercepts CPU bus traffic in the cartridge window.
func (m *Mapper) ReadCPU(addr uint16) uint8 {
	v, ok := m.readCPU(addr)
	if !ok {
		return 0
	}
	return v
}

// WriteCPU intercepts CPU bus traffic, first letting the variant observe
// raw register writes, then falling through to the generic bank-table
// write (absorbed silently if the target bank is unmapped or read-only).
func (m *Mapper) WriteCPU(addr uint16, v uint8) {
	switch m.ID {
	case MMC1:
		m.writeMMC1(addr, v)
	case UxROM:
		m.writeUxROM(addr, v)
	case CNROM:
		m.writeCNROM(addr, v)
	case MMC3:
		m.writeMMC3(addr, v)
	case AxROM:
		m.writeAxROM(addr, v)
	case MMC2:
		m.writeMMC2(addr, v)
	case MMC4:
		m.writeMMC4(addr, v)
	case UNROM512:
		m.writeUNROM512(addr, v)
	case GxROM:
		m.writeGxROM(addr, v)
	}
	m.writeCPU(addr, v)
}

// ReadPPU intercepts PPU bus traffic (pattern tables + nametables). Some
// variants must observe the address even on reads: MMC2/MMC4 toggle CHR
// latches on specific pattern-table fetches, and MMC3 clocks its scanline
// counter from A12 rising edges.
func (m *Mapper) ReadPPU(addr uint16) uint8 {
	switch m.ID {
	case MMC2:
		m.snoopMMC2Latch(addr)
	case MMC4:
		m.snoopMMC4Latch(addr)
	case MMC3:
		m.snoopA12(addr)
	}
	return m.readPPU(addr)
}

// WritePPU intercepts PPU bus writes (CHR-RAM and nametable RAM).
func (m *Mapper) WritePPU(addr uint16, v uint8) {
	if m.ID == MMC3 {
		m.snoopA12(addr)
	}
	m.writePPU(addr, v)
}

// IsIRQPending reports whether the mapper's own IRQ line is asserted.
func (m *Mapper) IsIRQPending() bool { return m.irqLine }

// ClearIRQ deasserts the mapper's IRQ line. Only MMC3 among the ten
// variants ever raises it.
func (m *Mapper) ClearIRQ() { m.irqLine = false }

// GetMirroring reports the mapper's current nametable mirroring mode.
func (m *Mapper) GetMirroring() rom.Mirroring { return m.Mirroring }

// DumpSize returns the number of bytes Dump writes for this mapper,
// computed once by running Dump against a scratch buffer.
func (m *Mapper) DumpSize() int {
	// 64 CPU + 16 PPU bank entries at 6 B each, the owned memory array,
	// and generous headroom for the largest variant's register set.
	scratch := len(m.CPUBanks)*6 + len(m.PPUBanks)*6 + len(m.Mem) + 128
	return dump.MeasureSize(scratch, m.Dump)
}

// Dump walks every mutable byte of the mapper in a fixed order: the two
// bank tables, the owned memory array, then variant-specific registers.
// The order is the save-state format and must never change.
func (m *Mapper) Dump(c *dump.Cursor) {
	for i := range m.CPUBanks {
		m.dumpBankEntry(c, &m.CPUBanks[i])
	}
	for i := range m.PPUBanks {
		m.dumpBankEntry(c, &m.PPUBanks[i])
	}
	c.Bytes(m.Mem)

	switch m.ID {
	case MMC1:
		c.U8(&m.mmc1Shift)
		c.U8(&m.mmc1ShiftN)
		c.U8(&m.mmc1Control)
		c.U8(&m.mmc1CHRBank0)
		c.U8(&m.mmc1CHRBank1)
		c.U8(&m.mmc1PRGBank)
		c.U64(&m.mmc1LastWrite)
	case UxROM, CNROM, AxROM, GxROM:
		c.U8(&m.simpleBank)
	case UNROM512:
		c.U8(&m.simpleBank)
		mirror := uint8(m.unrom512Mirror)
		c.U8(&mirror)
		m.unrom512Mirror = rom.Mirroring(mirror)
	case MMC3:
		c.U8(&m.mmc3BankSelect)
		for i := range m.mmc3BankRegs {
			c.U8(&m.mmc3BankRegs[i])
		}
		c.U8(&m.mmc3PRGRAMProt)
		c.U8(&m.mmc3IRQLatch)
		c.U8(&m.mmc3IRQCounter)
		c.Bool(&m.mmc3IRQReload)
		c.Bool(&m.mmc3IRQEnabled)
		c.Bool(&m.mmc3IRQPending)
		c.Bool(&m.mmc3A12Was1)
		c.U64(&m.mmc3TickAtRise)
		c.Bool(&m.mmc3HasRisenYet)
	case MMC2, MMC4:
		c.U8(&m.mmc2Latch0)
		c.U8(&m.mmc2Latch1)
		c.U8(&m.mmc2CHR0a)
		c.U8(&m.mmc2CHR0b)
		c.U8(&m.mmc2CHR1a)
		c.U8(&m.mmc2CHR1b)
		c.U8(&m.mmc2PRGBank)
		c.U8(&m.mmc4PRGBank)
	}
	c.U64(&m.ppuTicks)
	c.Bool(&m.irqLine)
}

func (m *Mapper) dumpBankEntry(c *dump.Cursor, e *BankEntry) {
	off := uint32(e.Offset)
	c.U32(&off)
	e.Offset = int(off)
	c.Bool(&e.ReadOnly)
	c.Bool(&e.Mapped)
}

func (id ID) String() string {
	switch id {
	case NROM:
		return "NROM"
	case MMC1:
		return "MMC1"
	case UxROM:
		return "UxROM"
	case CNROM:
		return "CNROM"
	case MMC3:
		return "MMC3"
	case AxROM:
		return "AxROM"
	case MMC2:
		return "MMC2"
	case MMC4:
		return "MMC4"
	case UNROM512:
		return "UNROM512"
	case GxROM:
		return "GxROM"
	default:
		return fmt.Sprintf("mapper(%d)", int(id))
	}
}
