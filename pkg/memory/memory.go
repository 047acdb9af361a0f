package memory

import (
	"github.com/patchbay-retro/nescore/pkg/logger"
	"github.com/patchbay-retro/nescore/pkg/mapper"
)

// Memory represents the NES CPU-visible memory map.
type Memory struct {
	// CPU RAM (2KB, mirrored every 0x800 bytes across 0x0000-0x1FFF)
	RAM [2048]uint8

	// HighMem backs 0x6000-0xFFFF when no mapper is attached, so CPU
	// unit tests can run against a bare Memory.
	HighMem [0xA000]uint8

	// Mapper is addressed directly rather than through an interface:
	// its hot-path methods dispatch on a variant tag internally, and a
	// stored interface value here would reintroduce the vtable
	// indirection that tagged-variant dispatch exists to avoid.
	Mapper *mapper.Mapper

	PPU interface {
		ReadRegister(addr uint16) uint8
		WriteRegister(addr uint16, value uint8)
	}

	APU interface {
		ReadRegister(addr uint16) uint8
		WriteRegister(addr uint16, value uint8)
	}

	Input interface {
		Read() uint8
		Write(value uint8)
	}
}

// New creates a new Memory instance
func New() *Memory {
	return &Memory{}
}

// SetMapper attaches the cartridge mapper that owns the 0x4020-0xFFFF
// window (and, via its own PPU-side bank table, the PPU bus).
func (m *Memory) SetMapper(mp *mapper.Mapper) {
	m.Mapper = mp
}

// SetPPU sets the PPU reference
func (m *Memory) SetPPU(ppu interface {
	ReadRegister(addr uint16) uint8
	WriteRegister(addr uint16, value uint8)
}) {
	m.PPU = ppu
}

// SetAPU sets the APU reference
func (m *Memory) SetAPU(apu interface {
	ReadRegister(addr uint16) uint8
	WriteRegister(addr uint16, value uint8)
}) {
	m.APU = apu
}

// SetInput sets the input reference
func (m *Memory) SetInput(input interface {
	Read() uint8
	Write(value uint8)
}) {
	m.Input = input
}

// Read reads a byte from the given address with optimized path for common cases
func (m *Memory) Read(addr uint16) uint8 {
	// Fast path for most common accesses (CPU RAM and cartridge)
	if addr < 0x2000 {
		// CPU RAM (0x0000-0x1FFF, mirrored every 0x800 bytes)
		return m.RAM[addr&0x7FF]
	}

	if addr >= 0x4020 {
		if m.Mapper != nil {
			return m.Mapper.ReadCPU(addr)
		}
		// For testing: use HighMem when no mapper is present
		if addr >= 0x6000 {
			index := addr - 0x6000
			if index >= 0xA000 {
				return 0
			}
			return m.HighMem[index]
		}
		return 0
	}

	// Less frequent accesses
	if addr < 0x4000 {
		// PPU registers (0x2000-0x3FFF, mirrored every 8 bytes)
		if m.PPU != nil {
			return m.PPU.ReadRegister(0x2000 + (addr & 0x7))
		}
		return 0
	}

	if addr == 0x4016 {
		// Controller 1
		if m.Input != nil {
			return m.Input.Read()
		}
		return 0
	}

	if addr == 0x4017 {
		// Controller 2 / APU frame counter
		if m.APU != nil {
			return m.APU.ReadRegister(addr)
		}
		return 0
	}

	// APU and I/O registers (0x4000-0x401F)
	if m.APU != nil {
		return m.APU.ReadRegister(addr)
	}
	return 0
}

// Write writes a byte to the given address
func (m *Memory) Write(addr uint16, value uint8) {
	switch {
	case addr < 0x2000:
		// CPU RAM (0x0000-0x1FFF, mirrored every 0x800 bytes)
		m.RAM[addr&0x7FF] = value

	case addr < 0x4000:
		// PPU registers (0x2000-0x3FFF, mirrored every 8 bytes)
		if m.PPU != nil {
			ppuAddr := 0x2000 + (addr & 0x7)
			if ppuAddr == 0x2006 || ppuAddr == 0x2007 {
				logger.LogCPU("Memory Write PPU $%04X: value=$%02X", ppuAddr, value)
			}
			m.PPU.WriteRegister(ppuAddr, value)
		}

	case addr == 0x4014:
		// OAM DMA
		m.performOAMDMA(value)

	case addr == 0x4016:
		// Controller 1
		if m.Input != nil {
			m.Input.Write(value)
		}

	case addr < 0x4020:
		// APU and I/O registers (0x4000-0x401F)
		if m.APU != nil {
			m.APU.WriteRegister(addr, value)
		}

	case addr >= 0x4020:
		if m.Mapper != nil {
			m.Mapper.WriteCPU(addr, value)
		} else if addr >= 0x6000 {
			index := addr - 0x6000
			if index >= 0xA000 {
				return
			}
			m.HighMem[index] = value
		}

	default:
		// Unmapped 0x4020-0x5FFF region when no mapper claims it
	}
}

// performOAMDMA performs OAM DMA transfer. The real 513/514-cycle cost
// is charged by the caller (CPU); this only moves the bytes.
func (m *Memory) performOAMDMA(page uint8) {
	baseAddr := uint16(page) << 8

	for i := 0; i < 256; i++ {
		value := m.Read(baseAddr + uint16(i))
		if m.PPU != nil {
			m.PPU.WriteRegister(0x2004, value)
		}
	}
}
