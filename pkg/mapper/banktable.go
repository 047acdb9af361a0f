package mapper

import "github.com/patchbay-retro/nescore/pkg/rom"

const (
	cpuBankSize  = 0x400 // 1 KiB
	ppuBankSize  = 0x400
	cpuBankCount = 64 // covers 0x0000-0xFFFF
	ppuBankCount = 16 // covers 0x0000-0x3FFF
)

// BankEntry is one 1 KiB window into the cartridge's owned byte array.
// Offsets are raw integers rather than pointers/slices so that the whole
// bank table serializes trivially and survives relocation of Mem.
type BankEntry struct {
	Offset   int
	ReadOnly bool
	Mapped   bool
}

// segment identifies one of the four regions concatenated in Mem.
type segment struct {
	off, len int
}

// Base holds everything common to every mapper variant: the single
// contiguous cartridge memory array, the bank tables over it, and the
// current mirroring mode. Variant structs embed Base and add their own
// register fields; dispatch is by switch on ID rather than by interface,
// keeping the hot read_cpu/write_cpu/read_ppu/tick path free of vtable
// indirection.
type Base struct {
	Mem []byte

	prg    segment
	chr    segment
	cpuRAM segment
	ppuRAM segment

	CHRIsRAM bool

	CPUBanks [cpuBankCount]BankEntry
	PPUBanks [ppuBankCount]BankEntry

	Mirroring rom.Mirroring
}

// newBase lays out Mem as [PRG | CHR | CPU-work-RAM | PPU-work-RAM] and
// records each segment's bounds. cpuRAMSize is the cartridge work-RAM
// window at $6000 (0 if the board has none); ppuRAMSize is almost always
// 0x800, the two physical nametables that live inside the console but are
// addressed through the mapper's PPU bank table.
func newBase(r *rom.ROM, cpuRAMSize, ppuRAMSize int) Base {
	chr := r.CHR
	chrIsRAM := false
	if len(chr) == 0 {
		chr = make([]byte, r.CHRRAMSize())
		chrIsRAM = true
	}

	b := Base{
		prg:       segment{0, len(r.PRG)},
		chr:       segment{len(r.PRG), len(chr)},
		Mirroring: r.Mirroring,
		CHRIsRAM:  chrIsRAM,
	}
	b.cpuRAM = segment{b.chr.off + b.chr.len, cpuRAMSize}
	b.ppuRAM = segment{b.cpuRAM.off + b.cpuRAM.len, ppuRAMSize}

	total := b.ppuRAM.off + b.ppuRAM.len
	b.Mem = make([]byte, total)
	copy(b.Mem[b.prg.off:], r.PRG)
	copy(b.Mem[b.chr.off:], chr)

	return b
}

func (b *Base) prgPages() int { return b.prg.len / cpuBankSize }
func (b *Base) chrPages() int { return b.chr.len / ppuBankSize }

// mapBankPRG points numPages consecutive CPU banks, starting at cpuPage,
// at PRG data starting at 1 KiB page prgPage (wrapping modulo the PRG
// size so callers can pass raw register values without range-checking).
func (b *Base) mapBankPRG(cpuPage, prgPage, numPages int) {
	total := b.prgPages()
	for i := 0; i < numPages; i++ {
		p := (prgPage + i) % total
		b.CPUBanks[cpuPage+i] = BankEntry{
			Offset:   b.prg.off + p*cpuBankSize,
			ReadOnly: true,
			Mapped:   true,
		}
	}
}

// mapBankCHR points numPages consecutive PPU banks, starting at ppuPage,
// at CHR data starting at 1 KiB page chrPage. CHR-RAM banks are writable;
// CHR-ROM banks are not.
func (b *Base) mapBankCHR(ppuPage, chrPage, numPages int) {
	total := b.chrPages()
	if total == 0 {
		return
	}
	for i := 0; i < numPages; i++ {
		p := (chrPage + i) % total
		b.PPUBanks[ppuPage+i] = BankEntry{
			Offset:   b.chr.off + p*ppuBankSize,
			ReadOnly: !b.CHRIsRAM,
			Mapped:   true,
		}
	}
}

// mapBankCPURAM maps numPages CPU banks onto the cartridge work-RAM
// segment, starting at its ramPage'th 1 KiB page.
func (b *Base) mapBankCPURAM(cpuPage, ramPage, numPages int) {
	for i := 0; i < numPages; i++ {
		off := b.cpuRAM.off + (ramPage+i)*cpuBankSize
		b.CPUBanks[cpuPage+i] = BankEntry{Offset: off, ReadOnly: false, Mapped: true}
	}
}

// mapBankPPURAM points one PPU bank at one of the two physical nametable
// pages inside the console's PPU work-RAM segment (physPage 0 or 1).
func (b *Base) mapBankPPURAM(ppuPage, physPage int) {
	b.PPUBanks[ppuPage] = BankEntry{
		Offset:   b.ppuRAM.off + physPage*ppuBankSize,
		ReadOnly: false,
		Mapped:   true,
	}
}

// unmapBankCPU marks numPages CPU banks unmapped: reads return 0 (no
// open-bus value is kept) and writes are dropped, though the caller may still observe the write
// for side effects (the mapper register write path runs before this).
func (b *Base) unmapBankCPU(cpuPage, numPages int) {
	for i := 0; i < numPages; i++ {
		b.CPUBanks[cpuPage+i] = BankEntry{}
	}
}

// mirrorCPUBanks points dstPage..dstPage+numPages-1 at the same offsets
// already held by srcPage..srcPage+numPages-1.
func (b *Base) mirrorCPUBanks(dstPage, srcPage, numPages int) {
	for i := 0; i < numPages; i++ {
		b.CPUBanks[dstPage+i] = b.CPUBanks[srcPage+i]
	}
}

func (b *Base) mirrorPPUBanks(dstPage, srcPage, numPages int) {
	for i := 0; i < numPages; i++ {
		b.PPUBanks[dstPage+i] = b.PPUBanks[srcPage+i]
	}
}

// setMirroringMode lays out the nametable window (PPU banks 8-15,
// addresses 0x2000-0x3FFF) over the two physical nametable pages
// according to mode. Banks 12-14 mirror 8-10 (the $3000-$3EFF mirror of
// $2000-$2EFF); bank 15 mirrors bank 11. The PPU itself intercepts
// $3F00-$3FFF for palette RAM before ever calling into the mapper, so the
// tail of bank 15 aliasing palette space is harmless.
func (b *Base) setMirroringMode(mode rom.Mirroring) {
	b.Mirroring = mode
	switch mode {
	case rom.MirrorHorizontal:
		b.mapBankPPURAM(8, 0)
		b.mapBankPPURAM(9, 0)
		b.mapBankPPURAM(10, 1)
		b.mapBankPPURAM(11, 1)
	case rom.MirrorVertical:
		b.mapBankPPURAM(8, 0)
		b.mapBankPPURAM(9, 1)
		b.mapBankPPURAM(10, 0)
		b.mapBankPPURAM(11, 1)
	case rom.MirrorOneScreenHigh:
		for p := 8; p <= 11; p++ {
			b.mapBankPPURAM(p, 1)
		}
	default: // MirrorOneScreenLow and MirrorNone both collapse to bank 0
		for p := 8; p <= 11; p++ {
			b.mapBankPPURAM(p, 0)
		}
	}
	b.mirrorPPUBanks(12, 8, 4)
}

// readCPU performs the base bank-table lookup shared by every variant.
func (b *Base) readCPU(addr uint16) (uint8, bool) {
	page := int(addr) / cpuBankSize
	e := b.CPUBanks[page]
	if !e.Mapped {
		return 0, false
	}
	return b.Mem[e.Offset+int(addr)%cpuBankSize], true
}

// writeCPU drops writes to unmapped or read-only banks per the invariant
// in the data model; the caller (variant Write) still observes the raw
// address/value first so mapper register side effects always fire.
func (b *Base) writeCPU(addr uint16, v uint8) {
	page := int(addr) / cpuBankSize
	e := b.CPUBanks[page]
	if !e.Mapped || e.ReadOnly {
		return
	}
	b.Mem[e.Offset+int(addr)%cpuBankSize] = v
}

func (b *Base) readPPU(addr uint16) uint8 {
	page := int(addr&0x3FFF) / ppuBankSize
	e := b.PPUBanks[page]
	if !e.Mapped {
		return 0
	}
	return b.Mem[e.Offset+int(addr)%ppuBankSize]
}

func (b *Base) writePPU(addr uint16, v uint8) {
	page := int(addr&0x3FFF) / ppuBankSize
	e := b.PPUBanks[page]
	if !e.Mapped || e.ReadOnly {
		return
	}
	b.Mem[e.Offset+int(addr)%ppuBankSize] = v
}
