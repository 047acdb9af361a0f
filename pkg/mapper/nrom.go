package mapper

import "github.com/patchbay-retro/nescore/pkg/rom"

// newNROM builds mapper 0: a fixed, non-bank-switched board. PRG is 16 or
// 32 KiB at $8000 (mirrored to fill the window when only 16 KiB is
// present); CHR is read-only (or RAM, for CHR-RAM boards) at $0000; an
// 8 KiB work-RAM window sits at $6000.
func newNROM(r *rom.ROM) *Mapper {
	m := &Mapper{ID: NROM, Base: newBase(r, 0x2000, 0x800)}

	m.mapBankCPURAM(24, 0, 8)
	if m.prgPages() >= 32 {
		m.mapBankPRG(32, 0, 32)
	} else {
		// 16 KiB cart: mirror the single bank into both halves.
		m.mapBankPRG(32, 0, 16)
		m.mirrorCPUBanks(48, 32, 16)
	}
	m.mapBankCHR(0, 0, 8)
	m.setMirroringMode(r.Mirroring)
	return m
}
