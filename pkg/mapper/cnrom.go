package mapper

import "github.com/patchbay-retro/nescore/pkg/rom"

// newCNROM builds mapper 3: fixed PRG (16 or 32 KiB, mirrored like NROM)
// plus a single CHR-ROM bank register selecting 8 KiB at a time.
func newCNROM(r *rom.ROM) *Mapper {
	m := &Mapper{ID: CNROM, Base: newBase(r, 0, 0x800)}
	if m.prgPages() >= 32 {
		m.mapBankPRG(32, 0, 32)
	} else {
		m.mapBankPRG(32, 0, 16)
		m.mirrorCPUBanks(48, 32, 16)
	}
	m.setMirroringMode(r.Mirroring)
	m.updateCNROMBanks()
	return m
}

func (m *Mapper) writeCNROM(addr uint16, v uint8) {
	if addr < 0x8000 {
		return
	}
	m.simpleBank = v
	m.updateCNROMBanks()
}

func (m *Mapper) updateCNROMBanks() {
	m.mapBankCHR(0, int(m.simpleBank)*8, 8)
}
