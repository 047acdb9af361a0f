package mapper

import "github.com/patchbay-retro/nescore/pkg/rom"

// newUxROM builds mapper 2: a single 16 KiB switchable PRG bank at $8000
// with the last 16 KiB fixed at $C000. CHR is always RAM (8 KiB, no
// banking).
func newUxROM(r *rom.ROM) *Mapper {
	m := &Mapper{ID: UxROM, Base: newBase(r, 0, 0x800)}
	m.mapBankPRG(48, m.prgPages()-16, 16)
	m.mapBankCHR(0, 0, 8)
	m.setMirroringMode(r.Mirroring)
	m.updateUxROMBanks()
	return m
}

func (m *Mapper) writeUxROM(addr uint16, v uint8) {
	if addr < 0x8000 {
		return
	}
	m.simpleBank = v
	m.updateUxROMBanks()
}

func (m *Mapper) updateUxROMBanks() {
	m.mapBankPRG(32, int(m.simpleBank)*16, 16)
}
