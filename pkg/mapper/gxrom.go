package mapper

import "github.com/patchbay-retro/nescore/pkg/rom"

// newGxROM builds mapper 66: the upper nibble of a single register
// selects a 32 KiB PRG bank, the lower nibble an 8 KiB CHR bank.
func newGxROM(r *rom.ROM) *Mapper {
	m := &Mapper{ID: GxROM, Base: newBase(r, 0, 0x800)}
	m.setMirroringMode(r.Mirroring)
	m.updateGxROMBanks()
	return m
}

func (m *Mapper) writeGxROM(addr uint16, v uint8) {
	if addr < 0x8000 {
		return
	}
	m.simpleBank = v
	m.updateGxROMBanks()
}

func (m *Mapper) updateGxROMBanks() {
	prgBank := int(m.simpleBank>>4) & 0x0F
	chrBank := int(m.simpleBank) & 0x0F
	m.mapBankPRG(32, prgBank*32, 32)
	m.mapBankCHR(0, chrBank*8, 8)
}
