package mapper

import "github.com/patchbay-retro/nescore/pkg/rom"

// newAxROM builds mapper 7: a single 32 KiB switchable PRG bank selected
// by the low bits of the register, plus a one-screen mirroring bit.
// CHR is always 8 KiB RAM.
func newAxROM(r *rom.ROM) *Mapper {
	m := &Mapper{ID: AxROM, Base: newBase(r, 0, 0x800)}
	m.mapBankCHR(0, 0, 8)
	m.updateAxROMBanks()
	return m
}

func (m *Mapper) writeAxROM(addr uint16, v uint8) {
	if addr < 0x8000 {
		return
	}
	m.simpleBank = v
	m.updateAxROMBanks()
}

func (m *Mapper) updateAxROMBanks() {
	m.mapBankPRG(32, int(m.simpleBank&0x07)*32, 32)
	if m.simpleBank&0x10 != 0 {
		m.setMirroringMode(rom.MirrorOneScreenHigh)
	} else {
		m.setMirroringMode(rom.MirrorOneScreenLow)
	}
}
