package mapper

import "github.com/patchbay-retro/nescore/pkg/rom"

// newUNROM512 builds mapper 30: the low 5 bits of a single register pick
// a 16 KiB PRG bank for $8000 (the last bank is fixed at $C000); the high
// bits pick an 8 KiB CHR-RAM bank; bits 5 and 7 jointly select between
// horizontal, vertical and one-screen mirroring.
func newUNROM512(r *rom.ROM) *Mapper {
	m := &Mapper{ID: UNROM512, Base: newBase(r, 0, 0x800)}
	m.mapBankPRG(48, m.prgPages()-16, 16)
	m.updateUNROM512Banks()
	return m
}

func (m *Mapper) writeUNROM512(addr uint16, v uint8) {
	if addr < 0x8000 {
		return
	}
	m.simpleBank = v
	m.updateUNROM512Banks()
}

func (m *Mapper) updateUNROM512Banks() {
	m.mapBankPRG(32, int(m.simpleBank&0x1F)*16, 16)
	m.mapBankCHR(0, int(m.simpleBank>>6)*8, 8)

	bit5 := m.simpleBank&0x20 != 0
	bit7 := m.simpleBank&0x80 != 0
	switch {
	case !bit7 && !bit5:
		m.setMirroringMode(rom.MirrorHorizontal)
	case !bit7 && bit5:
		m.setMirroringMode(rom.MirrorVertical)
	case bit7 && !bit5:
		m.setMirroringMode(rom.MirrorOneScreenLow)
	default:
		m.setMirroringMode(rom.MirrorOneScreenHigh)
	}
}
