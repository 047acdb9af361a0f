package mapper

import "github.com/patchbay-retro/nescore/pkg/rom"

// newMMC2 builds mapper 9: an 8 KiB switchable PRG bank at $8000 with the
// remaining 24 KiB fixed to the cartridge's last three 8 KiB banks, and
// two independently latched 4 KiB CHR halves (Punch-Out!!'s mapper).
func newMMC2(r *rom.ROM) *Mapper {
	m := &Mapper{ID: MMC2, Base: newBase(r, 0, 0x800)}
	last := m.prgPages() - 8
	m.mapBankPRG(40, last-16, 8)
	m.mapBankPRG(48, last-8, 8)
	m.mapBankPRG(56, last, 8)
	m.setMirroringMode(r.Mirroring)
	m.updateMMC2CHR()
	m.updateMMC2PRG()
	return m
}

// newMMC4 builds mapper 10: the same CHR-latch trick as MMC2, but with a
// 16 KiB switchable PRG bank instead of 8 KiB (Fire Emblem / Famicom Wars).
func newMMC4(r *rom.ROM) *Mapper {
	m := &Mapper{ID: MMC4, Base: newBase(r, 0x2000, 0x800)}
	m.mapBankCPURAM(24, 0, 8)
	m.mapBankPRG(48, m.prgPages()-16, 16)
	m.setMirroringMode(r.Mirroring)
	m.updateMMC2CHR()
	m.updateMMC4PRG()
	return m
}

func (m *Mapper) writeMMC2(addr uint16, v uint8) {
	m.writeMMC2OrMMC4(addr, v, true)
}

func (m *Mapper) writeMMC4(addr uint16, v uint8) {
	m.writeMMC2OrMMC4(addr, v, false)
}

func (m *Mapper) writeMMC2OrMMC4(addr uint16, v uint8, isMMC2 bool) {
	switch {
	case addr >= 0xA000 && addr <= 0xAFFF:
		if isMMC2 {
			m.mmc2PRGBank = v & 0x0F
			m.updateMMC2PRG()
		} else {
			m.mmc4PRGBank = v & 0x0F
			m.updateMMC4PRG()
		}
	case addr >= 0xB000 && addr <= 0xBFFF:
		m.mmc2CHR0a = v & 0x1F
		m.updateMMC2CHR()
	case addr >= 0xC000 && addr <= 0xCFFF:
		m.mmc2CHR0b = v & 0x1F
		m.updateMMC2CHR()
	case addr >= 0xD000 && addr <= 0xDFFF:
		m.mmc2CHR1a = v & 0x1F
		m.updateMMC2CHR()
	case addr >= 0xE000 && addr <= 0xEFFF:
		m.mmc2CHR1b = v & 0x1F
		m.updateMMC2CHR()
	case addr >= 0xF000:
		if v&1 != 0 {
			m.setMirroringMode(rom.MirrorHorizontal)
		} else {
			m.setMirroringMode(rom.MirrorVertical)
		}
	}
}

func (m *Mapper) updateMMC2PRG() {
	m.mapBankPRG(32, int(m.mmc2PRGBank)*8, 8)
}

func (m *Mapper) updateMMC4PRG() {
	m.mapBankPRG(32, int(m.mmc4PRGBank)*16, 16)
}

func (m *Mapper) updateMMC2CHR() {
	if m.mmc2Latch0 == 0 {
		m.mapBankCHR(0, int(m.mmc2CHR0a)*4, 4)
	} else {
		m.mapBankCHR(0, int(m.mmc2CHR0b)*4, 4)
	}
	if m.mmc2Latch1 == 0 {
		m.mapBankCHR(4, int(m.mmc2CHR1a)*4, 4)
	} else {
		m.mapBankCHR(4, int(m.mmc2CHR1b)*4, 4)
	}
}

// snoopMMC2Latch toggles MMC2's CHR latches on reads to the two
// documented trigger addresses within each 4 KiB pattern-table half.
func (m *Mapper) snoopMMC2Latch(addr uint16) {
	switch {
	case addr == 0x0FD8:
		m.mmc2Latch0 = 0
		m.updateMMC2CHR()
	case addr >= 0x0FE8 && addr <= 0x0FEF:
		m.mmc2Latch0 = 1
		m.updateMMC2CHR()
	case addr >= 0x1FD8 && addr <= 0x1FDF:
		m.mmc2Latch1 = 0
		m.updateMMC2CHR()
	case addr >= 0x1FE8 && addr <= 0x1FEF:
		m.mmc2Latch1 = 1
		m.updateMMC2CHR()
	}
}

// snoopMMC4Latch is MMC4's identical latch trigger (the two mappers only
// differ in PRG bank granularity).
func (m *Mapper) snoopMMC4Latch(addr uint16) {
	m.snoopMMC2Latch(addr)
}
