package mapper

import "github.com/patchbay-retro/nescore/pkg/rom"

// newMMC3 builds mapper 4 (MMC3/TxROM): eight bank registers (R0-R7)
// addressed through a bank-select/bank-data register pair, a scanline IRQ
// counter clocked from PPU A12 rising edges, and an 8 KiB PRG-RAM window
// at $6000 with a write-protect bit.
func newMMC3(r *rom.ROM) *Mapper {
	m := &Mapper{ID: MMC3, Base: newBase(r, 0x2000, 0x800)}
	m.mmc3PRGRAMProt = 0x80 // RAM enabled, writable, by default
	m.mapBankCPURAM(24, 0, 8)
	m.setMirroringMode(r.Mirroring)
	m.updateMMC3Banks()
	return m
}

// writeMMC3 dispatches $8000-$FFFF writes by range and address parity,
// matching the even/odd register pairing documented for this board.
func (m *Mapper) writeMMC3(addr uint16, v uint8) {
	odd := addr&1 != 0
	switch {
	case addr < 0x8000:
		return
	case addr <= 0x9FFF:
		if odd {
			m.mmc3BankRegs[m.mmc3BankSelect&0x07] = v
		} else {
			m.mmc3BankSelect = v
		}
		m.updateMMC3Banks()
	case addr <= 0xBFFF:
		if odd {
			m.mmc3PRGRAMProt = v
			m.updateMMC3PRGRAM()
		} else {
			if v&1 != 0 {
				m.setMirroringMode(rom.MirrorHorizontal)
			} else {
				m.setMirroringMode(rom.MirrorVertical)
			}
		}
	case addr <= 0xDFFF:
		if odd {
			m.mmc3IRQReload = true
		} else {
			m.mmc3IRQLatch = v
		}
	default: // 0xE000-0xFFFF
		if odd {
			m.mmc3IRQEnabled = true
		} else {
			m.mmc3IRQEnabled = false
			m.mmc3IRQPending = false
			m.irqLine = false
		}
	}
}

func (m *Mapper) updateMMC3PRGRAM() {
	if m.mmc3PRGRAMProt&0x80 == 0 {
		m.unmapBankCPU(24, 8)
		return
	}
	m.mapBankCPURAM(24, 0, 8)
	if m.mmc3PRGRAMProt&0x40 != 0 {
		for i := 24; i < 32; i++ {
			m.CPUBanks[i].ReadOnly = true
		}
	}
}

func (m *Mapper) updateMMC3Banks() {
	chrMode := m.mmc3BankSelect&0x80 != 0
	prgMode := m.mmc3BankSelect&0x40 != 0
	r := &m.mmc3BankRegs

	if !chrMode {
		m.mapBankCHR(0, int(r[0]&0xFE), 2)
		m.mapBankCHR(2, int(r[1]&0xFE), 2)
		m.mapBankCHR(4, int(r[2]), 1)
		m.mapBankCHR(5, int(r[3]), 1)
		m.mapBankCHR(6, int(r[4]), 1)
		m.mapBankCHR(7, int(r[5]), 1)
	} else {
		m.mapBankCHR(0, int(r[2]), 1)
		m.mapBankCHR(1, int(r[3]), 1)
		m.mapBankCHR(2, int(r[4]), 1)
		m.mapBankCHR(3, int(r[5]), 1)
		m.mapBankCHR(4, int(r[0]&0xFE), 2)
		m.mapBankCHR(6, int(r[1]&0xFE), 2)
	}

	lastBank8k := m.prgPages() - 8
	secondLast8k := m.prgPages() - 16
	if !prgMode {
		m.mapBankPRG(32, int(r[6])*8, 8)
		m.mapBankPRG(40, int(r[7])*8, 8)
		m.mapBankPRG(48, secondLast8k, 8)
		m.mapBankPRG(56, lastBank8k, 8)
	} else {
		m.mapBankPRG(32, secondLast8k, 8)
		m.mapBankPRG(40, int(r[7])*8, 8)
		m.mapBankPRG(48, int(r[6])*8, 8)
		m.mapBankPRG(56, lastBank8k, 8)
	}

	m.updateMMC3PRGRAM()
}

// snoopA12 observes every PPU bus address and clocks the scanline IRQ
// counter on a filtered rising edge of address line 12, as real MMC3
// silicon does by watching the PPU's address bus directly.
func (m *Mapper) snoopA12(addr uint16) {
	bit := addr&0x1000 != 0
	if bit && !m.mmc3A12Was1 {
		if !m.mmc3HasRisenYet || m.ppuTicks-m.mmc3TickAtRise >= 30 {
			m.clockMMC3IRQ()
		}
		m.mmc3HasRisenYet = true
		m.mmc3TickAtRise = m.ppuTicks
	}
	m.mmc3A12Was1 = bit
}

func (m *Mapper) clockMMC3IRQ() {
	if m.mmc3IRQCounter == 0 || m.mmc3IRQReload {
		m.mmc3IRQCounter = m.mmc3IRQLatch
		m.mmc3IRQReload = false
	} else {
		m.mmc3IRQCounter--
	}
	if m.mmc3IRQCounter == 0 && m.mmc3IRQEnabled {
		m.irqLine = true
		m.mmc3IRQPending = true
	}
}
