package mapper

import "github.com/patchbay-retro/nescore/pkg/rom"

// newMMC1 builds mapper 1 (SxROM / MMC1): a 5-bit serial-port shift
// register feeding four internal registers (control, CHR-0, CHR-1, PRG),
// selected by address bits 14-13 of the write that completes the shift.
func newMMC1(r *rom.ROM) *Mapper {
	m := &Mapper{ID: MMC1, Base: newBase(r, 0x2000, 0x800)}
	m.mmc1Control = 0x0C // PRG mode 3 (fix last bank high), CHR mode 0
	m.mapBankCPURAM(24, 0, 8)
	m.updateMMC1Banks()
	return m
}

// writeMMC1 streams a bit into the shift register on every write to
// $8000-$FFFF. A write with bit 7 set resets the register immediately and
// forces control's high bits (PRG mode 3); otherwise the low bit streams
// in LSB-first and the fifth write commits to the register selected by
// the write address. Two writes landing inside the same CPU cycle (as
// happens with read-modify-write instructions targeting this range) are
// hardware-debounced: only the first is honored.
func (m *Mapper) writeMMC1(addr uint16, v uint8) {
	if addr < 0x8000 {
		return
	}

	if m.ppuTicks-m.mmc1LastWrite < 3 && m.mmc1ShiftN > 0 {
		return // debounce: ignore a second serial write within one CPU cycle
	}
	m.mmc1LastWrite = m.ppuTicks

	if v&0x80 != 0 {
		m.mmc1Shift = 0
		m.mmc1ShiftN = 0
		m.mmc1Control |= 0x0C
		m.updateMMC1Banks()
		return
	}

	m.mmc1Shift |= (v & 1) << m.mmc1ShiftN
	m.mmc1ShiftN++
	if m.mmc1ShiftN < 5 {
		return
	}

	switch {
	case addr <= 0x9FFF:
		m.mmc1Control = m.mmc1Shift
	case addr <= 0xBFFF:
		m.mmc1CHRBank0 = m.mmc1Shift
	case addr <= 0xDFFF:
		m.mmc1CHRBank1 = m.mmc1Shift
	default:
		m.mmc1PRGBank = m.mmc1Shift
	}
	m.mmc1Shift = 0
	m.mmc1ShiftN = 0
	m.updateMMC1Banks()
}

func (m *Mapper) updateMMC1Banks() {
	switch m.mmc1Control & 0x03 {
	case 0:
		m.setMirroringMode(rom.MirrorOneScreenLow)
	case 1:
		m.setMirroringMode(rom.MirrorOneScreenHigh)
	case 2:
		m.setMirroringMode(rom.MirrorVertical)
	case 3:
		m.setMirroringMode(rom.MirrorHorizontal)
	}

	prgMode := (m.mmc1Control >> 2) & 0x03
	bank16 := int(m.mmc1PRGBank & 0x0F)
	switch prgMode {
	case 0, 1:
		bank32 := bank16 >> 1
		m.mapBankPRG(32, bank32*32, 32)
	case 2:
		m.mapBankPRG(32, 0, 16)
		m.mapBankPRG(48, bank16*16, 16)
	case 3:
		m.mapBankPRG(32, bank16*16, 16)
		m.mapBankPRG(48, (m.prgPages()-16), 16)
	}

	if m.mmc1Control&0x10 != 0 {
		// 4 KiB CHR mode: two independently selected 4 KiB halves.
		m.mapBankCHR(0, int(m.mmc1CHRBank0)*4, 4)
		m.mapBankCHR(4, int(m.mmc1CHRBank1)*4, 4)
	} else {
		// 8 KiB CHR mode: one register selects the whole window.
		m.mapBankCHR(0, int(m.mmc1CHRBank0>>1)*8, 8)
	}

	if m.mmc1PRGBank&0x10 != 0 {
		m.unmapBankCPU(24, 8)
	} else {
		m.mapBankCPURAM(24, 0, 8)
	}
}
