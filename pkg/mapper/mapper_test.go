package mapper

import (
	"testing"

	"github.com/patchbay-retro/nescore/pkg/dump"
	"github.com/patchbay-retro/nescore/pkg/rom"
)

func fakeROM(mapperID, prgBanks, chrBanks int, mirror rom.Mirroring) *rom.ROM {
	r := &rom.ROM{
		MapperID:  mapperID,
		Mirroring: mirror,
		PRGBanks:  prgBanks,
		CHRBanks:  chrBanks,
		PRG:       make([]byte, prgBanks*16384),
		CHR:       make([]byte, chrBanks*8192),
	}
	for i := range r.PRG {
		r.PRG[i] = uint8(i % 251) // prime period avoids aliasing with bank-size-aligned offsets
	}
	for i := range r.CHR {
		r.CHR[i] = uint8(i % 251)
	}
	return r
}

func TestNROMMirrorsA16KBImage(t *testing.T) {
	r := fakeROM(0, 1, 1, rom.MirrorHorizontal)
	m, err := New(r)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if m.ReadCPU(0x8000) != m.ReadCPU(0xC000) {
		t.Fatalf("16 KiB NROM should mirror $8000 and $C000")
	}
	if m.ReadCPU(0x8001) != 1 {
		t.Fatalf("expected PRG[1] at $8001, got %d", m.ReadCPU(0x8001))
	}
}

func TestNROM32KBDoesNotMirror(t *testing.T) {
	r := fakeROM(0, 2, 1, rom.MirrorVertical)
	m, _ := New(r)
	if got, want := m.ReadCPU(0xC000), r.PRG[0x4000]; got != want {
		t.Fatalf("$C000 = %d, want %d", got, want)
	}
}

func TestNROMWorkRAMReadWrite(t *testing.T) {
	r := fakeROM(0, 1, 1, rom.MirrorHorizontal)
	m, _ := New(r)
	m.WriteCPU(0x6123, 0x42)
	if got := m.ReadCPU(0x6123); got != 0x42 {
		t.Fatalf("work RAM round trip: got %#x", got)
	}
}

func TestUxROMSwitchesLowBankFixesHigh(t *testing.T) {
	r := fakeROM(2, 4, 0, rom.MirrorVertical)
	m, _ := New(r)
	last := r.PRG[3*16384]
	if got := m.ReadCPU(0xC000); got != last {
		t.Fatalf("high bank should be fixed to last 16 KiB bank, got %d want %d", got, last)
	}
	m.WriteCPU(0x8000, 2)
	want := r.PRG[2*16384]
	if got := m.ReadCPU(0x8000); got != want {
		t.Fatalf("after selecting bank 2, $8000 = %d want %d", got, want)
	}
}

func TestCNROMSelectsCHRBank(t *testing.T) {
	r := fakeROM(3, 1, 4, rom.MirrorHorizontal)
	m, _ := New(r)
	m.WriteCPU(0x8000, 2)
	want := r.CHR[2*8192]
	if got := m.ReadPPU(0x0000); got != want {
		t.Fatalf("CHR bank 2 select: got %d want %d", got, want)
	}
}

func TestAxROMOneScreenMirroring(t *testing.T) {
	r := fakeROM(7, 2, 0, rom.MirrorHorizontal)
	m, _ := New(r)
	m.WriteCPU(0x8000, 0x10) // one-screen high
	m.WritePPU(0x2000, 0x55)
	if got := m.ReadPPU(0x2400); got != 0x55 {
		t.Fatalf("one-screen mirroring should alias $2000 and $2400, got %#x", got)
	}
}

func TestGxROMSelectsPRGAndCHR(t *testing.T) {
	r := fakeROM(66, 8, 4, rom.MirrorVertical)
	m, _ := New(r)
	m.WriteCPU(0x8000, 0x31) // PRG bank 3, CHR bank 1
	if got, want := m.ReadCPU(0x8000), r.PRG[3*32768]; got != want {
		t.Fatalf("PRG bank select: got %d want %d", got, want)
	}
	if got, want := m.ReadPPU(0x0000), r.CHR[1*8192]; got != want {
		t.Fatalf("CHR bank select: got %d want %d", got, want)
	}
}

func TestMMC1ControlResetsOnBit7(t *testing.T) {
	r := fakeROM(1, 8, 0, rom.MirrorHorizontal)
	m, _ := New(r)
	m.ppuTicks = 1000

	// five sequential shift writes selecting PRG mode via the control
	// register, landing on different simulated CPU cycles so the
	// debounce logic doesn't eat them.
	for i, bits := range []uint8{1, 1, 1, 1, 1} {
		m.ppuTicks += 3
		m.writeMMC1(0x8000, bits)
		_ = i
	}
	if m.mmc1Control&0x0C>>2 == 0 {
		t.Fatalf("PRG mode bits should be set from shifted-in control value")
	}

	m.ppuTicks += 3
	m.writeMMC1(0x8000, 0x80) // reset bit
	if m.mmc1Control&0x0C != 0x0C {
		t.Fatalf("reset write should force control bits 2-3 to PRG mode 3, got %#x", m.mmc1Control)
	}
}

func TestMMC3PRGFixedBanksAtBoundaries(t *testing.T) {
	r := fakeROM(4, 8, 8, rom.MirrorHorizontal)
	m, _ := New(r)
	lastBank := r.PRG[15*8192] // 8 x 16 KiB = sixteen 8 KiB banks
	if got := m.ReadCPU(0xE000); got != lastBank {
		t.Fatalf("last 8 KiB bank should be fixed at $E000, got %d want %d", got, lastBank)
	}
}

func TestMMC3IRQFiresWhenCounterReachesZero(t *testing.T) {
	r := fakeROM(4, 8, 8, rom.MirrorHorizontal)
	m, _ := New(r)

	m.writeMMC3(0xC000, 0) // reload latch = 0
	m.writeMMC3(0xC001, 1) // force reload on next clock
	m.writeMMC3(0xE001, 1) // enable IRQ

	if m.IsIRQPending() {
		t.Fatalf("IRQ should not be pending before any A12 rise")
	}

	// Simulate an A12 rising edge far enough after the last one to pass
	// the debounce filter.
	m.mmc3A12Was1 = false
	m.ppuTicks = 1000
	m.ReadPPU(0x1000) // bit12 set -> rising edge

	if !m.IsIRQPending() {
		t.Fatalf("expected IRQ pending once reload-to-zero clocks with IRQ enabled")
	}
	m.ClearIRQ()
	if m.IsIRQPending() {
		t.Fatalf("ClearIRQ should deassert the line")
	}
}

func TestMMC2LatchTogglesCHRHalf(t *testing.T) {
	r := fakeROM(9, 16, 16, rom.MirrorVertical)
	m, _ := New(r)
	m.writeMMC2OrMMC4(0xB000, 1, true) // CHR0a = bank 1
	m.writeMMC2OrMMC4(0xC000, 2, true) // CHR0b = bank 2

	m.mmc2Latch0 = 0
	m.updateMMC2CHR()
	wantA := r.CHR[1*4096]
	if got := m.ReadPPU(0x0000); got != wantA {
		t.Fatalf("latch0=0 should select CHR0a, got %d want %d", got, wantA)
	}

	m.snoopMMC2Latch(0x0FE8) // triggers latch0 = 1
	wantB := r.CHR[2*4096]
	if got := m.ReadPPU(0x0000); got != wantB {
		t.Fatalf("latch0=1 should select CHR0b, got %d want %d", got, wantB)
	}
}

func TestBankTableNeverExceedsCartridgeMemory(t *testing.T) {
	for _, id := range []int{0, 1, 2, 3, 4, 7, 9, 10, 30, 66} {
		r := fakeROM(id, 8, 8, rom.MirrorHorizontal)
		m, err := New(r)
		if err != nil {
			t.Fatalf("mapper %d: %v", id, err)
		}
		for _, e := range m.CPUBanks {
			if e.Mapped && e.Offset+0x400 > len(m.Mem) {
				t.Fatalf("mapper %d: CPU bank offset %d exceeds memory len %d", id, e.Offset, len(m.Mem))
			}
		}
		for _, e := range m.PPUBanks {
			if e.Mapped && e.Offset+0x400 > len(m.Mem) {
				t.Fatalf("mapper %d: PPU bank offset %d exceeds memory len %d", id, e.Offset, len(m.Mem))
			}
		}
	}
}

func TestUnsupportedMapperErrors(t *testing.T) {
	r := fakeROM(99, 1, 1, rom.MirrorHorizontal)
	if _, err := New(r); err == nil {
		t.Fatalf("expected an error for unsupported mapper id")
	}
}

func TestDumpRoundTrip(t *testing.T) {
	r := fakeROM(4, 8, 8, rom.MirrorHorizontal)
	m, _ := New(r)
	m.WriteCPU(0x8000, 0x43)
	m.WriteCPU(0x8001, 5)

	size := m.DumpSize()
	w := dump.NewWriter(size)
	m.Dump(w)

	r2 := fakeROM(4, 8, 8, rom.MirrorHorizontal)
	m2, _ := New(r2)
	rd := dump.NewReader(w.Buf)
	m2.Dump(rd)

	if m2.ReadCPU(0x8000) != m.ReadCPU(0x8000) {
		t.Fatalf("save/load round trip diverged")
	}
}
