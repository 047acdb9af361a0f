// Package nes is the facade: it owns RAM, mapper, CPU, PPU, APU,
// controller input and the crash flag, and drives them at the ratios
// real NES hardware does (one CPU instruction, then three PPU ticks
// and one APU tick per CPU cycle consumed).
package nes

import (
	"fmt"
	"io"

	"github.com/patchbay-retro/nescore/pkg/apu"
	"github.com/patchbay-retro/nescore/pkg/cpu"
	"github.com/patchbay-retro/nescore/pkg/dump"
	"github.com/patchbay-retro/nescore/pkg/input"
	"github.com/patchbay-retro/nescore/pkg/mapper"
	"github.com/patchbay-retro/nescore/pkg/memory"
	"github.com/patchbay-retro/nescore/pkg/ppu"
	"github.com/patchbay-retro/nescore/pkg/rom"
)

// InvalidSaveStateError reports a Load() buffer whose length does not
// match the size this handle's ROM serializes to.
type InvalidSaveStateError struct {
	Got, Want int
}

func (e *InvalidSaveStateError) Error() string {
	return fmt.Sprintf("nes: invalid save state: got %d bytes, want %d", e.Got, e.Want)
}

// NES is one emulator handle: a ROM bound to its own CPU/PPU/APU/mapper
// state. Two handles opened on the same ROM and driven with identical
// inputs produce identical output.
type NES struct {
	CPU    *cpu.CPU
	PPU    *ppu.PPU
	APU    *apu.APU
	Memory *memory.Memory
	Mapper *mapper.Mapper
	Input  *input.Controller
	ROM    *rom.ROM

	crashed bool
}

// Open parses an iNES image, constructs its mapper, wires every
// subsystem together and performs the initial RESET.
func Open(r io.Reader) (*NES, error) {
	rm, err := rom.Load(r)
	if err != nil {
		return nil, err
	}
	mp, err := mapper.New(rm)
	if err != nil {
		return nil, err
	}

	n := &NES{
		ROM:    rm,
		Mapper: mp,
		Memory: memory.New(),
		PPU:    ppu.New(),
		APU:    apu.New(),
		Input:  input.New(),
	}
	n.CPU = cpu.New(n.Memory)

	n.Memory.SetMapper(mp)
	n.Memory.SetPPU(n.PPU)
	n.Memory.SetAPU(n.APU)
	n.Memory.SetInput(n.Input)
	n.PPU.SetMapper(mp)
	n.APU.SetMemory(n.Memory)

	n.Reset()
	return n, nil
}

// Reset re-initializes CPU/PPU/APU internal state (cartridge memory
// contents are untouched) and reasserts RESET.
func (n *NES) Reset() {
	n.CPU.Reset()
	n.PPU.Reset()
	n.APU.Reset()
	n.crashed = false
}

// Step runs the emulator for the requested number of frames and
// returns a 240*256*3 RGB view of the last frame rendered. The view is
// invalidated by the next Step, Load or garbage collection of the
// handle.
func (n *NES) Step(frames int) []uint8 {
	for f := 0; f < frames && !n.crashed; f++ {
		n.stepFrame()
	}
	return n.PPU.GetFrameBufferRGB()
}

// stepFrame runs CPU instructions until the PPU crosses the pre-render
// scanline's dot-0 boundary, i.e. exactly one frame.
func (n *NES) stepFrame() {
	for {
		cpuCycles := n.CPU.Step()

		for i := 0; i < cpuCycles*3; i++ {
			n.PPU.Step()
		}
		for i := 0; i < cpuCycles; i++ {
			n.APU.Step()
		}

		if n.PPU.NMIRequested {
			n.CPU.TriggerNMI()
			n.PPU.NMIRequested = false
		}
		n.CPU.SetIRQLine(n.APU.FrameIRQ || n.APU.DMC.IRQPending || n.Mapper.IsIRQPending())

		if n.CPU.HasCrashed() {
			n.crashed = true
			return
		}
		if n.PPU.FrameComplete {
			n.PPU.FrameComplete = false
			return
		}
	}
}

// HasCrashed reports whether a KIL/JAM opcode halted the CPU. It stays
// true until Reset or Load.
func (n *NES) HasCrashed() bool {
	return n.crashed
}

// Read performs a raw CPU bus read, preserving whatever register side
// effects the target address normally has.
func (n *NES) Read(addr uint16) uint8 {
	return n.CPU.Read(addr)
}

// Write performs a raw CPU bus write, same side-effect caveat as Read.
func (n *NES) Write(addr uint16, value uint8) {
	n.CPU.Write(addr, value)
}

// GetAllRAM returns the 2 KiB of CPU work RAM.
func (n *NES) GetAllRAM() [2048]uint8 {
	return n.Memory.RAM
}

// SetController sets the single controller-input byte
// (A,B,SELECT,START,UP,DOWN,LEFT,RIGHT from bit 0).
func (n *NES) SetController(buttons uint8) {
	for bit := 0; bit < 8; bit++ {
		n.Input.SetButton(0, bit, buttons&(1<<uint(bit)) != 0)
	}
}

// saveSize returns the fixed size of this handle's save-state buffer:
// the sum of every subsystem's own measured size. Depends on the ROM
// (CHR-RAM presence, mapper memory array size), so it is computed
// fresh per handle rather than hardcoded.
func (n *NES) saveSize() int {
	return n.CPU.DumpSize() + len(n.Memory.RAM) + n.PPU.DumpSize() + n.APU.DumpSize() + n.Mapper.DumpSize()
}

// dumpAll walks every subsystem's state in the fixed order the
// save-state format declares: CPU, RAM, PPU, APU, mapper.
func (n *NES) dumpAll(cur *dump.Cursor) {
	n.CPU.Dump(cur)
	cur.Bytes(n.Memory.RAM[:])
	n.PPU.Dump(cur)
	n.APU.Dump(cur)
	n.Mapper.Dump(cur)
}

// Save allocates a buffer sized for this ROM and serializes every
// subsystem into it in a fixed, stable order.
func (n *NES) Save() []byte {
	w := dump.NewWriter(n.saveSize())
	n.dumpAll(w)
	return w.Buf
}

// Load restores state from a buffer previously produced by Save on a
// handle opened from the same ROM, and clears the crash flag. Loading
// a buffer of the wrong length leaves the handle's state unchanged.
func (n *NES) Load(buf []byte) error {
	want := n.saveSize()
	if len(buf) != want {
		return &InvalidSaveStateError{Got: len(buf), Want: want}
	}
	r := dump.NewReader(buf)
	n.dumpAll(r)
	n.crashed = false
	return nil
}
