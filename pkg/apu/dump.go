package apu

import "github.com/patchbay-retro/nescore/pkg/dump"

// DumpSize returns the number of bytes Dump writes.
func (a *APU) DumpSize() int {
	return dump.MeasureSize(256, a.Dump)
}

// Dump walks the two pulse channels, triangle, noise, DMC and frame
// counter state in a fixed order for save states. The length-counter
// lookup table is a constant and is not part of the dump.
func (a *APU) Dump(cur *dump.Cursor) {
	a.dumpPulse(cur, &a.Pulse1)
	a.dumpPulse(cur, &a.Pulse2)
	a.dumpTriangle(cur)
	a.dumpNoise(cur)
	a.dumpDMC(cur)

	cur.U8(&a.FrameCounter)
	frameStep := uint8(a.FrameStep)
	cur.U8(&frameStep)
	a.FrameStep = int(frameStep)
	cur.U64(&a.FrameCycle)
	cur.Bool(&a.FrameIRQ)

	cycles := a.Cycles
	cur.U64(&cycles)
	a.Cycles = cycles
}

func (a *APU) dumpPulse(cur *dump.Cursor, p *PulseChannel) {
	cur.Bool(&p.Enabled)
	cur.U8(&p.DutyCycle)
	cur.U8(&p.Volume)
	a.dumpSweep(cur, &p.Sweep)
	a.dumpLength(cur, &p.Length)
	a.dumpEnvelope(cur, &p.Envelope)
	cur.U16(&p.Timer)
	cur.U16(&p.TimerValue)
	cur.U8(&p.Sequence)
}

func (a *APU) dumpTriangle(cur *dump.Cursor) {
	t := &a.Triangle
	cur.Bool(&t.Enabled)
	cur.U8(&t.LinearCounter)
	cur.U8(&t.LinearReload)
	cur.Bool(&t.LinearControl)
	a.dumpLength(cur, &t.Length)
	cur.U16(&t.Timer)
	cur.U16(&t.TimerValue)
	cur.U8(&t.Sequence)
}

func (a *APU) dumpNoise(cur *dump.Cursor) {
	n := &a.Noise
	cur.Bool(&n.Enabled)
	cur.U8(&n.Volume)
	a.dumpLength(cur, &n.Length)
	a.dumpEnvelope(cur, &n.Envelope)
	cur.U16(&n.Timer)
	cur.U16(&n.TimerValue)
	cur.U16(&n.ShiftReg)
	cur.Bool(&n.Mode)
}

func (a *APU) dumpDMC(cur *dump.Cursor) {
	d := &a.DMC
	cur.Bool(&d.Enabled)
	cur.Bool(&d.IRQEnabled)
	cur.Bool(&d.Loop)
	cur.U8(&d.Rate)
	cur.U8(&d.LoadCounter)
	cur.U16(&d.SampleAddress)
	cur.U16(&d.SampleLength)
	cur.U16(&d.CurrentAddress)
	cur.U16(&d.CurrentLength)
	cur.U8(&d.Buffer)
	cur.U8(&d.ShiftReg)
	cur.U8(&d.BitsRemaining)
	cur.Bool(&d.Silence)
	cur.U8(&d.SampleBuffer)
	cur.Bool(&d.BufferEmpty)
	cur.Bool(&d.IRQPending)
}

func (a *APU) dumpSweep(cur *dump.Cursor, s *SweepUnit) {
	cur.Bool(&s.Enabled)
	cur.U8(&s.Period)
	cur.Bool(&s.Negate)
	cur.U8(&s.Shift)
	cur.Bool(&s.Reload)
	cur.U8(&s.Counter)
}

func (a *APU) dumpLength(cur *dump.Cursor, l *LengthCounter) {
	cur.Bool(&l.Enabled)
	cur.U8(&l.Value)
	cur.Bool(&l.Halt)
}

func (a *APU) dumpEnvelope(cur *dump.Cursor, e *EnvelopeGenerator) {
	cur.Bool(&e.Start)
	cur.Bool(&e.Loop)
	cur.Bool(&e.Constant)
	cur.U8(&e.Volume)
	cur.U8(&e.Counter)
	cur.U8(&e.Divider)
}
