package ppu

import "github.com/patchbay-retro/nescore/pkg/dump"

// DumpSize returns the number of bytes Dump writes.
func (p *PPU) DumpSize() int {
	return dump.MeasureSize(256*240*4+512, p.Dump)
}

// Dump walks every register, internal latch, OAM entry, palette byte and
// frame-buffer pixel in a fixed order for save states. Pattern-table and
// nametable contents live in the mapper's own Dump, not here.
func (p *PPU) Dump(cur *dump.Cursor) {
	cur.U8(&p.PPUCTRL)
	cur.U8(&p.PPUMASK)
	cur.U8(&p.PPUSTATUS)
	cur.U8(&p.OAMADDR)
	cur.U8(&p.OAMDATA)
	cur.U8(&p.PPUSCROLL)
	cur.U8(&p.PPUADDR)
	cur.U8(&p.PPUDATA)

	cur.U16(&p.v)
	cur.U16(&p.t)
	cur.U8(&p.x)
	cur.U8(&p.xTemp)
	cur.U8(&p.w)

	cur.U8(&p.ScrollY)
	cur.Bytes(p.OAM[:])

	cycle := uint32(p.Cycle)
	cur.U32(&cycle)
	p.Cycle = int(cycle)

	scanline := int32(p.Scanline)
	scanlineBytes := uint32(scanline)
	cur.U32(&scanlineBytes)
	p.Scanline = int(int32(scanlineBytes))

	cur.U64(&p.Frame)
	cur.Bool(&p.FrameComplete)
	cur.Bool(&p.NMIRequested)
	cur.U8(&p.readBuffer)

	for i := range p.FrameBuffer {
		px := p.FrameBuffer[i]
		cur.U32(&px)
		p.FrameBuffer[i] = px
	}

	p.PaletteManager.Dump(cur)
}
