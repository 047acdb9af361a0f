// Package dump implements the bit-packed save-state primitive shared by the
// CPU, PPU, APU, mapper and facade. A single Cursor walks a tree of state
// fields in one of two directions: WRITE copies fields into a byte buffer,
// READ copies the same fields back out of a previously written buffer. The
// order in which a component calls the Cursor's methods IS the save-state
// format for that component, so that order must never change once a ROM
// depends on it.
package dump

import "encoding/binary"

// Direction selects which way bytes flow through a Cursor.
type Direction int

const (
	// Write copies component fields into the backing buffer.
	Write Direction = iota
	// Read copies the backing buffer back into component fields.
	Read
)

// Cursor is an advancing byte offset into a fixed save-state buffer. All
// widths are written little-endian, matching the native byte order used
// throughout the emulator's bus and register code.
type Cursor struct {
	Dir Direction
	Buf []byte
	pos int
}

// NewWriter returns a Cursor that serializes into a freshly sized buffer.
func NewWriter(size int) *Cursor {
	return &Cursor{Dir: Write, Buf: make([]byte, size)}
}

// NewReader returns a Cursor that deserializes from an existing buffer.
func NewReader(buf []byte) *Cursor {
	return &Cursor{Dir: Read, Buf: buf}
}

// Len reports how many bytes the cursor has advanced, i.e. the total size
// of everything dumped so far. Facades use this to learn a component's
// dumped size by running it once against a throwaway writer.
func (c *Cursor) Len() int { return c.pos }

// Remaining reports how many bytes are left in the backing buffer.
func (c *Cursor) Remaining() int { return len(c.Buf) - c.pos }

// U8 dumps a single byte.
func (c *Cursor) U8(v *uint8) {
	if c.Dir == Write {
		c.Buf[c.pos] = *v
	} else {
		*v = c.Buf[c.pos]
	}
	c.pos++
}

// Bool dumps a boolean as a single byte.
func (c *Cursor) Bool(v *bool) {
	if c.Dir == Write {
		var b uint8
		if *v {
			b = 1
		}
		c.Buf[c.pos] = b
	} else {
		*v = c.Buf[c.pos] != 0
	}
	c.pos++
}

// U16 dumps a 16-bit integer, little-endian.
func (c *Cursor) U16(v *uint16) {
	if c.Dir == Write {
		binary.LittleEndian.PutUint16(c.Buf[c.pos:], *v)
	} else {
		*v = binary.LittleEndian.Uint16(c.Buf[c.pos:])
	}
	c.pos += 2
}

// U32 dumps a 32-bit integer, little-endian.
func (c *Cursor) U32(v *uint32) {
	if c.Dir == Write {
		binary.LittleEndian.PutUint32(c.Buf[c.pos:], *v)
	} else {
		*v = binary.LittleEndian.Uint32(c.Buf[c.pos:])
	}
	c.pos += 4
}

// U64 dumps a 64-bit integer, little-endian.
func (c *Cursor) U64(v *uint64) {
	if c.Dir == Write {
		binary.LittleEndian.PutUint64(c.Buf[c.pos:], *v)
	} else {
		*v = binary.LittleEndian.Uint64(c.Buf[c.pos:])
	}
	c.pos += 8
}

// Int dumps a platform int as a 32-bit field. Every saved int in this
// emulator (scanline, dot, cycle indices) fits comfortably in 32 bits.
func (c *Cursor) Int(v *int) {
	var u uint32
	if c.Dir == Write {
		u = uint32(int32(*v))
		c.U32(&u)
	} else {
		c.U32(&u)
		*v = int(int32(u))
	}
}

// Bytes dumps a fixed-size byte slice in place. The slice length is fixed
// by the caller and is not itself encoded, matching the rest of the format.
func (c *Cursor) Bytes(v []byte) {
	if c.Dir == Write {
		copy(c.Buf[c.pos:], v)
	} else {
		copy(v, c.Buf[c.pos:c.pos+len(v)])
	}
	c.pos += len(v)
}

// MeasureSize runs fn against a scratch buffer of scratchSize bytes and
// returns how far the cursor advanced. scratchSize must be at least as
// large as fn's real dump; callers size it generously since this only
// runs once at ROM-load time.
func MeasureSize(scratchSize int, fn func(c *Cursor)) int {
	c := &Cursor{Dir: Write, Buf: make([]byte, scratchSize)}
	fn(c)
	return c.pos
}
