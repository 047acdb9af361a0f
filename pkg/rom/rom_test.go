package rom

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func nromHeader(prgBanks, chrBanks uint8, flags6, flags7 uint8) []byte {
	h := make([]byte, 16)
	copy(h, []byte("NES\x1A"))
	h[4] = prgBanks
	h[5] = chrBanks
	h[6] = flags6
	h[7] = flags7
	return h
}

func TestLoadRejectsBadMagic(t *testing.T) {
	buf := nromHeader(1, 1, 0, 0)
	buf[0] = 'X'
	_, err := Load(bytes.NewReader(append(buf, make([]byte, 16384+8192)...)))
	require.Error(t, err)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
}

func TestLoadRejectsTruncatedHeader(t *testing.T) {
	_, err := Load(bytes.NewReader([]byte("NES\x1A")))
	require.Error(t, err)
}

func TestLoadRejectsFourScreenMirroring(t *testing.T) {
	buf := nromHeader(1, 1, 0x08, 0)
	body := append(buf, make([]byte, 16384+8192)...)
	_, err := Load(bytes.NewReader(body))
	require.Error(t, err)
}

func TestLoadRejectsUnsupportedMapper(t *testing.T) {
	// mapper id 255 (flags6 high nibble 0xF, flags7 high nibble 0xF0)
	buf := nromHeader(1, 1, 0xF0, 0xF0)
	body := append(buf, make([]byte, 16384+8192)...)
	_, err := Load(bytes.NewReader(body))
	require.Error(t, err)
	var ue *UnsupportedMapperError
	require.ErrorAs(t, err, &ue)
}

func TestLoadParsesNROM(t *testing.T) {
	buf := nromHeader(2, 1, 0x01, 0) // mapper 0, vertical mirroring, 32KiB PRG
	prg := bytes.Repeat([]byte{0xEA}, 32768)
	chr := bytes.Repeat([]byte{0x00}, 8192)
	body := append(buf, append(prg, chr...)...)

	r, err := Load(bytes.NewReader(body))
	require.NoError(t, err)
	require.Equal(t, 0, r.MapperID)
	require.Equal(t, MirrorVertical, r.Mirroring)
	require.Equal(t, 2, r.PRGBanks)
	require.Len(t, r.PRG, 32768)
	require.Len(t, r.CHR, 8192)
}

func TestCHRRAMSizeWhenCHRBanksIsZero(t *testing.T) {
	buf := nromHeader(1, 0, 0, 0)
	prg := bytes.Repeat([]byte{0xEA}, 16384)
	body := append(buf, prg...)

	r, err := Load(bytes.NewReader(body))
	require.NoError(t, err)
	require.Equal(t, 0, r.CHRBanks)
	require.Empty(t, r.CHR)
	require.Equal(t, 8192, r.CHRRAMSize())
}
