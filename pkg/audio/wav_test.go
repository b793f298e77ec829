package audio

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var mono = Format{SampleRate: 8000, Channels: 1, BitDepth: 16}

func TestEncodeThenParseWAV(t *testing.T) {
	pcm := []byte{1, 0, 2, 0, 3, 0, 4, 0}

	format, data, err := ParseWAV(EncodeWAV(mono, pcm))
	require.NoError(t, err)
	assert.Equal(t, mono, format)
	assert.Equal(t, pcm, data)
}

func TestParseWAVSkipsUnknownChunks(t *testing.T) {
	wav := EncodeWAV(mono, []byte{9, 0, 9, 0})

	// Insert an odd sized LIST chunk between fmt and data
	list := []byte("LIST")
	list = binary.LittleEndian.AppendUint32(list, 3)
	list = append(list, 'a', 'b', 'c', 0)

	fmtEnd := 12 + 8 + 16
	patched := append([]byte{}, wav[:fmtEnd]...)
	patched = append(patched, list...)
	patched = append(patched, wav[fmtEnd:]...)

	format, data, err := ParseWAV(patched)
	require.NoError(t, err)
	assert.Equal(t, mono, format)
	assert.Equal(t, []byte{9, 0, 9, 0}, data)
}

func TestParseWAVTruncatedDataIsClamped(t *testing.T) {
	wav := EncodeWAV(mono, []byte{1, 0, 2, 0, 3, 0})

	_, data, err := ParseWAV(wav[:len(wav)-2])
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 0, 2, 0}, data)
}

func TestParseWAVErrors(t *testing.T) {
	valid := EncodeWAV(mono, []byte{0, 0})

	eightBit := EncodeWAV(Format{SampleRate: 8000, Channels: 1, BitDepth: 8}, []byte{0})

	compressed := append([]byte{}, valid...)
	binary.LittleEndian.PutUint16(compressed[20:], 3)

	noData := valid[:12+8+16]

	dataFirst := []byte("RIFF")
	dataFirst = binary.LittleEndian.AppendUint32(dataFirst, 14)
	dataFirst = append(dataFirst, "WAVE"...)
	dataFirst = append(dataFirst, "data"...)
	dataFirst = binary.LittleEndian.AppendUint32(dataFirst, 2)
	dataFirst = append(dataFirst, 0, 0)

	tests := map[string][]byte{
		"empty":           {},
		"short header":    []byte("RIFF"),
		"not wave":        append([]byte("RIFX"), valid[4:]...),
		"8-bit":           eightBit,
		"not pcm":         compressed,
		"no data chunk":   noData,
		"data before fmt": dataFirst,
		"truncated fmt":   valid[:12+8+4],
	}

	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, _, err := ParseWAV(data)
			assert.Error(t, err)
		})
	}
}

func TestChimeIsPlayableWAV(t *testing.T) {
	format, pcm, err := ParseWAV(Chime())
	require.NoError(t, err)

	assert.Equal(t, Format{SampleRate: 44100, Channels: 1, BitDepth: 16}, format)
	assert.NotEmpty(t, pcm)
	assert.Zero(t, len(pcm)%2)

	// Not silence
	peak := 0
	for i := 0; i+1 < len(pcm); i += 2 {
		v := int(int16(binary.LittleEndian.Uint16(pcm[i:])))
		if v < 0 {
			v = -v
		}
		peak = max(peak, v)
	}
	assert.Greater(t, peak, 1000)

	assert.Equal(t, Chime(), Chime())
}

func TestStopNilPlayer(t *testing.T) {
	var p *Player
	assert.NotPanics(t, p.Stop)
}
