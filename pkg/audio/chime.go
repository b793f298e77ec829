package audio

import (
	"encoding/binary"
	"math"
	"sync"
)

const (
	chimeSampleRate = 44100
	chimeNoteLength = 0.45 // seconds
	chimeGap        = 0.6  // seconds between repetitions
)

// Two descending notes, E6 then C6
var chimeNotes = []float64{1318.51, 1046.50}

var (
	chimeOnce sync.Once
	chimeWAV  []byte
)

// Chime returns the default alarm sound as a mono 16-bit WAV
func Chime() []byte {
	chimeOnce.Do(func() {
		chimeWAV = EncodeWAV(Format{SampleRate: chimeSampleRate, Channels: 1, BitDepth: 16}, synthesizeChime())
	})
	return chimeWAV
}

func synthesizeChime() []byte {
	noteSamples := int(chimeNoteLength * chimeSampleRate)
	gapSamples := int(chimeGap * chimeSampleRate)
	total := noteSamples*len(chimeNotes) + gapSamples
	pcm := make([]byte, total*2)

	for n, freq := range chimeNotes {
		offset := n * noteSamples
		for i := range noteSamples {
			t := float64(i) / chimeSampleRate
			// Short attack, exponential decay, plus a quiet overtone for a bell colour
			envelope := math.Min(1, t/0.005) * math.Exp(-t*6)
			sample := envelope * (0.8*math.Sin(2*math.Pi*freq*t) + 0.2*math.Sin(4*math.Pi*freq*t))
			binary.LittleEndian.PutUint16(pcm[(offset+i)*2:], uint16(int16(sample*0.6*math.MaxInt16)))
		}
	}

	return pcm
}
