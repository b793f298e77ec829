package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const wavFormatPCM = 1

// Format describes PCM sample layout
type Format struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

// ParseWAV reads a RIFF/WAVE file and returns its format and raw PCM data.
// Only uncompressed 16-bit PCM is accepted since that is what the player
// context is opened with.
func ParseWAV(data []byte) (Format, []byte, error) {
	reader := bytes.NewReader(data)

	var header struct {
		RIFF [4]byte
		Size uint32
		WAVE [4]byte
	}
	if err := binary.Read(reader, binary.LittleEndian, &header); err != nil {
		return Format{}, nil, fmt.Errorf("wav: short header: %w", err)
	}
	if string(header.RIFF[:]) != "RIFF" || string(header.WAVE[:]) != "WAVE" {
		return Format{}, nil, errors.New("wav: not a RIFF/WAVE file")
	}

	var format Format
	haveFormat := false

	for {
		var chunk struct {
			ID   [4]byte
			Size uint32
		}
		if err := binary.Read(reader, binary.LittleEndian, &chunk); err != nil {
			if errors.Is(err, io.EOF) {
				return Format{}, nil, errors.New("wav: no data chunk")
			}
			return Format{}, nil, fmt.Errorf("wav: bad chunk header: %w", err)
		}

		switch string(chunk.ID[:]) {
		case "fmt ":
			var fmtChunk struct {
				AudioFormat   uint16
				Channels      uint16
				SampleRate    uint32
				ByteRate      uint32
				BlockAlign    uint16
				BitsPerSample uint16
			}
			if chunk.Size < 16 {
				return Format{}, nil, fmt.Errorf("wav: fmt chunk too small (%d bytes)", chunk.Size)
			}
			if err := binary.Read(reader, binary.LittleEndian, &fmtChunk); err != nil {
				return Format{}, nil, fmt.Errorf("wav: bad fmt chunk: %w", err)
			}
			if fmtChunk.AudioFormat != wavFormatPCM {
				return Format{}, nil, fmt.Errorf("wav: unsupported encoding %d", fmtChunk.AudioFormat)
			}
			if fmtChunk.BitsPerSample != 16 {
				return Format{}, nil, fmt.Errorf("wav: unsupported bit depth %d", fmtChunk.BitsPerSample)
			}
			if fmtChunk.Channels == 0 || fmtChunk.SampleRate == 0 {
				return Format{}, nil, errors.New("wav: empty channel count or sample rate")
			}
			format = Format{
				SampleRate: int(fmtChunk.SampleRate),
				Channels:   int(fmtChunk.Channels),
				BitDepth:   int(fmtChunk.BitsPerSample),
			}
			haveFormat = true
			if err := skip(reader, int64(chunk.Size)-16); err != nil {
				return Format{}, nil, err
			}

		case "data":
			if !haveFormat {
				return Format{}, nil, errors.New("wav: data chunk before fmt chunk")
			}
			// Some encoders write a bogus size for streamed output
			size := min(int64(chunk.Size), int64(reader.Len()))
			pcm := make([]byte, size)
			if _, err := io.ReadFull(reader, pcm); err != nil {
				return Format{}, nil, fmt.Errorf("wav: reading data: %w", err)
			}
			return format, pcm, nil

		default:
			if err := skip(reader, int64(chunk.Size)); err != nil {
				return Format{}, nil, err
			}
		}

		// Chunks are word aligned
		if chunk.Size%2 == 1 {
			if err := skip(reader, 1); err != nil {
				return Format{}, nil, err
			}
		}
	}
}

// EncodeWAV wraps 16-bit PCM samples in a RIFF/WAVE container
func EncodeWAV(format Format, pcm []byte) []byte {
	blockAlign := format.Channels * format.BitDepth / 8
	var buf bytes.Buffer

	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(36+len(pcm)))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	for _, field := range []any{
		uint32(16),
		uint16(wavFormatPCM),
		uint16(format.Channels),
		uint32(format.SampleRate),
		uint32(format.SampleRate * blockAlign),
		uint16(blockAlign),
		uint16(format.BitDepth),
	} {
		_ = binary.Write(&buf, binary.LittleEndian, field)
	}

	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(pcm)))
	buf.Write(pcm)

	return buf.Bytes()
}

func skip(reader *bytes.Reader, n int64) error {
	if n <= 0 {
		return nil
	}
	if n > int64(reader.Len()) {
		return io.ErrUnexpectedEOF
	}
	_, err := reader.Seek(n, io.SeekCurrent)
	return err
}
