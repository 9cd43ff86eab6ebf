package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"strconv"
	"strings"
	"time"
)

// Defaults applied when a MIME type carries no usable parameters.
const (
	DefaultSampleRate    = 24000
	DefaultBitsPerSample = 16
	HeaderSize           = 44
)

const pcmFormat = 1

// ErrNotWAV is returned for data without a RIFF/WAVE signature.
var ErrNotWAV = errors.New("not a wav container")

// Format describes linear PCM audio.
type Format struct {
	SampleRate    int
	BitsPerSample int
	Channels      int
}

// BlockAlign returns the bytes per sample frame.
func (f Format) BlockAlign() int {
	return f.Channels * f.BitsPerSample / 8
}

// ByteRate returns the bytes per second of audio.
func (f Format) ByteRate() int {
	return f.SampleRate * f.BlockAlign()
}

// ParseMIME reads the sample rate from a "rate=" parameter and the bit depth
// from an "audio/L<bits>" type. Missing or malformed values fall back to
// 24000 Hz and 16 bits. Synthesized audio is always mono.
func ParseMIME(mimeType string) Format {
	format := Format{SampleRate: DefaultSampleRate, BitsPerSample: DefaultBitsPerSample, Channels: 1}
	mediaType, params, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return format
	}
	if bits, ok := strings.CutPrefix(mediaType, "audio/l"); ok {
		if value, err := strconv.Atoi(bits); err == nil && value > 0 && value%8 == 0 {
			format.BitsPerSample = value
		}
	}
	if rate, err := strconv.Atoi(params["rate"]); err == nil && rate > 0 {
		format.SampleRate = rate
	}
	return format
}

// Header returns the 44-byte RIFF header for dataSize bytes of PCM.
func Header(format Format, dataSize int) []byte {
	var buf bytes.Buffer
	buf.Grow(HeaderSize)
	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(pcmFormat))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(format.Channels))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(format.SampleRate))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(format.ByteRate()))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(format.BlockAlign()))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(format.BitsPerSample))
	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(dataSize))
	return buf.Bytes()
}

// IsWAV reports whether data starts with a RIFF/WAVE signature.
func IsWAV(data []byte) bool {
	return len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WAVE"
}

// FromPCM wraps headerless PCM in a container described by mimeType. Data
// that is already a WAV container is returned unchanged.
func FromPCM(data []byte, mimeType string) []byte {
	if IsWAV(data) {
		return data
	}
	out := make([]byte, 0, HeaderSize+len(data))
	out = append(out, Header(ParseMIME(mimeType), len(data))...)
	return append(out, data...)
}

// Decode parses a WAV container and returns its format and PCM payload.
// Chunks other than "fmt " and "data" are skipped.
func Decode(data []byte) (Format, []byte, error) {
	if !IsWAV(data) {
		return Format{}, nil, ErrNotWAV
	}
	var (
		format  Format
		haveFmt bool
	)
	r := bytes.NewReader(data[12:])
	for {
		var id [4]byte
		var size uint32
		if _, err := io.ReadFull(r, id[:]); err != nil {
			return Format{}, nil, errors.New("wav: data chunk missing")
		}
		if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
			return Format{}, nil, errors.New("wav: truncated chunk header")
		}
		switch string(id[:]) {
		case "fmt ":
			if size < 16 {
				return Format{}, nil, errors.New("wav: short fmt chunk")
			}
			body := make([]byte, size+size%2)
			if _, err := io.ReadFull(r, body); err != nil {
				return Format{}, nil, errors.New("wav: truncated fmt chunk")
			}
			if code := binary.LittleEndian.Uint16(body[0:2]); code != pcmFormat {
				return Format{}, nil, fmt.Errorf("wav: unsupported format code %d", code)
			}
			format = Format{
				Channels:      int(binary.LittleEndian.Uint16(body[2:4])),
				SampleRate:    int(binary.LittleEndian.Uint32(body[4:8])),
				BitsPerSample: int(binary.LittleEndian.Uint16(body[14:16])),
			}
			haveFmt = true
		case "data":
			if !haveFmt {
				return Format{}, nil, errors.New("wav: data before fmt chunk")
			}
			if remaining := uint32(r.Len()); size > remaining {
				size = remaining
			}
			payload := make([]byte, size)
			_, _ = io.ReadFull(r, payload)
			return format, payload, nil
		default:
			if _, err := r.Seek(int64(size+size%2), io.SeekCurrent); err != nil {
				return Format{}, nil, fmt.Errorf("wav: skip chunk: %w", err)
			}
		}
	}
}

// Concat joins the PCM payloads of srcs into a single container at dst.
// Every source must share the first source's format.
func Concat(dst string, srcs []string) (Format, error) {
	if len(srcs) == 0 {
		return Format{}, errors.New("wav concat: no inputs")
	}
	var (
		format  Format
		payload bytes.Buffer
	)
	for i, src := range srcs {
		data, err := os.ReadFile(src)
		if err != nil {
			return Format{}, fmt.Errorf("wav concat: %w", err)
		}
		f, pcm, err := Decode(data)
		if err != nil {
			return Format{}, fmt.Errorf("wav concat %s: %w", src, err)
		}
		if i == 0 {
			format = f
		} else if f != format {
			return Format{}, fmt.Errorf("wav concat %s: format %+v differs from %+v", src, f, format)
		}
		payload.Write(pcm)
	}
	out := make([]byte, 0, HeaderSize+payload.Len())
	out = append(out, Header(format, payload.Len())...)
	out = append(out, payload.Bytes()...)
	if err := os.WriteFile(dst, out, 0o644); err != nil {
		return Format{}, fmt.Errorf("wav concat: %w", err)
	}
	return format, nil
}

// Duration reads the playback length of the WAV file at path.
func Duration(path string) (time.Duration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	format, pcm, err := Decode(data)
	if err != nil {
		return 0, err
	}
	if format.ByteRate() <= 0 {
		return 0, errors.New("wav: invalid byte rate")
	}
	return time.Duration(float64(len(pcm)) / float64(format.ByteRate()) * float64(time.Second)), nil
}

// Samples16 returns the little-endian 16-bit samples of pcm.
func Samples16(pcm []byte) []int16 {
	out := make([]int16, len(pcm)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(pcm[2*i:]))
	}
	return out
}
