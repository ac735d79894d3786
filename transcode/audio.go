package transcode

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/go-audio/audio"
)

// AudioData is decoded, interleaved PCM held in memory
type AudioData struct {
	PCM        []float64     `json:"-"` // interleaved samples in [-1, 1]
	SampleRate int           `json:"sample_rate"`
	Channels   int           `json:"channels"`
	Duration   time.Duration `json:"duration"`
	Timestamp  time.Time     `json:"timestamp"`
}

// SampleFormat names a raw little-endian PCM encoding
type SampleFormat string

const (
	FormatS16LE SampleFormat = "s16le"
	FormatF32LE SampleFormat = "f32le"
	FormatF64LE SampleFormat = "f64le"
)

func (f SampleFormat) bytesPerSample() int {
	switch f {
	case FormatS16LE:
		return 2
	case FormatF32LE:
		return 4
	case FormatF64LE:
		return 8
	default:
		return 0
	}
}

// NewAudioData wraps interleaved samples
func NewAudioData(pcm []float64, sampleRate, channels int) (*AudioData, error) {
	a := &AudioData{
		PCM:        pcm,
		SampleRate: sampleRate,
		Channels:   channels,
		Timestamp:  time.Now(),
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	a.Duration = time.Duration(a.Frames()) * time.Second / time.Duration(sampleRate)
	return a, nil
}

// DecodePCM converts raw little-endian PCM bytes. A trailing partial
// sample is dropped.
func DecodePCM(data []byte, format SampleFormat, sampleRate, channels int) (*AudioData, error) {
	width := format.bytesPerSample()
	if width == 0 {
		return nil, fmt.Errorf("unsupported sample format %q", format)
	}

	data = data[:len(data)-len(data)%width]
	if len(data) == 0 {
		return nil, fmt.Errorf("no audio samples decoded")
	}

	samples := make([]float64, len(data)/width)
	for i := range samples {
		chunk := data[i*width : i*width+width]
		switch format {
		case FormatS16LE:
			samples[i] = float64(int16(binary.LittleEndian.Uint16(chunk))) / 32768
		case FormatF32LE:
			samples[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(chunk)))
		case FormatF64LE:
			samples[i] = math.Float64frombits(binary.LittleEndian.Uint64(chunk))
		}
	}

	return NewAudioData(samples, sampleRate, channels)
}

// FromIntBuffer normalizes a go-audio integer buffer by its bit depth
func FromIntBuffer(buf *audio.IntBuffer) (*AudioData, error) {
	if buf == nil || buf.Format == nil {
		return nil, fmt.Errorf("buffer has no format")
	}

	bitDepth := buf.SourceBitDepth
	if bitDepth <= 0 {
		bitDepth = 16
	}
	maxVal := float64(int64(1) << (bitDepth - 1))

	samples := make([]float64, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = float64(v) / maxVal
	}

	return NewAudioData(samples, buf.Format.SampleRate, buf.Format.NumChannels)
}

// Validate checks that the buffer is usable for analysis
func (a *AudioData) Validate() error {
	switch {
	case len(a.PCM) == 0:
		return fmt.Errorf("audio data has no samples")
	case a.SampleRate <= 0:
		return fmt.Errorf("sample rate must be positive, got %d", a.SampleRate)
	case a.Channels <= 0:
		return fmt.Errorf("channel count must be positive, got %d", a.Channels)
	case len(a.PCM)%a.Channels != 0:
		return fmt.Errorf("%d samples do not divide into %d channels", len(a.PCM), a.Channels)
	}
	return nil
}

// Frames returns the number of samples per channel
func (a *AudioData) Frames() int {
	if a.Channels <= 0 {
		return 0
	}
	return len(a.PCM) / a.Channels
}

// Mono averages the channels into a single signal
func (a *AudioData) Mono() []float64 {
	if a.Channels <= 1 {
		return a.PCM
	}

	mono := make([]float64, a.Frames())
	for i := range mono {
		sum := 0.0
		for ch := range a.Channels {
			sum += a.PCM[i*a.Channels+ch]
		}
		mono[i] = sum / float64(a.Channels)
	}
	return mono
}
