package audio

import (
	"errors"
	"fmt"
	"math"
	"time"
)

const (
	SampleRate   = 24000
	ChannelCount = 1
)

var ErrRateMismatch = errors.New("sample rate mismatch")

// Clip is mono audio with samples normalized to [-1, 1].
type Clip struct {
	Samples    []float32
	SampleRate int
}

func (c *Clip) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Samples)
}

// Duration is len(samples) / rate.
func (c *Clip) Duration() time.Duration {
	if c == nil || c.SampleRate <= 0 {
		return 0
	}
	return time.Duration(int64(len(c.Samples)) * int64(time.Second) / int64(c.SampleRate))
}

func (c *Clip) Seconds() float64 {
	if c == nil || c.SampleRate <= 0 {
		return 0
	}
	return float64(len(c.Samples)) / float64(c.SampleRate)
}

// Silence returns int(seconds*rate) zero samples.
func Silence(seconds float64, rate int) *Clip {
	n := int(seconds * float64(rate))
	if n < 0 {
		n = 0
	}
	return &Clip{Samples: make([]float32, n), SampleRate: rate}
}

// Concat joins clips end to end. All clips must share one sample rate.
func Concat(clips ...*Clip) (*Clip, error) {
	if len(clips) == 0 {
		return nil, errors.New("concat: no clips")
	}
	rate := clips[0].SampleRate
	total := 0
	for i, c := range clips {
		if c.SampleRate != rate {
			return nil, fmt.Errorf("concat clip %d: %w (%d != %d)", i, ErrRateMismatch, c.SampleRate, rate)
		}
		total += len(c.Samples)
	}
	out := make([]float32, 0, total)
	for _, c := range clips {
		out = append(out, c.Samples...)
	}
	return &Clip{Samples: out, SampleRate: rate}, nil
}

// Resample converts the clip to rate with linear interpolation.
func (c *Clip) Resample(rate int) *Clip {
	if c.SampleRate == rate || len(c.Samples) == 0 || rate <= 0 {
		return &Clip{Samples: c.Samples, SampleRate: rate}
	}
	ratio := float64(c.SampleRate) / float64(rate)
	n := int(float64(len(c.Samples)) / ratio)
	if n == 0 {
		n = 1
	}
	out := make([]float32, n)
	last := len(c.Samples) - 1
	for i := 0; i < n-1; i++ {
		pos := float64(i) * ratio
		before := int(pos)
		after := before + 1
		if after > last {
			after = last
		}
		frac := float32(pos - float64(before))
		out[i] = (1-frac)*c.Samples[before] + frac*c.Samples[after]
	}
	out[n-1] = c.Samples[last]
	return &Clip{Samples: out, SampleRate: rate}
}

// FromPCM16 decodes signed 16-bit little-endian mono PCM. A trailing odd byte is ignored.
func FromPCM16(pcm []byte, rate int) *Clip {
	n := len(pcm) / 2
	samples := make([]float32, n)
	for i := 0; i < n; i++ {
		v := int16(uint16(pcm[2*i]) | uint16(pcm[2*i+1])<<8)
		samples[i] = float32(v) / 32768
	}
	return &Clip{Samples: samples, SampleRate: rate}
}

// PCM16 encodes the clip as signed 16-bit little-endian PCM, clamping to range.
func (c *Clip) PCM16() []byte {
	out := make([]byte, 2*len(c.Samples))
	for i, s := range c.Samples {
		v := toInt16(s)
		out[2*i] = byte(v)
		out[2*i+1] = byte(uint16(v) >> 8)
	}
	return out
}

func toInt16(s float32) int16 {
	f := math.Max(-1, math.Min(1, float64(s)))
	return int16(math.Round(f * 32767))
}
