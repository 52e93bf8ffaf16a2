package audio

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gen2brain/malgo"
)

// Recorder captures mono 16-bit audio from the default input device.
type Recorder struct {
	rate int

	mctx   *malgo.AllocatedContext
	dev    *malgo.Device
	mu     sync.Mutex
	pcm    []byte
	closed bool
}

func NewRecorder(sampleRate int) (*Recorder, error) {
	mctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("malgo context: %w", err)
	}
	return &Recorder{rate: sampleRate, mctx: mctx}, nil
}

func (r *Recorder) Start() error {
	cfg := malgo.DefaultDeviceConfig(malgo.Capture)
	cfg.Capture.Format = malgo.FormatS16
	cfg.Capture.Channels = ChannelCount
	cfg.SampleRate = uint32(r.rate)

	dev, err := malgo.InitDevice(r.mctx.Context, cfg, malgo.DeviceCallbacks{
		Data: func(_, in []byte, _ uint32) {
			r.mu.Lock()
			r.pcm = append(r.pcm, in...)
			r.mu.Unlock()
		},
	})
	if err != nil {
		return fmt.Errorf("capture device: %w", err)
	}
	r.dev = dev
	return dev.Start()
}

// Stop releases the device and returns the captured clip. Calling it
// twice returns the same audio.
func (r *Recorder) Stop() *Clip {
	r.mu.Lock()
	closed := r.closed
	r.closed = true
	r.mu.Unlock()

	if !closed {
		if r.dev != nil {
			_ = r.dev.Stop()
			r.dev.Uninit()
		}
		_ = r.mctx.Uninit()
		r.mctx.Free()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return FromPCM16(r.pcm, r.rate)
}

// Record captures for d, or until ctx ends, whichever is first.
func Record(ctx context.Context, d time.Duration, sampleRate int) (*Clip, error) {
	r, err := NewRecorder(sampleRate)
	if err != nil {
		return nil, err
	}
	if err := r.Start(); err != nil {
		r.Stop()
		return nil, err
	}

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
	return r.Stop(), nil
}
