package audio

import (
	"bytes"
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

var (
	otoCtx     *oto.Context
	otoCtxErr  error
	otoCtxRate int
	otoCtxOnce sync.Once
)

// oto allows one context per process, so the first clip fixes the output rate.
func getOtoContext(rate int) (*oto.Context, error) {
	otoCtxOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   rate,
			ChannelCount: ChannelCount,
			Format:       oto.FormatSignedInt16LE,
		}
		var ready chan struct{}
		otoCtx, ready, otoCtxErr = oto.NewContext(op)
		if otoCtxErr != nil {
			return
		}
		otoCtxRate = rate
		<-ready
	})
	if otoCtxErr != nil {
		return nil, fmt.Errorf("oto init: %w", otoCtxErr)
	}
	return otoCtx, nil
}

// Play blocks until the clip has been played on the default output device.
func Play(c *Clip) error {
	if c.Len() == 0 {
		return nil
	}
	rate := c.SampleRate
	if otoCtxRate != 0 {
		rate = otoCtxRate
	}
	ctx, err := getOtoContext(rate)
	if err != nil {
		return err
	}
	if c.SampleRate != otoCtxRate {
		c = c.Resample(otoCtxRate)
	}

	player := ctx.NewPlayer(bytes.NewReader(c.PCM16()))
	defer player.Close()

	player.Play()
	for player.IsPlaying() {
		time.Sleep(10 * time.Millisecond)
	}
	return nil
}
