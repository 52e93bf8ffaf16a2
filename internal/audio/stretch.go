package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// ErrNoTimeStretch means ffmpeg is not installed, so tempo changes are unavailable.
var ErrNoTimeStretch = errors.New("ffmpeg not found")

var lookPath = exec.LookPath

// TimeStretch changes tempo by speed (2 plays twice as fast) without
// changing pitch. Speed 1 returns the clip unchanged.
func TimeStretch(ctx context.Context, c *Clip, speed float64) (*Clip, error) {
	if speed <= 0 || math.IsNaN(speed) || math.IsInf(speed, 0) {
		return nil, fmt.Errorf("invalid speed %v", speed)
	}
	if speed == 1 || len(c.Samples) == 0 {
		return c, nil
	}
	bin, err := lookPath("ffmpeg")
	if err != nil {
		return nil, ErrNoTimeStretch
	}

	rate := strconv.Itoa(c.SampleRate)
	cmd := exec.CommandContext(ctx, bin,
		"-hide_banner", "-loglevel", "error",
		"-f", "s16le",
		"-ar", rate,
		"-ac", strconv.Itoa(ChannelCount),
		"-i", "pipe:0",
		"-filter:a", AtempoFilter(speed),
		"-f", "s16le",
		"-ar", rate,
		"-ac", strconv.Itoa(ChannelCount),
		"pipe:1",
	)
	cmd.Stdin = bytes.NewReader(c.PCM16())
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg atempo: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return FromPCM16(out.Bytes(), c.SampleRate), nil
}

// AtempoFilter chains atempo stages so each factor stays within [0.5, 2].
func AtempoFilter(speed float64) string {
	var stages []string
	for speed > 2 {
		stages = append(stages, "atempo=2.0")
		speed /= 2
	}
	for speed < 0.5 {
		stages = append(stages, "atempo=0.5")
		speed /= 0.5
	}
	stages = append(stages, "atempo="+strconv.FormatFloat(speed, 'f', -1, 64))
	return strings.Join(stages, ",")
}
