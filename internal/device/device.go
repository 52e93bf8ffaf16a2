// Package device picks the accelerator a local model runtime should use.
package device

import (
	"fmt"
	"regexp"
	"runtime"
	"strings"
	"sync"

	"github.com/jaypipes/ghw"
	"github.com/jaypipes/ghw/pkg/gpu"
)

const (
	Auto = "auto"
	CPU  = "cpu"
	MPS  = "mps"
	CUDA = "cuda:0"
)

// Probe reports which accelerators the host offers.
type Probe interface {
	HasMPS() bool
	HasCUDA() bool
}

// Select returns setting unchanged unless it is "auto" (or empty), in
// which case MPS wins over CUDA, and CPU is the fallback.
func Select(setting string, p Probe) string {
	setting = strings.TrimSpace(setting)
	if setting != "" && setting != Auto {
		return setting
	}
	if p == nil {
		return CPU
	}
	if p.HasMPS() {
		return MPS
	}
	if p.HasCUDA() {
		return CUDA
	}
	return CPU
}

var settingRe = regexp.MustCompile(`^(auto|cpu|mps|cuda(:\d+)?)$`)

func Validate(setting string) error {
	if !settingRe.MatchString(setting) {
		return fmt.Errorf("invalid device %q (want auto, cpu, mps, cuda or cuda:N)", setting)
	}
	return nil
}

// SystemProbe inspects the running host. Graphics cards are enumerated once.
type SystemProbe struct {
	once  sync.Once
	cards []*gpu.GraphicsCard
	err   error
}

func NewSystemProbe() *SystemProbe {
	return &SystemProbe{}
}

// HasMPS is true on Apple silicon, where the Metal backend is always present.
func (p *SystemProbe) HasMPS() bool {
	return runtime.GOOS == "darwin" && runtime.GOARCH == "arm64"
}

func (p *SystemProbe) HasCUDA() bool {
	for _, name := range p.GPUs() {
		if strings.Contains(strings.ToLower(name), "nvidia") {
			return true
		}
	}
	return false
}

// GPUs returns a printable description of every graphics card found.
func (p *SystemProbe) GPUs() []string {
	p.once.Do(func() {
		info, err := ghw.GPU()
		if err != nil {
			p.err = err
			return
		}
		p.cards = info.GraphicsCards
	})

	names := make([]string, 0, len(p.cards))
	for _, c := range p.cards {
		if c == nil {
			continue
		}
		names = append(names, c.String())
	}
	return names
}

// Err is the enumeration error, if any, after GPUs has run.
func (p *SystemProbe) Err() error {
	return p.err
}
