package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeProbe struct {
	mps, cuda bool
}

func (f fakeProbe) HasMPS() bool  { return f.mps }
func (f fakeProbe) HasCUDA() bool { return f.cuda }

func TestSelect(t *testing.T) {
	tests := []struct {
		name    string
		setting string
		probe   Probe
		want    string
	}{
		{"explicit setting wins", "cuda:1", fakeProbe{mps: true, cuda: true}, "cuda:1"},
		{"explicit cpu", "cpu", fakeProbe{cuda: true}, "cpu"},
		{"auto prefers mps", "auto", fakeProbe{mps: true, cuda: true}, MPS},
		{"auto falls to cuda", "auto", fakeProbe{cuda: true}, CUDA},
		{"auto falls to cpu", "auto", fakeProbe{}, CPU},
		{"empty means auto", "", fakeProbe{cuda: true}, CUDA},
		{"nil probe", "auto", nil, CPU},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Select(tt.setting, tt.probe))
		})
	}
}

func TestValidate(t *testing.T) {
	for _, ok := range []string{"auto", "cpu", "mps", "cuda", "cuda:0", "cuda:12"} {
		assert.NoError(t, Validate(ok), ok)
	}
	for _, bad := range []string{"", "gpu", "cuda:", "cuda:x", "MPS"} {
		assert.Error(t, Validate(bad), bad)
	}
}
