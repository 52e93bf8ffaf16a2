package cmd

import (
	"strings"

	"github.com/ontypehq/qtts/internal/config"
	"github.com/ontypehq/qtts/internal/device"
	"github.com/ontypehq/qtts/internal/ui"
)

type DeviceCmd struct{}

func (c *DeviceCmd) Run(cfg *config.AppConfig) error {
	probe := device.NewSystemProbe()
	setting := cfg.Config.Environment.Device

	ui.KV("Setting", setting)
	ui.KV("Selected", device.Select(setting, probe))
	ui.KV("Backend", cfg.Config.Backend)
	if gpus := probe.GPUs(); len(gpus) > 0 {
		ui.KV("GPUs", strings.Join(gpus, ", "))
	}
	if err := probe.Err(); err != nil {
		ui.Warn("GPU probe: %v", err)
	}
	if cfg.Config.Backend != config.BackendLocal {
		ui.Info("  %s", ui.Dim("hosted backends ignore the device"))
	}
	return nil
}
