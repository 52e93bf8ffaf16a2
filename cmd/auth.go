package cmd

import (
	"os"
	"strings"

	"github.com/ontypehq/qtts/internal/config"
	"github.com/ontypehq/qtts/internal/ui"
)

type AuthCmd struct {
	Login  AuthLoginCmd  `cmd:"" help:"Save API credentials"`
	Status AuthStatusCmd `cmd:"" help:"Show current auth status"`
}

type AuthLoginCmd struct {
	Provider string `arg:"" default:"dashscope" help:"Auth provider (dashscope)" enum:"dashscope"`
	Token    string `required:"" help:"API key"`
}

func (c *AuthLoginCmd) Run(cfg *config.AppConfig) error {
	cfg.State.Provider = c.Provider
	cfg.State.APIKey = strings.TrimSpace(c.Token)
	if err := cfg.SaveState(); err != nil {
		return err
	}
	ui.Success("Authenticated with %s", ui.Key(c.Provider))
	ui.KV("State", cfg.Dir+"/state.json")
	return nil
}

type AuthStatusCmd struct{}

func (c *AuthStatusCmd) Run(cfg *config.AppConfig) error {
	key, err := cfg.RequireAPIKey()
	if err != nil {
		ui.Warn("Not authenticated")
		ui.Info("  Run: %s", ui.Key("qtts auth login dashscope --token <key>"))
		return nil
	}

	ui.Success("Authenticated")
	ui.KV("Backend", cfg.Config.Backend)
	ui.KV("API Key", maskKey(key))
	ui.KV("Source", keySource(cfg))
	return nil
}

// keySource names where RequireAPIKey found the key, in the same order.
func keySource(cfg *config.AppConfig) string {
	switch {
	case strings.TrimSpace(os.Getenv("DASHSCOPE_API_KEY")) != "":
		return "DASHSCOPE_API_KEY"
	case strings.TrimSpace(cfg.Config.DashScope.APIKey) != "":
		return "config"
	case strings.TrimSpace(cfg.State.APIKey) != "":
		return "state.json"
	default:
		return "none"
	}
}

func maskKey(k string) string {
	if len(k) <= 10 {
		return strings.Repeat("*", len(k))
	}
	return k[:6] + "..." + k[len(k)-4:]
}
