package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const stateFileName = "state.json"

// VoiceRecord remembers a voice created on a hosted backend so that the
// same reference or description is not enrolled twice.
type VoiceRecord struct {
	VoiceID     string    `json:"voice_id"`
	TargetModel string    `json:"target_model"`
	Kind        string    `json:"kind"`
	Source      string    `json:"source,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type State struct {
	Provider string                 `json:"provider,omitempty"`
	APIKey   string                 `json:"api_key,omitempty"`
	Voices   map[string]VoiceRecord `json:"voices,omitempty"`
}

func (ac *AppConfig) loadState() error {
	data, err := os.ReadFile(filepath.Join(ac.Dir, stateFileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read state: %w", err)
	}
	if err := json.Unmarshal(data, &ac.State); err != nil {
		return fmt.Errorf("parse state: %w", err)
	}
	return nil
}

func (ac *AppConfig) SaveState() error {
	data, err := json.MarshalIndent(ac.State, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(ac.Dir, stateFileName), data, 0o600)
}

func (ac *AppConfig) Voice(key string) (VoiceRecord, bool) {
	rec, ok := ac.State.Voices[key]
	return rec, ok
}

func (ac *AppConfig) RememberVoice(key string, rec VoiceRecord) error {
	if ac.State.Voices == nil {
		ac.State.Voices = map[string]VoiceRecord{}
	}
	ac.State.Voices[key] = rec
	return ac.SaveState()
}

// ForgetVoice drops every record pointing at voiceID and reports how many were removed.
func (ac *AppConfig) ForgetVoice(voiceID string) (int, error) {
	var n int
	for k, rec := range ac.State.Voices {
		if rec.VoiceID == voiceID {
			delete(ac.State.Voices, k)
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	return n, ac.SaveState()
}
