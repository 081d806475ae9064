package lsp

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"perltoolbox/internal/config"
)

// settingsKey is the section editors use for our settings.
const settingsKey = "perl-toolbox"

func (s *Server) handleDidChangeConfiguration(msg *rpcMessage) error {
	if len(msg.Params) == 0 {
		return nil
	}
	var params didChangeConfigurationParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.logInvalidParams(msg, err)
		return nil
	}
	if err := s.applySettings(params.Settings); err != nil {
		s.logger.Warn("ignoring settings", slog.String("error", err.Error()))
	}
	return nil
}

// applySettings installs the perl-toolbox section of raw as the editor
// overlay. A payload without that section leaves the current overlay alone.
// Installing an overlay rechecks every open document.
func (s *Server) applySettings(raw json.RawMessage) error {
	overlay, ok, err := parseSettings(raw)
	if err != nil || !ok {
		return err
	}
	s.store.SetEditorOverlay(overlay)
	return nil
}

func parseSettings(raw json.RawMessage) (*config.Overlay, bool, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, false, nil
	}
	var settings lspSettings
	if err := json.Unmarshal(raw, &settings); err != nil {
		return nil, false, fmt.Errorf("decode settings: %w", err)
	}
	if len(settings.PerlToolbox) == 0 || string(settings.PerlToolbox) == "null" {
		return nil, false, nil
	}
	var overlay config.Overlay
	if err := json.Unmarshal(settings.PerlToolbox, &overlay); err != nil {
		return nil, false, fmt.Errorf("decode %s settings: %w", settingsKey, err)
	}
	return &overlay, true, nil
}
