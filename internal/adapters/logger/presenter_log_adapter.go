package logger_adapter

import (
	"classifieds-browser/internal/core/domain"
	"classifieds-browser/internal/core/port"
)

// PresenterLogAdapter - presenter для режима без UI: изменения экрана только пишутся в лог.
type PresenterLogAdapter struct {
	logger port.LoggerPort
}

func NewPresenterLogAdapter(logger port.LoggerPort) *PresenterLogAdapter {
	return &PresenterLogAdapter{logger: logger.WithFields(port.Fields{"component": "presenter"})}
}

func (p *PresenterLogAdapter) StateChanged(state domain.DisplayState) {
	p.logger.Info("Display state changed", port.Fields{"state": string(state), "title": state.Title()})
}

func (p *PresenterLogAdapter) LoadingChanged(loading bool) {
	p.logger.Debug("Loading indicator changed", port.Fields{"loading": loading})
}

func (p *PresenterLogAdapter) DisplayChanged(update domain.DisplayUpdate, displayed []domain.Listing) {
	p.logger.Debug("Displayed list changed", port.Fields{
		"update_kind": string(update.Kind),
		"removed":     len(update.Removed),
		"added":       len(update.Added),
		"displayed":   len(displayed),
	})
}
