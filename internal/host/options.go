package host

import (
	"github.com/dshills/caret/internal/config"
	"github.com/dshills/caret/internal/engine"
	"github.com/dshills/caret/internal/logging"
)

// EngineOptions translates a configuration into engine options.
func EngineOptions(cfg *config.Config, log *logging.Logger) ([]engine.Option, error) {
	style, err := cfg.Style.Resolve()
	if err != nil {
		return nil, err
	}
	overflow, err := cfg.Editor.OverflowPolicy()
	if err != nil {
		return nil, err
	}
	provider, err := cfg.Metrics.Provider()
	if err != nil {
		return nil, err
	}

	opts := []engine.Option{
		engine.WithStyle(style),
		engine.WithMetrics(provider),
		engine.WithOverflowPolicy(overflow),
		engine.WithCaretWidth(cfg.Editor.CaretWidth),
		engine.WithWidthCacheSize(cfg.Editor.WidthCacheSize),
		engine.WithMaxUndoEntries(cfg.Editor.MaxUndo),
		engine.WithLogger(log),
	}
	if cfg.Editor.Normalize {
		opts = append(opts, engine.WithNFC())
	}
	if cfg.Editor.ReadOnly {
		opts = append(opts, engine.WithReadOnly())
	}
	return opts, nil
}
