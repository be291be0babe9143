package source

import (
	"journeygrid/adapters/excel"
	"journeygrid/internal"
	"journeygrid/internal/config"
	"journeygrid/ports"
)

// New picks the source for cfg: the published URL when set, the local file otherwise
func New(cfg config.SourceConfig, logger *internal.Logger) ports.SourcePort {
	if cfg.URL != "" {
		return NewHTTPSource(Config{
			URL:      cfg.URL,
			GID:      cfg.GID,
			Timeout:  cfg.Timeout,
			MaxBytes: cfg.MaxBytes,
		}, logger)
	}
	return excel.NewDataReader(cfg.File, cfg.Sheet, cfg.MaxBytes, logger)
}
