package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
)

//go:embed locales/*.json
var localeFS embed.FS

// LoadFromEmbedFS загружает встроенные каталоги locales/<lang>.json.
func LoadFromEmbedFS(bundle *Bundle, logger *slog.Logger) error {
	return loadFS(bundle, localeFS, logger)
}

// loadFS читает каталог каждого языка из Locales и предупреждает
// о ключах, переведённых только на русский.
func loadFS(bundle *Bundle, fsys fs.FS, logger *slog.Logger) error {
	for _, lang := range Locales {
		name := "locales/" + lang + ".json"
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("i18n: чтение %s: %w", name, err)
		}
		if err := bundle.LoadMessages(lang, data); err != nil {
			return err
		}
	}

	for _, lang := range Locales {
		if missing := bundle.Missing(lang); len(missing) > 0 {
			logger.Warn("в каталоге нет переводов, используется русский",
				slog.String("lang", lang),
				slog.Int("count", len(missing)),
				slog.Any("keys", missing),
			)
		}
	}

	logger.Info("каталоги переводов загружены", slog.Int("languages", len(Locales)))
	return nil
}
