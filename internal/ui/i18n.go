package ui

import (
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/go-chaldean-clock/internal/config"
	"github.com/tartampluch/go-chaldean-clock/internal/engine"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// SetupI18n initializes the translation bundle and detects available languages.
func (app *ClockApp) SetupI18n() {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		slog.Error(config.ErrLocalesAccess,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyError, err,
		)
		return
	}

	var detectedLangs []string

	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "active.") || !strings.HasSuffix(name, ".json") {
			slog.Debug(config.MsgLocaleSkip,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		langCode := strings.TrimSuffix(strings.TrimPrefix(name, "active."), ".json")
		if langCode == "" {
			slog.Warn(config.MsgLocaleBadName,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		if _, err := bundle.LoadMessageFileFS(localeFS, "locales/"+name); err != nil {
			slog.Error(config.ErrLocaleLoad,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
				config.LogKeyError, err,
			)
			continue
		}
		detectedLangs = append(detectedLangs, langCode)
		slog.Debug(config.MsgLocaleLoaded,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyLang, langCode,
			config.LogKeyFile, name,
		)
	}

	app.SupportedLanguages = detectedLangs
	app.I18nBundle = bundle
	app.UpdateLocalizer()
}

// UpdateLocalizer refreshes the translator. The preference set from the
// controls window wins over the configured language.
func (app *ClockApp) UpdateLocalizer() {
	lang := app.Preferences.StringWithFallback(config.PrefLanguage, app.Session.Params.Language)
	if lang == "" {
		lang = config.DefaultLanguage
	}
	app.Localizer = i18n.NewLocalizer(app.I18nBundle, lang)
}

// GetMsg is a helper to translate a key safely. Unknown keys come back as is.
func (app *ClockApp) GetMsg(key string) string {
	if msg := app.localize(key, nil); msg != "" {
		return msg
	}
	return key
}

// localize translates key with template data, returning "" when the key is
// unknown or no localizer is loaded.
func (app *ClockApp) localize(key string, data map[string]any) string {
	if app.Localizer == nil {
		return ""
	}
	msg, err := app.Localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
	})
	if err != nil {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, key,
			config.LogKeyError, err,
		)
		return ""
	}
	return msg
}

// PlanetName returns the localized label of p, or its English label.
func (app *ClockApp) PlanetName(p engine.Planet) string {
	if msg := app.localize(config.TKeyPlanetPrefix+p.Key(), nil); msg != "" {
		return msg
	}
	return p.String()
}

// PlanetMeaning returns the localized influence of p, or the English one.
func (app *ClockApp) PlanetMeaning(p engine.Planet) string {
	if msg := app.localize(config.TKeyMeaningPrefix+p.Key(), nil); msg != "" {
		return msg
	}
	return p.Meaning()
}

// buildSummaryFormatter returns a closure that localizes the feed summaries.
func (app *ClockApp) buildSummaryFormatter() func(day, hour int, ruler engine.Planet) string {
	return func(day, hour int, ruler engine.Planet) string {
		msg := app.localize(config.TKeyEvtSummary, map[string]any{
			"Day":   day,
			"Hour":  hour,
			"Ruler": app.PlanetName(ruler),
		})
		if msg == "" {
			return fmt.Sprintf(config.FallbackSummary, day, hour, ruler)
		}
		return msg
	}
}
