// Package i18n localizes trustee's user-facing strings.
//
// Call Init once at startup (and again on config reload), then:
//
//	i18n.T("common.loading", "Loading...")
//	i18n.Tf("tui.picker.skipped", "%d skipped", n)
//	i18n.Tn("tui.picker.sessions", "{{.Count}} session", "{{.Count}} sessions", n)
//
// Every call carries its English default, so missing translations and even
// a missing Init degrade to English instead of blank output.
package i18n

import (
	"embed"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.toml
var localeFS embed.FS

var (
	mu        sync.RWMutex
	localizer *i18n.Localizer
)

// Init builds the localizer for the given language tag, falling back to
// English for anything the locale files do not cover. Safe to call again
// after a config reload.
func Init(lang string) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	entries, _ := localeFS.ReadDir("locales")
	for _, e := range entries {
		// A file that fails to load just leaves its language untranslated.
		_, _ = bundle.LoadMessageFileFS(localeFS, "locales/"+e.Name())
	}

	mu.Lock()
	localizer = i18n.NewLocalizer(bundle, lang, "en")
	mu.Unlock()
}

func current() *i18n.Localizer {
	mu.RLock()
	defer mu.RUnlock()
	return localizer
}

// T returns the localized string for id. defaultMsg doubles as the English
// text and as what goi18n extract reads from source.
func T(id, defaultMsg string) string {
	l := current()
	if l == nil {
		return defaultMsg
	}
	s, err := l.Localize(&i18n.LocalizeConfig{
		DefaultMessage: &i18n.Message{ID: id, Other: defaultMsg},
	})
	if err != nil {
		return defaultMsg
	}
	return s
}

// Tf localizes id and applies fmt.Sprintf-style args to the result.
func Tf(id, defaultMsg string, args ...any) string {
	return fmt.Sprintf(T(id, defaultMsg), args...)
}

// Tn localizes with plural selection. one and other use template syntax
// with {{.Count}}.
func Tn(id, one, other string, count int) string {
	l := current()
	if l == nil {
		return fillCount(one, other, count)
	}
	s, err := l.Localize(&i18n.LocalizeConfig{
		DefaultMessage: &i18n.Message{ID: id, One: one, Other: other},
		PluralCount:    count,
		TemplateData:   map[string]int{"Count": count},
	})
	if err != nil {
		return fillCount(one, other, count)
	}
	return s
}

func fillCount(one, other string, count int) string {
	msg := other
	if count == 1 {
		msg = one
	}
	return strings.ReplaceAll(msg, "{{.Count}}", strconv.Itoa(count))
}

// ResolveLocale picks the active locale: TRUSTEE_LANG beats the config
// value, which beats LC_ALL/LANG, which beat the "en" default.
func ResolveLocale(configLang string) string {
	if v := os.Getenv("TRUSTEE_LANG"); v != "" {
		return v
	}
	if configLang != "" {
		return configLang
	}
	for _, env := range []string{"LC_ALL", "LANG"} {
		if v := os.Getenv(env); v != "" {
			return posixToBCP47(v)
		}
	}
	return "en"
}

// posixToBCP47 maps locale names like "es_MX.UTF-8" to tags like "es-MX".
func posixToBCP47(posix string) string {
	if name, _, found := strings.Cut(posix, "."); found {
		posix = name
	}
	return strings.ReplaceAll(posix, "_", "-")
}
