// Package locale defines the languages the widget renders and the calendar
// names used when formatting slot labels.
package locale

import (
	"strings"

	"golang.org/x/text/language"
)

// Language is one of the supported display languages.
type Language int

const (
	// English is the catch-all language for unrecognized codes.
	English Language = iota
	// Romanian is the default language of the widget.
	Romanian
	// Russian.
	Russian
)

// Default is used when neither the URL nor the stored preferences name a language.
const Default = Romanian

var supported = []language.Tag{language.English, language.Romanian, language.Russian}

var matcher = language.NewMatcher(supported)

// Code returns the two letter code used in URLs and storage.
func (l Language) Code() string {
	switch l {
	case Romanian:
		return "ro"
	case Russian:
		return "ru"
	case English:
		return "en"
	}
	return "en"
}

func (l Language) String() string {
	return l.Code()
}

// Tag returns the BCP 47 tag of the language.
func (l Language) Tag() language.Tag {
	switch l {
	case Romanian:
		return language.Romanian
	case Russian:
		return language.Russian
	case English:
		return language.English
	}
	return language.English
}

// Lookup resolves a language code such as "ro", "ru-RU" or "EN". The boolean
// reports whether the code named a supported language.
func Lookup(code string) (Language, bool) {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return English, false
	}
	tag, err := language.Parse(trimmed)
	if err != nil {
		return English, false
	}
	base, _ := tag.Base()
	switch base.String() {
	case "ro":
		return Romanian, true
	case "ru":
		return Russian, true
	case "en":
		return English, true
	}
	return English, false
}

// Parse resolves a language code, falling back to English.
func Parse(code string) Language {
	lang, _ := Lookup(code)
	return lang
}

// Match picks the best supported language for an Accept-Language style list.
// When nothing matches, fallback is returned.
func Match(fallback Language, prefs ...string) Language {
	tags := make([]language.Tag, 0, len(prefs))
	for _, pref := range prefs {
		parsed, _, err := language.ParseAcceptLanguage(pref)
		if err != nil {
			continue
		}
		tags = append(tags, parsed...)
	}
	if len(tags) == 0 {
		return fallback
	}
	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return fallback
	}
	switch index {
	case 1:
		return Romanian
	case 2:
		return Russian
	default:
		return English
	}
}

// All lists the supported languages in display order.
func All() []Language {
	return []Language{Romanian, English, Russian}
}
