package dashscope

import "strings"

// languageCodes maps the language names accepted on the command line to
// the short codes used by the voice design API.
var languageCodes = map[string]string{
	"chinese":    "zh",
	"english":    "en",
	"japanese":   "ja",
	"korean":     "ko",
	"cantonese":  "yue",
	"german":     "de",
	"french":     "fr",
	"spanish":    "es",
	"portuguese": "pt",
	"italian":    "it",
	"russian":    "ru",
}

// LanguageCode returns the short code for a language name or code; unknown
// values pass through lower-cased.
func LanguageCode(lang string) string {
	l := strings.ToLower(strings.TrimSpace(lang))
	if code, ok := languageCodes[l]; ok {
		return code
	}
	return l
}

// LanguageType returns the capitalized language name the realtime session
// expects ("Korean"), accepting names or short codes.
func LanguageType(lang string) string {
	l := strings.ToLower(strings.TrimSpace(lang))
	switch l {
	case "", "auto":
		return "Auto"
	}
	for name, code := range languageCodes {
		if l == name || l == code {
			return strings.ToUpper(name[:1]) + name[1:]
		}
	}
	return lang
}
