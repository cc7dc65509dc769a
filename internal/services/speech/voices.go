// File: internal/services/speech/voices.go
package speech

import "strings"

const DefaultVoice = "en-US-JennyNeural"

var voices = map[string]string{
	"english":    "en-US-JennyNeural",
	"spanish":    "es-ES-ElviraNeural",
	"french":     "fr-FR-DeniseNeural",
	"german":     "de-DE-KatjaNeural",
	"italian":    "it-IT-ElsaNeural",
	"portuguese": "pt-BR-FranciscaNeural",
	"japanese":   "ja-JP-NanamiNeural",
	"chinese":    "zh-CN-XiaoxiaoNeural",
}

var locales = map[string]string{
	"english":    "en-US",
	"spanish":    "es-ES",
	"french":     "fr-FR",
	"german":     "de-DE",
	"italian":    "it-IT",
	"portuguese": "pt-BR",
	"japanese":   "ja-JP",
	"chinese":    "zh-CN",
}

func normalizeLanguage(language string) string {
	return strings.ToLower(strings.TrimSpace(language))
}

// VoiceFor maps a language name to a neural voice, falling back to DefaultVoice.
func VoiceFor(language string) string {
	if v, ok := voices[normalizeLanguage(language)]; ok {
		return v
	}
	return DefaultVoice
}

// LocaleFor maps a language name to a recognition locale. Unknown names are
// passed through so callers can send a locale such as "ko-KR" directly.
func LocaleFor(language string) string {
	if l, ok := locales[normalizeLanguage(language)]; ok {
		return l
	}
	return strings.TrimSpace(language)
}

// voiceLocale is the xml:lang of a voice name such as "es-ES-ElviraNeural".
func voiceLocale(voice string) string {
	parts := strings.SplitN(voice, "-", 3)
	if len(parts) < 3 {
		return "en-US"
	}
	return parts[0] + "-" + parts[1]
}
