package interpreter

import "strings"

// ExtFromContentType maps an audio MIME type to the file extension expected
// by multipart transcription endpoints.
func ExtFromContentType(ct string) string {
	switch {
	case strings.Contains(ct, "wav"):
		return ".wav"
	case strings.Contains(ct, "ogg"):
		return ".ogg"
	case strings.Contains(ct, "mp3"), strings.Contains(ct, "mpeg"):
		return ".mp3"
	case strings.Contains(ct, "flac"):
		return ".flac"
	case strings.Contains(ct, "webm"):
		return ".webm"
	case strings.Contains(ct, "m4a"):
		return ".m4a"
	default:
		return ".wav"
	}
}

// NormalizeLanguage converts full language names (as some backends return
// them) to ISO-639-1 codes.
func NormalizeLanguage(lang string) string {
	if len(lang) == 2 {
		return strings.ToLower(lang)
	}
	known := map[string]string{
		"english": "en",
		"polish":  "pl",
		"german":  "de",
		"french":  "fr",
		"spanish": "es",
		"italian": "it",
	}
	if code, ok := known[strings.ToLower(lang)]; ok {
		return code
	}
	return strings.ToLower(lang)
}
