package prompt

import "github.com/cliplens/cliplens/models"

// DefaultLanguage is used when the caller supplies no language or an
// unsupported code.
var DefaultLanguage = models.Language{Code: "en", Name: "English"}

var supportedLanguages = []models.Language{
	{Code: "en", Name: "English"},
	{Code: "es", Name: "Spanish"},
	{Code: "fr", Name: "French"},
	{Code: "de", Name: "German"},
	{Code: "it", Name: "Italian"},
	{Code: "pt", Name: "Portuguese"},
	{Code: "ru", Name: "Russian"},
	{Code: "ja", Name: "Japanese"},
	{Code: "ko", Name: "Korean"},
	{Code: "zh", Name: "Chinese"},
	{Code: "hi", Name: "Hindi"},
	{Code: "ar", Name: "Arabic"},
	{Code: "tr", Name: "Turkish"},
	{Code: "pl", Name: "Polish"},
	{Code: "nl", Name: "Dutch"},
	{Code: "uk", Name: "Ukrainian"},
	{Code: "vi", Name: "Vietnamese"},
	{Code: "id", Name: "Indonesian"},
}

// Lookup resolves a language code, falling back to English for unset or
// unsupported codes.
func Lookup(code string) models.Language {
	for _, lang := range supportedLanguages {
		if lang.Code == code {
			return lang
		}
	}
	return DefaultLanguage
}

// Supported returns the languages the prompt templates know how to request.
func Supported() []models.Language {
	out := make([]models.Language, len(supportedLanguages))
	copy(out, supportedLanguages)
	return out
}
