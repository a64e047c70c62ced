package export

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Message keys.
const (
	msgSuccess = "exportSuccess"
	msgFailed  = "exportFailed"
)

var supported = []language.Tag{language.English, language.German}

func init() {
	_ = message.SetString(language.English, msgSuccess, "Export successful")
	_ = message.SetString(language.English, msgFailed, "Export failed: %s")
	_ = message.SetString(language.German, msgSuccess, "Export erfolgreich")
	_ = message.SetString(language.German, msgFailed, "Export fehlgeschlagen: %s")
}

// printerFor returns a printer for the closest supported language to lang,
// falling back to English.
func printerFor(lang string) *message.Printer {
	tag, err := language.Parse(lang)
	if err != nil {
		return message.NewPrinter(language.English)
	}
	_, idx, _ := language.NewMatcher(supported).Match(tag)
	return message.NewPrinter(supported[idx])
}
