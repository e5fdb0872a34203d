package bmi

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Presentation is what a view needs to show a category: a tint and a label.
type Presentation struct {
	Category Category `json:"category"`
	Color    string   `json:"color"`
	Label    string   `json:"label"`
}

var colors = [NumCategories]string{
	Underweight: "#3b82f6",
	Normal:      "#10b981",
	Overweight:  "#eab308",
	Obese:       "#ef4444",
}

// PlaceholderColor tints the Unavailable state.
const PlaceholderColor = "#9ca3af"

// English labels double as catalog keys.
var labelKeys = [NumCategories]string{
	Underweight: "Underweight",
	Normal:      "Normal",
	Overweight:  "Overweight",
	Obese:       "Obese",
}

const unavailableKey = "Unavailable"

var translations = map[language.Tag]map[string]string{
	language.German: {
		"Underweight": "Untergewicht",
		"Normal":      "Normalgewicht",
		"Overweight":  "Übergewicht",
		"Obese":       "Adipositas",
		"Unavailable": "Nicht verfügbar",
	},
	language.Spanish: {
		"Underweight": "Bajo peso",
		"Normal":      "Normal",
		"Overweight":  "Sobrepeso",
		"Obese":       "Obesidad",
		"Unavailable": "No disponible",
	},
}

var labels = newLabelCatalog()

func newLabelCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for tag, msgs := range translations {
		for key, msg := range msgs {
			if err := b.SetString(tag, key, msg); err != nil {
				panic("bmi: building label catalog: " + err.Error())
			}
		}
	}
	return b
}

// Printer returns a message printer bound to the label catalog.
// Unsupported languages fall back to English.
func Printer(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag, message.Catalog(labels))
}

// SupportedLanguages lists the languages with translated labels.
func SupportedLanguages() []language.Tag {
	return []language.Tag{language.English, language.German, language.Spanish}
}

// PresentationOf returns the color and localized label for c.
// Every category has an entry; anything else gets the placeholder.
func PresentationOf(c Category, tag language.Tag) Presentation {
	p := Printer(tag)
	if !c.Valid() {
		return Presentation{Category: Unavailable, Color: PlaceholderColor, Label: p.Sprintf(unavailableKey)}
	}
	return Presentation{Category: c, Color: colors[c], Label: p.Sprintf(labelKeys[c])}
}

// Format renders a BMI with two decimals using the locale's separators.
func Format(v float64, tag language.Tag) string {
	return Printer(tag).Sprintf("%.2f", v)
}
