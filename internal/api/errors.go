package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/text/language"

	"github.com/kalambet/dietfit/internal/bmi"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	writeJSON(w, code, map[string]any{
		"error": map[string]any{
			"message": fmt.Sprintf(format, args...),
			"type":    errType,
		},
	})
}

// writeUnavailable answers with 422 and the neutral placeholder so callers
// can still render something.
func writeUnavailable(w http.ResponseWriter, err error, p bmi.Presentation) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
		"error": map[string]any{
			"message": err.Error(),
			"type":    "invalid_measurement",
		},
		"placeholder": p,
	})
}

func placeholder(tag language.Tag) bmi.Presentation {
	return bmi.PresentationOf(bmi.Unavailable, tag)
}
