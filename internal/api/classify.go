package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/text/language"

	"github.com/kalambet/dietfit/internal/bmi"
	"github.com/kalambet/dietfit/internal/metrics"
	"github.com/kalambet/dietfit/internal/silhouette"
	"github.com/kalambet/dietfit/internal/storage"
)

// Classification is the answer to a classify request.
type Classification struct {
	BMI        float64               `json:"bmi"`
	BMIText    string                `json:"bmi_text"`
	Category   bmi.Category          `json:"category"`
	Silhouette silhouette.Descriptor `json:"silhouette"`
}

// errBadRequest marks input that could not be parsed, as opposed to a
// well-formed but invalid measurement.
var errBadRequest = errors.New("bad request")

var languages = language.NewMatcher(bmi.SupportedLanguages())

// Classify computes the classification for m and counts it.
func Classify(m silhouette.BodyMetrics, tag language.Tag) (Classification, error) {
	d, err := silhouette.FromMetrics(m, tag)
	if err != nil {
		metrics.IncClassification(bmi.Unavailable.String())
		return Classification{}, err
	}
	metrics.IncClassification(d.Variant.Category.String())
	return Classification{
		BMI:        bmi.Round(d.BMI),
		BMIText:    bmi.Format(d.BMI, tag),
		Category:   d.Variant.Category,
		Silhouette: d,
	}, nil
}

// parseBodyMetrics reads height_cm, weight_kg and gender from the query.
func parseBodyMetrics(r *http.Request) (silhouette.BodyMetrics, error) {
	q := r.URL.Query()
	height, err := parseFloatParam(q.Get("height_cm"), "height_cm")
	if err != nil {
		return silhouette.BodyMetrics{}, err
	}
	weight, err := parseFloatParam(q.Get("weight_kg"), "weight_kg")
	if err != nil {
		return silhouette.BodyMetrics{}, err
	}
	g, err := silhouette.ParseGender(q.Get("gender"))
	if err != nil {
		return silhouette.BodyMetrics{}, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return silhouette.BodyMetrics{HeightCm: height, WeightKg: weight, Gender: g}, nil
}

func parseFloatParam(raw, name string) (float64, error) {
	if raw == "" {
		return 0, fmt.Errorf("%w: %s is required", errBadRequest, name)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number", errBadRequest, name)
	}
	return v, nil
}

// requestLanguage picks the label language from ?lang=, then
// Accept-Language, then fallback.
func requestLanguage(r *http.Request, fallback language.Tag) language.Tag {
	if l := r.URL.Query().Get("lang"); l != "" {
		return MatchLanguage(l, fallback)
	}
	if al := r.Header.Get("Accept-Language"); al != "" {
		return MatchLanguage(al, fallback)
	}
	return fallback
}

// MatchLanguage resolves a BCP 47 tag or Accept-Language list to a supported
// language. Unparseable input yields fallback.
func MatchLanguage(s string, fallback language.Tag) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(s)
	if err != nil || len(tags) == 0 {
		return fallback
	}
	_, idx, conf := languages.Match(tags...)
	if conf == language.No {
		return fallback
	}
	return bmi.SupportedLanguages()[idx]
}

// NewMeasurement turns a classification into a history entry.
func NewMeasurement(m silhouette.BodyMetrics, c Classification) storage.Measurement {
	return storage.Measurement{
		HeightCm: m.HeightCm,
		WeightKg: m.WeightKg,
		Gender:   m.Gender.String(),
		BMI:      c.BMI,
		Category: c.Category.String(),
	}
}
