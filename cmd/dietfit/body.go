package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/kalambet/dietfit/internal/api"
	"github.com/kalambet/dietfit/internal/bmi"
	"github.com/kalambet/dietfit/internal/health"
	"github.com/kalambet/dietfit/internal/profile"
	"github.com/kalambet/dietfit/internal/silhouette"
	"github.com/kalambet/dietfit/internal/storage"
)

// --- me ---

var meCmd = &cobra.Command{
	Use:   "me",
	Short: "Show your profile, classification and health metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		offline, _ := cmd.Flags().GetBool("offline")
		asJSON, _ := cmd.Flags().GetBool("json")

		e, err := loadEnv()
		if err != nil {
			return err
		}
		if !offline && !e.client.LoggedIn() {
			return errNotLoggedIn
		}

		store, err := openStore(e.cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		mgr := profile.NewManager(e.client, store, profile.Options{Language: e.lang})
		var v profile.View
		if offline {
			v, err = mgr.Offline()
			if errors.Is(err, storage.ErrNotFound) {
				return errors.New("no cached profile: run `dietfit me` while online first")
			}
		} else {
			v, err = mgr.Get(cmd.Context())
		}
		if err != nil {
			return err
		}

		if asJSON {
			return printJSON(cmd.OutOrStdout(), v)
		}
		printView(cmd.OutOrStdout(), v, e.lang)
		return nil
	},
}

func printView(w io.Writer, v profile.View, tag language.Tag) {
	u := v.User
	printField(w, "Name", "%s", u.DisplayName())
	printField(w, "Email", "%s", u.Email)
	printField(w, "Body", "%.1f cm, %.1f kg, %s, %d years", u.HeightCm, u.WeightKg, u.Gender, u.Age)
	printField(w, "Activity", "%s", u.ActivityLevel)
	if u.TargetWeightKg != nil {
		printField(w, "Target", "%.1f kg", *u.TargetWeightKg)
	}

	if d := v.Silhouette; d != nil {
		printField(w, "BMI", "%s %s", bmi.Format(d.BMI, tag), colorizeCategory(d.Variant.Category, d.Label))
		printField(w, "Silhouette", "%s (scale %.2f)", d.Key, d.VerticalScale)
	} else if v.Placeholder != nil {
		printField(w, "BMI", "%s", colorizeCategory(bmi.Unavailable, v.Placeholder.Label))
	}

	if h := v.Health; h != nil {
		src := ""
		if v.HealthSource == profile.HealthFromLocal {
			src = colorize(colorGray, " (estimated locally)")
		}
		printHealth(w, v, src)
	}

	if v.Stale {
		printWarning("Backend unreachable: showing profile cached at %s", v.FetchedAt.Local().Format(time.DateTime))
	}
}

// printHealth prints the metric lines shared by me and health.
func printHealth(w io.Writer, v profile.View, src string) {
	h := v.Health
	if v.BodyFatUnknown {
		printField(w, "Body fat", "%s", colorize(colorGray, "unknown (needs waist, neck and hip)"))
	} else {
		printField(w, "Body fat", "%.1f%%%s", h.BodyFatPercent, src)
	}
	printField(w, "BMR", "%.0f kcal", h.BMR)
	printField(w, "TDEE", "%.0f kcal", h.TDEE)
}

func init() {
	meCmd.Flags().Bool("offline", false, "show the cached profile without contacting the backend")
	meCmd.Flags().Bool("json", false, "print the view as JSON")
}

// --- health ---

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Show health metrics and daily calorie targets",
	RunE: func(cmd *cobra.Command, args []string) error {
		deficit, _ := cmd.Flags().GetInt("deficit")

		e, err := loggedIn()
		if err != nil {
			return err
		}
		store, err := openStore(e.cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		v, err := profile.NewManager(e.client, store, profile.Options{Language: e.lang}).Get(cmd.Context())
		if err != nil {
			return err
		}
		h := v.Health
		if h == nil {
			return errors.New("health metrics unavailable: set height, weight, age and activity level with `dietfit users update`")
		}
		switch {
		case v.Stale:
			printWarning("Backend unreachable: using profile cached at %s", v.FetchedAt.Local().Format(time.DateTime))
		case v.HealthSource == profile.HealthFromLocal:
			printWarning("Backend could not compute health metrics: showing local estimates")
		}

		w := cmd.OutOrStdout()
		printField(w, "BMI", "%s", bmi.Format(h.BMI, e.lang))
		printHealth(w, v, "")

		target := health.TargetCalories(h.TDEE, deficit, v.User.Gender == silhouette.Female.String())
		printField(w, "Daily target", "%.0f kcal (%+d)", target, deficit)
		for _, m := range health.MealTargets(target) {
			fmt.Fprintf(w, "  %-10s %6.0f kcal\n", m.Meal, m.Kcal)
		}
		return nil
	},
}

func init() {
	healthCmd.Flags().Int("deficit", health.DefaultDeficit, "daily calorie adjustment applied to TDEE")
}

// --- classify ---

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify a height and weight into a BMI category",
	Long: `Classify a height and weight into a BMI category and silhouette variant.

Examples:
  dietfit classify --height 170 --weight 72 --gender female
  dietfit classify --height 182 --weight 95 --gender male --lang de --save`,
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		save, _ := cmd.Flags().GetBool("save")

		m, tag, e, err := measurementFlags(cmd)
		if err != nil {
			return err
		}

		c, err := api.Classify(m, tag)
		if errors.Is(err, bmi.ErrInvalidMeasurement) {
			p := bmi.PresentationOf(bmi.Unavailable, tag)
			fmt.Fprintln(cmd.OutOrStdout(), colorizeCategory(bmi.Unavailable, p.Label))
			return err
		}
		if err != nil {
			return err
		}

		if save {
			store, err := openStore(e.cfg)
			if err != nil {
				return err
			}
			defer store.Close()
			saved, err := store.SaveMeasurement(api.NewMeasurement(m, c))
			if err != nil {
				return fmt.Errorf("saving measurement: %w", err)
			}
			printSuccess("Saved measurement %s", saved.ID)
		}

		w := cmd.OutOrStdout()
		if asJSON {
			return printJSON(w, c)
		}
		printField(w, "BMI", "%s", c.BMIText)
		printField(w, "Category", "%s", colorizeCategory(c.Category, c.Silhouette.Label))
		printField(w, "Color", "%s", c.Silhouette.Color)
		printField(w, "Silhouette", "%s (scale %.2f)", c.Silhouette.Key, c.Silhouette.VerticalScale)
		return nil
	},
}

// measurementFlags reads --height, --weight, --gender and --lang.
func measurementFlags(cmd *cobra.Command) (silhouette.BodyMetrics, language.Tag, *env, error) {
	height, _ := cmd.Flags().GetFloat64("height")
	weight, _ := cmd.Flags().GetFloat64("weight")
	gender, _ := cmd.Flags().GetString("gender")
	lang, _ := cmd.Flags().GetString("lang")

	g, err := silhouette.ParseGender(gender)
	if err != nil {
		return silhouette.BodyMetrics{}, language.Und, nil, err
	}
	e, err := loadEnv()
	if err != nil {
		return silhouette.BodyMetrics{}, language.Und, nil, err
	}
	tag := e.lang
	if lang != "" {
		tag = api.MatchLanguage(lang, e.lang)
	}
	return silhouette.BodyMetrics{HeightCm: height, WeightKg: weight, Gender: g}, tag, e, nil
}

func addMeasurementFlags(cmd *cobra.Command) {
	cmd.Flags().Float64("height", 0, "height in cm")
	cmd.Flags().Float64("weight", 0, "weight in kg")
	cmd.Flags().String("gender", "", "male or female")
	cmd.Flags().String("lang", "", "label language (en, de, es); defaults to display.locale")
}

func init() {
	addMeasurementFlags(classifyCmd)
	classifyCmd.Flags().Bool("json", false, "print the classification as JSON")
	classifyCmd.Flags().Bool("save", false, "append the measurement to the local history")
}

// --- silhouette ---

var silhouetteCmd = &cobra.Command{
	Use:   "silhouette",
	Short: "Render the body silhouette for a height and weight as SVG",
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")

		m, tag, _, err := measurementFlags(cmd)
		if err != nil {
			return err
		}
		d, err := silhouette.FromMetrics(m, tag)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if output != "" {
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("creating output file: %w", err)
			}
			defer f.Close()
			w = f
		}
		if err := silhouette.Render(w, d); err != nil {
			return err
		}
		if output != "" {
			printSuccess("Wrote %s silhouette to %s", d.Key, output)
		}
		return nil
	},
}

func init() {
	addMeasurementFlags(silhouetteCmd)
	silhouetteCmd.Flags().String("output", "", "output file path (default: stdout)")
}

// --- history ---

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List measurements saved with classify --save",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		asJSON, _ := cmd.Flags().GetBool("json")
		if limit <= 0 {
			return errors.New("--limit must be positive")
		}

		e, err := loadEnv()
		if err != nil {
			return err
		}
		store, err := openStore(e.cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		ms, err := store.RecentMeasurements(limit)
		if err != nil {
			return fmt.Errorf("listing measurements: %w", err)
		}

		w := cmd.OutOrStdout()
		if asJSON {
			out := make([]api.MeasurementJSON, len(ms))
			for i, m := range ms {
				out[i] = api.MeasurementJSON(m)
			}
			return printJSON(w, out)
		}
		if len(ms) == 0 {
			fmt.Fprintln(w, "No measurements recorded.")
			return nil
		}
		for _, m := range ms {
			cat, _ := bmi.ParseCategory(m.Category)
			label := bmi.PresentationOf(cat, e.lang).Label
			fmt.Fprintf(w, "%s  %6.1f cm  %6.1f kg  %-6s  %s  %s\n",
				colorize(colorCyan, m.CreatedAt.Local().Format(time.DateTime)),
				m.HeightCm, m.WeightKg, m.Gender,
				bmi.Format(m.BMI, e.lang),
				colorizeCategory(cat, label),
			)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().Int("limit", 20, "maximum number of entries")
	historyCmd.Flags().Bool("json", false, "print entries as JSON")
}
