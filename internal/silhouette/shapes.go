package silhouette

import (
	"fmt"

	"github.com/kalambet/dietfit/internal/bmi"
)

// Shape holds half-widths in SVG units for a figure 360 units tall.
type Shape struct {
	Shoulder float64 `json:"shoulder"`
	Chest    float64 `json:"chest"`
	Waist    float64 `json:"waist"`
	Hip      float64 `json:"hip"`
	Arm      float64 `json:"arm"`
	Thigh    float64 `json:"thigh"`
}

func (s Shape) defined() bool {
	return s.Shoulder > 0 && s.Chest > 0 && s.Waist > 0 && s.Hip > 0 && s.Arm > 0 && s.Thigh > 0
}

// The array dimensions are the enum sizes, so adding a gender or category
// changes the type and every literal below must be revisited.
var shapes = [NumGenders][bmi.NumCategories]Shape{
	Male: {
		bmi.Underweight: {Shoulder: 34, Chest: 26, Waist: 20, Hip: 24, Arm: 8, Thigh: 14},
		bmi.Normal:      {Shoulder: 38, Chest: 31, Waist: 26, Hip: 29, Arm: 10, Thigh: 17},
		bmi.Overweight:  {Shoulder: 40, Chest: 36, Waist: 34, Hip: 34, Arm: 12, Thigh: 20},
		bmi.Obese:       {Shoulder: 43, Chest: 42, Waist: 44, Hip: 41, Arm: 14, Thigh: 24},
	},
	Female: {
		bmi.Underweight: {Shoulder: 29, Chest: 23, Waist: 17, Hip: 25, Arm: 7, Thigh: 13},
		bmi.Normal:      {Shoulder: 32, Chest: 28, Waist: 22, Hip: 32, Arm: 9, Thigh: 16},
		bmi.Overweight:  {Shoulder: 35, Chest: 33, Waist: 30, Hip: 38, Arm: 11, Thigh: 19},
		bmi.Obese:       {Shoulder: 39, Chest: 39, Waist: 40, Hip: 45, Arm: 13, Thigh: 23},
	},
}

func init() {
	if err := checkShapes(); err != nil {
		panic(err)
	}
}

// checkShapes fails on any zero cell. A missing variant is a build defect.
func checkShapes() error {
	for _, v := range Variants() {
		if !shapes[v.Gender][v.Category].defined() {
			return fmt.Errorf("silhouette: undefined variant %s", v.Key())
		}
	}
	return nil
}

// ShapeOf returns the shape for v. v must hold a real gender and category.
func ShapeOf(v Variant) Shape {
	return shapes[v.Gender][v.Category]
}
