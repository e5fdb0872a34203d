package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kalambet/dietfit/internal/apiclient"
	"github.com/kalambet/dietfit/internal/health"
)

// currentUserID resolves the signed-in user for per-user endpoints.
func currentUserID(ctx context.Context, e *env) (int, error) {
	u, err := e.client.Me(ctx)
	if err != nil {
		return 0, fmt.Errorf("loading profile: %w", err)
	}
	return u.ID, nil
}

// --- pantry ---

var pantryCmd = &cobra.Command{
	Use:   "pantry",
	Short: "Manage the ingredients you have at home",
}

var pantryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List pantry items",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loggedIn()
		if err != nil {
			return err
		}
		uid, err := currentUserID(cmd.Context(), e)
		if err != nil {
			return err
		}
		items, err := e.client.ListPantry(cmd.Context(), uid)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if len(items) == 0 {
			fmt.Fprintln(w, "Pantry is empty.")
			return nil
		}
		for _, it := range items {
			fmt.Fprintf(w, "%s  %-28s %8.1f %s\n",
				colorize(colorCyan, fmt.Sprintf("%4d", it.IngredientID)), it.IngredientName, it.Quantity, it.Unit)
		}
		return nil
	},
}

func pantryWriteCommand(use, short string, write func(ctx context.Context, c *apiclient.Client, uid, ingredientID int, qty float64) (*apiclient.PantryItem, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <ingredient-id> <quantity>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ingredientID, err := parseID(args[0])
			if err != nil {
				return err
			}
			qty, err := parseQuantity(args[1])
			if err != nil {
				return err
			}
			e, err := loggedIn()
			if err != nil {
				return err
			}
			uid, err := currentUserID(cmd.Context(), e)
			if err != nil {
				return err
			}
			it, err := write(cmd.Context(), e.client, uid, ingredientID, qty)
			if err != nil {
				return err
			}
			printSuccess("%s: %.1f %s", it.IngredientName, it.Quantity, it.Unit)
			return nil
		},
	}
}

var pantryAddCmd = pantryWriteCommand("add", "Add an ingredient to the pantry",
	func(ctx context.Context, c *apiclient.Client, uid, ingredientID int, qty float64) (*apiclient.PantryItem, error) {
		return c.AddPantryItem(ctx, uid, ingredientID, qty)
	})

var pantrySetCmd = pantryWriteCommand("set", "Change the quantity of a pantry item",
	func(ctx context.Context, c *apiclient.Client, uid, ingredientID int, qty float64) (*apiclient.PantryItem, error) {
		return c.UpdatePantryItem(ctx, uid, ingredientID, qty)
	})

var pantryRemoveCmd = &cobra.Command{
	Use:   "remove <ingredient-id>",
	Short: "Remove an ingredient from the pantry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ingredientID, err := parseID(args[0])
		if err != nil {
			return err
		}
		e, err := loggedIn()
		if err != nil {
			return err
		}
		uid, err := currentUserID(cmd.Context(), e)
		if err != nil {
			return err
		}
		if err := e.client.RemovePantryItem(cmd.Context(), uid, ingredientID); err != nil {
			return err
		}
		printSuccess("Removed ingredient %d", ingredientID)
		return nil
	},
}

func init() {
	pantryCmd.AddCommand(pantryListCmd, pantryAddCmd, pantrySetCmd, pantryRemoveCmd)
}

// --- ingredients ---

var ingredientsCmd = &cobra.Command{
	Use:   "ingredients",
	Short: "Browse the ingredient catalog",
}

var ingredientsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List ingredients",
	RunE: func(cmd *cobra.Command, args []string) error {
		skip, _ := cmd.Flags().GetInt("skip")
		limit, _ := cmd.Flags().GetInt("limit")

		e, err := loggedIn()
		if err != nil {
			return err
		}
		ings, err := e.client.ListIngredients(cmd.Context(), skip, limit)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		for _, in := range ings {
			fmt.Fprintf(w, "%s  %-28s %6.2f kcal/%s\n", colorize(colorCyan, fmt.Sprintf("%4d", in.ID)), in.Name, in.KcalPerUnit, in.Unit)
		}
		return nil
	},
}

func init() {
	ingredientsListCmd.Flags().Int("skip", 0, "number of ingredients to skip")
	ingredientsListCmd.Flags().Int("limit", 100, "maximum number of ingredients to list")
	ingredientsCmd.AddCommand(ingredientsListCmd)
}

// --- recipes ---

var recipesCmd = &cobra.Command{
	Use:   "recipes",
	Short: "Browse recipes ranked against your pantry",
}

var recipesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recipes",
	RunE: func(cmd *cobra.Command, args []string) error {
		mealType, _ := cmd.Flags().GetString("meal-type")
		mt, err := parseMealType(mealType)
		if err != nil {
			return err
		}

		e, err := loggedIn()
		if err != nil {
			return err
		}
		recipes, err := e.client.ListRecipes(cmd.Context(), mt)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if len(recipes) == 0 {
			fmt.Fprintln(w, "No recipes found.")
			return nil
		}
		for _, r := range recipes {
			printRecipeLine(cmd, r)
		}
		return nil
	},
}

func printRecipeLine(cmd *cobra.Command, r apiclient.RecipeSuggestion) {
	score := ""
	if r.PantryScore != nil {
		score = colorize(colorGreen, fmt.Sprintf(" pantry %.0f%%", *r.PantryScore))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s  %-32s %-9s %5.0f kcal  P%.0f C%.0f F%.0f%s\n",
		colorize(colorCyan, fmt.Sprintf("%4d", r.ID)), r.Name, r.MealType, r.Kcal, r.ProteinG, r.CarbsG, r.FatG, score)
}

var recipesShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a recipe with ingredients and instructions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		e, err := loggedIn()
		if err != nil {
			return err
		}
		r, err := e.client.GetRecipe(cmd.Context(), id)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		fmt.Fprintln(w, colorize(colorBold, r.Name))
		printField(w, "Meal", "%s", r.MealType)
		printField(w, "Energy", "%.0f kcal (protein %.0f g, carbs %.0f g, fat %.0f g)", r.Kcal, r.ProteinG, r.CarbsG, r.FatG)
		if r.Description != nil {
			fmt.Fprintf(w, "\n%s\n", *r.Description)
		}
		if len(r.Ingredients) > 0 {
			fmt.Fprintln(w, "\nIngredients:")
			for _, in := range r.Ingredients {
				fmt.Fprintf(w, "  - %.1f %s %s\n", in.Quantity, in.Unit, in.IngredientName)
			}
		}
		if r.Instructions != nil {
			fmt.Fprintf(w, "\nInstructions:\n%s\n", *r.Instructions)
		}
		return nil
	},
}

func parseMealType(s string) (health.MealType, error) {
	if s == "" {
		return "", nil
	}
	mt := health.MealType(strings.ToLower(s))
	switch mt {
	case health.Breakfast, health.Lunch, health.Dinner, health.Snack:
		return mt, nil
	}
	return "", fmt.Errorf("unknown meal type %q (want breakfast, lunch, dinner or snack)", s)
}

func init() {
	recipesListCmd.Flags().String("meal-type", "", "filter by breakfast, lunch, dinner or snack")
	recipesCmd.AddCommand(recipesListCmd, recipesShowCmd)
}

// --- plan ---

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Generate daily meal plans",
}

var planGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a meal plan for today",
	RunE: func(cmd *cobra.Command, args []string) error {
		deficit, _ := cmd.Flags().GetInt("deficit")

		e, err := loggedIn()
		if err != nil {
			return err
		}
		uid, err := currentUserID(cmd.Context(), e)
		if err != nil {
			return err
		}
		plan, err := e.client.GenerateMealPlan(cmd.Context(), uid, deficit)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		printField(w, "TDEE", "%.0f kcal", plan.TDEE)
		printField(w, "Target", "%.0f kcal (%+d)", plan.TargetDailyKcal, plan.Deficit)
		for _, slot := range plan.Meals {
			fmt.Fprintf(w, "\n%s  %.0f kcal\n", colorize(colorBold, strings.ToUpper(string(slot.MealType))), slot.TargetKcal)
			if len(slot.RecommendedRecipes) == 0 {
				fmt.Fprintln(w, colorize(colorGray, "  no matching recipes"))
			}
			for _, r := range slot.RecommendedRecipes {
				printRecipeLine(cmd, r)
			}
		}
		return nil
	},
}

func init() {
	planGenerateCmd.Flags().Int("deficit", health.DefaultDeficit, "daily calorie adjustment applied to TDEE")
	planCmd.AddCommand(planGenerateCmd)
}

// --- coach ---

var coachCmd = &cobra.Command{
	Use:   "coach <message>",
	Short: "Ask the AI nutrition coach a question",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		message := strings.TrimSpace(strings.Join(args, " "))
		if message == "" {
			return errors.New("message is required")
		}
		anonymous, _ := cmd.Flags().GetBool("anonymous")

		e, err := loggedIn()
		if err != nil {
			return err
		}
		req := apiclient.ChatRequest{Message: message}
		if !anonymous {
			uid, err := currentUserID(cmd.Context(), e)
			if err != nil {
				return err
			}
			req.UserID = &uid
		}

		resp, err := e.client.Chat(cmd.Context(), req)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), resp.Response)
		if resp.UserContextUsed {
			fmt.Fprintln(cmd.OutOrStdout(), colorize(colorGray, "(answer personalized with your profile)"))
		}
		return nil
	},
}

func init() {
	coachCmd.Flags().Bool("anonymous", false, "do not share your profile with the coach")
}
