package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/kalambet/dietfit/internal/health"
)

// Login exchanges email and password for a session token and stores it.
func (c *Client) Login(ctx context.Context, email, password string) error {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	var tok Token
	if err := c.postForm(anonymous(ctx), "/auth/login", form, &tok); err != nil {
		if StatusCode(err) == http.StatusUnauthorized {
			return ErrInvalidCredentials
		}
		return err
	}
	if tok.AccessToken == "" {
		return errors.New("login: empty access token in response")
	}
	if err := c.tokens.SetToken(tok.AccessToken); err != nil {
		return fmt.Errorf("storing session token: %w", err)
	}
	return nil
}

// Logout forgets the stored session. The backend keeps no session state.
func (c *Client) Logout() error {
	return c.tokens.ClearToken()
}

func (c *Client) Signup(ctx context.Context, req SignupRequest) (*User, error) {
	var u User
	if err := c.Post(anonymous(ctx), "/auth/signup", req, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Me returns the logged-in user's record.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var u User
	if err := c.Get(ctx, "/users/me", &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) MyHealth(ctx context.Context) (*HealthMetrics, error) {
	var m HealthMetrics
	if err := c.Get(ctx, "/users/me/health", &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *Client) GetUser(ctx context.Context, id int) (*User, error) {
	var u User
	if err := c.Get(ctx, "/users/"+strconv.Itoa(id), &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) UpdateUser(ctx context.Context, id int, upd UserUpdate) (*User, error) {
	var u User
	if err := c.Patch(ctx, "/users/"+strconv.Itoa(id), upd, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) DeleteUser(ctx context.Context, id int) error {
	return c.Delete(ctx, "/users/"+strconv.Itoa(id))
}

func (c *Client) ListUsers(ctx context.Context, skip, limit int) ([]User, error) {
	var users []User
	if err := c.Get(ctx, "/users/"+page(skip, limit), &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) UserHealth(ctx context.Context, id int) (*HealthMetrics, error) {
	var m HealthMetrics
	if err := c.Get(ctx, "/users/"+strconv.Itoa(id)+"/health", &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// AdminListUsers requires a superuser session.
func (c *Client) AdminListUsers(ctx context.Context, skip, limit int) (*AdminUserList, error) {
	var out AdminUserList
	if err := c.Get(ctx, "/admin/users"+page(skip, limit), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ToggleAdmin(ctx context.Context, id int) (*ToggleResult, error) {
	return c.toggle(ctx, id, "toggle-admin")
}

func (c *Client) ToggleActive(ctx context.Context, id int) (*ToggleResult, error) {
	return c.toggle(ctx, id, "toggle-active")
}

func (c *Client) toggle(ctx context.Context, id int, action string) (*ToggleResult, error) {
	var out ToggleResult
	path := fmt.Sprintf("/admin/users/%d/%s", id, action)
	if err := c.Patch(ctx, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListPantry(ctx context.Context, userID int) ([]PantryItem, error) {
	var items []PantryItem
	if err := c.Get(ctx, pantryPath(userID), &items); err != nil {
		return nil, err
	}
	return items, nil
}

// AddPantryItem adds quantity of an ingredient. An existing entry is
// incremented by the backend.
func (c *Client) AddPantryItem(ctx context.Context, userID, ingredientID int, quantity float64) (*PantryItem, error) {
	body := map[string]any{"ingredient_id": ingredientID, "quantity": quantity}
	var item PantryItem
	if err := c.Post(ctx, pantryPath(userID), body, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdatePantryItem sets the quantity of an ingredient already in the pantry.
func (c *Client) UpdatePantryItem(ctx context.Context, userID, ingredientID int, quantity float64) (*PantryItem, error) {
	body := map[string]any{"quantity": quantity}
	var item PantryItem
	if err := c.Patch(ctx, pantryPath(userID)+"/"+strconv.Itoa(ingredientID), body, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *Client) RemovePantryItem(ctx context.Context, userID, ingredientID int) error {
	return c.Delete(ctx, pantryPath(userID)+"/"+strconv.Itoa(ingredientID))
}

func (c *Client) ListIngredients(ctx context.Context, skip, limit int) ([]Ingredient, error) {
	var out []Ingredient
	if err := c.Get(ctx, "/ingredients/"+page(skip, limit), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListRecipes lists recipes, filtered by meal type when mealType is non-empty.
func (c *Client) ListRecipes(ctx context.Context, mealType health.MealType) ([]RecipeSuggestion, error) {
	path := "/recipes/"
	if mealType != "" {
		path += "?" + url.Values{"meal_type": {string(mealType)}}.Encode()
	}
	var out []RecipeSuggestion
	if err := c.Get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetRecipe(ctx context.Context, id int) (*Recipe, error) {
	var r Recipe
	if err := c.Get(ctx, "/recipes/"+strconv.Itoa(id), &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// GenerateMealPlan asks the backend for a day plan at TDEE plus deficit kcal.
func (c *Client) GenerateMealPlan(ctx context.Context, userID, deficit int) (*MealPlan, error) {
	body := map[string]any{"user_id": userID, "deficit": deficit}
	var plan MealPlan
	if err := c.Post(ctx, "/plan/generate", body, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

// Chat sends a message to the AI coach.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	var out ChatResponse
	if err := c.Post(ctx, "/ai/chat", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health checks the backend's liveness endpoint without credentials.
func (c *Client) Health(ctx context.Context) (*ServiceHealth, error) {
	var out ServiceHealth
	if err := c.Get(anonymous(ctx), "/health", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func pantryPath(userID int) string {
	return "/pantry/" + strconv.Itoa(userID)
}

func page(skip, limit int) string {
	if skip <= 0 && limit <= 0 {
		return ""
	}
	v := url.Values{}
	if skip > 0 {
		v.Set("skip", strconv.Itoa(skip))
	}
	if limit > 0 {
		v.Set("limit", strconv.Itoa(limit))
	}
	return "?" + v.Encode()
}
