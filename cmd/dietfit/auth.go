package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kalambet/dietfit/internal/apiclient"
	"github.com/kalambet/dietfit/internal/health"
	"github.com/kalambet/dietfit/internal/silhouette"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the backend and store the session token",
	Long: `Sign in to the backend and store the session token in the platform keychain.

The password is read from --password, then DIETFIT_PASSWORD, then one line of stdin.

Examples:
  dietfit login --email ann@example.com
  echo "$PW" | dietfit login --email ann@example.com`,
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		if email == "" {
			return errors.New("--email is required")
		}
		if password == "" {
			password = os.Getenv("DIETFIT_PASSWORD")
		}
		if password == "" {
			printStep("Password:")
			var err error
			if password, err = readSecret(cmd.InOrStdin()); err != nil {
				return err
			}
		}

		e, err := loadEnv()
		if err != nil {
			return err
		}
		return login(cmd, e, email, password)
	},
}

func login(cmd *cobra.Command, e *env, email, password string) error {
	if err := e.client.Login(cmd.Context(), email, password); err != nil {
		if errors.Is(err, apiclient.ErrInvalidCredentials) {
			return errors.New("incorrect email or password")
		}
		return fmt.Errorf("logging in: %w", err)
	}

	u, err := e.client.Me(cmd.Context())
	if err != nil {
		printSuccess("Logged in")
		return nil
	}
	if !u.IsActive {
		printWarning("Account %s is inactive", u.Email)
	}
	printSuccess("Logged in as %s", u.DisplayName())
	return nil
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session and cached profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv()
		if err != nil {
			return err
		}
		if err := e.client.Logout(); err != nil {
			return fmt.Errorf("clearing session: %w", err)
		}

		store, err := openStore(e.cfg)
		if err != nil {
			printWarning("Cached profile not cleared: %v", err)
		} else {
			defer store.Close()
			if err := store.DeleteSnapshots(); err != nil {
				printWarning("Cached profile not cleared: %v", err)
			}
		}

		printSuccess("Logged out")
		return nil
	},
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account and sign in",
	Long: `Create an account with the measurements the health estimates need, then sign in.

Examples:
  dietfit signup --email ann@example.com --password s3cret --height 168 --weight 64 \
    --gender female --age 34 --activity moderate --waist 72 --neck 32 --hip 96`,
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := signupRequest(cmd)
		if err != nil {
			return err
		}

		e, err := loadEnv()
		if err != nil {
			return err
		}
		u, err := e.client.Signup(cmd.Context(), req)
		if err != nil {
			return fmt.Errorf("signing up: %w", err)
		}
		printSuccess("Created account %d for %s", u.ID, u.Email)
		return login(cmd, e, req.Email, req.Password)
	},
}

// signupRequest validates the signup flags locally before anything is sent.
func signupRequest(cmd *cobra.Command) (apiclient.SignupRequest, error) {
	f := cmd.Flags()
	email, _ := f.GetString("email")
	password, _ := f.GetString("password")
	name, _ := f.GetString("name")
	height, _ := f.GetFloat64("height")
	weight, _ := f.GetFloat64("weight")
	gender, _ := f.GetString("gender")
	age, _ := f.GetInt("age")
	activity, _ := f.GetString("activity")
	waist, _ := f.GetFloat64("waist")
	neck, _ := f.GetFloat64("neck")
	hip, _ := f.GetFloat64("hip")

	if email == "" || password == "" {
		return apiclient.SignupRequest{}, errors.New("--email and --password are required")
	}
	g, err := silhouette.ParseGender(gender)
	if err != nil {
		return apiclient.SignupRequest{}, err
	}
	if height <= 0 || weight <= 0 || waist <= 0 || neck <= 0 || age <= 0 {
		return apiclient.SignupRequest{}, errors.New("--height, --weight, --waist, --neck and --age must be positive")
	}
	level := health.ActivityLevel(activity)
	if _, err := level.Multiplier(); err != nil {
		return apiclient.SignupRequest{}, fmt.Errorf("%w (want one of %v)", err, health.ActivityLevels())
	}

	req := apiclient.SignupRequest{
		Email:         email,
		Password:      password,
		HeightCm:      height,
		WeightKg:      weight,
		Gender:        g.String(),
		Age:           age,
		ActivityLevel: level,
		WaistCm:       waist,
		NeckCm:        neck,
	}
	if name != "" {
		req.Name = &name
	}
	if hip > 0 {
		req.HipCm = &hip
	}
	if g == silhouette.Female && req.HipCm == nil {
		return apiclient.SignupRequest{}, health.ErrHipRequired
	}
	return req, nil
}

func init() {
	loginCmd.Flags().String("email", "", "account email")
	loginCmd.Flags().String("password", "", "account password")

	addSignupFlags(signupCmd)
}

func addSignupFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("email", "", "account email")
	f.String("password", "", "account password")
	f.String("name", "", "display name")
	f.Float64("height", 0, "height in cm")
	f.Float64("weight", 0, "weight in kg")
	f.String("gender", "", "male or female")
	f.Int("age", 0, "age in years")
	f.String("activity", string(health.Moderate), "sedentary, light, moderate, very or athlete")
	f.Float64("waist", 0, "waist circumference in cm")
	f.Float64("neck", 0, "neck circumference in cm")
	f.Float64("hip", 0, "hip circumference in cm (required for female)")
}
