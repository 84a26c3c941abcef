// Package seed populates a fresh store with the registry rows and sample
// accounts the application expects: the closed permission and status sets,
// plus one default calendar per user linked through an owner grant.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"jk-calendar/internal/calendar"
	"jk-calendar/internal/storage"
)

type Fixtures struct {
	Permissions []string `yaml:"permissions"`
	Statuses    []string `yaml:"statuses"`
	Users       []string `yaml:"users"`
}

// Defaults returns the built-in fixtures. Registry order matters: invites
// default to the first status row.
func Defaults() Fixtures {
	f := Fixtures{}
	for _, p := range calendar.DefaultPermissions {
		f.Permissions = append(f.Permissions, string(p))
	}
	for _, s := range calendar.DefaultStatuses {
		f.Statuses = append(f.Statuses, string(s))
	}
	f.Users = []string{
		"sally@gmail.com",
		"bill@gmail.com",
		"alice@aol.com",
		"hank@hotmail.com",
	}
	return f
}

// Load reads a fixture file. Missing sections fall back to the defaults.
func Load(path string) (Fixtures, error) {
	var f Fixtures

	data, err := os.ReadFile(path)
	if err != nil {
		return f, fmt.Errorf("failed to read seed file: %w", err)
	}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return f, fmt.Errorf("failed to parse seed file: %w", err)
	}

	defaults := Defaults()
	if len(f.Permissions) == 0 {
		f.Permissions = defaults.Permissions
	}
	if len(f.Statuses) == 0 {
		f.Statuses = defaults.Statuses
	}
	return f, nil
}

// Apply writes the fixtures. Registries first, then onboarding, which
// needs the owner permission to exist. Rerunning against a populated
// store fails on the uniqueness constraints rather than duplicating.
func Apply(ctx context.Context, store storage.Provider, f Fixtures) error {
	logger := slog.With("component", "seed")

	for _, code := range f.Permissions {
		id, err := store.CreatePermission(ctx, code)
		if err != nil {
			return fmt.Errorf("failed to create permission %q: %w", code, err)
		}
		logger.Debug("Permission created", "permission_id", id, "code", code)
	}

	for _, code := range f.Statuses {
		id, err := store.CreateStatus(ctx, code)
		if err != nil {
			return fmt.Errorf("failed to create status %q: %w", code, err)
		}
		logger.Debug("Status created", "status_id", id, "code", code)
	}

	svc := calendar.NewService(store, 30*time.Second)
	for _, email := range f.Users {
		ob, err := svc.Onboard(ctx, email)
		if err != nil {
			return fmt.Errorf("failed to onboard %q: %w", email, err)
		}
		logger.Info("User seeded", "user_id", ob.User.ID, "cal_id", ob.Calendar.ID, "email", email)
	}

	return nil
}
