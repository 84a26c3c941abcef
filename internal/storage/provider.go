package storage

import (
	"context"
	"log/slog"
	"time"

	"jk-calendar/internal/config"
)

type Provider interface {
	Close() error
	SchemaVersion(ctx context.Context) (int, error)

	// Identity store
	CreateUser(ctx context.Context, email string) (int64, error)
	GetUser(ctx context.Context, id int64) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	ListUsers(ctx context.Context) ([]User, error)
	CreateCalendar(ctx context.Context, name string) (int64, error)
	GetCalendar(ctx context.Context, id int64) (*Calendar, error)

	// Onboarding creates the user, their default calendar and the owner
	// grant in a single transaction.
	OnboardUser(ctx context.Context, email string, ownerPermissionID int64) (*Onboarding, error)

	// Permission and status registries (append-only)
	CreatePermission(ctx context.Context, code string) (int64, error)
	GetPermissionByCode(ctx context.Context, code string) (*Permission, error)
	ListPermissions(ctx context.Context) ([]Permission, error)
	CreateStatus(ctx context.Context, code string) (int64, error)
	GetStatusByCode(ctx context.Context, code string) (*Status, error)
	DefaultStatus(ctx context.Context) (*Status, error)
	ListStatuses(ctx context.Context) ([]Status, error)

	// Access graph
	GrantAccess(ctx context.Context, calID, userID, permissionID int64) (int64, error)
	RevokeAccess(ctx context.Context, grantID int64) error
	GetGrant(ctx context.Context, calID, userID int64) (*Grant, error)
	ListCalendarMembers(ctx context.Context, calID int64) ([]Grant, error)
	ListUserCalendars(ctx context.Context, userID int64) ([]Grant, error)

	// Event store
	CreateEvent(ctx context.Context, event Event) (int64, error)
	GetEvent(ctx context.Context, id int64) (*Event, error)
	// EventsTouchingRange returns events whose start OR end falls within
	// [from, to], ordered by start then id.
	EventsTouchingRange(ctx context.Context, calID int64, from, to time.Time) ([]Event, error)
	// EventsStartingIn returns events whose start falls within [from, to),
	// ordered by start then id.
	EventsStartingIn(ctx context.Context, calID int64, from, to time.Time) ([]Event, error)

	// Invitations
	CreateInvite(ctx context.Context, invite Invite) (int64, error)
	GetInvite(ctx context.Context, id int64) (*Invite, error)
	UpdateInviteStatus(ctx context.Context, id, statusID int64, updatedAt time.Time) error
	ListEventInvites(ctx context.Context, eventID int64) ([]Invite, error)
	ListCalendarInvites(ctx context.Context, calID int64) ([]Invite, error)
}

func NewProvider(config *config.Storage) Provider {
	switch {
	case config.PostgreSQL != nil && config.PostgreSQL.URL != "":
		provider := NewPostgresProvider(config)
		if provider == nil {
			return nil
		}
		if err := provider.RunMigrations("postgres"); err != nil {
			slog.Error("Failed to run migrations", "error", err)
			return nil
		}
		return provider

	case config.SQLite != nil:
		provider := NewSQLiteProvider(config)
		if provider == nil {
			return nil
		}
		if err := provider.RunMigrations("sqlite3"); err != nil {
			slog.Error("Failed to run migrations", "error", err)
			return nil
		}
		return provider

	default:
		slog.Error("Unsupported storage configuration", "config", config)
	}

	return nil
}
