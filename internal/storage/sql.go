package storage

import (
	"context"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"jk-calendar/internal/config"
)

type SQLProvider struct {
	db *sqlx.DB

	config *config.Storage

	logger *slog.Logger
}

func NewSQLProvider(config *config.Storage, driverName string, dataSource string) (provider *SQLProvider) {
	db, err := sqlx.Open(driverName, dataSource)
	if err != nil {
		slog.Error("Failed to open database", "driver", driverName, "error", err)
		return nil
	}

	logger := slog.With("component", "storage", "driver", driverName)

	return &SQLProvider{
		db:     db,
		config: config,
		logger: logger,
	}
}

func (p *SQLProvider) Close() error {
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}

func (p *SQLProvider) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	err := p.db.GetContext(ctx, &version, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
	if err != nil {
		return 0, mapError(err)
	}
	return version, nil
}

// execInsert runs an INSERT and returns the generated identifier. Postgres
// has no LastInsertId, so the query grows a RETURNING clause there.
func (p *SQLProvider) execInsert(ctx context.Context, query, idColumn string, args ...any) (int64, error) {
	query = p.db.Rebind(query)

	if p.db.DriverName() == "postgres" {
		var id int64
		err := p.db.QueryRowxContext(ctx, query+" RETURNING "+idColumn, args...).Scan(&id)
		if err != nil {
			return 0, mapError(err)
		}
		return id, nil
	}

	res, err := p.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, mapError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, mapError(err)
	}
	return id, nil
}

// Identity store

func (p *SQLProvider) CreateUser(ctx context.Context, email string) (int64, error) {
	return p.execInsert(ctx, "INSERT INTO users (email) VALUES (?)", "user_id", email)
}

func (p *SQLProvider) GetUser(ctx context.Context, id int64) (*User, error) {
	var user User
	err := p.db.GetContext(ctx, &user, p.db.Rebind("SELECT user_id, email FROM users WHERE user_id = ?"), id)
	if err != nil {
		return nil, mapError(err)
	}
	return &user, nil
}

func (p *SQLProvider) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	err := p.db.GetContext(ctx, &user, p.db.Rebind("SELECT user_id, email FROM users WHERE email = ?"), email)
	if err != nil {
		return nil, mapError(err)
	}
	return &user, nil
}

func (p *SQLProvider) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	err := p.db.SelectContext(ctx, &users, "SELECT user_id, email FROM users ORDER BY user_id")
	if err != nil {
		return nil, mapError(err)
	}
	return users, nil
}

func (p *SQLProvider) CreateCalendar(ctx context.Context, name string) (int64, error) {
	return p.execInsert(ctx, "INSERT INTO calendars (name) VALUES (?)", "cal_id", name)
}

func (p *SQLProvider) GetCalendar(ctx context.Context, id int64) (*Calendar, error) {
	var cal Calendar
	err := p.db.GetContext(ctx, &cal, p.db.Rebind("SELECT cal_id, name FROM calendars WHERE cal_id = ?"), id)
	if err != nil {
		return nil, mapError(err)
	}
	return &cal, nil
}

// OnboardUser creates the user, their default calendar named after the
// email, and the owner grant, all in one transaction.
func (p *SQLProvider) OnboardUser(ctx context.Context, email string, ownerPermissionID int64) (*Onboarding, error) {
	tx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, mapError(err)
	}
	defer tx.Rollback()

	userID, err := p.txInsert(ctx, tx, "INSERT INTO users (email) VALUES (?)", "user_id", email)
	if err != nil {
		return nil, err
	}

	calID, err := p.txInsert(ctx, tx, "INSERT INTO calendars (name) VALUES (?)", "cal_id", email)
	if err != nil {
		return nil, err
	}

	grantID, err := p.txInsert(ctx, tx,
		"INSERT INTO calendar_users (cal_id, user_id, permission_id) VALUES (?, ?, ?)",
		"cal_user_id", calID, userID, ownerPermissionID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, mapError(err)
	}

	return &Onboarding{
		User:     User{ID: userID, Email: email},
		Calendar: Calendar{ID: calID, Name: email},
		GrantID:  grantID,
	}, nil
}

func (p *SQLProvider) txInsert(ctx context.Context, tx *sqlx.Tx, query, idColumn string, args ...any) (int64, error) {
	query = p.db.Rebind(query)

	if p.db.DriverName() == "postgres" {
		var id int64
		err := tx.QueryRowxContext(ctx, query+" RETURNING "+idColumn, args...).Scan(&id)
		if err != nil {
			return 0, mapError(err)
		}
		return id, nil
	}

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, mapError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, mapError(err)
	}
	return id, nil
}

// Registries

func (p *SQLProvider) CreatePermission(ctx context.Context, code string) (int64, error) {
	return p.execInsert(ctx, "INSERT INTO permissions (permission_code) VALUES (?)", "permission_id", code)
}

func (p *SQLProvider) GetPermissionByCode(ctx context.Context, code string) (*Permission, error) {
	var perm Permission
	err := p.db.GetContext(ctx, &perm,
		p.db.Rebind("SELECT permission_id, permission_code FROM permissions WHERE permission_code = ?"), code)
	if err != nil {
		return nil, mapError(err)
	}
	return &perm, nil
}

func (p *SQLProvider) ListPermissions(ctx context.Context) ([]Permission, error) {
	var perms []Permission
	err := p.db.SelectContext(ctx, &perms, "SELECT permission_id, permission_code FROM permissions ORDER BY permission_id")
	if err != nil {
		return nil, mapError(err)
	}
	return perms, nil
}

func (p *SQLProvider) CreateStatus(ctx context.Context, code string) (int64, error) {
	return p.execInsert(ctx, "INSERT INTO status (status_code) VALUES (?)", "status_id", code)
}

func (p *SQLProvider) GetStatusByCode(ctx context.Context, code string) (*Status, error) {
	var status Status
	err := p.db.GetContext(ctx, &status,
		p.db.Rebind("SELECT status_id, status_code FROM status WHERE status_code = ?"), code)
	if err != nil {
		return nil, mapError(err)
	}
	return &status, nil
}

// DefaultStatus is the registry's first entry, the status new invites get.
func (p *SQLProvider) DefaultStatus(ctx context.Context) (*Status, error) {
	var status Status
	err := p.db.GetContext(ctx, &status, "SELECT status_id, status_code FROM status ORDER BY status_id LIMIT 1")
	if err != nil {
		return nil, mapError(err)
	}
	return &status, nil
}

func (p *SQLProvider) ListStatuses(ctx context.Context) ([]Status, error) {
	var statuses []Status
	err := p.db.SelectContext(ctx, &statuses, "SELECT status_id, status_code FROM status ORDER BY status_id")
	if err != nil {
		return nil, mapError(err)
	}
	return statuses, nil
}

// Access graph

func (p *SQLProvider) GrantAccess(ctx context.Context, calID, userID, permissionID int64) (int64, error) {
	return p.execInsert(ctx,
		"INSERT INTO calendar_users (cal_id, user_id, permission_id) VALUES (?, ?, ?)",
		"cal_user_id", calID, userID, permissionID)
}

func (p *SQLProvider) RevokeAccess(ctx context.Context, grantID int64) error {
	res, err := p.db.ExecContext(ctx, p.db.Rebind("DELETE FROM calendar_users WHERE cal_user_id = ?"), grantID)
	if err != nil {
		return mapError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return mapError(err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *SQLProvider) GetGrant(ctx context.Context, calID, userID int64) (*Grant, error) {
	var grant Grant
	err := p.db.GetContext(ctx, &grant, p.db.Rebind(`
		SELECT cu.cal_user_id, cu.cal_id, cu.user_id, cu.permission_id, p.permission_code
		FROM calendar_users cu
		JOIN permissions p ON p.permission_id = cu.permission_id
		WHERE cu.cal_id = ? AND cu.user_id = ?`), calID, userID)
	if err != nil {
		return nil, mapError(err)
	}
	return &grant, nil
}

func (p *SQLProvider) ListCalendarMembers(ctx context.Context, calID int64) ([]Grant, error) {
	var grants []Grant
	err := p.db.SelectContext(ctx, &grants, p.db.Rebind(`
		SELECT cu.cal_user_id, cu.cal_id, cu.user_id, cu.permission_id, p.permission_code, u.email
		FROM calendar_users cu
		JOIN permissions p ON p.permission_id = cu.permission_id
		JOIN users u ON u.user_id = cu.user_id
		WHERE cu.cal_id = ?
		ORDER BY cu.cal_user_id`), calID)
	if err != nil {
		return nil, mapError(err)
	}
	return grants, nil
}

func (p *SQLProvider) ListUserCalendars(ctx context.Context, userID int64) ([]Grant, error) {
	var grants []Grant
	err := p.db.SelectContext(ctx, &grants, p.db.Rebind(`
		SELECT cu.cal_user_id, cu.cal_id, cu.user_id, cu.permission_id, p.permission_code, c.name
		FROM calendar_users cu
		JOIN permissions p ON p.permission_id = cu.permission_id
		JOIN calendars c ON c.cal_id = cu.cal_id
		WHERE cu.user_id = ?
		ORDER BY cu.cal_user_id`), userID)
	if err != nil {
		return nil, mapError(err)
	}
	return grants, nil
}

// Event store

func (p *SQLProvider) CreateEvent(ctx context.Context, event Event) (int64, error) {
	return p.execInsert(ctx, `
		INSERT INTO events (cal_id, title, start_time, end_time, description, location, time_zone)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		"event_id",
		event.CalendarID, event.Title, event.Start, event.End,
		event.Description, event.Location, event.TimeZone)
}

func (p *SQLProvider) GetEvent(ctx context.Context, id int64) (*Event, error) {
	var event Event
	err := p.db.GetContext(ctx, &event, p.db.Rebind(`
		SELECT event_id, cal_id, title, start_time, end_time, description, location, time_zone
		FROM events WHERE event_id = ?`), id)
	if err != nil {
		return nil, mapError(err)
	}
	return &event, nil
}

func (p *SQLProvider) EventsTouchingRange(ctx context.Context, calID int64, from, to time.Time) ([]Event, error) {
	var events []Event
	err := p.db.SelectContext(ctx, &events, p.db.Rebind(`
		SELECT event_id, cal_id, title, start_time, end_time, description, location, time_zone
		FROM events
		WHERE cal_id = ?
		  AND ((start_time BETWEEN ? AND ?) OR (end_time BETWEEN ? AND ?))
		ORDER BY start_time, event_id`), calID, from, to, from, to)
	if err != nil {
		return nil, mapError(err)
	}
	return events, nil
}

func (p *SQLProvider) EventsStartingIn(ctx context.Context, calID int64, from, to time.Time) ([]Event, error) {
	var events []Event
	err := p.db.SelectContext(ctx, &events, p.db.Rebind(`
		SELECT event_id, cal_id, title, start_time, end_time, description, location, time_zone
		FROM events
		WHERE cal_id = ? AND start_time >= ? AND start_time < ?
		ORDER BY start_time, event_id`), calID, from, to)
	if err != nil {
		return nil, mapError(err)
	}
	return events, nil
}

// Invitations

func (p *SQLProvider) CreateInvite(ctx context.Context, invite Invite) (int64, error) {
	return p.execInsert(ctx, `
		INSERT INTO invites (event_id, cal_id, status_id, time_created)
		VALUES (?, ?, ?, ?)`,
		"invite_id",
		invite.EventID, invite.CalendarID, invite.StatusID, invite.TimeCreated)
}

func (p *SQLProvider) GetInvite(ctx context.Context, id int64) (*Invite, error) {
	var invite Invite
	err := p.db.GetContext(ctx, &invite, p.db.Rebind(`
		SELECT i.invite_id, i.event_id, i.cal_id, i.status_id, i.time_created, i.time_updated, s.status_code
		FROM invites i
		JOIN status s ON s.status_id = i.status_id
		WHERE i.invite_id = ?`), id)
	if err != nil {
		return nil, mapError(err)
	}
	return &invite, nil
}

func (p *SQLProvider) UpdateInviteStatus(ctx context.Context, id, statusID int64, updatedAt time.Time) error {
	res, err := p.db.ExecContext(ctx,
		p.db.Rebind("UPDATE invites SET status_id = ?, time_updated = ? WHERE invite_id = ?"),
		statusID, updatedAt, id)
	if err != nil {
		return mapError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return mapError(err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *SQLProvider) ListEventInvites(ctx context.Context, eventID int64) ([]Invite, error) {
	var invites []Invite
	err := p.db.SelectContext(ctx, &invites, p.db.Rebind(`
		SELECT i.invite_id, i.event_id, i.cal_id, i.status_id, i.time_created, i.time_updated, s.status_code
		FROM invites i
		JOIN status s ON s.status_id = i.status_id
		WHERE i.event_id = ?
		ORDER BY i.invite_id`), eventID)
	if err != nil {
		return nil, mapError(err)
	}
	return invites, nil
}

func (p *SQLProvider) ListCalendarInvites(ctx context.Context, calID int64) ([]Invite, error) {
	var invites []Invite
	err := p.db.SelectContext(ctx, &invites, p.db.Rebind(`
		SELECT i.invite_id, i.event_id, i.cal_id, i.status_id, i.time_created, i.time_updated, s.status_code
		FROM invites i
		JOIN status s ON s.status_id = i.status_id
		WHERE i.cal_id = ?
		ORDER BY i.invite_id`), calID)
	if err != nil {
		return nil, mapError(err)
	}
	return invites, nil
}
