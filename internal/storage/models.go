package storage

import "time"

type User struct {
	ID    int64  `json:"user_id" db:"user_id"`
	Email string `json:"email" db:"email"`
}

type Calendar struct {
	ID   int64  `json:"cal_id" db:"cal_id"`
	Name string `json:"name" db:"name"`
}

// Permission is a registry row for a named access level (view/edit/owner).
type Permission struct {
	ID   int64  `json:"permission_id" db:"permission_id"`
	Code string `json:"permission_code" db:"permission_code"`
}

// Status is a registry row for an invitation response state.
type Status struct {
	ID   int64  `json:"status_id" db:"status_id"`
	Code string `json:"status_code" db:"status_code"`
}

// Grant is one calendar_users row, optionally joined with the permission
// code, the member email and the calendar name depending on the query.
type Grant struct {
	ID           int64 `json:"cal_user_id" db:"cal_user_id"`
	CalendarID   int64 `json:"cal_id" db:"cal_id"`
	UserID       int64 `json:"user_id" db:"user_id"`
	PermissionID int64 `json:"-" db:"permission_id"`

	PermissionCode string `json:"permission,omitempty" db:"permission_code"`
	Email          string `json:"email,omitempty" db:"email"`
	CalendarName   string `json:"calendar_name,omitempty" db:"name"`
}

type Event struct {
	ID          int64     `json:"event_id" db:"event_id"`
	CalendarID  int64     `json:"cal_id" db:"cal_id"`
	Title       string    `json:"title" db:"title"`
	Start       time.Time `json:"start" db:"start_time"`
	End         time.Time `json:"end" db:"end_time"`
	Description string    `json:"description,omitempty" db:"description"`
	Location    string    `json:"location,omitempty" db:"location"`
	TimeZone    string    `json:"time_zone,omitempty" db:"time_zone"`
}

// Invite addresses one event to a recipient calendar. TimeUpdated is a
// last-modified marker: null until the first update, stamped on every
// update. Invites are never hard-deleted.
type Invite struct {
	ID          int64      `json:"invite_id" db:"invite_id"`
	EventID     int64      `json:"event_id" db:"event_id"`
	CalendarID  int64      `json:"cal_id" db:"cal_id"`
	StatusID    int64      `json:"-" db:"status_id"`
	TimeCreated time.Time  `json:"time_created" db:"time_created"`
	TimeUpdated *time.Time `json:"time_updated,omitempty" db:"time_updated"`

	StatusCode string `json:"status" db:"status_code"`
}

// Onboarding is the result of creating a user together with their default
// calendar and the owner grant linking the two.
type Onboarding struct {
	User     User     `json:"user"`
	Calendar Calendar `json:"calendar"`
	GrantID  int64    `json:"grant_id"`
}
