package calendar

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"jk-calendar/internal/storage"
)

// Service is the core of the calendar backend: identity, access graph,
// events, invitations and the temporal queries, layered over a storage
// provider. Every operation runs under a bounded-timeout context scoped to
// the call; the service itself keeps no mutable state.
type Service struct {
	store   storage.Provider
	timeout time.Duration

	// clock is read at the moment of each create call, never earlier.
	clock func() time.Time

	logger *slog.Logger
}

func NewService(store storage.Provider, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Service{
		store:   store,
		timeout: timeout,
		clock:   time.Now,
		logger:  slog.With("component", "calendar"),
	}
}

func (s *Service) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// EventInput carries the caller-supplied fields of a new event. Nil Start
// or End means "use the time of the call".
type EventInput struct {
	Title       string
	Start       *time.Time
	End         *time.Time
	Description string
	Location    string
	TimeZone    string
}

// Identity

// Onboard creates a user together with their default calendar (named after
// the email) and an owner grant, in one transaction.
func (s *Service) Onboard(ctx context.Context, email string) (*storage.Onboarding, error) {
	if err := ValidEmail(email); err != nil {
		return nil, err
	}

	ctx, cancel := s.bound(ctx)
	defer cancel()

	owner, err := s.store.GetPermissionByCode(ctx, string(PermissionOwner))
	if err != nil {
		return nil, err
	}

	ob, err := s.store.OnboardUser(ctx, email, owner.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("User onboarded", "user_id", ob.User.ID, "cal_id", ob.Calendar.ID)
	return ob, nil
}

func (s *Service) CreateUser(ctx context.Context, email string) (int64, error) {
	if err := ValidEmail(email); err != nil {
		return 0, err
	}

	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.store.CreateUser(ctx, email)
}

func (s *Service) GetUser(ctx context.Context, id int64) (*storage.User, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.store.GetUser(ctx, id)
}

func (s *Service) CreateCalendar(ctx context.Context, name string) (int64, error) {
	if name == "" {
		return 0, ErrMissingName
	}

	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.store.CreateCalendar(ctx, name)
}

func (s *Service) GetCalendar(ctx context.Context, id int64) (*storage.Calendar, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.store.GetCalendar(ctx, id)
}

// Access graph. The graph is the sole arbiter of "can user U act on
// calendar C at level L"; nothing else inspects events or calendars for
// access decisions.

func (s *Service) GrantAccess(ctx context.Context, userID, calID int64, code PermissionCode) (int64, error) {
	if !code.Known() {
		return 0, ErrUnknownPermission
	}

	ctx, cancel := s.bound(ctx)
	defer cancel()

	perm, err := s.store.GetPermissionByCode(ctx, string(code))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return 0, ErrUnknownPermission
		}
		return 0, err
	}

	return s.store.GrantAccess(ctx, calID, userID, perm.ID)
}

func (s *Service) RevokeAccess(ctx context.Context, grantID int64) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.store.RevokeAccess(ctx, grantID)
}

// AccessLevel returns the permission code granted to the user on the
// calendar, or storage.ErrNotFound when there is no grant.
func (s *Service) AccessLevel(ctx context.Context, userID, calID int64) (PermissionCode, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	grant, err := s.store.GetGrant(ctx, calID, userID)
	if err != nil {
		return "", err
	}
	return PermissionCode(grant.PermissionCode), nil
}

// CanAccess reports whether the user holds at least min on the calendar.
// Absence of a grant is "no access", not an error.
func (s *Service) CanAccess(ctx context.Context, userID, calID int64, min PermissionCode) (bool, error) {
	level, err := s.AccessLevel(ctx, userID, calID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return level.AtLeast(min), nil
}

func (s *Service) ListCalendarMembers(ctx context.Context, calID int64) ([]storage.Grant, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.store.ListCalendarMembers(ctx, calID)
}

func (s *Service) ListUserCalendars(ctx context.Context, userID int64) ([]storage.Grant, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.store.ListUserCalendars(ctx, userID)
}

// Events

// CreateEvent stores a new event under the calendar. Start and end default
// to the moment of this call when the caller leaves them out. No invariant
// ties start to end; an event ending before it starts is representable.
func (s *Service) CreateEvent(ctx context.Context, calID int64, input EventInput) (*storage.Event, error) {
	if input.Title == "" {
		return nil, ErrMissingTitle
	}

	now := s.clock().UTC()
	start, end := now, now
	if input.Start != nil {
		start = input.Start.UTC()
	}
	if input.End != nil {
		end = input.End.UTC()
	}

	event := storage.Event{
		CalendarID:  calID,
		Title:       input.Title,
		Start:       start,
		End:         end,
		Description: input.Description,
		Location:    input.Location,
		TimeZone:    input.TimeZone,
	}

	ctx, cancel := s.bound(ctx)
	defer cancel()

	id, err := s.store.CreateEvent(ctx, event)
	if err != nil {
		return nil, err
	}
	event.ID = id

	s.logger.Debug("Event created", "event_id", id, "cal_id", calID)
	return &event, nil
}

func (s *Service) GetEvent(ctx context.Context, id int64) (*storage.Event, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.store.GetEvent(ctx, id)
}

// WeekOf returns the calendar's events overlapping the ISO week containing
// date, ordered by start then id. An event matches when its start or its
// end falls inside the week; an event wholly spanning the week (starting
// before Monday and ending after Sunday) does not match.
func (s *Service) WeekOf(ctx context.Context, calID int64, date time.Time) ([]storage.Event, error) {
	monday, sundayEnd := WeekRange(date)

	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.store.EventsTouchingRange(ctx, calID, monday, sundayEnd)
}

// MonthOf returns the calendar's events whose start falls in the given
// month, ordered by start then id. Ends play no role; an event spanning
// months is visible only under the month containing its start.
func (s *Service) MonthOf(ctx context.Context, calID int64, year int, month time.Month) ([]storage.Event, error) {
	first, next := MonthRange(year, month)

	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.store.EventsStartingIn(ctx, calID, first, next)
}

// Invitations

// Invite addresses an event to a recipient calendar. An empty status code
// means the registry's default (its first entry). Creation time is
// assigned here, not by the caller.
func (s *Service) Invite(ctx context.Context, eventID, inviteeCalID int64, code StatusCode) (*storage.Invite, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	// Resolve the event and the invitee calendar first so a bad id is
	// NotFound, not a foreign key violation.
	if _, err := s.store.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}
	if _, err := s.store.GetCalendar(ctx, inviteeCalID); err != nil {
		return nil, err
	}

	var status *storage.Status
	var err error
	if code == "" {
		status, err = s.store.DefaultStatus(ctx)
	} else {
		status, err = s.store.GetStatusByCode(ctx, string(code))
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrUnknownStatus
		}
	}
	if err != nil {
		return nil, err
	}

	invite := storage.Invite{
		EventID:     eventID,
		CalendarID:  inviteeCalID,
		StatusID:    status.ID,
		TimeCreated: s.clock().UTC(),
		StatusCode:  status.Code,
	}

	id, err := s.store.CreateInvite(ctx, invite)
	if err != nil {
		return nil, err
	}
	invite.ID = id

	s.logger.Info("Invite created", "invite_id", id, "event_id", eventID, "cal_id", inviteeCalID)
	return &invite, nil
}

// RespondToInvite sets the invite's status and stamps the last-modified
// marker. The creation timestamp is never touched; rows are never deleted.
func (s *Service) RespondToInvite(ctx context.Context, inviteID int64, code StatusCode) (*storage.Invite, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	status, err := s.store.GetStatusByCode(ctx, string(code))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrUnknownStatus
		}
		return nil, err
	}

	if err := s.store.UpdateInviteStatus(ctx, inviteID, status.ID, s.clock().UTC()); err != nil {
		return nil, err
	}

	return s.store.GetInvite(ctx, inviteID)
}

func (s *Service) GetInvite(ctx context.Context, id int64) (*storage.Invite, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.store.GetInvite(ctx, id)
}

func (s *Service) ListEventInvites(ctx context.Context, eventID int64) ([]storage.Invite, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.store.ListEventInvites(ctx, eventID)
}

func (s *Service) ListCalendarInvites(ctx context.Context, calID int64) ([]storage.Invite, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.store.ListCalendarInvites(ctx, calID)
}
