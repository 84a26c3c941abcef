package calendar

// Access levels and invitation statuses are closed sets in the code, but
// each is persisted as a registry row so stored rows reference a stable
// code rather than a Go constant.

type PermissionCode string

const (
	PermissionView  PermissionCode = "view"
	PermissionEdit  PermissionCode = "edit"
	PermissionOwner PermissionCode = "owner"
)

// DefaultPermissions is the registry content seeded at install time, in
// ascending order of capability.
var DefaultPermissions = []PermissionCode{PermissionView, PermissionEdit, PermissionOwner}

var permissionRank = map[PermissionCode]int{
	PermissionView:  1,
	PermissionEdit:  2,
	PermissionOwner: 3,
}

// Known reports whether the code is one of the seeded access levels.
// Registry rows are free text, so unseeded codes are representable.
func (c PermissionCode) Known() bool {
	_, ok := permissionRank[c]
	return ok
}

// AtLeast reports whether the level grants the capabilities of min.
// Unknown codes grant nothing.
func (c PermissionCode) AtLeast(min PermissionCode) bool {
	return permissionRank[c] >= permissionRank[min] && permissionRank[c] > 0
}

type StatusCode string

const (
	StatusAwaiting StatusCode = "awaiting response"
	StatusAccepted StatusCode = "accepted"
	StatusDeclined StatusCode = "declined"
	StatusEdited   StatusCode = "edited"
)

// DefaultStatuses is the registry content seeded at install time. The
// first entry is the status newly created invites default to.
var DefaultStatuses = []StatusCode{StatusAwaiting, StatusAccepted, StatusDeclined, StatusEdited}
