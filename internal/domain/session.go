package domain

type Role string

const (
	RoleUser      Role = "user"
	RoleOrganizer Role = "organizer"
	RoleAdmin     Role = "admin"
)

// Session identifies the caller of a service operation.
type Session struct {
	UserID int64
	Role   Role
}

func (s Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}

// CanManageEvent reports whether the caller may modify an event owned by organizerID.
func (s Session) CanManageEvent(organizerID int64) bool {
	return s.IsAdmin() || (s.Role == RoleOrganizer && s.UserID == organizerID)
}
