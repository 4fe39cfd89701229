package domain

type SessionKind int

const (
	SessionNotification SessionKind = iota
	SessionChat
)

// SessionContext is produced once per connection and never mutated.
type SessionContext struct {
	userID      string
	role        Role
	displayName string
	relationID  string
}

func NewSessionContext(userID string, role Role, displayName, relationID string) SessionContext {
	return SessionContext{userID: userID, role: role, displayName: displayName, relationID: relationID}
}

func (s SessionContext) UserID() string      { return s.userID }
func (s SessionContext) Role() Role          { return s.role }
func (s SessionContext) DisplayName() string { return s.displayName }
func (s SessionContext) RelationID() string  { return s.relationID }

func (s SessionContext) Kind() SessionKind {
	if s.relationID != "" {
		return SessionChat
	}
	return SessionNotification
}

// Room returns the membership key the session joins on connect.
func (s SessionContext) Room() string {
	if s.relationID != "" {
		return RelationRoom(s.relationID)
	}
	return UserRoom(s.userID)
}

func RelationRoom(relationID string) string { return "relation_" + relationID }
func UserRoom(userID string) string         { return "user_" + userID }
