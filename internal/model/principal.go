package model

type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleDispatcher Role = "DISPATCHER"
	RoleIngest     Role = "INGEST"
)

// Principal is the authenticated caller extracted from the JWT.
type Principal struct {
	UserID string
	Role   Role
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

func (p Principal) IsDispatcher() bool {
	return p.Role == RoleDispatcher
}

// CanIngest reports whether the caller may push telemetry samples.
func (p Principal) CanIngest() bool {
	return p.Role == RoleIngest || p.Role == RoleAdmin
}
