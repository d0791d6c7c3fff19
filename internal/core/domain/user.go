package domain

import "strings"

// Role is the storefront permission level carried by a session.
type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleAdmin    Role = "ADMIN"

	// roleAdminAlt is the spelling some backends emit for administrators.
	roleAdminAlt    Role = "ROLE_ADMIN"
	roleCustomerAlt Role = "ROLE_CUSTOMER"
)

// NormalizeRole maps a raw role string onto a known Role.
// Unknown or empty values fall back to RoleCustomer.
func NormalizeRole(raw string) Role {
	switch Role(strings.ToUpper(strings.TrimSpace(raw))) {
	case RoleAdmin, roleAdminAlt:
		return RoleAdmin
	case RoleCustomer, roleCustomerAlt:
		return RoleCustomer
	default:
		return RoleCustomer
	}
}

// IsAdmin reports whether r grants administrator access. Both admin spellings
// are accepted so records written by older clients still gate correctly.
func (r Role) IsAdmin() bool {
	up := Role(strings.ToUpper(string(r)))
	return up == RoleAdmin || up == roleAdminAlt
}

// IsCustomer reports whether r is the customer role.
func (r Role) IsCustomer() bool {
	up := Role(strings.ToUpper(string(r)))
	return up == RoleCustomer || up == roleCustomerAlt
}

func (r Role) String() string { return string(r) }

// Profile is the user record returned by the remote user API.
type Profile struct {
	UserID      string `json:"userId,omitempty"`
	Username    string `json:"username"`
	Name        string `json:"name,omitempty"`
	Surname     string `json:"surname,omitempty"`
	Email       string `json:"email,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	Role        string `json:"role,omitempty"`
}

// Merge overwrites the fields of p that are set in newer.
func (p *Profile) Merge(newer Profile) {
	if newer.UserID != "" {
		p.UserID = newer.UserID
	}
	if newer.Username != "" {
		p.Username = newer.Username
	}
	if newer.Name != "" {
		p.Name = newer.Name
	}
	if newer.Surname != "" {
		p.Surname = newer.Surname
	}
	if newer.Email != "" {
		p.Email = newer.Email
	}
	if newer.PhoneNumber != "" {
		p.PhoneNumber = newer.PhoneNumber
	}
	if newer.Role != "" {
		p.Role = newer.Role
	}
}

// SessionState is the lifecycle state of the client session.
type SessionState string

const (
	StateAnonymous      SessionState = "anonymous"
	StateAuthenticating SessionState = "authenticating"
	StateAuthenticated  SessionState = "authenticated"
)

// Session is the client's record of the authenticated identity.
// Token is non-empty iff the session is authenticated.
type Session struct {
	UserID       string   `json:"userId,omitempty"`
	Username     string   `json:"username"`
	Token        string   `json:"token,omitempty"`
	Role         Role     `json:"role"`
	Profile      *Profile `json:"profile,omitempty"`
	RedirectPath string   `json:"redirectPath,omitempty"`
}

// Authenticated reports whether the session holds a credential.
func (s *Session) Authenticated() bool {
	return s != nil && s.Token != ""
}

// Clone returns a deep copy safe to hand out as a read snapshot.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	if s.Profile != nil {
		p := *s.Profile
		c.Profile = &p
	}
	return &c
}

// ApplyProfile merges p into the session and re-derives identity fields.
// An empty role on p keeps the current role.
func (s *Session) ApplyProfile(p Profile) {
	if s.Profile == nil {
		s.Profile = &Profile{}
	}
	s.Profile.Merge(p)
	if p.UserID != "" {
		s.UserID = p.UserID
	}
	if p.Username != "" {
		s.Username = p.Username
	}
	if p.Role != "" {
		s.Role = NormalizeRole(p.Role)
	}
	if s.Role == "" {
		s.Role = RoleCustomer
	}
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Session    *Session
	RedirectTo string
}
