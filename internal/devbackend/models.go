// Package devbackend implements the backend-service contract the portal core
// consumes, backed by swappable stores. It exists so the portal can be
// developed and tested end to end before the production backend is
// available; the HTTP surface in the handler subpackage speaks exactly the
// wire contract the gateway expects.
package devbackend

import (
	"time"

	"educonnect/internal/profile"
)

// User is the stored account record.
type User struct {
	ID           string
	Email        string
	PasswordHash []byte
	Role         profile.Role
	FirstName    string
	LastName     string

	// Role-specific attributes; only the fields for Role are populated.
	Nationality string
	StudyLevel  string
	Institution string
	Country     string
	Website     string
	AgencyName  string

	CreatedAt time.Time
}

// Profile projects the stored record onto the wire profile shape.
func (u *User) Profile() profile.Profile {
	p := profile.Profile{
		ID:        u.ID,
		Email:     u.Email,
		Role:      u.Role,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
	switch u.Role {
	case profile.RoleStudent:
		p.Student = &profile.StudentDetails{
			Nationality: u.Nationality,
			StudyLevel:  u.StudyLevel,
		}
	case profile.RoleUniversity:
		p.University = &profile.UniversityDetails{
			InstitutionName: u.Institution,
			Country:         u.Country,
			Website:         u.Website,
		}
	case profile.RoleAgent:
		p.Agency = &profile.AgencyDetails{
			AgencyName: u.AgencyName,
			Country:    u.Country,
		}
	}
	return p
}

// AuthCode is a one-time Google authorization code minted by the dev OAuth
// loop. Consuming it twice fails.
type AuthCode struct {
	Code      string
	Email     string
	ExpiresAt time.Time
	Used      bool
}

// Credentials is what every credential-issuing operation returns.
type Credentials struct {
	Token   string
	Profile profile.Profile
}
