// Package profile defines the authenticated identity model shared by the
// session manager, role router, and backend adapters.
package profile

import (
	dErrors "educonnect/pkg/domain-errors"
)

// Role classifies an account. The set is closed: any value outside it is a
// data-contract violation and is surfaced as an error, never defaulted.
type Role string

const (
	RoleStudent    Role = "student"
	RoleUniversity Role = "university"
	RoleAgent      Role = "agent"
	RoleAdmin      Role = "admin"

	// RoleUnauthenticated is not a profile role. It exists only so the role
	// router can be asked for the neutral landing route explicitly.
	RoleUnauthenticated Role = "unauthenticated"
)

// ParseRole validates a wire value against the closed set.
func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleStudent, RoleUniversity, RoleAgent, RoleAdmin:
		return Role(raw), nil
	default:
		return "", dErrors.Newf(dErrors.CodeInvalidRole, "unknown role %q", raw)
	}
}

// StudentDetails carries student-specific profile attributes.
type StudentDetails struct {
	Nationality string `json:"nationality,omitempty"`
	StudyLevel  string `json:"study_level,omitempty"`
}

// UniversityDetails carries institution-specific profile attributes.
type UniversityDetails struct {
	InstitutionName string `json:"institution_name"`
	Country         string `json:"country,omitempty"`
	Website         string `json:"website,omitempty"`
}

// AgencyDetails carries recruitment-agency profile attributes.
type AgencyDetails struct {
	AgencyName string `json:"agency_name"`
	Country    string `json:"country,omitempty"`
}

// Profile is the authenticated identity. Exactly one of the detail fields is
// set, and it matches Role; admins carry none.
type Profile struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`

	Student    *StudentDetails    `json:"student,omitempty"`
	University *UniversityDetails `json:"university,omitempty"`
	Agency     *AgencyDetails     `json:"agency,omitempty"`
}

// DisplayName renders the name fields for UI surfaces.
func (p Profile) DisplayName() string {
	switch {
	case p.FirstName != "" && p.LastName != "":
		return p.FirstName + " " + p.LastName
	case p.FirstName != "":
		return p.FirstName
	case p.LastName != "":
		return p.LastName
	default:
		return p.Email
	}
}

// Validate checks the role contract and that detail fields agree with it.
func (p Profile) Validate() error {
	if _, err := ParseRole(string(p.Role)); err != nil {
		return err
	}
	switch p.Role {
	case RoleUniversity:
		if p.University == nil {
			return dErrors.New(dErrors.CodeMalformedResponse, "university profile missing institution details")
		}
	case RoleAgent:
		if p.Agency == nil {
			return dErrors.New(dErrors.CodeMalformedResponse, "agent profile missing agency details")
		}
	}
	return nil
}
