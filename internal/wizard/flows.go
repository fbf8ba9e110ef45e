package wizard

import (
	"context"

	"github.com/asaskevich/govalidator"

	"educonnect/internal/profile"
)

// SignupFunc is the terminal action shared by the registration flows. The
// session manager's Signup satisfies it.
type SignupFunc func(ctx context.Context, role profile.Role, fields map[string]string) (*profile.Profile, error)

// flatten merges per-step payloads into the single registration payload the
// backend expects. Step names are carriage, not content: field names are
// unique across steps by construction.
func flatten(payload map[string]Payload) map[string]string {
	fields := make(map[string]string)
	for _, step := range payload {
		for k, v := range step {
			fields[k] = v
		}
	}
	return fields
}

func submitAs(role profile.Role, signup SignupFunc) func(ctx context.Context, payload map[string]Payload) error {
	return func(ctx context.Context, payload map[string]Payload) error {
		_, err := signup(ctx, role, flatten(payload))
		return err
	}
}

// accountStep validates the shared credentials page.
func accountStep() Step {
	return Step{
		Name: "account",
		Validate: func(p Payload) FieldErrors {
			errs := FieldErrors{}
			if !govalidator.IsEmail(p["email"]) {
				errs["email"] = "a valid email address is required"
			}
			if !govalidator.StringLength(p["password"], "8", "128") {
				errs["password"] = "password must be between 8 and 128 characters"
			}
			if p["password"] != p["confirmPassword"] {
				errs["confirmPassword"] = "passwords do not match"
			}
			if len(errs) == 0 {
				return nil
			}
			return errs
		},
	}
}

func requiredFields(pairs map[string]string) func(Payload) FieldErrors {
	return func(p Payload) FieldErrors {
		errs := FieldErrors{}
		for field, label := range pairs {
			if p[field] == "" {
				errs[field] = label + " is required"
			}
		}
		if len(errs) == 0 {
			return nil
		}
		return errs
	}
}

// StudentRegistration is the three-step student sign-up flow.
func StudentRegistration(signup SignupFunc) Flow {
	return Flow{
		Name: "student-registration",
		Steps: []Step{
			accountStep(),
			{
				Name: "personal",
				Validate: requiredFields(map[string]string{
					"firstName":   "first name",
					"lastName":    "last name",
					"nationality": "nationality",
				}),
			},
			{
				Name: "preferences",
				Validate: requiredFields(map[string]string{
					"studyLevel": "study level",
				}),
			},
		},
		Submit: submitAs(profile.RoleStudent, signup),
	}
}

// UniversityRegistration is the three-step institution sign-up flow.
func UniversityRegistration(signup SignupFunc) Flow {
	return Flow{
		Name: "university-registration",
		Steps: []Step{
			accountStep(),
			{
				Name: "institution",
				Validate: func(p Payload) FieldErrors {
					errs := FieldErrors{}
					if p["institution"] == "" {
						errs["institution"] = "institution name is required"
					}
					if p["country"] == "" {
						errs["country"] = "country is required"
					}
					if p["website"] != "" && !govalidator.IsURL(p["website"]) {
						errs["website"] = "website must be a valid URL"
					}
					if len(errs) == 0 {
						return nil
					}
					return errs
				},
			},
			{
				Name: "contact",
				Validate: requiredFields(map[string]string{
					"firstName": "contact first name",
					"lastName":  "contact last name",
				}),
			},
		},
		Submit: submitAs(profile.RoleUniversity, signup),
	}
}

// AgentRegistration is the two-step recruitment-agency sign-up flow.
func AgentRegistration(signup SignupFunc) Flow {
	return Flow{
		Name: "agent-registration",
		Steps: []Step{
			accountStep(),
			{
				Name: "agency",
				Validate: requiredFields(map[string]string{
					"agencyName": "agency name",
					"country":    "country",
					"firstName":  "first name",
					"lastName":   "last name",
				}),
			},
		},
		Submit: submitAs(profile.RoleAgent, signup),
	}
}
