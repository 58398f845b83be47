package role

import "strings"

// Role is the category attached to an authenticated identity. The set is
// closed; anything outside it parses to Unknown.
type Role string

const (
	Unknown                    Role = ""
	Student                    Role = "student"
	IndividualTechProfessional Role = "individualTechProfessional"
	TeamTechProfessional       Role = "teamTechProfessional"
	Recruiter                  Role = "recruiter"
	Institution                Role = "institution"
	Employer                   Role = "employer"
	Admin                      Role = "admin"
)

// All lists every known role in a stable order.
func All() []Role {
	return []Role{
		Student,
		IndividualTechProfessional,
		TeamTechProfessional,
		Recruiter,
		Institution,
		Employer,
		Admin,
	}
}

// Parse maps a raw role tag to a Role. Matching is exact after trimming;
// role tags are case sensitive upstream.
func Parse(raw string) Role {
	r := Role(strings.TrimSpace(raw))
	for _, known := range All() {
		if r == known {
			return r
		}
	}
	return Unknown
}

func (r Role) Valid() bool {
	return r != Unknown && Parse(string(r)) == r
}

func (r Role) String() string {
	if r == Unknown {
		return "unknown"
	}
	return string(r)
}
