package role

const (
	PathStudentDashboard                    = "/dashboard/student"
	PathIndividualTechProfessionalDashboard = "/dashboard/individual-tech-professional"
	PathTeamTechProfessionalDashboard       = "/dashboard/team-tech-professional"
	PathCompanyDashboard                    = "/dashboard/company"
	PathInstitutionDashboard                = "/dashboard/institution"
	PathAdminDashboard                      = "/dashboard/admin"
)

// RouteFor returns the dashboard path for r. Unmapped roles land on the
// student dashboard.
func RouteFor(r Role) string {
	switch r {
	case Student:
		return PathStudentDashboard
	case IndividualTechProfessional:
		return PathIndividualTechProfessionalDashboard
	case TeamTechProfessional:
		return PathTeamTechProfessionalDashboard
	case Recruiter, Employer:
		return PathCompanyDashboard
	case Institution:
		return PathInstitutionDashboard
	case Admin:
		return PathAdminDashboard
	default:
		return PathStudentDashboard
	}
}

// OnboardingPathFor returns the onboarding entry path for roles that have an
// onboarding flow.
func OnboardingPathFor(r Role) (string, bool) {
	switch r {
	case Student:
		return "/onboarding/student", true
	case Recruiter:
		return "/onboarding/recruiter", true
	case IndividualTechProfessional:
		return "/onboarding/individual-tech-professional", true
	case TeamTechProfessional:
		return "/onboarding/team-tech-professional", true
	default:
		return "", false
	}
}

// Destination picks where an authenticated user should land: the onboarding
// flow while it is incomplete and one exists for the role, the dashboard
// otherwise.
func Destination(r Role, onboarded bool) (path string, onboarding bool) {
	if !onboarded {
		if p, ok := OnboardingPathFor(r); ok {
			return p, true
		}
	}
	return RouteFor(r), false
}
