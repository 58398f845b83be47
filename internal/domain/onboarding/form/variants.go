package form

import "careerconnect/internal/domain/role"

const (
	rulesName     = "min=2,max=80"
	rulesShort    = "min=2,max=120"
	rulesLong     = "min=10,max=2000"
	rulesPhone    = "e164"
	rulesURL      = "url"
	rulesEmail    = "email"
	rulesYear     = "numeric,len=4"
	rulesPassword = "min=8,max=128"
	rulesTag      = "min=1,max=40"
)

// SchemaFor returns the onboarding schema for r. Roles without an onboarding
// flow report false.
func SchemaFor(r role.Role) (Schema, bool) {
	switch r {
	case role.Student:
		return studentSchema(), true
	case role.Recruiter:
		return recruiterSchema(), true
	case role.IndividualTechProfessional:
		return individualTechProfessionalSchema(), true
	case role.TeamTechProfessional:
		return teamTechProfessionalSchema(), true
	default:
		return Schema{}, false
	}
}

func accountStep() Step {
	return Step{
		Key:   "account",
		Title: "Secure your account",
		Fields: []Field{
			{Name: "password", Label: "Password", Kind: KindText, Required: true, Rules: rulesPassword},
			{Name: "confirmPassword", Label: "Confirm password", Kind: KindText, Required: true, MatchField: "password"},
			{Name: "acceptTerms", Label: "Terms acceptance", Kind: KindChoice, Required: true, Options: []string{"yes"}},
		},
	}
}

func linksGroup(name string, required bool) Field {
	return Field{
		Name:     name,
		Label:    "Links",
		Kind:     KindGroup,
		Required: required,
		Subfields: []Field{
			{Name: "linkedin", Label: "LinkedIn", Kind: KindText, Rules: rulesURL},
			{Name: "github", Label: "GitHub", Kind: KindText, Rules: rulesURL},
			{Name: "portfolio", Label: "Portfolio", Kind: KindText, Rules: rulesURL},
		},
	}
}

func studentSchema() Schema {
	return Schema{
		Variant: role.Student,
		Steps: []Step{
			{Key: "personal", Title: "About you", Fields: []Field{
				{Name: "fullName", Label: "Full name", Kind: KindText, Required: true, Rules: rulesName},
				{Name: "phone", Label: "Phone", Kind: KindText, Rules: rulesPhone},
				{Name: "location", Label: "Location", Kind: KindText, Required: true, Rules: rulesShort},
			}},
			{Key: "education", Title: "Education", Fields: []Field{
				{Name: "institution", Label: "Institution", Kind: KindText, Required: true, Rules: rulesShort},
				{Name: "fieldOfStudy", Label: "Field of study", Kind: KindText, Required: true, Rules: rulesShort},
				{Name: "educationLevel", Label: "Education level", Kind: KindChoice, Required: true,
					Options: []string{"high-school", "diploma", "bachelors", "masters", "doctorate"}},
				{Name: "graduationYear", Label: "Graduation year", Kind: KindText, Required: true, Rules: rulesYear},
			}},
			{Key: "skills", Title: "Skills", Fields: []Field{
				{Name: "skills", Label: "Skills", Kind: KindList, Required: true, Rules: rulesTag},
			}},
			{Key: "interests", Title: "Interests", Fields: []Field{
				{Name: "interests", Label: "Interests", Kind: KindList, Required: true, Rules: rulesTag},
				{Name: "learningMode", Label: "Learning mode", Kind: KindChoice, Required: true,
					Options: []string{"online", "in-person", "hybrid"}},
			}},
			{Key: "goals", Title: "Goals", Fields: []Field{
				{Name: "goals", Label: "Goals", Kind: KindText, Required: true, Rules: rulesLong},
				{Name: "targetRole", Label: "Target role", Kind: KindText, Rules: rulesShort},
			}},
			{Key: "links", Title: "Profiles", Fields: []Field{
				linksGroup("links", false),
			}},
			accountStep(),
		},
	}
}

func recruiterSchema() Schema {
	return Schema{
		Variant: role.Recruiter,
		Steps: []Step{
			{Key: "personal", Title: "About you", Fields: []Field{
				{Name: "fullName", Label: "Full name", Kind: KindText, Required: true, Rules: rulesName},
				{Name: "jobTitle", Label: "Job title", Kind: KindText, Required: true, Rules: rulesShort},
				{Name: "phone", Label: "Phone", Kind: KindText, Rules: rulesPhone},
			}},
			{Key: "company", Title: "Company", Fields: []Field{
				{Name: "companyName", Label: "Company name", Kind: KindText, Required: true, Rules: rulesShort},
				{Name: "companyWebsite", Label: "Company website", Kind: KindText, Required: true, Rules: rulesURL},
				{Name: "companySize", Label: "Company size", Kind: KindChoice, Required: true,
					Options: []string{"1-10", "11-50", "51-200", "201-1000", "1000+"}},
			}},
			{Key: "industry", Title: "Industry", Fields: []Field{
				{Name: "industry", Label: "Industry", Kind: KindText, Required: true, Rules: rulesShort},
				{Name: "headquarters", Label: "Headquarters", Kind: KindText, Required: true, Rules: rulesShort},
			}},
			{Key: "hiring", Title: "Hiring needs", Fields: []Field{
				{Name: "rolesHiring", Label: "Roles you hire for", Kind: KindList, Required: true, Rules: rulesTag},
				{Name: "hiringVolume", Label: "Hiring volume", Kind: KindChoice, Required: true,
					Options: []string{"1-5", "6-20", "21-50", "50+"}},
			}},
			{Key: "goals", Title: "Goals", Fields: []Field{
				{Name: "hiringGoals", Label: "Hiring goals", Kind: KindText, Required: true, Rules: rulesLong},
			}},
			{Key: "preferences", Title: "Preferences", Fields: []Field{
				{Name: "workArrangements", Label: "Work arrangements", Kind: KindList, Required: true,
					Rules: "oneof=remote onsite hybrid"},
				{Name: "contactEmail", Label: "Contact email", Kind: KindText, Required: true, Rules: rulesEmail},
			}},
			accountStep(),
		},
	}
}

func individualTechProfessionalSchema() Schema {
	return Schema{
		Variant: role.IndividualTechProfessional,
		Steps: []Step{
			{Key: "personal", Title: "About you", Fields: []Field{
				{Name: "fullName", Label: "Full name", Kind: KindText, Required: true, Rules: rulesName},
				{Name: "phone", Label: "Phone", Kind: KindText, Rules: rulesPhone},
				{Name: "location", Label: "Location", Kind: KindText, Required: true, Rules: rulesShort},
			}},
			{Key: "experience", Title: "Experience", Fields: []Field{
				{Name: "currentRole", Label: "Current role", Kind: KindText, Required: true, Rules: rulesShort},
				{Name: "yearsExperience", Label: "Years of experience", Kind: KindText, Required: true, Rules: "numeric,max=2"},
				{Name: "experienceLevel", Label: "Experience level", Kind: KindChoice, Required: true,
					Options: []string{"junior", "mid", "senior", "lead"}},
			}},
			{Key: "skills", Title: "Skills", Fields: []Field{
				{Name: "skills", Label: "Skills", Kind: KindList, Required: true, Rules: rulesTag},
			}},
			{Key: "certifications", Title: "Certifications", Fields: []Field{
				{Name: "certifications", Label: "Certifications", Kind: KindList, Rules: rulesShort},
			}},
			{Key: "goals", Title: "Goals", Fields: []Field{
				{Name: "careerGoals", Label: "Career goals", Kind: KindText, Required: true, Rules: rulesLong},
				{Name: "availability", Label: "Availability", Kind: KindChoice, Required: true,
					Options: []string{"full-time", "part-time", "contract", "not-looking"}},
			}},
			{Key: "links", Title: "Profiles", Fields: []Field{
				linksGroup("links", true),
			}},
			accountStep(),
		},
	}
}

// teamTechProfessionalSchema has six steps. The progress step table carries
// no entry for this role, so the count here is local to the form.
func teamTechProfessionalSchema() Schema {
	return Schema{
		Variant: role.TeamTechProfessional,
		Steps: []Step{
			{Key: "team", Title: "Your team", Fields: []Field{
				{Name: "teamName", Label: "Team name", Kind: KindText, Required: true, Rules: rulesShort},
				{Name: "teamSize", Label: "Team size", Kind: KindChoice, Required: true,
					Options: []string{"2-5", "6-15", "16-50", "50+"}},
			}},
			{Key: "lead", Title: "Team lead", Fields: []Field{
				{Name: "leadName", Label: "Lead name", Kind: KindText, Required: true, Rules: rulesName},
				{Name: "leadEmail", Label: "Lead email", Kind: KindText, Required: true, Rules: rulesEmail},
			}},
			{Key: "stack", Title: "Tech stack", Fields: []Field{
				{Name: "techStack", Label: "Tech stack", Kind: KindList, Required: true, Rules: rulesTag},
			}},
			{Key: "services", Title: "Services", Fields: []Field{
				{Name: "services", Label: "Services", Kind: KindList, Required: true, Rules: rulesShort},
				linksGroup("links", false),
			}},
			{Key: "goals", Title: "Goals", Fields: []Field{
				{Name: "teamGoals", Label: "Team goals", Kind: KindText, Required: true, Rules: rulesLong},
			}},
			accountStep(),
		},
	}
}
