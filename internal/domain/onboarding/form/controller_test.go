package form

import (
	"context"
	"errors"
	"testing"

	"careerconnect/internal/domain/role"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var studentAnswers = map[string]any{
	"fullName":        "Ada Lovelace",
	"phone":           "+447700900123",
	"location":        "London",
	"institution":     "University of London",
	"fieldOfStudy":    "Mathematics",
	"educationLevel":  "bachelors",
	"graduationYear":  "2026",
	"skills":          []any{"Go", "SQL"},
	"interests":       []string{"backend"},
	"learningMode":    "hybrid",
	"goals":           "Become a backend engineer within two years",
	"links":           map[string]any{"github": "https://github.com/ada"},
	"password":        "s3cretpass",
	"confirmPassword": "s3cretpass",
	"acceptTerms":     "yes",
}

func newStudent(t *testing.T) *Controller {
	t.Helper()
	s, ok := SchemaFor(role.Student)
	require.True(t, ok)
	return NewController(s)
}

func setAll(t *testing.T, c *Controller, values map[string]any, skip ...string) {
	t.Helper()
	skipped := map[string]bool{}
	for _, k := range skip {
		skipped[k] = true
	}
	for k, v := range values {
		if skipped[k] {
			continue
		}
		require.NoError(t, c.Set(k, v), k)
	}
}

func advanceTo(t *testing.T, c *Controller, step int) {
	t.Helper()
	for c.Step() < step {
		require.NoError(t, c.Advance(), "advance from step %d", c.Step())
	}
}

func TestSchemaFor_StepCounts(t *testing.T) {
	want := map[role.Role]int{
		role.Student:                    7,
		role.Recruiter:                  7,
		role.IndividualTechProfessional: 7,
		role.TeamTechProfessional:       6,
	}
	for r, n := range want {
		s, ok := SchemaFor(r)
		require.True(t, ok, r)
		require.Equal(t, n, s.TotalSteps(), r)
		require.Equal(t, r, s.Variant)
	}

	for _, r := range []role.Role{role.Institution, role.Employer, role.Admin, role.Unknown} {
		_, ok := SchemaFor(r)
		require.False(t, ok, r)
	}
}

func TestSchemaFor_Consistency(t *testing.T) {
	for _, r := range role.All() {
		s, ok := SchemaFor(r)
		if !ok {
			continue
		}
		seen := map[string]bool{}
		for _, st := range s.Steps {
			require.NotEmpty(t, st.Fields, "%s/%s", r, st.Key)
			for _, f := range st.Fields {
				require.False(t, seen[f.Name], "duplicate field %s in %s", f.Name, r)
				seen[f.Name] = true
				if f.Kind == KindChoice {
					require.NotEmpty(t, f.Options, f.Name)
				}
				if f.Kind == KindGroup {
					require.NotEmpty(t, f.Subfields, f.Name)
				}
				if f.MatchField != "" {
					_, ok := s.lookup(f.MatchField)
					require.True(t, ok, "%s matches unknown field %s", f.Name, f.MatchField)
				}
			}
		}
	}
}

func TestAdvance_EmptyGoalsStaysOnGoalsStep(t *testing.T) {
	c := newStudent(t)
	setAll(t, c, studentAnswers, "goals")
	advanceTo(t, c, 5)

	err := c.Advance()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, 5, c.Step())
	require.Equal(t, 5, verr.Step)
	require.Contains(t, verr.Fields, "goals")
	require.Contains(t, c.Errors(), "goals")
	require.Equal(t, "Goals is required", c.Errors()["goals"])
}

func TestAdvance_NoPartialAdvanceOnAnyInvalidField(t *testing.T) {
	c := newStudent(t)
	require.NoError(t, c.Set("fullName", "Ada Lovelace"))
	require.NoError(t, c.Set("phone", "12345"))

	err := c.Advance()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, 1, c.Step())
	require.Len(t, verr.Fields, 2)
	require.Contains(t, verr.Fields, "phone")
	require.Contains(t, verr.Fields, "location")
}

func TestAdvance_ErrorMapIsRecomputed(t *testing.T) {
	c := newStudent(t)

	require.Error(t, c.Advance())
	require.Len(t, c.Errors(), 2)

	require.NoError(t, c.Set("fullName", "Ada Lovelace"))
	require.Error(t, c.Advance())
	errs := c.Errors()
	require.Len(t, errs, 1)
	require.Contains(t, errs, "location")

	require.NoError(t, c.Set("location", "London"))
	require.NoError(t, c.Advance())
	require.Empty(t, c.Errors())
	require.Equal(t, 2, c.Step())
}

func TestRetreatThenAdvance_KeepsValues(t *testing.T) {
	c := newStudent(t)
	setAll(t, c, studentAnswers)
	advanceTo(t, c, 4)
	before := c.Values()

	require.NoError(t, c.Retreat())
	require.Equal(t, 3, c.Step())
	require.NoError(t, c.Advance())
	require.Equal(t, 4, c.Step())
	require.Equal(t, before, c.Values())
}

func TestRetreat_FirstStep(t *testing.T) {
	c := newStudent(t)
	require.ErrorIs(t, c.Retreat(), ErrFirstStep)
	require.Equal(t, 1, c.Step())
}

func TestAdvance_LastStep(t *testing.T) {
	c := newStudent(t)
	setAll(t, c, studentAnswers)
	advanceTo(t, c, 7)
	require.ErrorIs(t, c.Advance(), ErrLastStep)
}

func TestValidation_PasswordConfirmation(t *testing.T) {
	c := newStudent(t)
	setAll(t, c, studentAnswers)
	advanceTo(t, c, 7)
	require.NoError(t, c.Set("confirmPassword", "different1"))

	err := c.Submit(context.Background(), func(context.Context, map[string]any) error {
		t.Fatalf("submit must not be called with invalid fields")
		return nil
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Fields, "confirmPassword")
	require.False(t, c.Submitted())
}

func TestValidation_GroupMembers(t *testing.T) {
	c := newStudent(t)
	setAll(t, c, studentAnswers)
	advanceTo(t, c, 6)
	require.NoError(t, c.Set("links", map[string]any{"github": "not a url"}))

	err := c.Advance()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "GitHub must be a valid URL", verr.Fields["links.github"])
}

func TestValidation_ChoiceOptions(t *testing.T) {
	c := newStudent(t)
	setAll(t, c, studentAnswers)
	advanceTo(t, c, 2)
	require.NoError(t, c.Set("educationLevel", "kindergarten"))

	err := c.Advance()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields["educationLevel"], "must be one of")
}

func TestSubmit(t *testing.T) {
	c := newStudent(t)
	setAll(t, c, studentAnswers)

	require.ErrorIs(t, c.Submit(context.Background(), nil), ErrNotFinalStep)

	advanceTo(t, c, 7)

	calls := 0
	failing := func(context.Context, map[string]any) error {
		calls++
		return errors.New("upstream down")
	}
	require.Error(t, c.Submit(context.Background(), failing))
	require.False(t, c.Submitted())
	require.Equal(t, 7, c.Step())

	var got map[string]any
	ok := func(_ context.Context, answers map[string]any) error {
		calls++
		got = answers
		return nil
	}
	require.NoError(t, c.Submit(context.Background(), ok))
	require.True(t, c.Submitted())
	require.Equal(t, 2, calls)
	require.NotContains(t, got, "confirmPassword")
	require.Equal(t, "Ada Lovelace", got["fullName"])
	require.Equal(t, []string{"Go", "SQL"}, got["skills"])

	require.ErrorIs(t, c.Submit(context.Background(), ok), ErrSubmitted)
	require.ErrorIs(t, c.Set("fullName", "x"), ErrSubmitted)
	require.ErrorIs(t, c.Advance(), ErrSubmitted)
	require.ErrorIs(t, c.Retreat(), ErrSubmitted)
}

func TestSet(t *testing.T) {
	c := newStudent(t)

	require.ErrorIs(t, c.Set("nickname", "x"), ErrUnknownField)
	require.ErrorIs(t, c.Set("fullName", 42), ErrInvalidValue)
	require.ErrorIs(t, c.Set("skills", []any{"Go", 1}), ErrInvalidValue)
	require.ErrorIs(t, c.Set("links", map[string]any{"myspace": "https://x.y"}), ErrUnknownField)

	require.NoError(t, c.Set("fullName", "Ada"))
	require.Equal(t, "Ada", c.Values()["fullName"])
	require.NoError(t, c.Set("fullName", nil))
	require.NotContains(t, c.Values(), "fullName")
}

func TestValues_IsACopy(t *testing.T) {
	c := newStudent(t)
	require.NoError(t, c.Set("skills", []string{"Go"}))

	v := c.Values()
	v["skills"].([]string)[0] = "Rust"
	require.Equal(t, []string{"Go"}, c.Values()["skills"])
}

func TestState(t *testing.T) {
	c := newStudent(t)
	st := c.State()
	require.Equal(t, role.Student, st.Variant)
	require.Equal(t, 1, st.Step)
	require.Equal(t, 7, st.TotalSteps)
	require.Equal(t, "personal", st.StepKey)
	require.False(t, st.Submitted)
}

var techProfessionalAnswers = map[string]any{
	"fullName":        "Grace Hopper",
	"location":        "Arlington",
	"currentRole":     "Platform engineer",
	"yearsExperience": "12",
	"experienceLevel": "senior",
	"skills":          []any{"Go", "Kubernetes"},
	"careerGoals":     "Lead a platform team building developer tooling",
	"availability":    "contract",
}

func TestAdvance_RequiredGroupNeedsAnEntry(t *testing.T) {
	s, ok := SchemaFor(role.IndividualTechProfessional)
	require.True(t, ok)
	c := NewController(s)
	setAll(t, c, techProfessionalAnswers)
	advanceTo(t, c, 6)

	err := c.Advance()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, 6, c.Step())
	require.Equal(t, "Links requires at least one entry", verr.Fields["links"])

	require.NoError(t, c.Set("links", map[string]any{"github": "   "}))
	require.Error(t, c.Advance())
	require.Equal(t, 6, c.Step())

	require.NoError(t, c.Set("links", map[string]any{"github": "https://github.com/grace"}))
	require.NoError(t, c.Advance())
	require.Equal(t, 7, c.Step())
}

func TestAdvance_OptionalGroupMayStayEmpty(t *testing.T) {
	c := newStudent(t)
	setAll(t, c, studentAnswers, "links")
	advanceTo(t, c, 6)

	require.NoError(t, c.Advance())
	require.Equal(t, 7, c.Step())
}
