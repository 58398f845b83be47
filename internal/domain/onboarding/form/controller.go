package form

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"careerconnect/internal/domain/role"
)

var (
	ErrUnknownField = errors.New("unknown field")
	ErrInvalidValue = errors.New("invalid field value")
	ErrFirstStep    = errors.New("already at the first step")
	ErrLastStep     = errors.New("already at the last step")
	ErrNotFinalStep = errors.New("submit is only allowed from the final step")
	ErrSubmitted    = errors.New("onboarding already submitted")
)

// ValidationError is returned when a step fails validation. Fields maps a
// field name (group members as "group.member") to its message.
type ValidationError struct {
	Step   int
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	names := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return fmt.Sprintf("step %d has invalid fields: %s", e.Step, strings.Join(names, ", "))
}

// SubmitFunc persists the collected answers.
type SubmitFunc func(ctx context.Context, answers map[string]any) error

// Controller owns the field values and step position of one onboarding flow.
// It is not safe for concurrent use; callers serialize access.
type Controller struct {
	schema    Schema
	values    map[string]any
	errors    map[string]string
	step      int
	submitted bool
}

func NewController(schema Schema) *Controller {
	return &Controller{
		schema: schema,
		values: map[string]any{},
		errors: map[string]string{},
		step:   1,
	}
}

// State is a point-in-time copy of the controller, safe to serialize.
type State struct {
	Variant    role.Role         `json:"variant"`
	Step       int               `json:"step"`
	TotalSteps int               `json:"total_steps"`
	StepKey    string            `json:"step_key"`
	StepTitle  string            `json:"step_title"`
	Submitted  bool              `json:"submitted"`
	Values     map[string]any    `json:"values"`
	Errors     map[string]string `json:"errors"`
}

func (c *Controller) State() State {
	st := c.currentStep()
	return State{
		Variant:    c.schema.Variant,
		Step:       c.step,
		TotalSteps: c.schema.TotalSteps(),
		StepKey:    st.Key,
		StepTitle:  st.Title,
		Submitted:  c.submitted,
		Values:     c.Values(),
		Errors:     c.Errors(),
	}
}

func (c *Controller) Step() int       { return c.step }
func (c *Controller) TotalSteps() int { return c.schema.TotalSteps() }
func (c *Controller) Submitted() bool { return c.submitted }

// Set stores value for a field of any step. Values of other steps are
// accepted so that back and forward navigation never loses input.
func (c *Controller) Set(name string, value any) error {
	if c.submitted {
		return ErrSubmitted
	}
	f, ok := c.schema.lookup(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	v, err := normalize(f, value)
	if err != nil {
		return err
	}
	if v == nil {
		delete(c.values, name)
		return nil
	}
	c.values[name] = v
	return nil
}

// Values returns a deep copy of every stored field value.
func (c *Controller) Values() map[string]any {
	out := make(map[string]any, len(c.values))
	for k, v := range c.values {
		out[k] = copyValue(v)
	}
	return out
}

func (c *Controller) Errors() map[string]string {
	out := make(map[string]string, len(c.errors))
	for k, v := range c.errors {
		out[k] = v
	}
	return out
}

// Answers returns the values to persist: confirmation fields are dropped.
func (c *Controller) Answers() map[string]any {
	out := c.Values()
	for _, st := range c.schema.Steps {
		for _, f := range st.Fields {
			if f.MatchField != "" {
				delete(out, f.Name)
			}
		}
	}
	return out
}

// Advance validates the current step and moves to the next one. On failure
// the error map is replaced with the step's failures and the step is kept.
func (c *Controller) Advance() error {
	if c.submitted {
		return ErrSubmitted
	}
	if c.step >= c.schema.TotalSteps() {
		return ErrLastStep
	}
	if err := c.validateCurrent(); err != nil {
		return err
	}
	c.step++
	return nil
}

// Retreat moves back one step. Entered values are kept.
func (c *Controller) Retreat() error {
	if c.submitted {
		return ErrSubmitted
	}
	if c.step <= 1 {
		return ErrFirstStep
	}
	c.step--
	c.errors = map[string]string{}
	return nil
}

// Submit validates the final step and hands the answers to fn. A failing fn
// leaves the controller on the final step so Submit can be retried.
func (c *Controller) Submit(ctx context.Context, fn SubmitFunc) error {
	if c.submitted {
		return ErrSubmitted
	}
	if c.step != c.schema.TotalSteps() {
		return ErrNotFinalStep
	}
	if err := c.validateCurrent(); err != nil {
		return err
	}
	if fn != nil {
		if err := fn(ctx, c.Answers()); err != nil {
			return fmt.Errorf("submit onboarding: %w", err)
		}
	}
	c.submitted = true
	return nil
}

func (c *Controller) validateCurrent() error {
	errs := map[string]string{}
	for _, f := range c.currentStep().Fields {
		checkField(errs, f.Name, f, c.values[f.Name], c.values)
	}
	c.errors = errs
	if len(errs) > 0 {
		return &ValidationError{Step: c.step, Fields: c.Errors()}
	}
	return nil
}

func (c *Controller) currentStep() Step {
	if c.step < 1 || c.step > len(c.schema.Steps) {
		return Step{}
	}
	return c.schema.Steps[c.step-1]
}

func copyValue(v any) any {
	switch t := v.(type) {
	case []string:
		return append([]string(nil), t...)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = copyValue(vv)
		}
		return out
	default:
		return v
	}
}
