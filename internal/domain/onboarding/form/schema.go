// Package form holds the multi-step onboarding form: per-role field schemas,
// declarative field rules and the Controller that walks a user through the
// steps in order.
package form

import "careerconnect/internal/domain/role"

type Kind string

const (
	KindText   Kind = "text"
	KindChoice Kind = "choice"
	KindList   Kind = "list"
	KindGroup  Kind = "group"
)

// Field describes one input. Rules holds validator tags applied to a
// non-empty value (to every item for lists). MatchField names a field whose
// value this one must equal, as in a password confirmation.
type Field struct {
	Name       string
	Label      string
	Kind       Kind
	Required   bool
	Rules      string
	Options    []string
	MatchField string
	Subfields  []Field
}

type Step struct {
	Key    string
	Title  string
	Fields []Field
}

type Schema struct {
	Variant role.Role
	Steps   []Step
}

func (s Schema) TotalSteps() int {
	return len(s.Steps)
}

func (s Schema) lookup(name string) (Field, bool) {
	for _, st := range s.Steps {
		for _, f := range st.Fields {
			if f.Name == name {
				return f, true
			}
		}
	}
	return Field{}, false
}

func (f Field) label() string {
	if f.Label != "" {
		return f.Label
	}
	return f.Name
}

func (f Field) subfield(name string) (Field, bool) {
	for _, sf := range f.Subfields {
		if sf.Name == name {
			return sf, true
		}
	}
	return Field{}, false
}
