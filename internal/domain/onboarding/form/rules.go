package form

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// normalize coerces a decoded JSON value into the shape the field kind
// stores: string for text and choice, []string for lists and
// map[string]any for groups. A nil value clears the field.
func normalize(f Field, value any) (any, error) {
	if value == nil {
		return nil, nil
	}

	switch f.Kind {
	case KindText, KindChoice:
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s expects a string", ErrInvalidValue, f.Name)
		}
		return s, nil

	case KindList:
		switch v := value.(type) {
		case []string:
			return append([]string(nil), v...), nil
		case []any:
			out := make([]string, 0, len(v))
			for _, it := range v {
				s, ok := it.(string)
				if !ok {
					return nil, fmt.Errorf("%w: %s expects a list of strings", ErrInvalidValue, f.Name)
				}
				out = append(out, s)
			}
			return out, nil
		default:
			return nil, fmt.Errorf("%w: %s expects a list", ErrInvalidValue, f.Name)
		}

	case KindGroup:
		m, ok := value.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: %s expects an object", ErrInvalidValue, f.Name)
		}
		out := make(map[string]any, len(m))
		for k, v := range m {
			sf, ok := f.subfield(k)
			if !ok {
				return nil, fmt.Errorf("%w: %s.%s", ErrUnknownField, f.Name, k)
			}
			nv, err := normalize(sf, v)
			if err != nil {
				return nil, err
			}
			if nv != nil {
				out[k] = nv
			}
		}
		return out, nil
	}

	return nil, fmt.Errorf("%w: %s has unsupported kind %q", ErrInvalidValue, f.Name, f.Kind)
}

// checkField evaluates every rule of f against value and records failures in
// errs under key. values is the full form, consulted for cross-field rules.
func checkField(errs map[string]string, key string, f Field, value any, values map[string]any) {
	switch f.Kind {
	case KindText, KindChoice:
		s, _ := value.(string)
		s = strings.TrimSpace(s)
		if s == "" {
			if f.Required {
				errs[key] = fmt.Sprintf("%s is required", f.label())
			}
			return
		}
		if f.Kind == KindChoice && len(f.Options) > 0 {
			if err := validate.Var(s, "oneof="+strings.Join(f.Options, " ")); err != nil {
				errs[key] = message(f, err)
				return
			}
		}
		if f.Rules != "" {
			if err := validate.Var(s, f.Rules); err != nil {
				errs[key] = message(f, err)
				return
			}
		}
		if f.MatchField != "" {
			other, _ := values[f.MatchField].(string)
			if err := validate.VarWithValue(s, strings.TrimSpace(other), "eqfield"); err != nil {
				errs[key] = message(f, err)
			}
		}

	case KindList:
		items, _ := value.([]string)
		nonEmpty := make([]string, 0, len(items))
		for _, it := range items {
			if it = strings.TrimSpace(it); it != "" {
				nonEmpty = append(nonEmpty, it)
			}
		}
		if len(nonEmpty) == 0 {
			if f.Required {
				errs[key] = fmt.Sprintf("%s requires at least one entry", f.label())
			}
			return
		}
		if f.Rules != "" {
			if err := validate.Var(nonEmpty, "dive,"+f.Rules); err != nil {
				errs[key] = message(f, err)
			}
		}

	case KindGroup:
		m, _ := value.(map[string]any)
		if !groupFilled(f, m) {
			if f.Required {
				errs[key] = fmt.Sprintf("%s requires at least one entry", f.label())
			}
			return
		}
		for _, sf := range f.Subfields {
			checkField(errs, key+"."+sf.Name, sf, m[sf.Name], m)
		}
	}
}

// groupFilled reports whether any member of the group holds a non-blank value.
func groupFilled(f Field, m map[string]any) bool {
	for _, sf := range f.Subfields {
		switch v := m[sf.Name].(type) {
		case string:
			if strings.TrimSpace(v) != "" {
				return true
			}
		case []string:
			for _, it := range v {
				if strings.TrimSpace(it) != "" {
					return true
				}
			}
		case map[string]any:
			if groupFilled(sf, v) {
				return true
			}
		}
	}
	return false
}

func message(f Field, err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Sprintf("%s is invalid", f.label())
	}
	fe := verrs[0]
	label := f.label()

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", label)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters", label, fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", label)
	case "url", "http_url":
		return fmt.Sprintf("%s must be a valid URL", label)
	case "e164":
		return fmt.Sprintf("%s must be a phone number in international format", label)
	case "numeric":
		return fmt.Sprintf("%s must be a number", label)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, strings.Join(strings.Fields(fe.Param()), ", "))
	case "eqfield":
		return fmt.Sprintf("%s must match %s", label, f.MatchField)
	default:
		return fmt.Sprintf("%s is invalid", label)
	}
}
