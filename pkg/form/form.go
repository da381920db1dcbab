package form

import (
	"errors"

	"github.com/vango-dev/todoui/pkg/dom"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// Field names with their own length rules.
const (
	FieldUsername = "username"
	FieldPassword = "password"
)

// fieldsExpr selects every validatable control inside a form.
const fieldsExpr = ".//input | .//select | .//textarea"

// Messages holds the user-facing validation messages.
type Messages struct {
	Required       string `mapstructure:"required" yaml:"required"`
	UsernameLength string `mapstructure:"username_length" yaml:"username_length"`
	PasswordLength string `mapstructure:"password_length" yaml:"password_length"`
}

// DefaultMessages returns the stock Korean messages.
func DefaultMessages() Messages {
	return Messages{
		Required:       "이 필드는 필수입니다.",
		UsernameLength: "사용자명은 4자 이상이어야 합니다.",
		PasswordLength: "비밀번호는 4자 이상이어야 합니다.",
	}
}

// withDefaults fills empty messages from DefaultMessages.
func (m Messages) withDefaults() Messages {
	d := DefaultMessages()
	if m.Required == "" {
		m.Required = d.Required
	}
	if m.UsernameLength == "" {
		m.UsernameLength = d.UsernameLength
	}
	if m.PasswordLength == "" {
		m.PasswordLength = d.PasswordLength
	}
	return m
}

// Rule applies a Validator to the fields it matches.
type Rule struct {
	Name    string
	Applies func(field *html.Node) bool
	Check   Validator
}

// RequiredRule checks every field carrying the required attribute.
func RequiredRule(msg string) Rule {
	return Rule{
		Name: "required",
		Applies: func(field *html.Node) bool {
			return dom.HasAttr(field, "required")
		},
		Check: Required(msg),
	}
}

// NamedMinLength checks the input called name, whether or not it is
// required.
func NamedMinLength(name string, n int, msg string) Rule {
	return Rule{
		Name: name + "_length",
		Applies: func(field *html.Node) bool {
			return dom.IsElement(field, "input") && dom.Attr(field, "name") == name
		},
		Check: MinLength(n, msg),
	}
}

// DefaultRules returns the required check followed by the username and
// password length checks.
func DefaultRules(m Messages) []Rule {
	m = m.withDefaults()
	return []Rule{
		RequiredRule(m.Required),
		NamedMinLength(FieldUsername, 4, m.UsernameLength),
		NamedMinLength(FieldPassword, 4, m.PasswordLength),
	}
}

// FieldError is one failed field.
type FieldError struct {
	Field   *html.Node
	Name    string
	Rule    string
	Message string
}

// Result is the outcome of one validation pass.
type Result struct {
	Valid  bool
	Errors []FieldError
}

// FieldValidator checks a form's fields and annotates the failures.
type FieldValidator struct {
	rules  []Rule
	logger *zap.Logger
}

// Option configures a FieldValidator.
type Option func(*FieldValidator)

// WithLogger sets the validator logger.
func WithLogger(logger *zap.Logger) Option {
	return func(v *FieldValidator) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// WithRules replaces the rule set.
func WithRules(rules ...Rule) Option {
	return func(v *FieldValidator) {
		v.rules = rules
	}
}

// NewFieldValidator creates a validator with DefaultRules for m.
func NewFieldValidator(m Messages, opts ...Option) *FieldValidator {
	v := &FieldValidator{
		rules:  DefaultRules(m),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(v)
	}
	v.logger = v.logger.Named("form")
	return v
}

// Validate checks every field of form. Rules for one field run in order
// and the first failure wins, so each failing field gets exactly one
// annotation; every other field has its annotation cleared.
func (v *FieldValidator) Validate(form *html.Node) Result {
	res := Result{Valid: true}
	for _, field := range dom.Find(form, fieldsExpr) {
		fe, failed := v.check(field)
		if !failed {
			ClearAnnotation(field)
			continue
		}
		res.Valid = false
		res.Errors = append(res.Errors, fe)
		Annotate(field, fe.Message)
	}
	if !res.Valid {
		v.logger.Debug("form failed validation",
			zap.String("action", dom.Attr(form, "action")),
			zap.Int("errors", len(res.Errors)),
		)
	}
	return res
}

func (v *FieldValidator) check(field *html.Node) (FieldError, bool) {
	value := dom.Value(field)
	for _, rule := range v.rules {
		if rule.Applies == nil || !rule.Applies(field) {
			continue
		}
		err := rule.Check.Validate(value)
		if err == nil {
			continue
		}
		msg := err.Error()
		var ve ValidationError
		if errors.As(err, &ve) {
			msg = ve.Message
		}
		return FieldError{
			Field:   field,
			Name:    dom.Attr(field, "name"),
			Rule:    rule.Name,
			Message: msg,
		}, true
	}
	return FieldError{}, false
}
