package scenario

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/vango-dev/todoui/internal/errors"
	"gopkg.in/yaml.v3"
)

// Step actions.
const (
	ActionFill    = "fill"
	ActionClick   = "click"
	ActionSubmit  = "submit"
	ActionHover   = "hover"
	ActionLeave   = "leave"
	ActionAdvance = "advance"
	ActionExpect  = "expect"
)

// Scenario is one scripted run against a page.
type Scenario struct {
	Name string `yaml:"name"`

	// Page is the fixture path, relative to the scenario file.
	Page string `yaml:"page"`

	// HTML is an inline page, used when Page is empty.
	HTML string `yaml:"html"`

	Location string `yaml:"location"`

	// Confirm answers delete confirmations in order. Once exhausted every
	// further confirmation is declined.
	Confirm []bool `yaml:"confirm"`

	// FailNavigation, when set, makes every native submission fail with
	// this message and keep the page.
	FailNavigation string `yaml:"fail_navigation"`

	Steps []Step `yaml:"steps"`

	file string
}

// File returns the path the scenario was loaded from, if any.
func (s *Scenario) File() string { return s.file }

// Markup returns the page HTML, reading the fixture if needed.
func (s *Scenario) Markup() (string, error) {
	if s.Page == "" {
		if s.HTML == "" {
			return "", errors.New("T006").WithDetail("The scenario has neither page nor html.")
		}
		return s.HTML, nil
	}
	path := s.Page
	if !filepath.IsAbs(path) && s.file != "" {
		path = filepath.Join(filepath.Dir(s.file), path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.New("T006").Wrap(err)
	}
	return string(data), nil
}

// Duration is a time.Duration written as "500ms" or "4.3s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	if parsed < 0 {
		return fmt.Errorf("line %d: negative duration %s", value.Line, value.Value)
	}
	*d = Duration(parsed)
	return nil
}

// FillStep sets a control's value.
type FillStep struct {
	Target string `yaml:"target"`
	Value  string `yaml:"value"`
}

// NotificationExpect matches an active notification.
type NotificationExpect struct {
	Kind    string `yaml:"kind"`
	Message string `yaml:"message"`
}

// StyleExpect matches an inline style property.
type StyleExpect struct {
	Target   string `yaml:"target"`
	Property string `yaml:"property"`
	Value    string `yaml:"value"`
}

// Expect is a set of checks run together. Unset fields are not checked.
type Expect struct {
	Submissions   *int                 `yaml:"submissions"`
	Notifications *int                 `yaml:"notifications"`
	Unloaded      *bool                `yaml:"unloaded"`
	Elapsed       *Duration            `yaml:"elapsed"`
	Contains      []string             `yaml:"contains"`
	NotContains   []string             `yaml:"not_contains"`
	Count         map[string]int       `yaml:"count"`
	Annotations   map[string]string    `yaml:"annotations"`
	Busy          map[string]bool      `yaml:"busy"`
	Notification  []NotificationExpect `yaml:"notification"`
	Styles        []StyleExpect        `yaml:"styles"`
}

// Step is one action or check. Exactly one field is set.
type Step struct {
	Fill    *FillStep `yaml:"fill"`
	Click   string    `yaml:"click"`
	Submit  string    `yaml:"submit"`
	Hover   string    `yaml:"hover"`
	Leave   string    `yaml:"leave"`
	Advance *Duration `yaml:"advance"`
	Expect  *Expect   `yaml:"expect"`

	// Line and Column locate the step in its file.
	Line   int `yaml:"-"`
	Column int `yaml:"-"`
}

var stepKeys = map[string]bool{
	ActionFill: true, ActionClick: true, ActionSubmit: true, ActionHover: true,
	ActionLeave: true, ActionAdvance: true, ActionExpect: true,
}

// UnmarshalYAML implements yaml.Unmarshaler, recording the step position.
func (s *Step) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: step must be a mapping", value.Line)
	}
	var keys []string
	for i := 0; i < len(value.Content); i += 2 {
		key := value.Content[i].Value
		if !stepKeys[key] {
			return fmt.Errorf("line %d: unknown step action %q", value.Content[i].Line, key)
		}
		keys = append(keys, key)
	}
	if len(keys) != 1 {
		return fmt.Errorf("line %d: step names %d actions (%s), want exactly one",
			value.Line, len(keys), strings.Join(keys, ", "))
	}

	type plain Step
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*s = Step(p)
	s.Line, s.Column = value.Line, value.Column
	return nil
}

// Action returns the step's action name.
func (s Step) Action() string {
	switch {
	case s.Fill != nil:
		return ActionFill
	case s.Click != "":
		return ActionClick
	case s.Submit != "":
		return ActionSubmit
	case s.Hover != "":
		return ActionHover
	case s.Leave != "":
		return ActionLeave
	case s.Advance != nil:
		return ActionAdvance
	case s.Expect != nil:
		return ActionExpect
	}
	return ""
}

// Parse decodes a scenario. file is used for error positions and to
// resolve the page fixture.
func Parse(data []byte, file string) (*Scenario, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var s Scenario
	if err := dec.Decode(&s); err != nil {
		return nil, errors.New("T002").Wrap(err)
	}
	s.file = file
	if s.Name == "" && file != "" {
		s.Name = strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	}
	for i, step := range s.Steps {
		if step.Action() == "" {
			return nil, locate(errors.New("T003"), &s, step).
				WithDetail(fmt.Sprintf("Step %d has an empty target.", i+1))
		}
	}
	return &s, nil
}

// Load reads and parses a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("T001").Wrap(err)
	}
	return Parse(data, path)
}

// Glob loads every scenario matching pattern, in name order.
func Glob(pattern string) ([]*Scenario, error) {
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, errors.New("T001").Wrap(err)
	}
	sort.Strings(paths)
	out := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := Load(p)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func locate(e *errors.Error, s *Scenario, step Step) *errors.Error {
	if s.file == "" {
		e.Location = &errors.Location{File: s.Name, Line: step.Line, Column: step.Column}
		return e
	}
	return e.WithLocation(s.file, step.Line, step.Column)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
