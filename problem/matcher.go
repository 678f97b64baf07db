package problem

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Matcher is a compiled Spec
type Matcher struct {
	re       *regexp.Regexp
	template string
	group    int
	numeric  bool
}

// Compile validates s and compiles its input pattern
func Compile(s Spec) (*Matcher, error) {
	if s.InputPattern == "" {
		return nil, errors.New("problem spec: empty input pattern")
	}
	if s.AnswerTemplate == "" {
		return nil, errors.New("problem spec: empty answer template")
	}
	name := s.IDGroup
	if name == "" {
		name = DefaultIDGroup
	}
	re, err := regexp.Compile("(?i)^(?:" + s.InputPattern + ")$")
	if err != nil {
		return nil, fmt.Errorf("problem spec: input pattern %q: %w", s.InputPattern, err)
	}
	group := re.SubexpIndex(name)
	if group < 0 {
		return nil, fmt.Errorf("problem spec: input pattern %q has no group named %q", s.InputPattern, name)
	}
	return &Matcher{
		re:       re,
		template: s.AnswerTemplate,
		group:    group,
		numeric:  s.NumericID,
	}, nil
}

// Match tests a file name against the input pattern. It returns the
// normalized test identifier and the derived answer file name.
func (m *Matcher) Match(name string) (id, answer string, ok bool) {
	loc := m.re.FindStringSubmatchIndex(name)
	if loc == nil || loc[2*m.group] < 0 {
		return "", "", false
	}
	id = name[loc[2*m.group]:loc[2*m.group+1]]
	if m.numeric {
		id = trimZeros(id)
	}
	answer = string(m.re.ExpandString(nil, m.template, name, loc))
	return id, answer, true
}

func trimZeros(id string) string {
	t := strings.TrimLeft(id, "0")
	if t == "" && id != "" {
		return "0"
	}
	return t
}
