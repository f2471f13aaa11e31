package helpers

import (
	"fmt"
	"strings"
)

// Annotation is a parsed binding such as
//
//	[:getter, :field=name, :by=pointer]
//
// Each entry of Params is one comma separated section: the tag followed by
// its values. ":tag(a&b)" yields [":tag", "a", "b"].
type Annotation struct {
	Params [][]string
}

// ParseAnnotation parses one bracketed annotation. A leading "//" is
// accepted so annotations can be lifted straight out of comments.
func ParseAnnotation(text string) (Annotation, error) {
	s := strings.TrimSpace(text)
	s = strings.TrimSpace(strings.TrimPrefix(s, "//"))
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return Annotation{}, fmt.Errorf("annotation %q is not enclosed in [...]", text)
	}
	s = s[1 : len(s)-1]

	sections := []string{}
	var section strings.Builder
	depth := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == ',' && depth == 0:
			sections = append(sections, section.String())
			section.Reset()
			continue
		case c == '(':
			depth++
		case c == ')':
			depth--
			if depth < 0 {
				return Annotation{}, fmt.Errorf("annotation %q: unbalanced ')'", text)
			}
		}
		section.WriteByte(c)
	}
	if depth != 0 {
		return Annotation{}, fmt.Errorf("annotation %q: unbalanced '('", text)
	}
	sections = append(sections, section.String())

	annotation := Annotation{Params: [][]string{}}
	for _, sec := range sections {
		sec = strings.TrimSpace(sec)
		if sec == "" {
			continue
		}
		param, err := parseSection(sec)
		if err != nil {
			return Annotation{}, fmt.Errorf("annotation %q: %w", text, err)
		}
		annotation.Params = append(annotation.Params, param)
	}
	if len(annotation.Params) == 0 {
		return Annotation{}, fmt.Errorf("annotation %q is empty", text)
	}
	return annotation, nil
}

func parseSection(sec string) ([]string, error) {
	// :tag(a&b)
	if name, after, ok := strings.Cut(sec, "("); ok {
		raw, _, _ := strings.Cut(after, ")")
		param := []string{strings.TrimSpace(name)}
		for _, v := range strings.Split(raw, "&") {
			param = append(param, strings.TrimSpace(v))
		}
		return param, nil
	}
	// :tag=value
	if name, val, ok := strings.Cut(sec, "="); ok {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("section %q has no name", sec)
		}
		return []string{name, strings.TrimSpace(val)}, nil
	}
	return []string{sec}, nil
}

// Tag returns the first section without values, its leading ':' removed.
func (a Annotation) Tag() string {
	for _, param := range a.Params {
		if len(param) == 1 {
			return strings.TrimPrefix(param[0], ":")
		}
	}
	return ""
}

// Values returns the key=value sections keyed by name without the leading ':'.
func (a Annotation) Values() map[string]string {
	values := map[string]string{}
	for _, param := range a.Params {
		if len(param) == 2 {
			values[strings.TrimPrefix(param[0], ":")] = param[1]
		}
	}
	return values
}
