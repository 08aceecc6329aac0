package naming

import (
	"fmt"
	"strconv"
	"strings"

	"mediasorter/internal/services"
)

// Placeholder names accepted in templates.
const (
	FieldTitle        = "title"
	FieldYear         = "year"
	FieldShow         = "show"
	FieldSeason       = "season"
	FieldEpisode      = "episode"
	FieldEpisodeTitle = "episode_title"
)

var numericFields = map[string]bool{
	FieldYear:    true,
	FieldSeason:  true,
	FieldEpisode: true,
}

var knownFields = map[string]bool{
	FieldTitle:        true,
	FieldYear:         true,
	FieldShow:         true,
	FieldSeason:       true,
	FieldEpisode:      true,
	FieldEpisodeTitle: true,
}

type part struct {
	literal string
	field   string
	width   int
}

// Template is a parsed naming template. Each segment is one path level.
type Template struct {
	raw      string
	segments [][]part
}

// String returns the template source.
func (t Template) String() string {
	return t.raw
}

// IsZero reports whether the template was never parsed.
func (t Template) IsZero() bool {
	return t.raw == "" && len(t.segments) == 0
}

// ParseTemplate parses a naming template. Unknown placeholders, widths on
// text fields, and unbalanced braces are configuration errors.
func ParseTemplate(raw string) (Template, error) {
	if strings.TrimSpace(raw) == "" {
		return Template{}, templateError(raw, "template is empty")
	}
	tmpl := Template{raw: raw}
	var current []part
	var literal strings.Builder

	flush := func() {
		if literal.Len() > 0 {
			current = append(current, part{literal: literal.String()})
			literal.Reset()
		}
	}

	for i := 0; i < len(raw); i++ {
		switch c := raw[i]; c {
		case '{':
			end := strings.IndexByte(raw[i+1:], '}')
			if end < 0 {
				return Template{}, templateError(raw, fmt.Sprintf("unclosed '{' at offset %d", i))
			}
			body := raw[i+1 : i+1+end]
			if strings.ContainsAny(body, "{/") {
				return Template{}, templateError(raw, fmt.Sprintf("unclosed '{' at offset %d", i))
			}
			p, err := parsePlaceholder(raw, body)
			if err != nil {
				return Template{}, err
			}
			flush()
			current = append(current, p)
			i += end + 1
		case '}':
			return Template{}, templateError(raw, fmt.Sprintf("unmatched '}' at offset %d", i))
		case '/':
			flush()
			tmpl.segments = append(tmpl.segments, current)
			current = nil
		default:
			literal.WriteByte(c)
		}
	}
	flush()
	tmpl.segments = append(tmpl.segments, current)
	return tmpl, nil
}

func parsePlaceholder(raw, body string) (part, error) {
	name, spec, hasSpec := strings.Cut(strings.TrimSpace(body), ":")
	name = strings.TrimSpace(name)
	if !knownFields[name] {
		return part{}, templateError(raw, fmt.Sprintf("unknown placeholder {%s}", body))
	}
	p := part{field: name}
	if hasSpec {
		if !numericFields[name] {
			return part{}, templateError(raw, fmt.Sprintf("placeholder {%s} does not take a width", name))
		}
		width, err := strconv.Atoi(strings.TrimSpace(spec))
		if err != nil || width < 0 || width > 9 {
			return part{}, templateError(raw, fmt.Sprintf("invalid width in {%s}", body))
		}
		p.width = width
	}
	return p, nil
}

func templateError(raw, message string) error {
	return services.Wrap(services.ErrConfiguration, "naming", "parse template", fmt.Sprintf("%s in %q", message, raw), nil)
}

// render substitutes values into every segment.
func (t Template) render(values fieldValues) []string {
	out := make([]string, 0, len(t.segments))
	for _, segment := range t.segments {
		var b strings.Builder
		for _, p := range segment {
			if p.field == "" {
				b.WriteString(p.literal)
				continue
			}
			b.WriteString(values.format(p.field, p.width))
		}
		out = append(out, b.String())
	}
	return out
}

type fieldValues struct {
	text    map[string]string
	numbers map[string]int
	set     map[string]bool
}

func (v fieldValues) format(field string, width int) string {
	if numericFields[field] {
		if !v.set[field] {
			return ""
		}
		n := v.numbers[field]
		if width > 0 {
			return fmt.Sprintf("%0*d", width, n)
		}
		return strconv.Itoa(n)
	}
	return v.text[field]
}
