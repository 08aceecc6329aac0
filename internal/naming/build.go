package naming

import (
	"errors"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"mediasorter/internal/metainfo"
	"mediasorter/internal/textutil"
)

// Kind distinguishes movie and episode metadata.
type Kind int

const (
	KindMovie Kind = iota
	KindEpisode
)

// Resolved is the canonical metadata returned by a provider.
type Resolved struct {
	Kind         Kind
	Title        string
	Year         int
	Show         string
	Season       int
	Episode      int
	EpisodeTitle string
}

// Layout pairs the optional directory template with the file template.
type Layout struct {
	Dir  Template
	File Template
}

// ParseLayout parses a directory and file template pair. An empty dirFormat
// places files directly in the library root.
func ParseLayout(dirFormat, fileFormat string) (Layout, error) {
	file, err := ParseTemplate(fileFormat)
	if err != nil {
		return Layout{}, err
	}
	layout := Layout{File: file}
	if strings.TrimSpace(dirFormat) != "" {
		dir, err := ParseTemplate(dirFormat)
		if err != nil {
			return Layout{}, err
		}
		layout.Dir = dir
	}
	return layout, nil
}

// Options controls the final name rendering.
type Options struct {
	// Extension is appended verbatim, e.g. ".mkv".
	Extension string
	Sanitizer textutil.Sanitizer
}

// Destination is a library-relative path.
type Destination struct {
	Dir  string
	File string
}

// Path joins the directory and file name.
func (d Destination) Path() string {
	if d.Dir == "" {
		return d.File
	}
	return filepath.Join(d.Dir, d.File)
}

// ErrEmptyName reports a template that rendered to nothing.
var ErrEmptyName = errors.New("destination name rendered empty")

const edgeSeparators = " -–.,"

var (
	emptyBrackets   = regexp.MustCompile(`\(\s*\)|\[\s*\]|\{\s*\}`)
	repeatedDashes  = regexp.MustCompile(`(\s+-)+\s+-\s`)
	dotSegmentNames = map[string]bool{".": true, "..": true}
)

// Build renders the destination for resolved metadata. Non-empty tags are
// appended to the file name before the extension.
func Build(resolved Resolved, tags metainfo.TagString, layout Layout, opts Options) (Destination, error) {
	if opts.Sanitizer.IsZero() {
		opts.Sanitizer = textutil.NewSanitizer(textutil.DefaultForbidden, "")
	}
	values := resolved.values()

	var dirs []string
	if !layout.Dir.IsZero() {
		for _, segment := range layout.Dir.render(values) {
			if cleaned := cleanSegment(segment, opts.Sanitizer); cleaned != "" {
				dirs = append(dirs, cleaned)
			}
		}
	}

	fileSegments := layout.File.render(values)
	for _, segment := range fileSegments[:len(fileSegments)-1] {
		if cleaned := cleanSegment(segment, opts.Sanitizer); cleaned != "" {
			dirs = append(dirs, cleaned)
		}
	}

	stem := cleanSegment(fileSegments[len(fileSegments)-1], opts.Sanitizer)
	if stem == "" {
		return Destination{}, ErrEmptyName
	}
	if !tags.Empty() {
		stem = opts.Sanitizer.Clean(norm.NFC.String(stem + tags.Suffix()))
	}

	return Destination{
		Dir:  filepath.Join(dirs...),
		File: stem + opts.Extension,
	}, nil
}

// cleanSegment normalizes one rendered path level.
func cleanSegment(segment string, sanitizer textutil.Sanitizer) string {
	segment = norm.NFC.String(segment)
	segment = sanitizer.Clean(segment)
	segment = emptyBrackets.ReplaceAllString(segment, "")
	segment = repeatedDashes.ReplaceAllString(segment, " - ")
	segment = textutil.CollapseSpaces(segment)
	segment = strings.Trim(segment, edgeSeparators)
	if dotSegmentNames[segment] {
		return ""
	}
	return segment
}

func (r Resolved) values() fieldValues {
	v := fieldValues{
		text: map[string]string{
			FieldTitle:        r.Title,
			FieldShow:         r.Show,
			FieldEpisodeTitle: r.EpisodeTitle,
		},
		numbers: map[string]int{
			FieldYear:    r.Year,
			FieldSeason:  r.Season,
			FieldEpisode: r.Episode,
		},
		set: map[string]bool{
			FieldYear: r.Year > 0,
		},
	}
	if r.Kind == KindEpisode {
		v.set[FieldSeason] = true
		v.set[FieldEpisode] = true
		if v.text[FieldTitle] == "" {
			v.text[FieldTitle] = r.Show
		}
	} else if v.text[FieldShow] == "" {
		v.text[FieldShow] = r.Title
	}
	return v
}
