package parser

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"mediasorter/internal/services"
	"mediasorter/internal/textutil"
)

// Mode selects the grammar used to parse a filename.
type Mode int

const (
	ModeMovie Mode = iota
	ModeTV
)

func (m Mode) String() string {
	if m == ModeTV {
		return "tv"
	}
	return "movie"
}

const (
	minYear    = 1888
	maxSeason  = 99
	maxEpisode = 999
)

// Parsed is the candidate identity derived from a source filename. For movies
// Year is zero when the name carries no year.
type Parsed struct {
	Mode         Mode
	Title        string
	Year         int
	Season       int
	Episode      int
	EpisodeTitle string
}

// UnparsableNameError reports a filename with no recognizable token sequence.
type UnparsableNameError struct {
	Name   string
	Mode   Mode
	Reason string
}

func (e *UnparsableNameError) Error() string {
	return fmt.Sprintf("unparsable %s name %q: %s", e.Mode, e.Name, e.Reason)
}

func (e *UnparsableNameError) Unwrap() error {
	return services.ErrUnparsable
}

// Parser holds the separator set and year bounds used while parsing.
type Parser struct {
	separators []string
	maxYear    int
}

// Option configures a Parser.
type Option func(*Parser)

// WithSeparators overrides the characters treated as word separators.
func WithSeparators(separators []string) Option {
	return func(p *Parser) {
		if len(separators) > 0 {
			p.separators = append([]string(nil), separators...)
		}
	}
}

// WithMaxYear overrides the latest plausible release year.
func WithMaxYear(year int) Option {
	return func(p *Parser) {
		if year >= minYear {
			p.maxYear = year
		}
	}
}

// New constructs a Parser. The latest plausible year defaults to two years
// after the current one.
func New(opts ...Option) *Parser {
	p := &Parser{
		separators: []string{".", "_"},
		maxYear:    time.Now().Year() + 2,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Parse extracts the candidate identity from path. Only the base name is
// parsed; the parent directory supplies a TV show name when the base name
// carries none.
func (p *Parser) Parse(path string, mode Mode) (Parsed, error) {
	name := filepath.Base(path)
	stem, _ := textutil.SplitExtension(name)
	stem = stripGroupPrefix(stem)

	if mode == ModeTV {
		return p.parseEpisode(path, stem)
	}
	return p.parseMovie(name, stem)
}

var groupPrefix = regexp.MustCompile(`^\s*\[[^\]]*\]\s*`)

func stripGroupPrefix(stem string) string {
	return groupPrefix.ReplaceAllString(stem, "")
}

func (p *Parser) normalize(value string) string {
	return textutil.NormalizeSeparators(value, p.separators)
}

var releaseToken = regexp.MustCompile(`(?i)\b(2160p|1080[pi]|720p|576[pi]|480[pi]|4k|uhd|web-?dl|web-?rip|web|bluray|blu-ray|bdrip|brrip|bd|remux|hdtv|dvdrip|dvd|hdrip|x264|x265|h ?26[45]|hevc|avc|xvid|av1|aac|ac3|eac3|ddp|dts|truehd|atmos|hdr|hdr10|proper|repack|internal|multi|extended|unrated|directors cut)\b`)

// cutAtReleaseToken keeps the text in front of the first release token.
func cutAtReleaseToken(value string) string {
	if loc := releaseToken.FindStringIndex(value); loc != nil {
		value = value[:loc[0]]
	}
	return strings.TrimSpace(strings.TrimRight(strings.TrimSpace(value), "-–([{"))
}

func atoi(value string) (int, bool) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, false
	}
	return n, true
}

func isSeparator(b byte) bool {
	switch b {
	case ' ', '.', '_', '-', '[', ']', '(', ')', '{', '}':
		return true
	}
	return false
}

// boundedNumbers returns the index pairs of digit runs of the given lengths
// that are delimited by separators or the string edges.
func boundedNumbers(value string, lengths ...int) [][2]int {
	var out [][2]int
	for i := 0; i < len(value); {
		if value[i] < '0' || value[i] > '9' {
			i++
			continue
		}
		j := i
		for j < len(value) && value[j] >= '0' && value[j] <= '9' {
			j++
		}
		startOK := i == 0 || isSeparator(value[i-1])
		endOK := j == len(value) || isSeparator(value[j])
		if startOK && endOK {
			for _, n := range lengths {
				if j-i == n {
					out = append(out, [2]int{i, j})
					break
				}
			}
		}
		i = j
	}
	return out
}
