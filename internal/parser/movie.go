package parser

import (
	"strings"
)

func (p *Parser) parseMovie(name, stem string) (Parsed, error) {
	if hasStrictMarker(stem) {
		return Parsed{}, &UnparsableNameError{Name: name, Mode: ModeMovie, Reason: "name carries a season/episode marker"}
	}

	for _, loc := range boundedNumbers(stem, 4) {
		year, ok := atoi(stem[loc[0]:loc[1]])
		if !ok || year < minYear || year > p.maxYear {
			continue
		}
		title := p.normalize(stem[:loc[0]])
		if title == "" {
			continue
		}
		return Parsed{Mode: ModeMovie, Title: title, Year: year}, nil
	}

	title := cutAtReleaseToken(p.normalize(stem))
	if title == "" {
		return Parsed{}, &UnparsableNameError{Name: name, Mode: ModeMovie, Reason: "no title found"}
	}
	return Parsed{Mode: ModeMovie, Title: title}, nil
}

// FixLeadingThe moves a leading "The" to the end: "The Office" becomes
// "Office, The". Single-word titles are returned unchanged.
func FixLeadingThe(title string) string {
	trimmed := strings.TrimSpace(title)
	if len(trimmed) < 4 || !strings.EqualFold(trimmed[:4], "the ") {
		return trimmed
	}
	rest := strings.TrimSpace(trimmed[4:])
	if rest == "" {
		return trimmed
	}
	return rest + ", " + trimmed[:3]
}
