package parser

import (
	"path/filepath"
	"regexp"
	"strings"
)

// episodeMarker is one accepted season/episode notation.
type episodeMarker struct {
	name    string
	pattern *regexp.Regexp
}

// Strict markers also disqualify a name from movie parsing.
var strictMarkers = []episodeMarker{
	{"SxxEyy", regexp.MustCompile(`(?i)(?:^|[^a-z0-9])s(\d{1,3})[ ._-]?e(\d{1,4})(?:[^0-9]|$)`)},
	{"NxNN", regexp.MustCompile(`(?i)(?:^|[^a-z0-9])(\d{1,2})x(\d{2,3})(?:[^0-9]|$)`)},
	{"verbose", regexp.MustCompile(`(?i)(?:^|[^a-z0-9])season[ ._]*(\d{1,3})[ ._-]*(?:episode|ep)[ ._]*(\d{1,4})(?:[^0-9]|$)`)},
}

var (
	seasonFolder       = regexp.MustCompile(`(?i)^(season[ ._-]*\d+|s\d{1,2}|specials?|extras)$`)
	leadingEpisodeList = regexp.MustCompile(`(?i)^(-?\s*e\d{1,4}\b\s*)+`)
)

var resolutionValues = map[int]struct{}{480: {}, 576: {}, 720: {}, 1080: {}, 2160: {}}

type episodeHit struct {
	start, end      int
	season, episode int
	// strict hits may borrow the show name from the directory.
	strict bool
}

func (p *Parser) parseEpisode(path, stem string) (Parsed, error) {
	for _, marker := range strictMarkers {
		for _, loc := range marker.pattern.FindAllStringSubmatchIndex(stem, -1) {
			season, okS := atoi(stem[loc[2]:loc[3]])
			episode, okE := atoi(stem[loc[4]:loc[5]])
			if !okS || !okE || !validEpisode(season, episode) {
				continue
			}
			hit := episodeHit{start: loc[2], end: loc[5], season: season, episode: episode, strict: true}
			// Include the marker prefix ("S", "season") in the title cut.
			hit.start = markerStart(stem, loc)
			if parsed, ok := p.episodeFromHit(path, stem, hit); ok {
				return parsed, nil
			}
		}
	}

	for _, hit := range digitPairHits(stem) {
		if parsed, ok := p.episodeFromHit(path, stem, hit); ok {
			return parsed, nil
		}
	}

	return Parsed{}, &UnparsableNameError{Name: filepath.Base(path), Mode: ModeTV, Reason: "no season/episode marker found"}
}

// markerStart returns where the marker text begins, skipping the one
// separator character the pattern may have consumed.
func markerStart(stem string, loc []int) int {
	start := loc[0]
	if start < len(stem) && start < loc[2] && !isAlnum(stem[start]) {
		start++
	}
	return start
}

func isAlnum(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

func validEpisode(season, episode int) bool {
	return season >= 0 && season <= maxSeason && episode >= 0 && episode <= maxEpisode
}

// digitPairHits finds "xyy" and "xxyy" tokens, skipping anything that reads
// as a year or a resolution. A bare pair needs a title before it; "300.2006"
// is a movie, not season 3 of its download folder.
func digitPairHits(stem string) []episodeHit {
	var hits []episodeHit
	for _, loc := range boundedNumbers(stem, 3, 4) {
		token := stem[loc[0]:loc[1]]
		value, ok := atoi(token)
		if !ok {
			continue
		}
		if value >= 1900 && value <= 2099 {
			continue
		}
		if _, res := resolutionValues[value]; res {
			continue
		}
		split := len(token) - 2
		season, _ := atoi(token[:split])
		episode, _ := atoi(token[split:])
		if !validEpisode(season, episode) {
			continue
		}
		hits = append(hits, episodeHit{start: loc[0], end: loc[1], season: season, episode: episode})
	}
	return hits
}

func (p *Parser) episodeFromHit(path, stem string, hit episodeHit) (Parsed, bool) {
	show := p.normalize(stem[:hit.start])
	if show == "" && hit.strict {
		show = showFromDirectory(path, p)
	}
	if show == "" {
		return Parsed{}, false
	}

	rest := stem[hit.end:]
	rest = strings.TrimLeft(rest, "0123456789")
	episodeTitle := p.normalize(rest)
	episodeTitle = leadingEpisodeList.ReplaceAllString(episodeTitle, "")
	episodeTitle = strings.TrimLeft(episodeTitle, " -")
	episodeTitle = cutAtReleaseToken(episodeTitle)

	return Parsed{
		Mode:         ModeTV,
		Title:        show,
		Season:       hit.season,
		Episode:      hit.episode,
		EpisodeTitle: episodeTitle,
	}, true
}

// showFromDirectory walks up from the file, skipping season folders, and
// returns the first directory name that can serve as a show name.
func showFromDirectory(path string, p *Parser) string {
	dir := filepath.Dir(path)
	for i := 0; i < 2; i++ {
		base := filepath.Base(dir)
		if base == "." || base == string(filepath.Separator) || base == "" {
			return ""
		}
		normalized := p.normalize(base)
		if !seasonFolder.MatchString(normalized) {
			return cutAtReleaseToken(normalized)
		}
		dir = filepath.Dir(dir)
	}
	return ""
}

// hasStrictMarker reports whether stem contains a valid SxxEyy, NxNN, or
// verbose season marker.
func hasStrictMarker(stem string) bool {
	for _, marker := range strictMarkers {
		for _, m := range marker.pattern.FindAllStringSubmatch(stem, -1) {
			season, okS := atoi(m[1])
			episode, okE := atoi(m[2])
			if okS && okE && validEpisode(season, episode) {
				return true
			}
		}
	}
	return false
}
