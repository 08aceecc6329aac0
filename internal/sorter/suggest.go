package sorter

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"mediasorter/internal/config"
	"mediasorter/internal/logging"
	"mediasorter/internal/metainfo"
	"mediasorter/internal/naming"
	"mediasorter/internal/organizer"
	"mediasorter/internal/parser"
	"mediasorter/internal/services"
	"mediasorter/internal/textutil"
)

// Target says how files from one source are sorted.
type Target struct {
	MediaType string
	Action    organizer.Action
	MoviesDir string
	TVDir     string
}

// TargetFor converts a scan source into a Target. Empty fields fall back to
// the configured defaults.
func (e *Engine) TargetFor(src config.ScanSource) (Target, error) {
	mediaType := src.MediaType
	if mediaType == "" {
		mediaType = e.cfg.Operation.MediaType
	}
	if !config.IsValidMediaType(mediaType) {
		return Target{}, fmt.Errorf("%w: unknown media type %q", services.ErrConfiguration, mediaType)
	}
	actionName := src.Action
	if actionName == "" {
		actionName = e.cfg.Operation.Action
	}
	action, err := organizer.ParseAction(actionName)
	if err != nil {
		return Target{}, err
	}
	target := Target{
		MediaType: mediaType,
		Action:    action,
		MoviesDir: src.MoviesDir,
		TVDir:     src.TVDir,
	}
	if target.MoviesDir == "" {
		target.MoviesDir = e.cfg.Library.MoviesDir
	}
	if target.TVDir == "" {
		target.TVDir = e.cfg.Library.TVDir
	}
	return target, nil
}

// Suggest runs the analysis half of the pipeline for one file: parse, look
// up metadata, extract tags and build the destination. It never touches the
// filesystem. The returned operation is pending when every step succeeded.
func (e *Engine) Suggest(ctx context.Context, src string, target Target) Operation {
	op := Operation{
		Source:    src,
		MediaType: target.MediaType,
		Action:    target.Action,
		State:     StateInitial,
		DryRun:    e.dryRun,
	}
	ctx = services.WithSource(ctx, src)
	if err := ctx.Err(); err != nil {
		op.fail(err)
		return op
	}

	switch target.MediaType {
	case config.MediaTypeMovie:
		e.suggestMovie(ctx, &op, target)
	case config.MediaTypeTV:
		e.suggestEpisode(ctx, &op, target)
	default:
		e.suggestAuto(ctx, &op, target)
	}

	logger := logging.WithContext(ctx, e.logger)
	if op.Err != nil {
		attrs := []logging.Attr{
			logging.String("state", string(op.State)),
			logging.String(logging.FieldErrorKind, string(op.ErrorKind)),
			logging.Error(op.Err),
		}
		if op.Outcome == services.OutcomeSkipped {
			logging.WarnWithContext(logger, "file skipped", "file_skipped", attrs...)
		} else {
			logging.ErrorWithContext(logger, "file failed", "file_failed", attrs...)
		}
		return op
	}
	logger.Debug("destination planned",
		logging.String(logging.FieldDestination, op.Destination),
		logging.String("media_type", op.MediaType),
		logging.String("tags", op.Tags),
	)
	return op
}

// suggestAuto tries the TV layout first. Only a name that does not parse as
// an episode falls back to movie handling; a parsed episode whose metadata
// cannot be found stays a TV failure.
func (e *Engine) suggestAuto(ctx context.Context, op *Operation, target Target) {
	if _, err := e.parser.Parse(op.Source, parser.ModeTV); errors.Is(err, services.ErrUnparsable) {
		e.suggestMovie(ctx, op, target)
		return
	}
	e.suggestEpisode(ctx, op, target)
}

func (e *Engine) suggestMovie(ctx context.Context, op *Operation, target Target) {
	op.MediaType = config.MediaTypeMovie
	parsed, err := e.parser.Parse(op.Source, parser.ModeMovie)
	if err != nil {
		op.fail(err)
		return
	}
	op.State = StateParsed

	lookupCtx := services.WithStage(ctx, "metadata")
	movie, err := e.resolver.Movie(lookupCtx, parsed.Title, parsed.Year)
	if err != nil {
		op.fail(err)
		return
	}
	op.State = StateMetadataResolved
	logging.WithContext(lookupCtx, e.logger).Debug("movie resolved",
		logging.String("title", movie.Title),
		logging.Int("year", movie.Year),
		logging.String("provider", movie.Provider),
	)

	title := movie.Title
	if override, ok := e.cfg.Movie.NameOverrides[title]; ok && strings.TrimSpace(override) != "" {
		title = override
	}
	year := movie.Year
	if year == 0 {
		year = parsed.Year
	}

	var tags metainfo.TagString
	if e.tagMetainfo {
		tags = metainfo.Extract(filepath.Base(op.Source), e.catalog)
		op.Tags = tags.String()
		op.State = StateMetainfoExtracted
	}

	resolved := naming.Resolved{Kind: naming.KindMovie, Title: title, Year: year}
	e.finish(op, resolved, tags, e.movieLayout, target.MoviesDir)
}

func (e *Engine) suggestEpisode(ctx context.Context, op *Operation, target Target) {
	op.MediaType = config.MediaTypeTV
	parsed, err := e.parser.Parse(op.Source, parser.ModeTV)
	if err != nil {
		op.fail(err)
		return
	}
	op.State = StateParsed

	lookupCtx := services.WithStage(ctx, "metadata")
	episode, err := e.resolver.Episode(lookupCtx, parsed.Title, parsed.Season, parsed.Episode)
	if err != nil {
		op.fail(err)
		return
	}
	op.State = StateMetadataResolved
	logging.WithContext(lookupCtx, e.logger).Debug("episode resolved",
		logging.String("show", episode.Show),
		logging.Int("season", episode.Season),
		logging.Int("episode", episode.Number),
	)

	show := episode.Show
	if e.cfg.TV.SuffixThe {
		show = parser.FixLeadingThe(show)
	}
	title := episode.Title
	if strings.TrimSpace(title) == "" {
		title = parsed.EpisodeTitle
	}

	resolved := naming.Resolved{
		Kind:         naming.KindEpisode,
		Show:         show,
		Season:       episode.Season,
		Episode:      episode.Number,
		EpisodeTitle: title,
	}
	e.finish(op, resolved, metainfo.TagString{}, e.tvLayout, target.TVDir)
}

func (e *Engine) finish(op *Operation, resolved naming.Resolved, tags metainfo.TagString, layout naming.Layout, root string) {
	_, ext := textutil.SplitExtension(filepath.Base(op.Source))
	dest, err := naming.Build(resolved, tags, layout, naming.Options{
		Extension: ext,
		Sanitizer: e.sanitizer,
	})
	if err != nil {
		op.fail(fmt.Errorf("build destination name: %w", err))
		return
	}
	op.Destination = filepath.Join(root, dest.Path())
	op.State = StateNameBuilt
}

// Parse is the offline half of Suggest: filename parsing and metainfo
// extraction with no provider lookups.
func (e *Engine) Parse(name, mediaType string) (parser.Parsed, metainfo.TagString, error) {
	tags := metainfo.Extract(filepath.Base(name), e.catalog)
	switch mediaType {
	case config.MediaTypeMovie:
		parsed, err := e.parser.Parse(name, parser.ModeMovie)
		return parsed, tags, err
	case config.MediaTypeTV:
		parsed, err := e.parser.Parse(name, parser.ModeTV)
		return parsed, tags, err
	}
	if parsed, err := e.parser.Parse(name, parser.ModeTV); err == nil {
		return parsed, tags, nil
	}
	parsed, err := e.parser.Parse(name, parser.ModeMovie)
	return parsed, tags, err
}
