package config

const (
	defaultConfigPath       = "~/.config/mediasorter/config.toml"
	legacyConfigPath        = "~/.config/mediasorter/config.yml"
	defaultStateDir         = "~/.local/share/mediasorter"
	defaultLogDir           = "~/.local/share/mediasorter/logs"
	defaultMoviesDir        = "~/library/movies"
	defaultTVDir            = "~/library/tv"
	defaultTMDBLanguage     = "en-US"
	defaultTMDBBaseURL      = "https://api.themoviedb.org/3"
	defaultTMDBMaxPages     = 5
	defaultTVMazeBaseURL    = "https://api.tvmaze.com"
	defaultMinSplitLength   = 1
	defaultWorkers          = 4
	defaultRequestTimeout   = 10
	defaultMaxRetries       = 4
	defaultMovieFileFormat  = "{title} ({year})"
	defaultMovieDirFormat   = "{title} ({year})"
	defaultTVFileFormat     = "{show} - S{season:02}E{episode:02} - {episode_title}"
	defaultTVDirFormat      = "{show}/Season {season:02}"
	defaultTagOpen          = "["
	defaultTagClose         = "]"
	defaultTagDelimiter     = " "
	defaultTagPrefix        = " - "
	defaultForbiddenChars   = `/\:*?"<>|#`
	defaultAction           = ActionCopy
	defaultMediaType        = MediaTypeAuto
	defaultFileMode         = "0644"
	defaultDirMode          = "0755"
	defaultHistoryFile      = "history.db"
	defaultWatchSettleDelay = 5
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
)

// Filesystem actions accepted by operation.action.
const (
	ActionCopy     = "copy"
	ActionMove     = "move"
	ActionHardlink = "hardlink"
	ActionSymlink  = "symlink"
)

// Media types accepted by operation.media_type and scan sources.
const (
	MediaTypeAuto  = "auto"
	MediaTypeMovie = "movie"
	MediaTypeTV    = "tv"
)

var defaultValidExtensions = []string{".avi", ".mkv", ".mp4", ".m4v", ".mov", ".ts", ".wmv", ".mpg", ".mpeg", ".webm", ".srt"}

var defaultSplitCharacters = []string{".", "_"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Library: Library{
			MoviesDir: defaultMoviesDir,
			TVDir:     defaultTVDir,
		},
		TMDB: TMDB{
			BaseURL:  defaultTMDBBaseURL,
			Language: defaultTMDBLanguage,
			MaxPages: defaultTMDBMaxPages,
		},
		TVMaze: TVMaze{
			Enabled: true,
			BaseURL: defaultTVMazeBaseURL,
		},
		Parameters: Parameters{
			ValidExtensions: append([]string(nil), defaultValidExtensions...),
			SplitCharacters: append([]string(nil), defaultSplitCharacters...),
			MinSplitLength:  defaultMinSplitLength,
			Workers:         defaultWorkers,
			RequestTimeout:  defaultRequestTimeout,
			MaxRetries:      defaultMaxRetries,
		},
		Movie: Movie{
			FileFormat:           defaultMovieFileFormat,
			DirFormat:            defaultMovieDirFormat,
			Subdir:               true,
			AllowMetadataTagging: true,
		},
		TV: TV{
			FileFormat: defaultTVFileFormat,
			DirFormat:  defaultTVDirFormat,
		},
		Metainfo: Metainfo{
			Open:      defaultTagOpen,
			Close:     defaultTagClose,
			Delimiter: defaultTagDelimiter,
			Prefix:    defaultTagPrefix,
		},
		Naming: Naming{
			ForbiddenChars: defaultForbiddenChars,
		},
		Operation: Operation{
			Action:    defaultAction,
			MediaType: defaultMediaType,
			FileMode:  defaultFileMode,
			DirMode:   defaultDirMode,
		},
		History: History{
			Enabled: true,
		},
		Watch: Watch{
			SettleSeconds: defaultWatchSettleDelay,
			Recursive:     true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
