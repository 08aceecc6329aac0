package logging

import (
	"path/filepath"
	"strings"
)

// FormatSubject builds the stage/source subject string used in console output.
// Only the base name of the source is shown.
func FormatSubject(stage, source string) string {
	stage = strings.TrimSpace(stage)
	source = strings.TrimSpace(source)
	if source != "" {
		source = filepath.Base(source)
	}
	switch {
	case stage != "" && source != "":
		return source + " (" + stage + ")"
	case source != "":
		return source
	default:
		return stage
	}
}
