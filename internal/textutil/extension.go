package textutil

import (
	"path/filepath"
	"strings"
	"unicode"
)

// digitExtensions are the container extensions that contain digits. Any
// other suffix with a digit ("x264", "DDP5") is a release token.
var digitExtensions = map[string]struct{}{
	"mp4": {}, "m4v": {}, "m2ts": {}, "mp2": {}, "mp3": {}, "m4a": {},
}

// releaseSuffixes look like extensions but end extensionless release names.
var releaseSuffixes = map[string]struct{}{
	"remux": {}, "truehd": {}, "atmos": {}, "bluray": {}, "bdrip": {}, "brrip": {},
	"webrip": {}, "webdl": {}, "web": {}, "hdtv": {}, "hdrip": {}, "dvdrip": {},
	"dvd": {}, "hevc": {}, "avc": {}, "xvid": {}, "aac": {}, "dts": {}, "hdr": {},
	"proper": {}, "repack": {}, "internal": {}, "multi": {}, "extended": {}, "unrated": {},
}

// SplitExtension splits name into its stem and extension. Only a short
// trailing suffix that starts with a letter and contains no spaces counts as
// an extension. Release tokens such as ".1080p", ".x264" or ".REMUX" stay in
// the stem.
func SplitExtension(name string) (string, string) {
	ext := filepath.Ext(name)
	if len(ext) < 2 || len(ext) > 6 {
		return name, ""
	}
	body := strings.ToLower(ext[1:])
	if !unicode.IsLetter(rune(body[0])) || strings.ContainsAny(body, " \t") {
		return name, ""
	}
	if _, ok := releaseSuffixes[body]; ok {
		return name, ""
	}
	if strings.IndexFunc(body, unicode.IsDigit) >= 0 {
		if _, ok := digitExtensions[body]; !ok {
			return name, ""
		}
	}
	return strings.TrimSuffix(name, ext), ext
}
