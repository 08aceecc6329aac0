package metainfo

import "mediasorter/internal/config"

// DefaultRules returns the built-in catalog. Order matters: the first rule
// that matches wins its group.
func DefaultRules() []config.MetainfoRule {
	return []config.MetainfoRule{
		{Group: "edition", Label: "Directors Cut", Pattern: `\bdirector'?s?[ ._-]?(cut|edition|version)\b`},
		{Group: "edition", Label: "Extended", Pattern: `\bextended([ ._-]?(cut|edition|version))?\b`},
		{Group: "edition", Label: "Unrated", Pattern: `\bunrated\b`},
		{Group: "edition", Label: "Uncut", Pattern: `\buncut\b`},
		{Group: "edition", Label: "Theatrical", Pattern: `\btheatrical([ ._-]?(cut|edition|version|release))?\b`},
		{Group: "edition", Label: "Remastered", Pattern: `\bremaster(ed)?\b`},
		{Group: "edition", Label: "Special Edition", Pattern: `\bspecial[ ._-]?edition\b`},
		{Group: "edition", Label: "Criterion", Pattern: `\bcriterion\b`},
		{Group: "edition", Label: "IMAX", Pattern: `\bimax\b`},

		{Group: "resolution", Label: "2160p", Pattern: `\b(2160p|4k|uhd)\b`},
		{Group: "resolution", Label: "1080p", Pattern: `\b1080[pi]\b`},
		{Group: "resolution", Label: "720p", Pattern: `\b720p\b`},
		{Group: "resolution", Label: "576p", Pattern: `\b576[pi]\b`},
		{Group: "resolution", Label: "480p", Pattern: `\b480[pi]\b`},

		{Group: "source", Label: "BD Remux", Pattern: `\bremux\b`},
		{Group: "source", Label: "BluRay", Pattern: `\b(blu-?ray|bdrip|brrip|bd)\b`},
		{Group: "source", Label: "WEB-DL", Pattern: `\bweb-?dl\b`},
		{Group: "source", Label: "WEBRip", Pattern: `\bweb-?rip\b`},
		{Group: "source", Label: "HDTV", Pattern: `\bhdtv\b`},
		{Group: "source", Label: "DVD", Pattern: `\bdvd(rip|r|5|9)?\b`},

		{Group: "video_codec", Label: "x265", Pattern: `\b(x265|h\.?265|hevc)\b`},
		{Group: "video_codec", Label: "x264", Pattern: `\b(x264|h\.?264|avc)\b`},
		{Group: "video_codec", Label: "AV1", Pattern: `\bav1\b`},
		{Group: "video_codec", Label: "XviD", Pattern: `\bxvid\b`},

		{Group: "dynamic_range", Label: "DV", Pattern: `\b(dv|dovi|dolby[ ._-]?vision)\b`},
		{Group: "dynamic_range", Label: "HDR10+", Pattern: `\bhdr10(\+|plus)`},
		{Group: "dynamic_range", Label: "HDR", Pattern: `\bhdr`},

		{Group: "audio_channels", Label: "7.x", Pattern: `\b7[ .][1x]\b`},
		{Group: "audio_channels", Label: "5.x", Pattern: `\b5([ .][1x])?\b`},
		{Group: "audio_channels", Label: "2.0", Pattern: `\b2[ .]0\b`},

		{Group: "audio_codec", Label: "Atmos TrueHD", Pattern: `\btrue-?hd\b`},
		{Group: "audio_codec", Label: "DTS-HD MA", Pattern: `\bdts-?hd([ ._-]?ma)?\b`},
		{Group: "audio_codec", Label: "DTS", Pattern: `\bdts\b`},
		{Group: "audio_codec", Label: "EAC3", Pattern: `\b(e-?ac-?3|ddp)`},
		{Group: "audio_codec", Label: "AC3", Pattern: `\b(ac-?3|dd)\b`},
		{Group: "audio_codec", Label: "AAC", Pattern: `\baac`},
		{Group: "audio_codec", Label: "FLAC", Pattern: `\bflac\b`},

		{Group: "language", Label: "MULTi", Pattern: `\bmulti\b`},
		{Group: "language", Label: "DUAL", Pattern: `\bdual([ ._-]?audio)?\b`},

		{Group: "release", Label: "PROPER", Pattern: `\bproper\b`},
		{Group: "release", Label: "REPACK", Pattern: `\brepack\b`},
	}
}
