// Package naming renders destination paths from resolved metadata, naming
// templates, and an optional metainfo tag string.
//
// Templates use {title} {year} {show} {season} {episode} {episode_title}
// placeholders with an optional zero-pad width such as {season:02}. A "/"
// in a template separates directory levels. Every rendered segment has the
// configured forbidden characters replaced, is NFC normalized, and has its
// whitespace collapsed, so the same inputs always yield the same bytes.
package naming
