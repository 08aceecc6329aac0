// Package metainfo matches release filenames against an ordered catalog of
// (group, label, pattern) rules and renders the winning labels as a tag string.
//
// Declaration order decides which rule wins inside a group. Group order decides
// where each label lands in the emitted string. A catalog is immutable once
// loaded and safe for concurrent use.
package metainfo
