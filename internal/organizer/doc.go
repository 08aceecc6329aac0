// Package organizer places sorted media into the library.
//
// Apply performs one filesystem action (copy, move, hardlink or symlink) from
// a source file to its destination, creating parent directories and refusing
// to replace existing targets unless overwrite is enabled. Moves across
// filesystems fall back to a verified copy followed by removal of the source.
// After the action it can write a .txt info file and a .sha256sum file next to
// the destination and correct ownership and permissions. Every failure wraps
// services.ErrIO so callers classify it uniformly.
package organizer
