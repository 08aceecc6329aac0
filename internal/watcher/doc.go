// Package watcher sorts files as they land in source directories.
//
// Directories are registered with fsnotify, recursively when configured, and
// new subdirectories are added as they appear. A file is handed to the
// handler once it has seen no create or write event for the settle delay, so
// partially copied files are not picked up. Handlers run one at a time in
// event order.
package watcher
