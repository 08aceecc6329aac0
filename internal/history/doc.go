// Package history keeps the operation audit log in SQLite.
//
// Each sort run gets a UUID and one row per committed (or dry-run) file
// operation, carrying the outcome, the state the file reached, the error
// kind and the message. The log is write-mostly; the CLI reads it back for
// the history command. Provider responses are never stored here.
package history
