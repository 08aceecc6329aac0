// Package parser extracts a candidate title and year (movies) or show name,
// season, and episode (TV) from loosely structured release filenames.
//
// The grammar is small and ordered: TV markers are tried as SxxEyy, NxNN,
// "season X episode Y", then bare digit pairs; movies look for the first
// plausible year with a non-empty title in front of it. Implausible numbers
// fall through to the next candidate instead of failing the parse.
package parser
