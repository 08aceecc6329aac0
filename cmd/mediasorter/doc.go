// Command mediasorter renames and files movies and TV episodes into a
// library.
//
//	mediasorter sort ~/Downloads/complete          # parse, look up, copy
//	mediasorter sort --dry-run --type tv ./incoming
//	mediasorter parse "Heat.1995.2160p.UHD.BluRay.x265.mkv"
//	mediasorter watch                              # sort [[scan]] sources as files land
//
// Exit status is 0 when every file was sorted or skipped, 1 when any file
// failed and 2 for configuration errors.
package main
