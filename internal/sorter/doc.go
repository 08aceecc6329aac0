// Package sorter drives the per-file pipeline.
//
// Every source file moves through parse, metadata lookup, optional metainfo
// tagging and name building before it is dispatched to the organizer:
//
//	initial → parsed → metadata_resolved → (metainfo_extracted) → name_built → dispatched
//
// A failure at any step stops that file only. The Operation keeps the last
// state reached together with the classified error, and the file stays where
// it is. Scan analyzes files on a bounded worker pool; Commit takes the
// library lock and applies the planned actions; Run does both for a set of
// sources and writes each outcome to the history store.
package sorter
