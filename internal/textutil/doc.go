// Package textutil provides text processing helpers shared by the filename
// parser, the naming builder, and the metadata adapters.
//
// The primary use cases are:
//   - Splitting a media filename from its extension
//   - Normalizing separator runs in release names
//   - Replacing filesystem-unsafe characters with a configured substitute
//   - Comparing titles by shared words or token fingerprints
package textutil
