// Package tvmaze adapts the TVMaze public API to the show provider contract.
// No API key is needed.
package tvmaze
