// Package tmdb adapts The Movie Database search API to the metadata provider
// contracts. It is the movie provider and, when an API key is configured, a
// secondary show provider behind TVMaze.
package tmdb
