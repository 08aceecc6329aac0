// Package metadata defines the provider contracts the sorter resolves titles
// through, plus the shared plumbing the adapters build on: a retrying REST
// client, an in-process response cache, progressive search, and a concurrent
// fan-out that prefers providers in configured order.
//
// Adapters live in the tmdb and tvmaze subpackages. Responses are cached only
// for the lifetime of the process.
package metadata
