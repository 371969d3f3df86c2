// Package storage persists saved charts: a dataset together with the
// options it is rendered with.
//
// Two [Store] implementations are provided. [MemoryStore] keeps documents in
// process and backs the CLI tests and single-instance deployments.
// [MongoStore] keeps them in the "charts" collection of a MongoDB database
// for the HTTP service.
//
// Documents are addressed by UUID and grouped by owner. Owners are opaque
// strings supplied by the caller; this package performs no authentication.
package storage
