// Package index is the durable cache of reconstructed output: per-page
// text with header/footer slices, font lists, and precomputed content
// flags, keyed by a canonical document identity and queryable by key,
// page range, and normalized full-text terms.
//
// Reconstruction is expensive and fully parallel; index mutation is
// cheap and serialized. [Store] owns that discipline: a single writer
// mutex guards every mutation while readers go straight to SQLite,
// which supports unlimited concurrent reads. [Ingester] fans documents
// out across a bounded worker pool and funnels results through one
// injected Store, so concurrent writers never lose updates to each
// other and one document's failure never aborts its siblings.
//
// The store is backed by modernc.org/sqlite (pure Go, no CGO) with an
// FTS5 index over normalized page text.
package index
