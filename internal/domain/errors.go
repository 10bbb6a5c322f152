package domain

import "errors"

// ErrNotReady is returned by a query against a retriever that has never
// ingested chunks and found no previously persisted index.
var ErrNotReady = errors.New("no chunks indexed")

// ErrLengthMismatch is returned when an ingest is handed a different number
// of chunks and embeddings. The index is left untouched.
var ErrLengthMismatch = errors.New("chunks and embeddings length mismatch")

// ErrNoDocuments is returned when none of the requested paths yielded a
// readable document.
var ErrNoDocuments = errors.New("no readable documents found")
