package retrieval

import "errors"

// ErrStorageTimeout reports that the nearest-neighbour or batch lookup
// exceeded its deadline. Surfaced to the caller as retryable, never
// swallowed into an empty result.
var ErrStorageTimeout = errors.New("storage query timed out")

// ErrEmptyCorpus reports that no segment satisfied the threshold and
// filter. Distinct from a partial result: it implies zero usable
// sources, not merely fewer than requested.
var ErrEmptyCorpus = errors.New("no documents match the query")
