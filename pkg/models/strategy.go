package models

// ReadMode is how a table should be read for profiling.
type ReadMode string

const (
	// ReadModeSkip means the table is known empty; no query is issued.
	ReadModeSkip ReadMode = "skip"
	// ReadModeFull reads the table without sampling.
	ReadModeFull ReadMode = "full"
	// ReadModeSubquery reads through a bounded subquery capped at SampleSize.
	// Used for views and for tables with no row-count estimate, which must
	// never be assumed to support block sampling.
	ReadModeSubquery ReadMode = "subquery"
	// ReadModeBlockSample reads an approximately uniform block sample of
	// about SampleSize rows.
	ReadModeBlockSample ReadMode = "block_sample"
)

// ReadStrategy is the per-table profiling read decision. TotalRows carries
// the catalog estimate when known; for the subquery mode it stays nil until
// the profiling query reports how many rows it actually read.
type ReadStrategy struct {
	Mode       ReadMode `json:"mode"`
	SampleSize int64    `json:"sample_size"`
	TotalRows  *int64   `json:"total_rows,omitempty"`
	Sampled    bool     `json:"sampled"`
}
