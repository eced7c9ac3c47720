package record

type (
	// Record is one row of a hit dump. Records are treated as immutable once
	// loaded; stages pass them by value.
	Record struct {
		// Identifier is the hex first column, decoded
		Identifier uint64
		// Value is opaque to the pipeline (the channel number for detector dumps)
		Value int64
		// Timestamp orders and windows records
		Timestamp int64
		// Extra holds any columns past the timestamp, verbatim
		Extra []int64
	}
)

// NumColumns is the number of text columns the record was parsed from.
func (r Record) NumColumns() int {
	return 3 + len(r.Extra)
}
