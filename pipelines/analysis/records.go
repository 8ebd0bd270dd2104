// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package analysis

// Record is one raw (owner, fault) observation extracted from a data row.
// Records are transient; they exist only between extraction and
// aggregation and are never persisted.
type Record struct {
	Owner string
	Fault string
}

// ExtractRecords converts parsed rows into fault records, one per row.
// Rows are never dropped: a row with no usable columns still yields a
// record with both sentinel values.
func ExtractRecords(rows []map[string]string) []Record {
	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, Record{
			Owner: PickField(row, OwnerKeys, UnknownOwner),
			Fault: PickField(row, FaultKeys, UnknownFault),
		})
	}
	return records
}
