package backend

// Backend represents an abstraction over individual dns backends handling
// zone and record lifecycle calls issued by the orchestrator.
type Backend interface {
	// CreateZone creates the passed zone.
	CreateZone(zone Zone) error

	// DeleteZone deletes the passed zone from the backend.
	DeleteZone(zone Zone) error

	// CreateRecordSet creates all records of the passed recordset.
	CreateRecordSet(zone Zone, rrset RecordSet) error

	// DeleteRecordSet deletes all records of the passed recordset.
	DeleteRecordSet(zone Zone, rrset RecordSet) error

	// UpdateRecordSet replaces the existing recordset with the desired one.
	UpdateRecordSet(zone Zone, change RecordSetChange) error

	// CreateRecord creates a single record of the passed recordset.
	CreateRecord(zone Zone, rrset RecordSet, record Record) error

	// DeleteRecord deletes a single record of the passed recordset.
	DeleteRecord(zone Zone, rrset RecordSet, record Record) error

	// UpdateRecord replaces an existing record with the desired one.
	UpdateRecord(zone Zone, rrset RecordSet, change RecordChange) error

	// Sync reconciles the passed zone read-only and best-effort, failures
	// are logged and swallowed.
	Sync(zone Zone)

	// Ping reports whether the backend is reachable.
	Ping() bool
}

// RecordSetChange represents a (desired, existing) recordset pair as passed
// by the orchestrator on updates. A nil Desired means the recordset should
// only be removed, a nil Existing means there is nothing to remove first.
type RecordSetChange struct {
	Desired  *RecordSet
	Existing *RecordSet
}

// RecordChange represents a (desired, existing) record pair as passed by
// the orchestrator on updates.
type RecordChange struct {
	Desired  *Record
	Existing *Record
}
