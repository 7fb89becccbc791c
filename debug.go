package backend

import (
	"github.com/sirupsen/logrus"
)

// DebugBackend wraps a Backend and logs every call with its outcome.
type DebugBackend struct {
	b Backend
}

// NewDebugBackend creates a new debug wrapper around the passed backend.
func NewDebugBackend(wrapped Backend) *DebugBackend {
	return &DebugBackend{b: wrapped}
}

// CreateZone creates the passed zone.
func (d *DebugBackend) CreateZone(zone Zone) error {
	logrus.WithFields(logrus.Fields{
		"zone": zone.String(),
	}).Debug("Calling CreateZone")

	err := d.b.CreateZone(zone)

	logrus.WithFields(logrus.Fields{
		"zone": zone.String(),
		"err":  err,
	}).Debug("Called CreateZone")

	return err
}

// DeleteZone deletes the passed zone from the backend.
func (d *DebugBackend) DeleteZone(zone Zone) error {
	logrus.WithFields(logrus.Fields{
		"zone": zone.String(),
	}).Debug("Calling DeleteZone")

	err := d.b.DeleteZone(zone)

	logrus.WithFields(logrus.Fields{
		"zone": zone.String(),
		"err":  err,
	}).Debug("Called DeleteZone")

	return err
}

// CreateRecordSet creates all records of the passed recordset.
func (d *DebugBackend) CreateRecordSet(zone Zone, rrset RecordSet) error {
	logrus.WithFields(logrus.Fields{
		"zone":  zone.String(),
		"rrset": rrset.String(),
	}).Debug("Calling CreateRecordSet")

	err := d.b.CreateRecordSet(zone, rrset)

	logrus.WithFields(logrus.Fields{
		"zone":  zone.String(),
		"rrset": rrset.String(),
		"err":   err,
	}).Debug("Called CreateRecordSet")

	return err
}

// DeleteRecordSet deletes all records of the passed recordset.
func (d *DebugBackend) DeleteRecordSet(zone Zone, rrset RecordSet) error {
	logrus.WithFields(logrus.Fields{
		"zone":  zone.String(),
		"rrset": rrset.String(),
	}).Debug("Calling DeleteRecordSet")

	err := d.b.DeleteRecordSet(zone, rrset)

	logrus.WithFields(logrus.Fields{
		"zone":  zone.String(),
		"rrset": rrset.String(),
		"err":   err,
	}).Debug("Called DeleteRecordSet")

	return err
}

// UpdateRecordSet replaces the existing recordset with the desired one.
func (d *DebugBackend) UpdateRecordSet(zone Zone, change RecordSetChange) error {
	logrus.WithFields(logrus.Fields{
		"zone":     zone.String(),
		"desired":  change.Desired,
		"existing": change.Existing,
	}).Debug("Calling UpdateRecordSet")

	err := d.b.UpdateRecordSet(zone, change)

	logrus.WithFields(logrus.Fields{
		"zone": zone.String(),
		"err":  err,
	}).Debug("Called UpdateRecordSet")

	return err
}

// CreateRecord creates a single record of the passed recordset.
func (d *DebugBackend) CreateRecord(zone Zone, rrset RecordSet, record Record) error {
	logrus.WithFields(logrus.Fields{
		"zone":   zone.String(),
		"rrset":  rrset.Name,
		"record": record.String(),
	}).Debug("Calling CreateRecord")

	err := d.b.CreateRecord(zone, rrset, record)

	logrus.WithFields(logrus.Fields{
		"zone":   zone.String(),
		"record": record.String(),
		"err":    err,
	}).Debug("Called CreateRecord")

	return err
}

// DeleteRecord deletes a single record of the passed recordset.
func (d *DebugBackend) DeleteRecord(zone Zone, rrset RecordSet, record Record) error {
	logrus.WithFields(logrus.Fields{
		"zone":   zone.String(),
		"rrset":  rrset.Name,
		"record": record.String(),
	}).Debug("Calling DeleteRecord")

	err := d.b.DeleteRecord(zone, rrset, record)

	logrus.WithFields(logrus.Fields{
		"zone":   zone.String(),
		"record": record.String(),
		"err":    err,
	}).Debug("Called DeleteRecord")

	return err
}

// UpdateRecord replaces an existing record with the desired one.
func (d *DebugBackend) UpdateRecord(zone Zone, rrset RecordSet, change RecordChange) error {
	logrus.WithFields(logrus.Fields{
		"zone":     zone.String(),
		"rrset":    rrset.Name,
		"desired":  change.Desired,
		"existing": change.Existing,
	}).Debug("Calling UpdateRecord")

	err := d.b.UpdateRecord(zone, rrset, change)

	logrus.WithFields(logrus.Fields{
		"zone": zone.String(),
		"err":  err,
	}).Debug("Called UpdateRecord")

	return err
}

// Sync reconciles the passed zone read-only and best-effort.
func (d *DebugBackend) Sync(zone Zone) {
	logrus.WithFields(logrus.Fields{
		"zone": zone.String(),
	}).Debug("Calling Sync")

	d.b.Sync(zone)

	logrus.WithFields(logrus.Fields{
		"zone": zone.String(),
	}).Debug("Called Sync")
}

// Ping reports whether the backend is reachable.
func (d *DebugBackend) Ping() bool {
	logrus.Debug("Calling Ping")

	up := d.b.Ping()

	logrus.WithFields(logrus.Fields{
		"up": up,
	}).Debug("Called Ping")

	return up
}
