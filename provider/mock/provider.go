package mock

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"sync"

	backend "github.com/NectGmbH/solidserver-backend"

	"github.com/sirupsen/logrus"
)

// ZoneState represents one zone with its recordsets in the mocked backend.
type ZoneState struct {
	Zone       backend.Zone
	RecordSets []backend.RecordSet
}

// Provider is a mocked dns backend which runs in mem. When a path is given
// its state gets dumped as json after every mutation.
type Provider struct {
	state   []ZoneState
	lock    sync.Mutex
	counter int64
	path    string
}

// NewProvider creates a new mocked backend with (optionally) preexisting
// zones. Pass an empty path to disable state dumping.
func NewProvider(seed []backend.Zone, path string) *Provider {
	state := make([]ZoneState, len(seed))

	for i, z := range seed {
		state[i] = ZoneState{Zone: z}
	}

	p := &Provider{state: state, path: path}
	p.save()

	return p
}

// CreateZone creates the passed zone.
func (p *Provider) CreateZone(zone backend.Zone) error {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.counter++

	p.state = append(p.state, ZoneState{Zone: zone})

	return p.save()
}

// DeleteZone deletes the passed zone.
func (p *Provider) DeleteZone(zone backend.Zone) error {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.counter++

	for i, z := range p.state {
		if z.Zone.Name == zone.Name {
			p.state = append(p.state[:i], p.state[i+1:]...)
			return p.save()
		}
	}

	return backend.Errorf("zone `%s` couldn't be deleted since it didnt exist", zone.Name)
}

// CreateRecordSet creates all records of the passed recordset.
func (p *Provider) CreateRecordSet(zone backend.Zone, rrset backend.RecordSet) error {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.counter++

	z := p.find(zone.Name)
	if z == nil {
		return backend.Errorf("zone `%s` not found", zone.Name)
	}

	z.RecordSets = append(z.RecordSets, rrset.Copy())

	return p.save()
}

// DeleteRecordSet deletes the recordset with the same name and type from
// the passed zone.
func (p *Provider) DeleteRecordSet(zone backend.Zone, rrset backend.RecordSet) error {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.counter++

	z := p.find(zone.Name)
	if z == nil {
		return backend.Errorf("zone `%s` not found", zone.Name)
	}

	for i, rs := range z.RecordSets {
		if rs.Name == rrset.Name && rs.Type == rrset.Type {
			z.RecordSets = append(z.RecordSets[:i], z.RecordSets[i+1:]...)
			return p.save()
		}
	}

	return backend.Errorf("recordset `%s %s` couldn't be deleted since it didnt exist", rrset.Name, rrset.Type)
}

// UpdateRecordSet deletes the existing recordset and creates the desired
// one, mirroring the delete-then-create semantics of the real backends.
func (p *Provider) UpdateRecordSet(zone backend.Zone, change backend.RecordSetChange) error {
	if change.Existing != nil {
		err := p.DeleteRecordSet(zone, *change.Existing)
		if err != nil {
			return err
		}
	}

	if change.Desired != nil {
		return p.CreateRecordSet(zone, *change.Desired)
	}

	return nil
}

// CreateRecord appends a single record to the recordset with the same name
// and type, creating the recordset when it doesn't exist yet.
func (p *Provider) CreateRecord(zone backend.Zone, rrset backend.RecordSet, record backend.Record) error {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.counter++

	z := p.find(zone.Name)
	if z == nil {
		return backend.Errorf("zone `%s` not found", zone.Name)
	}

	for i, rs := range z.RecordSets {
		if rs.Name == rrset.Name && rs.Type == rrset.Type {
			z.RecordSets[i].Records = append(z.RecordSets[i].Records, record)
			return p.save()
		}
	}

	z.RecordSets = append(z.RecordSets, backend.RecordSet{
		Name:    rrset.Name,
		Type:    rrset.Type,
		TTL:     rrset.TTL,
		Records: []backend.Record{record},
	})

	return p.save()
}

// DeleteRecord deletes a single record from the recordset with the same
// name and type.
func (p *Provider) DeleteRecord(zone backend.Zone, rrset backend.RecordSet, record backend.Record) error {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.counter++

	z := p.find(zone.Name)
	if z == nil {
		return backend.Errorf("zone `%s` not found", zone.Name)
	}

	for i, rs := range z.RecordSets {
		if rs.Name != rrset.Name || rs.Type != rrset.Type {
			continue
		}

		for j, rec := range rs.Records {
			if rec.Data == record.Data {
				z.RecordSets[i].Records = append(rs.Records[:j], rs.Records[j+1:]...)
				return p.save()
			}
		}
	}

	return backend.Errorf("record `%s %s %s` couldn't be deleted since it didnt exist", rrset.Name, rrset.Type, record.Data)
}

// UpdateRecord deletes the existing record and creates the desired one.
func (p *Provider) UpdateRecord(zone backend.Zone, rrset backend.RecordSet, change backend.RecordChange) error {
	if change.Existing != nil {
		err := p.DeleteRecord(zone, rrset, *change.Existing)
		if err != nil {
			return err
		}
	}

	if change.Desired != nil {
		return p.CreateRecord(zone, rrset, *change.Desired)
	}

	return nil
}

// Sync logs whether the passed zone exists in the mocked state.
func (p *Provider) Sync(zone backend.Zone) {
	p.lock.Lock()
	defer p.lock.Unlock()

	z := p.find(zone.Name)
	if z == nil {
		logrus.Warnf("zone `%s` not found in mock state", zone.Name)
		return
	}

	logrus.WithFields(logrus.Fields{
		"zone":       z.Zone.Name,
		"recordsets": len(z.RecordSets),
	}).Info("synced zone from mock state")
}

// Ping reports whether the backend is reachable, which it always is.
func (p *Provider) Ping() bool {
	return true
}

// Counter returns the number of mutations the mocked backend has seen.
func (p *Provider) Counter() int64 {
	p.lock.Lock()
	defer p.lock.Unlock()

	return p.counter
}

// RecordSets returns a copy of the recordsets of the passed zone.
func (p *Provider) RecordSets(zoneName string) []backend.RecordSet {
	p.lock.Lock()
	defer p.lock.Unlock()

	z := p.find(zoneName)
	if z == nil {
		return nil
	}

	sets := make([]backend.RecordSet, len(z.RecordSets))
	for i, rs := range z.RecordSets {
		sets[i] = rs.Copy()
	}

	return sets
}

func (p *Provider) find(zoneName string) *ZoneState {
	for i := range p.state {
		if p.state[i].Zone.Name == zoneName {
			return &p.state[i]
		}
	}

	return nil
}

// ProviderOutput is the json output structure
type ProviderOutput struct {
	State   []ZoneState
	Counter int64
}

func (p *Provider) save() error {
	if p.path == "" {
		return nil
	}

	buf, err := json.Marshal(ProviderOutput{
		State:   p.state,
		Counter: p.counter,
	})
	if err != nil {
		return backend.Errorf("couldn't serialize mock state, see: %v", err)
	}

	pathTmp := p.path + ".tmp"

	err = ioutil.WriteFile(pathTmp, buf, 0644)
	if err != nil {
		return backend.Errorf("couldn't write mock state to `%s`, see: %v", pathTmp, err)
	}

	err = os.Rename(pathTmp, p.path)
	if err != nil {
		return backend.Errorf("couldn't move mock state to `%s`, see: %v", p.path, err)
	}

	return nil
}
