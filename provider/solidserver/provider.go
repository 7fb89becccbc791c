package solidserver

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	backend "github.com/NectGmbH/solidserver-backend"

	"github.com/sirupsen/logrus"
)

// apiBasePath is the base path of the SOLIDserver REST API.
const apiBasePath = "/api/v2.0"

const (
	endpointZoneAdd    = "/dns/zone/add"
	endpointZoneDelete = "/dns/zone/delete"
	endpointZoneList   = "/dns/zone/list"
	endpointZoneCount  = "/dns/zone/count"
	endpointRRAdd      = "/dns/rr/add"
	endpointRRDelete   = "/dns/rr/delete"
)

// Provider represents a backend which manages zones and records on a
// SOLIDserver appliance. All fields are set at construction and never
// mutated, so a single instance may be used for any number of calls
// without locking.
type Provider struct {
	cfg     Config
	apiURL  string
	client  *http.Client
	metrics *Metrics
}

// NewProvider creates a new instance of the solidserver backend. The
// metrics may be nil in which case no metrics are recorded.
func NewProvider(cfg Config, metrics *Metrics) (*Provider, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, backend.Errorf("couldn't create solidserver backend, see: %v", err)
	}

	proto := "http"
	if cfg.SSL {
		proto = "https"
	}

	client := &http.Client{Timeout: requestTimeout}

	if cfg.SSL && !cfg.VerifySSL {
		client.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	p := &Provider{
		cfg:     cfg,
		apiURL:  fmt.Sprintf("%s://%s%s", proto, cfg.Host, apiBasePath),
		client:  client,
		metrics: metrics,
	}

	logrus.WithFields(logrus.Fields{
		"host":  cfg.Host,
		"space": cfg.Space,
		"ssl":   cfg.SSL,
	}).Info("initialized solidserver backend")

	return p, nil
}

// stripDots removes trailing dots from a zone or record name, the
// SOLIDserver API wants the bare form.
func stripDots(name string) string {
	return strings.TrimRight(name, ".")
}

func (p *Provider) zoneParams(zone backend.Zone) map[string]interface{} {
	return map[string]interface{}{
		"zone_name":  stripDots(zone.Name),
		"zone_type":  "master",
		"zone_space": p.cfg.Space,
		"row_state":  1,
	}
}

func (p *Provider) recordParams(zone backend.Zone, rrset backend.RecordSet, record backend.Record) (map[string]interface{}, error) {
	value, err := buildRecordValue(rrset, record)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"zone_name":  stripDots(zone.Name),
		"zone_space": p.cfg.Space,
		"rr_name":    stripDots(rrset.Name),
		"rr_type":    string(rrset.Type),
		"rr_value":   value,
		"rr_ttl":     rrset.TTL,
		"row_state":  1,
	}, nil
}

// buildRecordValue builds the rr_value string for the passed record. For A
// and AAAA records the record data passes through verbatim, every other
// type is rejected here before any call is issued.
func buildRecordValue(rrset backend.RecordSet, record backend.Record) (string, error) {
	switch rrset.Type {
	case backend.RecordTypeA, backend.RecordTypeAAAA:
		return record.Data, nil
	default:
		return "", backend.Errorf("unsupported record type `%s`, only A and AAAA records are supported", rrset.Type)
	}
}

// CreateZone creates the passed zone as a master zone in the configured
// space.
func (p *Provider) CreateZone(zone backend.Zone) error {
	logrus.Infof("creating zone `%s`", zone.Name)

	env, err := p.request("POST", endpointZoneAdd, p.zoneParams(zone), nil)
	if err != nil {
		logrus.Errorf("couldn't create zone `%s`, see: %v", zone.Name, err)
		return err
	}

	zoneID := env.firstDataField("zone_id")
	if zoneID == "" {
		err := backend.Errorf("no zone id returned for zone `%s`", zone.Name)
		logrus.Errorf("couldn't create zone `%s`, see: %v", zone.Name, err)
		return err
	}

	logrus.Infof("created zone `%s` with id `%s`", zone.Name, zoneID)

	return nil
}

// DeleteZone deletes the passed zone. The appliance envelope doesn't
// disambiguate an already absent zone from other failures, so neither
// can we.
func (p *Provider) DeleteZone(zone backend.Zone) error {
	logrus.Infof("deleting zone `%s`", zone.Name)

	query := url.Values{}
	query.Set("zone_name", stripDots(zone.Name))
	query.Set("zone_space", p.cfg.Space)

	_, err := p.request("DELETE", endpointZoneDelete, nil, query)
	if err != nil {
		logrus.Errorf("couldn't delete zone `%s`, see: %v", zone.Name, err)
		return err
	}

	logrus.Infof("deleted zone `%s`", zone.Name)

	return nil
}

// CreateRecordSet creates each record of the passed recordset independently
// and sequentially. If record N of M fails, records 1..N-1 stay created on
// the appliance and records N+1..M are never attempted, there is no
// rollback.
func (p *Provider) CreateRecordSet(zone backend.Zone, rrset backend.RecordSet) error {
	if rrset.Type != backend.RecordTypeA && rrset.Type != backend.RecordTypeAAAA {
		err := backend.Errorf("unsupported record type `%s`, only A and AAAA records are supported", rrset.Type)
		logrus.Errorf("couldn't create recordset `%s` in zone `%s`, see: %v", rrset.Name, zone.Name, err)
		return err
	}

	logrus.Infof("creating recordset `%s` in zone `%s`", rrset.Name, zone.Name)

	for _, record := range rrset.Records {
		err := p.CreateRecord(zone, rrset, record)
		if err != nil {
			return err
		}
	}

	return nil
}

// CreateRecord creates a single record of the passed recordset.
func (p *Provider) CreateRecord(zone backend.Zone, rrset backend.RecordSet, record backend.Record) error {
	logrus.Infof("creating record `%s %s` in zone `%s`", rrset.Name, rrset.Type, zone.Name)

	params, err := p.recordParams(zone, rrset, record)
	if err != nil {
		logrus.Errorf("couldn't create record `%s %s`, see: %v", rrset.Name, rrset.Type, err)
		return err
	}

	env, err := p.request("POST", endpointRRAdd, params, nil)
	if err != nil {
		logrus.Errorf("couldn't create record `%s %s`, see: %v", rrset.Name, rrset.Type, err)
		return err
	}

	rrID := env.firstDataField("rr_id")
	if rrID == "" {
		err := backend.Errorf("no rr id returned for record `%s %s`", rrset.Name, rrset.Type)
		logrus.Errorf("couldn't create record `%s %s`, see: %v", rrset.Name, rrset.Type, err)
		return err
	}

	logrus.Infof("created record `%s %s` with id `%s`", rrset.Name, rrset.Type, rrID)

	return nil
}

// DeleteRecordSet deletes each record of the passed recordset independently
// and sequentially, mirroring CreateRecordSet.
func (p *Provider) DeleteRecordSet(zone backend.Zone, rrset backend.RecordSet) error {
	logrus.Infof("deleting recordset `%s` in zone `%s`", rrset.Name, zone.Name)

	for _, record := range rrset.Records {
		err := p.DeleteRecord(zone, rrset, record)
		if err != nil {
			return err
		}
	}

	return nil
}

// DeleteRecord deletes a single record of the passed recordset. The
// deletion key is (zone_name, zone_space, rr_name, rr_type) without the
// record value, so on a recordset with multiple records of the same name
// and type the appliance may delete more than intended. That is how the
// appliance keys records, not something this backend can work around.
func (p *Provider) DeleteRecord(zone backend.Zone, rrset backend.RecordSet, record backend.Record) error {
	logrus.Infof("deleting record `%s %s` in zone `%s`", rrset.Name, rrset.Type, zone.Name)

	query := url.Values{}
	query.Set("zone_name", stripDots(zone.Name))
	query.Set("zone_space", p.cfg.Space)
	query.Set("rr_name", stripDots(rrset.Name))
	query.Set("rr_type", string(rrset.Type))

	_, err := p.request("DELETE", endpointRRDelete, nil, query)
	if err != nil {
		logrus.Errorf("couldn't delete record `%s %s`, see: %v", rrset.Name, rrset.Type, err)
		return err
	}

	logrus.Infof("deleted record `%s %s`", rrset.Name, rrset.Type)

	return nil
}

// UpdateRecordSet deletes the existing recordset (if present) fully, then
// creates the desired one (if present) fully. This is delete-then-create,
// not an atomic update: a failure between the two steps leaves the
// recordset absent rather than in either its old or new state.
func (p *Provider) UpdateRecordSet(zone backend.Zone, change backend.RecordSetChange) error {
	logrus.Infof("updating recordset in zone `%s`", zone.Name)

	if change.Existing != nil {
		err := p.DeleteRecordSet(zone, *change.Existing)
		if err != nil {
			return err
		}
	}

	if change.Desired != nil {
		err := p.CreateRecordSet(zone, *change.Desired)
		if err != nil {
			return err
		}
	}

	return nil
}

// UpdateRecord deletes the existing record (if present), then creates the
// desired one (if present). Same non-atomic semantics as UpdateRecordSet.
func (p *Provider) UpdateRecord(zone backend.Zone, rrset backend.RecordSet, change backend.RecordChange) error {
	logrus.Infof("updating record `%s %s` in zone `%s`", rrset.Name, rrset.Type, zone.Name)

	if change.Existing != nil {
		err := p.DeleteRecord(zone, rrset, *change.Existing)
		if err != nil {
			return err
		}
	}

	if change.Desired != nil {
		err := p.CreateRecord(zone, rrset, *change.Desired)
		if err != nil {
			return err
		}
	}

	return nil
}

// Sync queries the appliance for the passed zone by exact name and space
// and logs what it finds. Sync is diagnostic, not authoritative: failures
// are logged and swallowed, never raised.
func (p *Provider) Sync(zone backend.Zone) {
	logrus.Infof("syncing zone `%s`", zone.Name)

	query := url.Values{}
	query.Set("where", fmt.Sprintf("zone_name='%s'", stripDots(zone.Name)))
	query.Set("zone_space", p.cfg.Space)

	env, err := p.request("GET", endpointZoneList, nil, query)
	if err != nil {
		logrus.Errorf("couldn't sync zone `%s`, see: %v", zone.Name, err)
		return
	}

	if len(env.Data) == 0 {
		logrus.Warnf("zone `%s` not found on solidserver", zone.Name)
		return
	}

	logrus.Infof("synced zone `%s` from solidserver", zone.Name)
	logrus.Debugf("zone data: %+v", env.Data[0])
}

// Ping issues a lightweight count query against the appliance. Any
// transport or protocol failure maps to false, a health probe never
// propagates errors.
func (p *Provider) Ping() bool {
	logrus.Debug("pinging solidserver api")

	_, err := p.request("GET", endpointZoneCount, nil, nil)
	if err != nil {
		logrus.Errorf("couldn't ping solidserver api, see: %v", err)
		return false
	}

	logrus.Debug("solidserver api is reachable")

	return true
}
