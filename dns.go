package backend

import (
    "fmt"
    "strings"
)

// RecordType represents the differnet dns record types (e.g. A, MX, ...)
type RecordType string

const (
    // RecordTypeA represents host address
    RecordTypeA RecordType = "A"

    // RecordTypeAAAA represents IPv6 host address
    RecordTypeAAAA RecordType = "AAAA"

    // RecordTypeMX represents mail eXchange
    RecordTypeMX RecordType = "MX"

    // RecordTypeCNAME represents canonical name for an alias
    RecordTypeCNAME RecordType = "CNAME"

    // RecordTypeTXT represents descriptive text
    RecordTypeTXT RecordType = "TXT"

    // RecordTypeSRV represents location of service
    RecordTypeSRV RecordType = "SRV"

    // RecordTypePTR represents pointer
    RecordTypePTR RecordType = "PTR"

    // RecordTypeNS represents the nameserver
    RecordTypeNS RecordType = "NS"
)

// Zone represents a DNS zone under authoritative management. The trailing
// dot on Name is optional, backends strip it where their API wants the
// bare form.
type Zone struct {
    Name string `yaml:"Name"`
    ID   string `yaml:"ID"`
    Type string `yaml:"Type"`
}

func (z Zone) String() string {
    return z.Name
}

// RecordSet represents the group of records sharing a name and type within
// a zone.
type RecordSet struct {
    Name    string     `yaml:"Name"`
    Type    RecordType `yaml:"Type"`
    TTL     int        `yaml:"TTL"`
    Records []Record   `yaml:"Records"`
}

func (rs RecordSet) String() string {
    vals := make([]string, len(rs.Records))

    for i, rec := range rs.Records {
        vals[i] = rec.Data
    }

    return fmt.Sprintf("%s %d %s [%s]", rs.Name, rs.TTL, rs.Type, strings.Join(vals, ", "))
}

// Copy creates a deep-copy of the current recordset.
func (rs RecordSet) Copy() RecordSet {
    recs := make([]Record, len(rs.Records))
    copy(recs, rs.Records)

    return RecordSet{
        Name:    rs.Name,
        Type:    rs.Type,
        TTL:     rs.TTL,
        Records: recs,
    }
}

// Record represents one data value within a RecordSet. The syntax of Data
// depends on the type of the containing RecordSet (e.g. one IP address for
// A and AAAA records).
type Record struct {
    Data string `yaml:"Data"`
}

func (r Record) String() string {
    return r.Data
}

// NewRecordSet creates a new RecordSet using the passed parameters.
func NewRecordSet(name string, rType RecordType, ttl int, data ...string) *RecordSet {
    recs := make([]Record, len(data))

    for i, d := range data {
        recs[i] = Record{Data: d}
    }

    return &RecordSet{
        Name:    name,
        Type:    rType,
        TTL:     ttl,
        Records: recs,
    }
}
