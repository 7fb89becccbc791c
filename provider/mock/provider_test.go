package mock

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	backend "github.com/NectGmbH/solidserver-backend"
)

func TestZoneLifecycle(t *testing.T) {
	p := NewProvider([]backend.Zone{{Name: "schnitzel.org"}}, "")

	err := p.CreateZone(backend.Zone{Name: "johnny.org"})
	if err != nil {
		t.Fatalf("couldn't create zone, see: %v", err)
	}

	err = p.DeleteZone(backend.Zone{Name: "schnitzel.org"})
	if err != nil {
		t.Fatalf("couldn't delete zone, see: %v", err)
	}

	err = p.DeleteZone(backend.Zone{Name: "schnitzel.org"})
	if err == nil {
		t.Fatalf("expected error when deleting missing zone but got none")
	}

	if !backend.IsError(err) {
		t.Fatalf("expected backend error but got `%T`", err)
	}
}

func TestRecordSetLifecycle(t *testing.T) {
	zone := backend.Zone{Name: "schnitzel.org"}
	p := NewProvider([]backend.Zone{zone}, "")

	rrset := *backend.NewRecordSet("zwiebel.schnitzel.org", backend.RecordTypeA, 60, "127.0.0.1", "127.0.1.1")

	err := p.CreateRecordSet(zone, rrset)
	if err != nil {
		t.Fatalf("couldn't create recordset, see: %v", err)
	}

	sets := p.RecordSets("schnitzel.org")
	if len(sets) != 1 {
		t.Fatalf("expected 1 recordset but got `%d`", len(sets))
	}

	if len(sets[0].Records) != 2 {
		t.Fatalf("expected 2 records but got `%d`", len(sets[0].Records))
	}

	err = p.DeleteRecord(zone, rrset, backend.Record{Data: "127.0.0.1"})
	if err != nil {
		t.Fatalf("couldn't delete record, see: %v", err)
	}

	sets = p.RecordSets("schnitzel.org")
	if len(sets[0].Records) != 1 || sets[0].Records[0].Data != "127.0.1.1" {
		t.Fatalf("expected single record `127.0.1.1` but got `%+v`", sets[0].Records)
	}

	err = p.DeleteRecordSet(zone, rrset)
	if err != nil {
		t.Fatalf("couldn't delete recordset, see: %v", err)
	}

	if sets := p.RecordSets("schnitzel.org"); len(sets) != 0 {
		t.Fatalf("expected 0 recordsets but got `%d`", len(sets))
	}
}

func TestUpdateRecordSetDeleteOnly(t *testing.T) {
	zone := backend.Zone{Name: "schnitzel.org"}
	p := NewProvider([]backend.Zone{zone}, "")

	existing := backend.NewRecordSet("zwiebel.schnitzel.org", backend.RecordTypeA, 60, "127.0.0.1")

	err := p.CreateRecordSet(zone, *existing)
	if err != nil {
		t.Fatalf("couldn't create recordset, see: %v", err)
	}

	err = p.UpdateRecordSet(zone, backend.RecordSetChange{Existing: existing})
	if err != nil {
		t.Fatalf("couldn't update recordset, see: %v", err)
	}

	if sets := p.RecordSets("schnitzel.org"); len(sets) != 0 {
		t.Fatalf("expected 0 recordsets after delete-only update but got `%d`", len(sets))
	}
}

func TestStateDump(t *testing.T) {
	dir, err := ioutil.TempDir("", "mockstate")
	if err != nil {
		t.Fatalf("couldn't create temp dir, see: %v", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "state.json")

	zone := backend.Zone{Name: "schnitzel.org"}
	p := NewProvider([]backend.Zone{zone}, path)

	err = p.CreateRecordSet(zone, *backend.NewRecordSet("zwiebel.schnitzel.org", backend.RecordTypeA, 60, "127.0.0.1"))
	if err != nil {
		t.Fatalf("couldn't create recordset, see: %v", err)
	}

	buf, err := ioutil.ReadFile(path)
	if err != nil {
		t.Fatalf("couldn't read state dump, see: %v", err)
	}

	var out ProviderOutput
	err = json.Unmarshal(buf, &out)
	if err != nil {
		t.Fatalf("couldn't unmarshal state dump, see: %v", err)
	}

	if out.Counter != 1 {
		t.Fatalf("expected counter `1` but got `%d`", out.Counter)
	}

	if len(out.State) != 1 || len(out.State[0].RecordSets) != 1 {
		t.Fatalf("expected dumped zone with 1 recordset but got `%+v`", out.State)
	}
}
