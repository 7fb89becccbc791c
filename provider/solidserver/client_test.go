package solidserver

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	backend "github.com/NectGmbH/solidserver-backend"
)

// newTestProvider creates a provider pointed at the passed test server.
func newTestProvider(t *testing.T, srv *httptest.Server) *Provider {
	p, err := NewProvider(Config{
		Host:     strings.TrimPrefix(srv.URL, "http://"),
		Space:    "test-space",
		Username: "admin",
		Password: "admin",
		SSL:      false,
	}, nil)
	if err != nil {
		t.Fatalf("couldn't create provider, see: %v", err)
	}

	return p
}

// TestRequestEnvelopeFailure asserts that a rejected call surfaces the
// comma-joined message list even though the transport status is 2xx.
func TestRequestEnvelopeFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"success":false,"data":[],"messages":[{"msg":"zone already exists"},{"msg":"try another name"}]}`)
	}))
	defer srv.Close()

	p := newTestProvider(t, srv)

	_, err := p.request("GET", endpointZoneCount, nil, nil)
	if err == nil {
		t.Fatalf("expected error but got none")
	}

	if !backend.IsError(err) {
		t.Fatalf("expected backend error but got `%T`", err)
	}

	if err.Error() != "zone already exists, try another name" {
		t.Fatalf("expected joined messages but got `%s`", err.Error())
	}
}

// TestRequestTransportError asserts that transport failures come back as
// the same backend error kind.
func TestRequestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	p := newTestProvider(t, srv)

	_, err := p.request("GET", endpointZoneCount, nil, nil)
	if err == nil {
		t.Fatalf("expected error but got none")
	}

	if !backend.IsError(err) {
		t.Fatalf("expected backend error but got `%T`", err)
	}
}

// TestRequestNon2xxStatus asserts that a non-2xx status fails before the
// envelope is inspected.
func TestRequestNon2xxStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(500)
		fmt.Fprint(w, `{"success":true,"data":[{"zone_id":"1"}],"messages":[]}`)
	}))
	defer srv.Close()

	p := newTestProvider(t, srv)

	_, err := p.request("GET", endpointZoneCount, nil, nil)
	if err == nil {
		t.Fatalf("expected error but got none")
	}

	if !backend.IsError(err) {
		t.Fatalf("expected backend error but got `%T`", err)
	}
}

// TestRequestHeaders asserts that every call carries basic auth and JSON
// content negotiation and hits the versioned api base path.
func TestRequestHeaders(t *testing.T) {
	var gotPath string
	var gotUser string
	var gotPass string
	var gotAuth bool
	var gotContentType string
	var gotAccept string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUser, gotPass, gotAuth = r.BasicAuth()
		gotContentType = r.Header.Get("Content-Type")
		gotAccept = r.Header.Get("Accept")
		fmt.Fprint(w, `{"success":true,"data":[],"messages":[]}`)
	}))
	defer srv.Close()

	p := newTestProvider(t, srv)

	_, err := p.request("GET", endpointZoneCount, nil, nil)
	if err != nil {
		t.Fatalf("couldn't issue request, see: %v", err)
	}

	if gotPath != "/api/v2.0/dns/zone/count" {
		t.Fatalf("expected path `/api/v2.0/dns/zone/count` but got `%s`", gotPath)
	}

	if !gotAuth || gotUser != "admin" || gotPass != "admin" {
		t.Fatalf("expected basic auth admin/admin but got `%s`/`%s` (%v)", gotUser, gotPass, gotAuth)
	}

	if gotContentType != "application/json" {
		t.Fatalf("expected content type `application/json` but got `%s`", gotContentType)
	}

	if gotAccept != "application/json" {
		t.Fatalf("expected accept `application/json` but got `%s`", gotAccept)
	}
}

// TestEnvelopeFirstDataField asserts id extraction from the first data
// entry, for string and numeric ids.
func TestEnvelopeFirstDataField(t *testing.T) {
	env := &envelope{
		Data: []map[string]interface{}{
			{"zone_id": "123"},
			{"zone_id": "999"},
		},
	}

	if got := env.firstDataField("zone_id"); got != "123" {
		t.Fatalf("expected zone id `123` but got `%s`", got)
	}

	env = &envelope{
		Data: []map[string]interface{}{
			{"rr_id": float64(42)},
		},
	}

	if got := env.firstDataField("rr_id"); got != "42" {
		t.Fatalf("expected rr id `42` but got `%s`", got)
	}

	env = &envelope{}

	if got := env.firstDataField("zone_id"); got != "" {
		t.Fatalf("expected empty id on empty data but got `%s`", got)
	}

	env = &envelope{Data: []map[string]interface{}{{}}}

	if got := env.firstDataField("zone_id"); got != "" {
		t.Fatalf("expected empty id on missing key but got `%s`", got)
	}
}
