package solidserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	backend "github.com/NectGmbH/solidserver-backend"

	"github.com/sirupsen/logrus"
)

// requestTimeout is the fixed per-request ceiling, there is no other
// timeout and no cancellation.
const requestTimeout = 30 * time.Second

// envelope represents the SOLIDserver response wrapper. Every endpoint
// answers with it, mutating or not.
type envelope struct {
	Success  bool                     `json:"success"`
	Data     []map[string]interface{} `json:"data"`
	Messages []message                `json:"messages"`
}

type message struct {
	Msg string `json:"msg"`
}

// errorMessage joins all message texts of the envelope with ", ".
func (e *envelope) errorMessage() string {
	msgs := make([]string, len(e.Messages))

	for i, m := range e.Messages {
		msgs[i] = m.Msg
	}

	return strings.Join(msgs, ", ")
}

// firstDataField returns the value stored under the passed key in the first
// data entry, or "" if the data array is empty or the key is absent.
func (e *envelope) firstDataField(key string) string {
	if len(e.Data) == 0 {
		return ""
	}

	v, ok := e.Data[0][key]
	if !ok || v == nil {
		return ""
	}

	return fmt.Sprintf("%v", v)
}

// request is the single choke point for all SOLIDserver calls. It joins the
// endpoint onto the configured base URL, sends the call and validates the
// envelope. Transport failures, non-2xx statuses and success=false all come
// back as *backend.Error, the message of a rejected call is the comma-joined
// message list of the envelope.
func (p *Provider) request(method string, endpoint string, body map[string]interface{}, query url.Values) (*envelope, error) {
	reqURL := p.apiURL + endpoint
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var reqBody *bytes.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, backend.Errorf("couldn't encode body for `%s`, see: %v", endpoint, err)
		}

		reqBody = bytes.NewReader(buf)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, reqURL, reqBody)
	if err != nil {
		return nil, backend.Errorf("couldn't build %s request for `%s`, see: %v", method, endpoint, err)
	}

	req.SetBasicAuth(p.cfg.Username, p.cfg.Password)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := p.client.Do(req)

	if p.metrics != nil {
		p.metrics.RequestsTotal.WithLabelValues(endpoint).Inc()
		p.metrics.RequestTime.Observe(time.Since(start).Seconds() * 1e3)
	}

	if err != nil {
		p.countError()
		return nil, backend.Errorf("couldn't %s `%s`, see: %v", method, endpoint, err)
	}

	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		p.countError()
		return nil, backend.Errorf("couldn't %s `%s`, see: unexpected status `%s`", method, endpoint, resp.Status)
	}

	var env envelope
	err = json.NewDecoder(resp.Body).Decode(&env)
	if err != nil {
		p.countError()
		return nil, backend.Errorf("couldn't decode response of `%s`, see: %v", endpoint, err)
	}

	if !env.Success {
		p.countError()

		msg := env.errorMessage()
		logrus.WithFields(logrus.Fields{
			"endpoint": endpoint,
			"detail":   msg,
		}).Error("solidserver api rejected request")

		return nil, backend.Errorf("%s", msg)
	}

	return &env, nil
}

func (p *Provider) countError() {
	if p.metrics != nil {
		p.metrics.ErrorsTotal.Inc()
	}
}
