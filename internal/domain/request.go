package domain

import (
	"fmt"
	"strings"
)

// RESTMethod is an HTTP verb understood by the exchange.
type RESTMethod string

const (
	MethodGet    RESTMethod = "GET"
	MethodPost   RESTMethod = "POST"
	MethodPut    RESTMethod = "PUT"
	MethodDelete RESTMethod = "DELETE"
)

// Upper returns the canonical upper-case verb.
func (m RESTMethod) Upper() string {
	return strings.ToUpper(string(m))
}

// ParseRESTMethod accepts any casing of a supported verb.
func ParseRESTMethod(s string) (RESTMethod, error) {
	switch m := RESTMethod(strings.ToUpper(strings.TrimSpace(s))); m {
	case MethodGet, MethodPost, MethodPut, MethodDelete:
		return m, nil
	default:
		return "", fmt.Errorf("unsupported method %q", s)
	}
}

// RESTRequest is a transport-neutral description of an outbound REST call.
// Params carries the serialized payload that is signed as the request body.
type RESTRequest struct {
	Method  RESTMethod
	URL     string
	Params  *string
	Headers map[string]string
}

// Clone returns a copy whose header map is independent of the original.
func (r *RESTRequest) Clone() *RESTRequest {
	c := *r
	if r.Params != nil {
		p := *r.Params
		c.Params = &p
	}
	if r.Headers != nil {
		c.Headers = make(map[string]string, len(r.Headers))
		for k, v := range r.Headers {
			c.Headers[k] = v
		}
	}
	return &c
}

// WSRequest is a frame sent over a realtime channel.
type WSRequest struct {
	Payload any
}

// WSLoginArg is the credential bundle of a realtime login handshake.
type WSLoginArg struct {
	APIKey     string `json:"apiKey"`
	Passphrase string `json:"passphrase"`
	Timestamp  string `json:"timestamp"`
	Sign       string `json:"sign"`
}
