package okx

import (
	"strings"
	"time"
	"unicode/utf8"

	"tradelink_go/internal/domain"
)

// DefaultBaseURL is the REST host stripped from signed request paths.
const DefaultBaseURL = "https://www.okx.com"

// Header names required on every private REST request.
const (
	HeaderAccessKey        = "OK-ACCESS-KEY"
	HeaderAccessSign       = "OK-ACCESS-SIGN"
	HeaderAccessTimestamp  = "OK-ACCESS-TIMESTAMP"
	HeaderAccessPassphrase = "OK-ACCESS-PASSPHRASE"
)

// timestampLayout renders UTC time with millisecond precision and a literal Z,
// e.g. 2020-12-08T09:08:57.715Z.
const timestampLayout = "2006-01-02T15:04:05.000Z"

// wsVerifyPath is the request path signed for private channel login.
const wsVerifyPath = "/users/self/verify"

// Credentials are the API key triple issued by OKX.
type Credentials struct {
	APIKey     string
	APISecret  string
	Passphrase string
}

// Auth signs OKX REST and WebSocket requests.
// It holds no per-call state and is safe for concurrent use.
type Auth struct {
	apiKey     string
	passphrase string
	signer     *Signer
	baseURL    string
	now        func() time.Time
}

// Option configures an Auth.
type Option func(*Auth)

// WithBaseURL sets the scheme+host prefix stripped from signed paths.
// Trailing slashes are ignored.
func WithBaseURL(baseURL string) Option {
	return func(a *Auth) { a.baseURL = baseURL }
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(a *Auth) { a.now = now }
}

// NewAuth validates the credentials and returns an authenticator.
func NewAuth(creds Credentials, opts ...Option) (*Auth, error) {
	fields := []struct {
		name  string
		value string
	}{
		{"api_key", creds.APIKey},
		{"api_secret", creds.APISecret},
		{"passphrase", creds.Passphrase},
	}
	for _, f := range fields {
		if f.value == "" {
			return nil, &domain.SigningInputError{Field: f.name, Reason: "empty"}
		}
		if !utf8.ValidString(f.value) {
			return nil, &domain.SigningInputError{Field: f.name, Reason: "not valid UTF-8"}
		}
	}

	a := &Auth{
		apiKey:     creds.APIKey,
		passphrase: creds.Passphrase,
		signer:     NewSigner(creds.APISecret),
		baseURL:    DefaultBaseURL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.baseURL = strings.TrimRight(a.baseURL, "/")
	return a, nil
}

// Wipe clears the secret from memory. The Auth must not be used afterwards.
func (a *Auth) Wipe() {
	a.signer.Wipe()
}

// Timestamp returns the current time in the exchange's header format.
func (a *Auth) Timestamp() string {
	return a.now().UTC().Format(timestampLayout)
}

// PathFromURL strips the configured base URL from url.
// A url without the prefix is returned unchanged.
func (a *Auth) PathFromURL(url string) string {
	if a.baseURL == "" {
		return url
	}
	return strings.ReplaceAll(url, a.baseURL, "")
}

// CanonicalMessage builds timestamp + METHOD + path + body.
// A nil body contributes nothing.
func (a *Auth) CanonicalMessage(timestamp string, method domain.RESTMethod, path string, body *string) string {
	var b strings.Builder
	b.WriteString(timestamp)
	b.WriteString(method.Upper())
	b.WriteString(a.PathFromURL(path))
	if body != nil {
		b.WriteString(*body)
	}
	return b.String()
}

// BuildSignature signs the canonical message of one request.
func (a *Auth) BuildSignature(timestamp string, method domain.RESTMethod, path string, body *string) string {
	return a.signer.Sign(a.CanonicalMessage(timestamp, method, path, body))
}

// AuthenticateREST returns a copy of req carrying the four OK-ACCESS headers.
// The header map is replaced, not merged: headers set before signing are dropped.
func (a *Auth) AuthenticateREST(req *domain.RESTRequest) (*domain.RESTRequest, error) {
	ts := a.Timestamp()
	sign := a.BuildSignature(ts, req.Method, req.URL, req.Params)

	out := req.Clone()
	out.Headers = map[string]string{
		HeaderAccessKey:        a.apiKey,
		HeaderAccessSign:       sign,
		HeaderAccessTimestamp:  ts,
		HeaderAccessPassphrase: a.passphrase,
	}
	return out, nil
}

// WSAuthArgs returns the login args for a private channel.
// The signed method is always GET with an empty body.
func (a *Auth) WSAuthArgs(path string) []domain.WSLoginArg {
	ts := a.Timestamp()
	return []domain.WSLoginArg{{
		APIKey:     a.apiKey,
		Passphrase: a.passphrase,
		Timestamp:  ts,
		Sign:       a.BuildSignature(ts, domain.MethodGet, path, nil),
	}}
}

// AuthenticateWS is a pass-through; private channels authenticate at login.
func (a *Auth) AuthenticateWS(req *domain.WSRequest) (*domain.WSRequest, error) {
	return req, nil
}

var _ domain.Authenticator = (*Auth)(nil)
