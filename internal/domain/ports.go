package domain

import (
	"context"
	"encoding/json"
)

// Authenticator augments outbound requests with exchange credentials.
type Authenticator interface {
	AuthenticateREST(req *RESTRequest) (*RESTRequest, error)
	AuthenticateWS(req *WSRequest) (*WSRequest, error)
}

// GatewayClient talks to the gateway process.
// With failSilently set, transport and decoding failures yield zero values
// and a nil error.
type GatewayClient interface {
	Ping(ctx context.Context) (bool, error)
	GetConnectors(ctx context.Context, failSilently bool) (ConnectorList, error)
	GetStatus(ctx context.Context, failSilently bool) ([]ChainStatus, error)
	GetConfiguration(ctx context.Context, failSilently bool) (json.RawMessage, error)
}

// ConnectorRegistry is the process-wide list of gateway connector names.
type ConnectorRegistry interface {
	Replace(names []string)
}

// ConfigKeySink receives every rebuilt configuration key list and refreshes
// auto-completion from it.
type ConfigKeySink interface {
	ReplaceConfigKeys(ctx context.Context, keys []string) error
}
