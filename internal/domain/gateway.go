package domain

import "github.com/shopspring/decimal"

// ContainerStatus reports whether the gateway process answers health probes.
type ContainerStatus int

const (
	ContainerStopped ContainerStatus = iota
	ContainerRunning
)

func (s ContainerStatus) String() string {
	switch s {
	case ContainerRunning:
		return "RUNNING"
	case ContainerStopped:
		return "STOPPED"
	default:
		return "UNKNOWN"
	}
}

// ConnectivityStatus reports whether a running gateway shows chain progress.
type ConnectivityStatus int

const (
	ConnectivityOffline ConnectivityStatus = iota
	ConnectivityOnline
)

func (s ConnectivityStatus) String() string {
	switch s {
	case ConnectivityOnline:
		return "ONLINE"
	case ConnectivityOffline:
		return "OFFLINE"
	default:
		return "UNKNOWN"
	}
}

// GatewayState is the monitor's state. Only three combinations of container
// and connectivity status are representable, so ONLINE always implies RUNNING.
type GatewayState int

const (
	StateStopped GatewayState = iota
	StateRunningOffline
	StateRunningOnline
)

// Container derives the container status from the state.
func (s GatewayState) Container() ContainerStatus {
	if s == StateStopped {
		return ContainerStopped
	}
	return ContainerRunning
}

// Connectivity derives the connectivity status from the state.
func (s GatewayState) Connectivity() ConnectivityStatus {
	if s == StateRunningOnline {
		return ConnectivityOnline
	}
	return ConnectivityOffline
}

func (s GatewayState) String() string {
	return s.Container().String() + "/" + s.Connectivity().String()
}

// Connector describes one sub-connector exposed by the gateway.
type Connector struct {
	Name         string   `json:"name"`
	TradingTypes []string `json:"trading_type,omitempty"`
	ChainType    string   `json:"chain_type,omitempty"`
	Networks     []string `json:"available_networks,omitempty"`
}

// ConnectorList is the body of the gateway's connectors endpoint.
type ConnectorList struct {
	Connectors []Connector `json:"connectors"`
}

// Names returns connector names in gateway order.
func (l ConnectorList) Names() []string {
	names := make([]string, 0, len(l.Connectors))
	for _, c := range l.Connectors {
		names = append(names, c.Name)
	}
	return names
}

// ChainStatus is one entry of the gateway's network status report.
type ChainStatus struct {
	Chain              string          `json:"chain"`
	Network            string          `json:"network"`
	RPCURL             string          `json:"rpcUrl,omitempty"`
	CurrentBlockNumber decimal.Decimal `json:"currentBlockNumber"`
	NativeCurrency     string          `json:"nativeCurrency,omitempty"`
}

// HasProgress reports whether the chain has produced at least one block.
func (c ChainStatus) HasProgress() bool {
	return c.CurrentBlockNumber.IsPositive()
}

// AnyProgress reports whether at least one chain has a positive block height.
func AnyProgress(statuses []ChainStatus) bool {
	for _, s := range statuses {
		if s.HasProgress() {
			return true
		}
	}
	return false
}
