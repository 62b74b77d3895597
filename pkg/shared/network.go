package shared

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/gagliardetto/solana-go/rpc"
)

const (
	NetworkDevnet   = "devnet"
	NetworkTestnet  = "testnet"
	NetworkMainnet  = "mainnet-beta"
	NetworkLocalnet = "localnet"
)

var rpcEndpoints = map[string]string{
	NetworkDevnet:   "https://api.devnet.solana.com",
	NetworkTestnet:  "https://api.testnet.solana.com",
	NetworkMainnet:  "https://api.mainnet-beta.solana.com",
	NetworkLocalnet: "http://127.0.0.1:8899",
}

// NormalizeNetwork maps a user supplied cluster name onto one of the Network
// constants. An empty value selects devnet.
func NormalizeNetwork(network string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(network))
	if normalized == "" {
		return NetworkDevnet, nil
	}

	switch normalized {
	case NetworkDevnet, NetworkTestnet, NetworkMainnet, NetworkLocalnet:
		return normalized, nil
	case "mainnet":
		return NetworkMainnet, nil
	case "localhost":
		return NetworkLocalnet, nil
	default:
		return "", fmt.Errorf("unsupported network %q", network)
	}
}

// RPCEndpoint returns the public JSON-RPC endpoint of a cluster.
func RPCEndpoint(network string) (string, error) {
	normalized, err := NormalizeNetwork(network)
	if err != nil {
		return "", err
	}
	return rpcEndpoints[normalized], nil
}

// NewRPCClient creates a JSON-RPC client for the cluster, or for rpcURL when
// it is set.
func NewRPCClient(network string, rpcURL string) (*rpc.Client, error) {
	endpoint := strings.TrimSpace(rpcURL)
	if endpoint == "" {
		resolved, err := RPCEndpoint(network)
		if err != nil {
			return nil, err
		}
		endpoint = resolved
	}

	parsed, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid RPC URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("invalid RPC URL: scheme must be http or https")
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return nil, fmt.Errorf("invalid RPC URL: host is required")
	}

	return rpc.New(endpoint), nil
}

// ExplorerTransactionURL links a transaction signature on the Solana explorer.
func ExplorerTransactionURL(signature string, network string) string {
	return explorerURL("tx", signature, network)
}

// ExplorerAddressURL links an account address on the Solana explorer.
func ExplorerAddressURL(address string, network string) string {
	return explorerURL("address", address, network)
}

func explorerURL(kind string, value string, network string) string {
	link := fmt.Sprintf("https://explorer.solana.com/%s/%s", kind, value)

	normalized, err := NormalizeNetwork(network)
	if err != nil {
		normalized = NetworkDevnet
	}

	switch normalized {
	case NetworkMainnet:
		return link
	case NetworkLocalnet:
		return link + "?cluster=custom&customUrl=" + url.QueryEscape(rpcEndpoints[NetworkLocalnet])
	default:
		return link + "?cluster=" + normalized
	}
}
