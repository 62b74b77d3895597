// Package shared provides common utilities used across the SAS SDK for Go.
// It includes cluster normalization, RPC endpoint and explorer link helpers,
// operator configuration loading from environment variables or .env files,
// and Solana CLI keypair loading.
//
// This package is typically used internally by other SDK packages but is
// also available for direct use when building custom integrations.
//
// # Environment Variables
//
//   - SOLANA_NETWORK          devnet (default), testnet, mainnet-beta or localnet
//   - SOLANA_RPC_URL          overrides the cluster's public RPC endpoint
//   - SOLANA_KEYPAIR_PATH     Solana CLI keypair file (default ~/.config/solana/id.json)
//   - SOLANA_COMMITMENT       processed, confirmed (default) or finalized
//   - SOLANA_SKIP_PREFLIGHT   skip simulation before submission (default true)
//   - SOLANA_CONFIRM_TIMEOUT  upper bound on confirmation waiting (default 60s)
package shared
