package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sas-community/sas-sdk-go/pkg/sas"
	"github.com/sas-community/sas-sdk-go/pkg/shared"
)

type state struct {
	network       string
	rpcURL        string
	keypairPath   string
	commitment    string
	timeout       time.Duration
	skipPreflight bool
	verbose       bool

	config    shared.OperatorConfig
	logger    *zap.Logger
	newClient func(sas.ClientConfig) (*sas.Client, error)
}

func Execute() error {
	return NewRootCommand().Execute()
}

// NewRootCommand builds the command tree. Each call returns independent
// flag state.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&state{newClient: sas.NewClient})
}

func newRootCommand(s *state) *cobra.Command {
	root := &cobra.Command{
		Use:          "sas",
		Short:        "Solana Attestation Service CLI",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return s.resolve(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if s.logger != nil {
				_ = s.logger.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&s.network, "network", "", "cluster: devnet, testnet, mainnet-beta or localnet (env SOLANA_NETWORK)")
	flags.StringVar(&s.rpcURL, "rpc-url", "", "JSON-RPC endpoint overriding the cluster default (env SOLANA_RPC_URL)")
	flags.StringVar(&s.keypairPath, "keypair", "", "Solana CLI keypair file (env SOLANA_KEYPAIR_PATH, default ~/.config/solana/id.json)")
	flags.StringVar(&s.commitment, "commitment", "", "processed, confirmed or finalized (env SOLANA_COMMITMENT)")
	flags.DurationVar(&s.timeout, "timeout", 0, "confirmation timeout (env SOLANA_CONFIRM_TIMEOUT)")
	flags.BoolVar(&s.skipPreflight, "skip-preflight", true, "skip preflight simulation (env SOLANA_SKIP_PREFLIGHT)")
	flags.BoolVarP(&s.verbose, "verbose", "v", false, "human readable debug logging")

	root.AddCommand(
		deriveCmd(s),
		createCredentialCmd(s),
		createSchemaCmd(s),
		createAttestationCmd(s),
		createTokenizedAttestationCmd(s),
		fetchCmd(s),
	)
	return root
}

// resolve merges env configuration with explicitly set flags.
func (s *state) resolve(cmd *cobra.Command) error {
	config, err := shared.OperatorConfigFromEnv()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("network") {
		if config.Network, err = shared.NormalizeNetwork(s.network); err != nil {
			return err
		}
	}
	if flags.Changed("rpc-url") {
		config.RPCURL = s.rpcURL
	}
	if flags.Changed("keypair") {
		config.KeypairPath = s.keypairPath
	}
	if flags.Changed("commitment") {
		if config.Commitment, err = shared.NormalizeCommitment(s.commitment); err != nil {
			return err
		}
	}
	if flags.Changed("timeout") {
		if s.timeout <= 0 {
			return fmt.Errorf("--timeout must be positive")
		}
		config.ConfirmTimeout = s.timeout
	}
	if flags.Changed("skip-preflight") {
		config.SkipPreflight = s.skipPreflight
	}
	s.config = config

	if s.logger == nil {
		if s.verbose {
			s.logger, err = zap.NewDevelopment()
		} else {
			s.logger, err = zap.NewProduction()
		}
		if err != nil {
			return fmt.Errorf("failed to build logger: %w", err)
		}
	}
	return nil
}

func (s *state) client() (*sas.Client, error) {
	return s.newClient(sas.ClientConfig{
		Network:        s.config.Network,
		RPCURL:         s.config.RPCURL,
		KeypairPath:    s.config.KeypairPath,
		Commitment:     s.config.Commitment,
		SkipPreflight:  s.config.SkipPreflight,
		ConfirmTimeout: s.config.ConfirmTimeout,
		Logger:         s.logger,
	})
}

func printJSON(out io.Writer, value any) error {
	encoded, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintln(out, string(encoded))
	return err
}

// printResult prints a create result once a transaction reached the network,
// so failures after submission still report the signature.
func printResult(out io.Writer, result any, signature string, err error) error {
	if err != nil && signature == "" {
		return err
	}
	if printErr := printJSON(out, result); printErr != nil {
		return printErr
	}
	return err
}
