package txn

import (
	"context"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
)

// RPC is the subset of *rpc.Client a Submitter needs.
type RPC interface {
	GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error)
	SendTransactionWithOpts(ctx context.Context, transaction *solana.Transaction, opts rpc.TransactionOpts) (solana.Signature, error)
	GetSignatureStatuses(ctx context.Context, searchTransactionHistory bool, transactionSignatures ...solana.Signature) (*rpc.GetSignatureStatusesResult, error)
}

type Status string

const (
	StatusUnsigned  Status = "unsigned"
	StatusSigned    Status = "signed"
	StatusSubmitted Status = "submitted"
	StatusConfirmed Status = "confirmed"
	StatusFailed    Status = "failed"
)

const (
	DefaultConfirmTimeout = 60 * time.Second
	DefaultPollInterval   = 500 * time.Millisecond
	DefaultAnchorRetries  = 3
	DefaultRetryInterval  = 250 * time.Millisecond
)

type Config struct {
	Network        string
	Commitment     string
	SkipPreflight  bool
	ConfirmTimeout time.Duration
	PollInterval   time.Duration
	AnchorRetries  uint64
	RetryInterval  time.Duration
	Logger         *zap.Logger
}

type Result struct {
	Success     bool   `json:"success"`
	Status      Status `json:"status"`
	Signature   string `json:"signature,omitempty"`
	ExplorerURL string `json:"explorer_url,omitempty"`
	Slot        uint64 `json:"slot,omitempty"`
	Error       string `json:"error,omitempty"`
}
