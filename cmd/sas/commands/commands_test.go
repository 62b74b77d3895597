package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/sas-community/sas-sdk-go/pkg/sas"
)

const testAuthority = "ELxUQkWLMBCoMatry9qzQR6RHiUYmVndUpmPwhZ8PKJK"

type fakeRPC struct {
	mutex    sync.Mutex
	accounts map[solana.PublicKey][]byte
	sent     int
}

func (f *fakeRPC) GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error) {
	return &rpc.GetLatestBlockhashResult{Value: &rpc.LatestBlockhashResult{Blockhash: solana.Hash{3}}}, nil
}

func (f *fakeRPC) SendTransactionWithOpts(ctx context.Context, transaction *solana.Transaction, opts rpc.TransactionOpts) (solana.Signature, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.sent++
	return transaction.Signatures[0], nil
}

func (f *fakeRPC) GetSignatureStatuses(ctx context.Context, searchTransactionHistory bool, transactionSignatures ...solana.Signature) (*rpc.GetSignatureStatusesResult, error) {
	return &rpc.GetSignatureStatusesResult{Value: []*rpc.SignatureStatusesResult{
		{Slot: 5, ConfirmationStatus: rpc.ConfirmationStatusFinalized},
	}}, nil
}

func (f *fakeRPC) GetAccountInfoWithOpts(ctx context.Context, account solana.PublicKey, opts *rpc.GetAccountInfoOpts) (*rpc.GetAccountInfoResult, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	data, ok := f.accounts[account]
	if !ok {
		return nil, rpc.ErrNotFound
	}
	return &rpc.GetAccountInfoResult{Value: &rpc.Account{
		Owner: sas.ProgramID,
		Data:  rpc.DataBytesOrJSONFromBytes(data),
	}}, nil
}

func setOperatorEnv(t *testing.T, keypairPath string) {
	t.Helper()
	t.Setenv("SOLANA_NETWORK", "devnet")
	t.Setenv("SOLANA_RPC_URL", "http://127.0.0.1:8899")
	t.Setenv("SOLANA_KEYPAIR_PATH", keypairPath)
	t.Setenv("SOLANA_COMMITMENT", "confirmed")
	t.Setenv("SOLANA_SKIP_PREFLIGHT", "true")
	t.Setenv("SOLANA_CONFIRM_TIMEOUT", "5s")
	t.Setenv("ANCHOR_WALLET", "unused.json")
}

func writeKeypair(t *testing.T, key solana.PrivateKey) string {
	t.Helper()
	values := make([]int, len(key))
	for index, value := range key {
		values[index] = int(value)
	}
	content, err := json.Marshal(values)
	if err != nil {
		t.Fatalf("failed to encode keypair: %v", err)
	}
	path := filepath.Join(t.TempDir(), "id.json")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("failed to write keypair: %v", err)
	}
	return path
}

func run(t *testing.T, s *state, args ...string) (string, error) {
	t.Helper()
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	root := newRootCommand(s)
	output := new(bytes.Buffer)
	root.SetOut(output)
	root.SetErr(new(bytes.Buffer))
	root.SetArgs(args)
	err := root.Execute()
	return output.String(), err
}

func fakeClientState(t *testing.T, fake *fakeRPC) (*state, solana.PrivateKey) {
	t.Helper()
	payer, err := solana.NewRandomPrivateKey()
	if err != nil {
		t.Fatalf("failed to generate payer: %v", err)
	}
	return &state{newClient: func(config sas.ClientConfig) (*sas.Client, error) {
		return sas.NewClientWithRPC(fake, payer, config)
	}}, payer
}

func TestDeriveCommand(t *testing.T) {
	setOperatorEnv(t, "missing.json")

	output, err := run(t, &state{newClient: sas.NewClient},
		"derive", "--authority", testAuthority, "--name", "test28", "--nonce", testAuthority)
	if err != nil {
		t.Fatalf("derive failed: %v", err)
	}

	var derived deriveOutput
	if err := json.Unmarshal([]byte(output), &derived); err != nil {
		t.Fatalf("failed to decode output %q: %v", output, err)
	}
	if derived.Credential.Address != "4E63oK4JKezPwTivLE9pmysi2gMa766u3UhdQHggtAeb" || derived.Credential.Bump != 250 {
		t.Fatalf("unexpected credential: %+v", derived.Credential)
	}
	if derived.Schema.Address != "EYahBQ9Gtu8wNHXGuYaaw1Efgv3X3b8RMg6XYzM2tW1H" {
		t.Fatalf("unexpected schema: %+v", derived.Schema)
	}
	if derived.Attestation == nil || derived.Attestation.Address != "8pRciRMEu79GnRUuPHuotqBGad5h4B1e88DDw8u61qNa" {
		t.Fatalf("unexpected attestation: %+v", derived.Attestation)
	}
	if derived.SasAuthority.Address != "HngMQFF6Yoqj9VqA31r43HQsnuYZ6BxopRWQLQAS6zk" {
		t.Fatalf("unexpected sas authority: %+v", derived.SasAuthority)
	}
}

func TestDeriveCommandFallsBackToKeypair(t *testing.T) {
	key, err := solana.NewRandomPrivateKey()
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	setOperatorEnv(t, writeKeypair(t, key))

	output, err := run(t, &state{newClient: sas.NewClient}, "derive", "--name", "issuer")
	if err != nil {
		t.Fatalf("derive failed: %v", err)
	}
	if !strings.Contains(output, key.PublicKey().String()) {
		t.Fatalf("expected keypair authority in output: %s", output)
	}
	if strings.Contains(output, "attestation_mint") {
		t.Fatal("expected attestation addresses to be omitted without a nonce")
	}
}

func TestFlagsOverrideEnvironment(t *testing.T) {
	setOperatorEnv(t, "env.json")

	var captured sas.ClientConfig
	stop := errors.New("stop")
	s := &state{newClient: func(config sas.ClientConfig) (*sas.Client, error) {
		captured = config
		return nil, stop
	}}

	_, err := run(t, s, "create-credential", "--name", "issuer",
		"--network", "mainnet", "--commitment", "finalized", "--timeout", "3s",
		"--skip-preflight=false", "--keypair", "flag.json", "--rpc-url", "https://rpc.example.com")
	if !errors.Is(err, stop) {
		t.Fatalf("expected stub error, got %v", err)
	}
	if captured.Network != "mainnet-beta" || captured.Commitment != "finalized" || captured.ConfirmTimeout != 3*time.Second {
		t.Fatalf("unexpected config: %+v", captured)
	}
	if captured.SkipPreflight || captured.KeypairPath != "flag.json" || captured.RPCURL != "https://rpc.example.com" {
		t.Fatalf("unexpected config: %+v", captured)
	}
}

func TestEnvironmentUsedWithoutFlags(t *testing.T) {
	setOperatorEnv(t, "env.json")

	var captured sas.ClientConfig
	s := &state{newClient: func(config sas.ClientConfig) (*sas.Client, error) {
		captured = config
		return nil, errors.New("stop")
	}}
	if _, err := run(t, s, "create-credential", "--name", "issuer"); err == nil {
		t.Fatal("expected stub error")
	}
	if captured.Network != "devnet" || captured.KeypairPath != "env.json" || captured.ConfirmTimeout != 5*time.Second || !captured.SkipPreflight {
		t.Fatalf("unexpected config: %+v", captured)
	}
}

func TestInvalidFlagValues(t *testing.T) {
	setOperatorEnv(t, "env.json")

	if _, err := run(t, &state{newClient: sas.NewClient}, "derive", "--name", "x", "--authority", testAuthority, "--network", "moon"); err == nil {
		t.Fatal("expected error for unknown network")
	}
	if _, err := run(t, &state{newClient: sas.NewClient}, "derive", "--name", "x", "--authority", testAuthority, "--timeout", "0s"); err == nil {
		t.Fatal("expected error for zero timeout")
	}
}

func TestCreateCredentialCommand(t *testing.T) {
	setOperatorEnv(t, "unused.json")
	fake := &fakeRPC{accounts: map[solana.PublicKey][]byte{}}
	s, payer := fakeClientState(t, fake)

	output, err := run(t, s, "create-credential", "--name", "test28", "--signer", testAuthority)
	if err != nil {
		t.Fatalf("create-credential failed: %v", err)
	}
	if fake.sent != 1 {
		t.Fatalf("expected one transaction, got %d", fake.sent)
	}

	credential, _ := sas.DeriveCredentialPda(payer.PublicKey(), "test28")
	if !strings.Contains(output, credential.Address.String()) || !strings.Contains(output, `"success": true`) {
		t.Fatalf("unexpected output: %s", output)
	}
}

func TestCreateCredentialCommandValidationErrorPrintsNothing(t *testing.T) {
	setOperatorEnv(t, "unused.json")
	fake := &fakeRPC{accounts: map[solana.PublicKey][]byte{}}
	s, _ := fakeClientState(t, fake)

	output, err := run(t, s, "create-credential", "--name", strings.Repeat("n", 33))
	if err == nil {
		t.Fatal("expected validation error for long name")
	}
	if output != "" {
		t.Fatalf("expected no output before submission, got %s", output)
	}
	if fake.sent != 0 {
		t.Fatalf("expected no transaction, got %d", fake.sent)
	}
}

func TestCreateSchemaCommandReadsYAML(t *testing.T) {
	setOperatorEnv(t, "unused.json")
	fake := &fakeRPC{accounts: map[solana.PublicKey][]byte{}}
	s, payer := fakeClientState(t, fake)

	path := filepath.Join(t.TempDir(), "schema.yaml")
	definition := "name: test28\ndescription: test desc\nfields:\n  - name: name\n    type: string\n  - name: age\n    type: u8\n"
	if err := os.WriteFile(path, []byte(definition), 0o600); err != nil {
		t.Fatalf("failed to write schema file: %v", err)
	}

	output, err := run(t, s, "create-schema", "--file", path)
	if err != nil {
		t.Fatalf("create-schema failed: %v", err)
	}

	credential, _ := sas.DeriveCredentialPda(payer.PublicKey(), "test28")
	schema, _ := sas.DeriveSchemaPda(credential.Address, "test28", 1)
	if !strings.Contains(output, schema.Address.String()) {
		t.Fatalf("expected schema address in output: %s", output)
	}
}

func TestCreateAttestationAndFetchCommands(t *testing.T) {
	setOperatorEnv(t, "unused.json")
	fake := &fakeRPC{accounts: map[solana.PublicKey][]byte{}}
	s, payer := fakeClientState(t, fake)

	credential, _ := sas.DeriveCredentialPda(payer.PublicKey(), "test28")
	schemaAddress, _ := sas.DeriveSchemaPda(credential.Address, "test28", 1)
	schema := sas.Schema{
		Credential: credential.Address,
		Name:       "test28",
		Layout:     []byte{byte(sas.TypeString), byte(sas.TypeU8)},
		FieldNames: []string{"name", "age"},
		Version:    1,
	}
	schemaData, err := sas.EncodeSchema(schema)
	if err != nil {
		t.Fatalf("EncodeSchema failed: %v", err)
	}
	fake.accounts[schemaAddress.Address] = schemaData

	dataPath := filepath.Join(t.TempDir(), "data.yaml")
	if err := os.WriteFile(dataPath, []byte("name: john\nage: 11\n"), 0o600); err != nil {
		t.Fatalf("failed to write data file: %v", err)
	}
	if _, err := run(t, s, "create-attestation", "--schema", "test28", "--data", dataPath, "--field", "name=jane"); err != nil {
		t.Fatalf("create-attestation failed: %v", err)
	}
	if fake.sent != 1 {
		t.Fatalf("expected one transaction, got %d", fake.sent)
	}

	encoded, err := sas.SerializeAttestationData(schema, map[string]any{"name": "jane", "age": 11})
	if err != nil {
		t.Fatalf("SerializeAttestationData failed: %v", err)
	}
	attestationAddress, _ := sas.DeriveAttestationPda(credential.Address, schemaAddress.Address, payer.PublicKey())
	attestationData, err := sas.EncodeAttestation(sas.Attestation{
		Nonce:      payer.PublicKey(),
		Credential: credential.Address,
		Schema:     schemaAddress.Address,
		Data:       encoded,
		Signer:     payer.PublicKey(),
	})
	if err != nil {
		t.Fatalf("EncodeAttestation failed: %v", err)
	}
	fake.accounts[attestationAddress.Address] = attestationData

	output, err := run(t, s, "fetch", "attestation", attestationAddress.Address.String())
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if !strings.Contains(output, `"name": "jane"`) || !strings.Contains(output, `"age": 11`) {
		t.Fatalf("expected decoded values in output: %s", output)
	}
}

func TestFetchCommandRejectsUnknownKind(t *testing.T) {
	setOperatorEnv(t, "unused.json")
	s := &state{newClient: func(sas.ClientConfig) (*sas.Client, error) {
		t.Fatal("client should not be built")
		return nil, nil
	}}

	if _, err := run(t, s, "fetch", "mint", testAuthority); err == nil {
		t.Fatal("expected error for unknown account kind")
	}
}

func TestLoadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.yaml")
	if err := os.WriteFile(path, []byte("name: john\ntags: [a, b]\n"), 0o600); err != nil {
		t.Fatalf("failed to write data file: %v", err)
	}

	values, err := loadValues(path, []string{"country=spain"})
	if err != nil {
		t.Fatalf("loadValues failed: %v", err)
	}
	if values["name"] != "john" || values["country"] != "spain" || len(values["tags"].([]any)) != 2 {
		t.Fatalf("unexpected values: %v", values)
	}

	if _, err := loadValues("", []string{"novalue"}); err == nil {
		t.Fatal("expected error for malformed assignment")
	}
	if _, err := loadValues("", nil); err == nil {
		t.Fatal("expected error for empty data")
	}
}

func TestLoadSchemaFileRejectsUnknownType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.yaml")
	if err := os.WriteFile(path, []byte("name: s\nfields:\n  - name: f\n    type: float\n"), 0o600); err != nil {
		t.Fatalf("failed to write schema file: %v", err)
	}
	if _, err := loadSchemaFile(path); err == nil || !strings.Contains(err.Error(), "unknown schema data type") {
		t.Fatalf("expected unknown type error, got %v", err)
	}
}
