package sas

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/gagliardetto/solana-go"

	"github.com/sas-community/sas-sdk-go/pkg/token2022"
)

type expectedMeta struct {
	key      solana.PublicKey
	writable bool
	signer   bool
}

func assertAccounts(t *testing.T, instruction solana.Instruction, expected []expectedMeta) {
	t.Helper()
	accounts := instruction.Accounts()
	if len(accounts) != len(expected) {
		t.Fatalf("expected %d accounts, got %d", len(expected), len(accounts))
	}
	for index, meta := range expected {
		account := accounts[index]
		if !account.PublicKey.Equals(meta.key) || account.IsWritable != meta.writable || account.IsSigner != meta.signer {
			t.Fatalf("account %d: expected %s w=%t s=%t, got %s w=%t s=%t",
				index, meta.key, meta.writable, meta.signer,
				account.PublicKey, account.IsWritable, account.IsSigner)
		}
	}
}

func instructionBytes(t *testing.T, instruction solana.Instruction) []byte {
	t.Helper()
	data, err := instruction.Data()
	if err != nil {
		t.Fatalf("instruction data failed: %v", err)
	}
	return data
}

func newKey(t *testing.T) solana.PublicKey {
	t.Helper()
	key, err := solana.NewRandomPrivateKey()
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	return key.PublicKey()
}

func TestCreateCredentialInstruction(t *testing.T) {
	credential, err := DeriveCredentialPda(testAuthority, "test28")
	if err != nil {
		t.Fatalf("DeriveCredentialPda failed: %v", err)
	}
	signerA := solana.MustPublicKeyFromBase58("ELxUQkWLMBCoMatry9qzQR6RHiUYmVndUpmPwhZ8PKJK")
	signerB := solana.MustPublicKeyFromBase58("Du3X3wKN3LHfSbXtX2PW5jhnSHit8j8NSb19VZW6V9mu")

	instruction, err := NewProgramInstructionBuilder(solana.PublicKey{}).CreateCredential(CreateCredentialParams{
		Payer:      testAuthority,
		Authority:  testAuthority,
		Credential: credential.Address,
		Name:       "test28",
		Signers:    []solana.PublicKey{signerA, signerB},
	})
	if err != nil {
		t.Fatalf("CreateCredential failed: %v", err)
	}
	if !instruction.ProgramID().Equals(ProgramID) {
		t.Fatalf("unexpected program: %s", instruction.ProgramID())
	}

	assertAccounts(t, instruction, []expectedMeta{
		{testAuthority, true, true},
		{credential.Address, true, false},
		{testAuthority, false, true},
		{SystemProgramID, false, false},
	})

	expected := []byte{byte(DiscriminatorCreateCredential), 6, 0, 0, 0}
	expected = append(expected, "test28"...)
	expected = append(expected, 2, 0, 0, 0)
	expected = append(expected, signerA.Bytes()...)
	expected = append(expected, signerB.Bytes()...)
	if data := instructionBytes(t, instruction); !bytes.Equal(data, expected) {
		t.Fatalf("unexpected instruction data: %v", data)
	}
}

func TestCreateSchemaInstruction(t *testing.T) {
	payer, authority := newKey(t), newKey(t)
	credential, schema := newKey(t), newKey(t)

	instruction, err := NewProgramInstructionBuilder(ProgramID).CreateSchema(CreateSchemaParams{
		Payer:       payer,
		Authority:   authority,
		Credential:  credential,
		Schema:      schema,
		Name:        "test28",
		Description: "test desc",
		Layout:      []byte{12, 12, 12},
		FieldNames:  []string{"name", "age", "country"},
	})
	if err != nil {
		t.Fatalf("CreateSchema failed: %v", err)
	}

	assertAccounts(t, instruction, []expectedMeta{
		{payer, true, true},
		{authority, false, true},
		{credential, false, false},
		{schema, true, false},
		{SystemProgramID, false, false},
	})

	expected := []byte{byte(DiscriminatorCreateSchema)}
	expected = appendPrefixed(expected, []byte("test28"))
	expected = appendPrefixed(expected, []byte("test desc"))
	expected = appendPrefixed(expected, []byte{12, 12, 12})
	expected = binary.LittleEndian.AppendUint32(expected, 3)
	for _, name := range []string{"name", "age", "country"} {
		expected = appendPrefixed(expected, []byte(name))
	}
	if data := instructionBytes(t, instruction); !bytes.Equal(data, expected) {
		t.Fatalf("unexpected instruction data: %v", data)
	}
}

func TestCreateAttestationInstruction(t *testing.T) {
	params := CreateAttestationParams{
		Payer:       newKey(t),
		Authority:   newKey(t),
		Credential:  newKey(t),
		Schema:      newKey(t),
		Attestation: newKey(t),
		Nonce:       newKey(t),
		Data:        []byte{1, 2, 3},
		Expiry:      1735689600,
	}

	instruction, err := NewProgramInstructionBuilder(ProgramID).CreateAttestation(params)
	if err != nil {
		t.Fatalf("CreateAttestation failed: %v", err)
	}

	assertAccounts(t, instruction, []expectedMeta{
		{params.Payer, true, true},
		{params.Authority, false, true},
		{params.Credential, false, false},
		{params.Schema, false, false},
		{params.Attestation, true, false},
		{SystemProgramID, false, false},
	})

	expected := []byte{byte(DiscriminatorCreateAttestation)}
	expected = append(expected, params.Nonce.Bytes()...)
	expected = appendPrefixed(expected, params.Data)
	expected = binary.LittleEndian.AppendUint64(expected, uint64(params.Expiry))
	if data := instructionBytes(t, instruction); !bytes.Equal(data, expected) {
		t.Fatalf("unexpected instruction data: %v", data)
	}
}

func TestCreateTokenizedAttestationInstruction(t *testing.T) {
	params := CreateTokenizedAttestationParams{
		CreateAttestationParams: CreateAttestationParams{
			Payer:       newKey(t),
			Authority:   newKey(t),
			Credential:  newKey(t),
			Schema:      newKey(t),
			Attestation: newKey(t),
			Nonce:       newKey(t),
			Data:        []byte{9},
		},
		SchemaMint:            newKey(t),
		AttestationMint:       newKey(t),
		SasAuthority:          newKey(t),
		Recipient:             newKey(t),
		RecipientTokenAccount: newKey(t),
		TokenName:             "tName",
		TokenSymbol:           "PAT",
		TokenURI:              "https://example.com/token.json",
		MintAccountSpace:      606,
	}

	instruction, err := NewProgramInstructionBuilder(ProgramID).CreateTokenizedAttestation(params)
	if err != nil {
		t.Fatalf("CreateTokenizedAttestation failed: %v", err)
	}

	assertAccounts(t, instruction, []expectedMeta{
		{params.Payer, true, true},
		{params.Authority, false, true},
		{params.Credential, false, false},
		{params.Schema, false, false},
		{params.Attestation, true, false},
		{SystemProgramID, false, false},
		{params.SchemaMint, true, false},
		{params.AttestationMint, true, false},
		{params.SasAuthority, false, false},
		{params.RecipientTokenAccount, true, false},
		{params.Recipient, false, false},
		{token2022.ProgramID, false, false},
		{token2022.AssociatedTokenProgramID, false, false},
	})

	data := instructionBytes(t, instruction)
	if data[0] != byte(DiscriminatorCreateTokenizedAttestation) {
		t.Fatalf("unexpected discriminator: %d", data[0])
	}
	tail := []byte{}
	tail = appendPrefixed(tail, []byte("tName"))
	tail = appendPrefixed(tail, []byte("https://example.com/token.json"))
	tail = appendPrefixed(tail, []byte("PAT"))
	tail = binary.LittleEndian.AppendUint16(tail, 606)
	if !bytes.HasSuffix(data, tail) {
		t.Fatalf("unexpected token metadata encoding: %v", data)
	}
	if len(data) != 1+32+(4+1)+8+len(tail) {
		t.Fatalf("unexpected instruction length: %d", len(data))
	}
}

func TestInstructionBuilderValidation(t *testing.T) {
	builder := NewProgramInstructionBuilder(ProgramID)
	key := newKey(t)

	_, err := builder.CreateCredential(CreateCredentialParams{Payer: key, Authority: key, Name: "x"})
	if err == nil || !strings.Contains(err.Error(), "credential is required") {
		t.Fatalf("expected missing credential error, got %v", err)
	}

	_, err = builder.CreateCredential(CreateCredentialParams{
		Payer: key, Authority: key, Credential: newKey(t), Name: "x",
		Signers: []solana.PublicKey{key, key},
	})
	if err == nil || !strings.Contains(err.Error(), "duplicate signer") {
		t.Fatalf("expected duplicate signer error, got %v", err)
	}

	_, err = builder.CreateSchema(CreateSchemaParams{
		Payer: key, Authority: key, Credential: newKey(t), Schema: newKey(t),
		Name: "profile", Layout: []byte{12}, FieldNames: []string{"a", "b"},
	})
	if err == nil {
		t.Fatal("expected layout mismatch error")
	}

	_, err = builder.CreateAttestation(CreateAttestationParams{
		Payer: key, Authority: key, Credential: key, Schema: key, Attestation: key, Nonce: key,
		Expiry: -1,
	})
	if err == nil {
		t.Fatal("expected negative expiry error")
	}

	_, err = builder.CreateTokenizedAttestation(CreateTokenizedAttestationParams{
		CreateAttestationParams: CreateAttestationParams{
			Payer: key, Authority: key, Credential: key, Schema: key, Attestation: key, Nonce: key,
		},
		SchemaMint: key, AttestationMint: key, SasAuthority: key, Recipient: key, RecipientTokenAccount: key,
		TokenName: "n", TokenSymbol: "s",
	})
	if err == nil || !strings.Contains(err.Error(), "mint account space") {
		t.Fatalf("expected mint space error, got %v", err)
	}
}

func appendPrefixed(buffer []byte, value []byte) []byte {
	buffer = binary.LittleEndian.AppendUint32(buffer, uint32(len(value)))
	return append(buffer, value...)
}
