package sas

import (
	"strings"
	"testing"

	"github.com/gagliardetto/solana-go"
)

func TestValidateName(t *testing.T) {
	if err := ValidateName("credential", "test28"); err != nil {
		t.Fatalf("expected valid name, got %v", err)
	}
	if err := ValidateName("credential", strings.Repeat("a", MaxNameLength)); err != nil {
		t.Fatalf("expected max length name to be valid, got %v", err)
	}
	if err := ValidateName("schema", "  "); err == nil || !strings.Contains(err.Error(), "schema name is required") {
		t.Fatalf("expected required error, got %v", err)
	}
	if err := ValidateName("schema", strings.Repeat("a", MaxNameLength+1)); err == nil {
		t.Fatal("expected error for long name")
	}
}

func TestValidateSigners(t *testing.T) {
	key := newKey(t)
	if err := ValidateSigners(nil); err != nil {
		t.Fatalf("expected empty signer list to be valid, got %v", err)
	}
	if err := ValidateSigners([]solana.PublicKey{key, newKey(t)}); err != nil {
		t.Fatalf("expected distinct signers to be valid, got %v", err)
	}
	if err := ValidateSigners([]solana.PublicKey{{}}); err == nil {
		t.Fatal("expected zero signer to be rejected")
	}
	if err := ValidateSigners([]solana.PublicKey{key, key}); err == nil {
		t.Fatal("expected duplicate signer to be rejected")
	}
}

func TestValidateSchemaFields(t *testing.T) {
	if err := ValidateSchemaFields([]byte{12, 0}, []string{"name", "age"}); err != nil {
		t.Fatalf("expected valid fields, got %v", err)
	}

	cases := []struct {
		layout []byte
		names  []string
	}{
		{nil, nil},
		{[]byte{12}, []string{"a", "b"}},
		{[]byte{30}, []string{"a"}},
		{[]byte{12, 12}, []string{"a", " "}},
		{[]byte{12, 12}, []string{"a", "a"}},
	}
	for index, testCase := range cases {
		if err := ValidateSchemaFields(testCase.layout, testCase.names); err == nil {
			t.Fatalf("case %d: expected validation error", index)
		}
	}
}

func TestRequireKeysListsMissingSorted(t *testing.T) {
	err := requireKeys(map[string]solana.PublicKey{
		"schema":    {},
		"authority": {},
		"payer":     newKey(t),
	})
	if err == nil || err.Error() != "authority, schema are required" {
		t.Fatalf("unexpected error: %v", err)
	}
}
