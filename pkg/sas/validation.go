package sas

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/samber/lo"
)

// ValidateName checks a credential or schema name. Names are PDA seeds so
// they are bounded by the seed length limit.
func ValidateName(kind string, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%s name is required", kind)
	}
	if len(name) > MaxNameLength {
		return fmt.Errorf("%s name must not exceed %d bytes", kind, MaxNameLength)
	}
	return nil
}

// ValidateSigners rejects zero and duplicate signer keys.
func ValidateSigners(signers []solana.PublicKey) error {
	for index, signer := range signers {
		if signer.IsZero() {
			return fmt.Errorf("signer %d is the zero address", index)
		}
	}
	if duplicates := lo.FindDuplicates(signers); len(duplicates) > 0 {
		return fmt.Errorf("duplicate signer %s", duplicates[0])
	}
	return nil
}

// ValidateSchemaFields checks that names and layout line up and that every
// type code is known.
func ValidateSchemaFields(layout []byte, fieldNames []string) error {
	if len(layout) == 0 {
		return fmt.Errorf("schema layout is required")
	}
	if len(layout) != len(fieldNames) {
		return fmt.Errorf("schema has %d layout entries but %d field names", len(layout), len(fieldNames))
	}
	for index, code := range layout {
		if !SchemaDataType(code).Valid() {
			return fmt.Errorf("field %q has unknown data type %d", fieldNames[index], code)
		}
	}

	blank := lo.Filter(fieldNames, func(name string, _ int) bool {
		return strings.TrimSpace(name) == ""
	})
	if len(blank) > 0 {
		return fmt.Errorf("schema field names must not be empty")
	}
	if duplicates := lo.FindDuplicates(fieldNames); len(duplicates) > 0 {
		return fmt.Errorf("duplicate schema field %q", duplicates[0])
	}
	return nil
}

func validateExpiry(expiry int64) error {
	if expiry < 0 {
		return fmt.Errorf("expiry must be zero or a unix timestamp")
	}
	return nil
}

func requireKeys(keys map[string]solana.PublicKey) error {
	missing := lo.Filter(lo.Keys(keys), func(name string, _ int) bool {
		return keys[name].IsZero()
	})
	if len(missing) == 0 {
		return nil
	}
	if len(missing) == 1 {
		return fmt.Errorf("%s is required", missing[0])
	}
	slices.Sort(missing)
	return fmt.Errorf("%s are required", strings.Join(missing, ", "))
}
