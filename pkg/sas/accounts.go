package sas

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// DecodeCredential decodes raw credential account data.
func DecodeCredential(data []byte) (Credential, error) {
	decoder, err := accountDecoder(data, AccountCredential)
	if err != nil {
		return Credential{}, err
	}

	var credential Credential
	if credential.Authority, err = readPublicKey(decoder); err != nil {
		return Credential{}, invalidAccount("credential authority", err)
	}
	name, err := readBytes(decoder)
	if err != nil {
		return Credential{}, invalidAccount("credential name", err)
	}
	credential.Name = string(name)

	count, err := decoder.ReadUint32(bin.LE)
	if err != nil {
		return Credential{}, invalidAccount("credential signers", err)
	}
	if int(count)*solana.PublicKeyLength > decoder.Remaining() {
		return Credential{}, invalidAccount("credential signers", fmt.Errorf("%d signers exceed remaining data", count))
	}
	credential.AuthorizedSigners = make([]solana.PublicKey, 0, count)
	for index := uint32(0); index < count; index++ {
		signer, err := readPublicKey(decoder)
		if err != nil {
			return Credential{}, invalidAccount("credential signers", err)
		}
		credential.AuthorizedSigners = append(credential.AuthorizedSigners, signer)
	}
	return credential, nil
}

// DecodeSchema decodes raw schema account data. Field names are stored as a
// byte vector wrapping a serialized list of strings.
func DecodeSchema(data []byte) (Schema, error) {
	decoder, err := accountDecoder(data, AccountSchema)
	if err != nil {
		return Schema{}, err
	}

	var schema Schema
	if schema.Credential, err = readPublicKey(decoder); err != nil {
		return Schema{}, invalidAccount("schema credential", err)
	}
	name, err := readBytes(decoder)
	if err != nil {
		return Schema{}, invalidAccount("schema name", err)
	}
	description, err := readBytes(decoder)
	if err != nil {
		return Schema{}, invalidAccount("schema description", err)
	}
	if schema.Layout, err = readBytes(decoder); err != nil {
		return Schema{}, invalidAccount("schema layout", err)
	}
	rawFieldNames, err := readBytes(decoder)
	if err != nil {
		return Schema{}, invalidAccount("schema field names", err)
	}
	if schema.FieldNames, err = decodeStringList(rawFieldNames); err != nil {
		return Schema{}, invalidAccount("schema field names", err)
	}
	if schema.IsPaused, err = decoder.ReadBool(); err != nil {
		return Schema{}, invalidAccount("schema status", err)
	}
	if schema.Version, err = decoder.ReadUint8(); err != nil {
		return Schema{}, invalidAccount("schema version", err)
	}

	schema.Name = string(name)
	schema.Description = string(description)
	return schema, nil
}

// DecodeAttestation decodes raw attestation account data.
func DecodeAttestation(data []byte) (Attestation, error) {
	decoder, err := accountDecoder(data, AccountAttestation)
	if err != nil {
		return Attestation{}, err
	}

	var attestation Attestation
	if attestation.Nonce, err = readPublicKey(decoder); err != nil {
		return Attestation{}, invalidAccount("attestation nonce", err)
	}
	if attestation.Credential, err = readPublicKey(decoder); err != nil {
		return Attestation{}, invalidAccount("attestation credential", err)
	}
	if attestation.Schema, err = readPublicKey(decoder); err != nil {
		return Attestation{}, invalidAccount("attestation schema", err)
	}
	if attestation.Data, err = readBytes(decoder); err != nil {
		return Attestation{}, invalidAccount("attestation data", err)
	}
	if attestation.Signer, err = readPublicKey(decoder); err != nil {
		return Attestation{}, invalidAccount("attestation signer", err)
	}
	if attestation.Expiry, err = decoder.ReadInt64(bin.LE); err != nil {
		return Attestation{}, invalidAccount("attestation expiry", err)
	}
	if attestation.TokenAccount, err = readPublicKey(decoder); err != nil {
		return Attestation{}, invalidAccount("attestation token account", err)
	}
	return attestation, nil
}

// EncodeCredential renders a credential in its account layout.
func EncodeCredential(credential Credential) ([]byte, error) {
	return encodeAccount(AccountCredential, func(encoder *bin.Encoder) error {
		if err := encoder.WriteBytes(credential.Authority.Bytes(), false); err != nil {
			return err
		}
		if err := writeBytes(encoder, []byte(credential.Name)); err != nil {
			return err
		}
		if err := encoder.WriteUint32(uint32(len(credential.AuthorizedSigners)), bin.LE); err != nil {
			return err
		}
		for _, signer := range credential.AuthorizedSigners {
			if err := encoder.WriteBytes(signer.Bytes(), false); err != nil {
				return err
			}
		}
		return nil
	})
}

// EncodeSchema renders a schema in its account layout.
func EncodeSchema(schema Schema) ([]byte, error) {
	fieldNames, err := encodeStringList(schema.FieldNames)
	if err != nil {
		return nil, err
	}

	return encodeAccount(AccountSchema, func(encoder *bin.Encoder) error {
		if err := encoder.WriteBytes(schema.Credential.Bytes(), false); err != nil {
			return err
		}
		for _, raw := range [][]byte{[]byte(schema.Name), []byte(schema.Description), schema.Layout, fieldNames} {
			if err := writeBytes(encoder, raw); err != nil {
				return err
			}
		}
		if err := encoder.WriteBool(schema.IsPaused); err != nil {
			return err
		}
		return encoder.WriteUint8(schema.Version)
	})
}

// EncodeAttestation renders an attestation in its account layout.
func EncodeAttestation(attestation Attestation) ([]byte, error) {
	return encodeAccount(AccountAttestation, func(encoder *bin.Encoder) error {
		for _, key := range []solana.PublicKey{attestation.Nonce, attestation.Credential, attestation.Schema} {
			if err := encoder.WriteBytes(key.Bytes(), false); err != nil {
				return err
			}
		}
		if err := writeBytes(encoder, attestation.Data); err != nil {
			return err
		}
		if err := encoder.WriteBytes(attestation.Signer.Bytes(), false); err != nil {
			return err
		}
		if err := encoder.WriteInt64(attestation.Expiry, bin.LE); err != nil {
			return err
		}
		return encoder.WriteBytes(attestation.TokenAccount.Bytes(), false)
	})
}

func encodeAccount(discriminator AccountDiscriminator, body func(*bin.Encoder) error) ([]byte, error) {
	buffer := new(bytes.Buffer)
	encoder := bin.NewBorshEncoder(buffer)
	if err := encoder.WriteUint8(uint8(discriminator)); err != nil {
		return nil, err
	}
	if err := body(encoder); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

func accountDecoder(data []byte, expected AccountDiscriminator) (*bin.Decoder, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty account data", ErrInvalidAccountData)
	}
	if AccountDiscriminator(data[0]) != expected {
		return nil, fmt.Errorf("%w: discriminator %d, expected %d", ErrInvalidAccountData, data[0], expected)
	}
	return bin.NewBorshDecoder(data[1:]), nil
}

func invalidAccount(field string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrInvalidAccountData, field, err)
}

func readPublicKey(decoder *bin.Decoder) (solana.PublicKey, error) {
	raw, err := decoder.ReadNBytes(solana.PublicKeyLength)
	if err != nil {
		return solana.PublicKey{}, err
	}
	return solana.PublicKeyFromBytes(raw), nil
}

func encodeStringList(values []string) ([]byte, error) {
	buffer := new(bytes.Buffer)
	encoder := bin.NewBorshEncoder(buffer)
	if err := encoder.WriteUint32(uint32(len(values)), bin.LE); err != nil {
		return nil, err
	}
	for _, value := range values {
		if err := writeBytes(encoder, []byte(value)); err != nil {
			return nil, err
		}
	}
	return buffer.Bytes(), nil
}

func decodeStringList(data []byte) ([]string, error) {
	if len(data) == 0 {
		return []string{}, nil
	}

	decoder := bin.NewBorshDecoder(data)
	count, err := decoder.ReadUint32(bin.LE)
	if err != nil {
		return nil, err
	}
	if int(count)*4 > decoder.Remaining() {
		return nil, fmt.Errorf("%d strings exceed remaining data", count)
	}

	values := make([]string, 0, count)
	for index := uint32(0); index < count; index++ {
		raw, err := readBytes(decoder)
		if err != nil {
			return nil, fmt.Errorf("string %d: %w", index, err)
		}
		values = append(values, string(raw))
	}
	if decoder.Remaining() != 0 {
		return nil, fmt.Errorf("%d trailing bytes after field names", decoder.Remaining())
	}
	return values, nil
}
