package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/gagliardetto/solana-go"
	"gopkg.in/yaml.v3"

	"github.com/sas-community/sas-sdk-go/pkg/sas"
)

// schemaFile is the YAML definition accepted by create-schema:
//
//	name: test28
//	description: test desc
//	version: 1
//	fields:
//	  - name: name
//	    type: string
//	  - name: age
//	    type: u8
type schemaFile struct {
	Credential  string `yaml:"credential"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Version     uint8  `yaml:"version"`
	Fields      []struct {
		Name string `yaml:"name"`
		Type string `yaml:"type"`
	} `yaml:"fields"`
}

func loadSchemaFile(path string) (sas.CreateSchemaOptions, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return sas.CreateSchemaOptions{}, fmt.Errorf("failed to read schema file: %w", err)
	}

	var definition schemaFile
	if err := yaml.Unmarshal(content, &definition); err != nil {
		return sas.CreateSchemaOptions{}, fmt.Errorf("failed to parse schema file %s: %w", path, err)
	}
	if len(definition.Fields) == 0 {
		return sas.CreateSchemaOptions{}, fmt.Errorf("schema file %s defines no fields", path)
	}

	fields := make([]sas.SchemaField, 0, len(definition.Fields))
	for _, field := range definition.Fields {
		dataType, err := sas.ParseSchemaDataType(field.Type)
		if err != nil {
			return sas.CreateSchemaOptions{}, fmt.Errorf("field %q: %w", field.Name, err)
		}
		fields = append(fields, sas.SchemaField{Name: field.Name, Type: dataType})
	}

	return sas.CreateSchemaOptions{
		CredentialName: definition.Credential,
		Name:           definition.Name,
		Description:    definition.Description,
		Version:        definition.Version,
		Fields:         fields,
	}, nil
}

// loadValues merges a YAML mapping file with key=value assignments; the
// assignments win.
func loadValues(path string, assignments []string) (map[string]any, error) {
	values := map[string]any{}
	if strings.TrimSpace(path) != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read data file: %w", err)
		}
		if err := yaml.Unmarshal(content, &values); err != nil {
			return nil, fmt.Errorf("failed to parse data file %s: %w", path, err)
		}
	}

	for _, assignment := range assignments {
		key, value, ok := strings.Cut(assignment, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("invalid field assignment %q, expected key=value", assignment)
		}
		values[strings.TrimSpace(key)] = value
	}

	if len(values) == 0 {
		return nil, fmt.Errorf("attestation data is required (--data or --field)")
	}
	return values, nil
}

func parsePublicKey(flag string, value string) (solana.PublicKey, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return solana.PublicKey{}, nil
	}
	key, err := solana.PublicKeyFromBase58(trimmed)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("invalid --%s: %w", flag, err)
	}
	return key, nil
}

func parsePublicKeys(flag string, values []string) ([]solana.PublicKey, error) {
	keys := make([]solana.PublicKey, 0, len(values))
	for _, value := range values {
		key, err := parsePublicKey(flag, value)
		if err != nil {
			return nil, err
		}
		if !key.IsZero() {
			keys = append(keys, key)
		}
	}
	return keys, nil
}
