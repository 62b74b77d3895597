package shared

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/gagliardetto/solana-go"
)

const DefaultKeypairPath = "~/.config/solana/id.json"

const (
	CommitmentProcessed = "processed"
	CommitmentConfirmed = "confirmed"
	CommitmentFinalized = "finalized"
)

type OperatorConfig struct {
	Network        string        `env:"SOLANA_NETWORK" envDefault:"devnet"`
	RPCURL         string        `env:"SOLANA_RPC_URL"`
	KeypairPath    string        `env:"SOLANA_KEYPAIR_PATH"`
	Commitment     string        `env:"SOLANA_COMMITMENT" envDefault:"confirmed"`
	SkipPreflight  bool          `env:"SOLANA_SKIP_PREFLIGHT" envDefault:"true"`
	ConfirmTimeout time.Duration `env:"SOLANA_CONFIRM_TIMEOUT" envDefault:"60s"`
}

var dotenvLoadOnce sync.Once

// OperatorConfigFromEnv reads the operator configuration from the process
// environment after loading the nearest .env file, if any.
func OperatorConfigFromEnv() (OperatorConfig, error) {
	loadDotEnvIfPresent()

	config, err := env.ParseAs[OperatorConfig]()
	if err != nil {
		return OperatorConfig{}, fmt.Errorf("failed to parse operator environment: %w", err)
	}

	config.Network, err = NormalizeNetwork(config.Network)
	if err != nil {
		return OperatorConfig{}, err
	}

	if strings.TrimSpace(config.KeypairPath) == "" {
		config.KeypairPath = firstNonEmptyEnv("ANCHOR_WALLET")
	}
	if strings.TrimSpace(config.KeypairPath) == "" {
		config.KeypairPath = DefaultKeypairPath
	}

	config.Commitment, err = NormalizeCommitment(config.Commitment)
	if err != nil {
		return OperatorConfig{}, err
	}
	if config.ConfirmTimeout <= 0 {
		return OperatorConfig{}, fmt.Errorf("SOLANA_CONFIRM_TIMEOUT must be positive")
	}

	return config, nil
}

// NormalizeCommitment validates a commitment level. An empty value selects
// confirmed.
func NormalizeCommitment(commitment string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(commitment))
	switch normalized {
	case "":
		return CommitmentConfirmed, nil
	case CommitmentProcessed, CommitmentConfirmed, CommitmentFinalized:
		return normalized, nil
	default:
		return "", fmt.Errorf("unsupported commitment %q", commitment)
	}
}

func loadDotEnvIfPresent() {
	dotenvLoadOnce.Do(func() {
		startPaths := make([]string, 0, 2)

		if cwd, err := os.Getwd(); err == nil {
			startPaths = append(startPaths, cwd)
		}
		if _, currentFile, _, ok := runtime.Caller(0); ok {
			startPaths = append(startPaths, filepath.Dir(currentFile))
		}

		loadNearestDotEnv(startPaths)
	})
}

// loadNearestDotEnv walks up from each start path and stops at the first
// .env file that sets at least one variable.
func loadNearestDotEnv(startPaths []string) string {
	seenCandidates := make(map[string]struct{})
	for _, start := range startPaths {
		current := start
		for {
			candidate := filepath.Join(current, ".env")
			if _, exists := seenCandidates[candidate]; !exists {
				seenCandidates[candidate] = struct{}{}
				if _, statErr := os.Stat(candidate); statErr == nil {
					if loadDotEnvFile(candidate) {
						return candidate
					}
				}
			}

			parent := filepath.Dir(current)
			if parent == current {
				break
			}
			current = parent
		}
	}
	return ""
}

func loadDotEnvFile(path string) bool {
	file, err := os.Open(path)
	if err != nil {
		return false
	}
	defer file.Close()

	loadedAny := false
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimSpace(strings.TrimPrefix(line, "export "))

		key, value, found := strings.Cut(line, "=")
		key = strings.TrimSpace(key)
		if !found || !isValidEnvKey(key) {
			continue
		}
		if _, alreadySet := os.LookupEnv(key); alreadySet {
			continue
		}

		value = strings.TrimSpace(value)
		if len(value) >= 2 {
			first := value[0]
			last := value[len(value)-1]
			if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
				value = value[1 : len(value)-1]
			}
		}

		if setErr := os.Setenv(key, value); setErr == nil {
			loadedAny = true
		}
	}

	return loadedAny
}

func isValidEnvKey(key string) bool {
	if key == "" {
		return false
	}
	for index, character := range key {
		if (character >= 'A' && character <= 'Z') ||
			(character >= 'a' && character <= 'z') ||
			(index > 0 && character >= '0' && character <= '9') ||
			character == '_' {
			continue
		}
		return false
	}
	return true
}

func firstNonEmptyEnv(keys ...string) string {
	for _, key := range keys {
		value := strings.TrimSpace(os.Getenv(key))
		if value != "" {
			return value
		}
	}
	return ""
}

// ExpandPath resolves a leading "~" against the user's home directory.
func ExpandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed != "~" && !strings.HasPrefix(trimmed, "~/") {
		return trimmed, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(trimmed, "~")), nil
}

// LoadKeypair reads a Solana CLI keypair file (a JSON array of 64 bytes).
func LoadKeypair(path string) (solana.PrivateKey, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("keypair path cannot be empty")
	}

	resolved, err := ExpandPath(path)
	if err != nil {
		return nil, err
	}

	content, err := os.ReadFile(resolved)
	if err != nil {
		return nil, fmt.Errorf("failed to read keypair file %s: %w", resolved, err)
	}

	privateKey, err := ParsePrivateKey(string(content))
	if err != nil {
		return nil, fmt.Errorf("invalid keypair file %s: %w", resolved, err)
	}
	return privateKey, nil
}

// ParsePrivateKey accepts a 64-byte key as a JSON byte array or as base58.
func ParsePrivateKey(raw string) (solana.PrivateKey, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return nil, fmt.Errorf("private key cannot be empty")
	}

	if strings.HasPrefix(candidate, "[") {
		var values []int
		if err := json.Unmarshal([]byte(candidate), &values); err != nil {
			return nil, fmt.Errorf("failed to decode key byte array: %w", err)
		}
		if len(values) != 64 {
			return nil, fmt.Errorf("expected 64 key bytes, got %d", len(values))
		}

		keyBytes := make([]byte, len(values))
		for index, value := range values {
			if value < 0 || value > 255 {
				return nil, fmt.Errorf("key byte %d out of range: %d", index, value)
			}
			keyBytes[index] = byte(value)
		}
		return solana.PrivateKey(keyBytes), nil
	}

	privateKey, err := solana.PrivateKeyFromBase58(candidate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key as byte array or base58: %w", err)
	}
	if len(privateKey) != 64 {
		return nil, fmt.Errorf("expected 64 key bytes, got %d", len(privateKey))
	}
	return privateKey, nil
}
