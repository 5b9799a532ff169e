package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables consulted for author identities, in order.
const (
	EnvIdentities      = "LOCSTAT_IDENTITIES"
	EnvLegacyUsername  = "USERNAME"
	EnvLegacyGitUser   = "GIT_USERNAME"
	identitySeparator  = ","
	DefaultDotEnvFile  = ".env"
	defaultRunIDPrefix = "locstat"
)

// ErrNoIdentity indicates that no author identity is configured.
var ErrNoIdentity = errors.New("no author identity configured")

// LoadDotEnv loads path into the process environment. Variables that are
// already set keep their values. A missing file is not an error.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}

	return nil
}

// ResolveIdentities merges identities from flags, LOCSTAT_IDENTITIES, the config
// file and the legacy USERNAME/GIT_USERNAME pair, dropping blanks and duplicates.
func ResolveIdentities(flags, configured []string, getenv func(string) string) ([]string, error) {
	var candidates []string

	candidates = append(candidates, flags...)
	candidates = append(candidates, strings.Split(getenv(EnvIdentities), identitySeparator)...)
	candidates = append(candidates, configured...)
	candidates = append(candidates, getenv(EnvLegacyUsername), getenv(EnvLegacyGitUser))

	seen := make(map[string]struct{}, len(candidates))
	identities := make([]string, 0, len(candidates))

	for _, candidate := range candidates {
		identity := strings.TrimSpace(candidate)
		if identity == "" {
			continue
		}

		if _, dup := seen[identity]; dup {
			continue
		}

		seen[identity] = struct{}{}

		identities = append(identities, identity)
	}

	if len(identities) == 0 {
		return nil, fmt.Errorf("%w: %w: set --identity, %s or %s", ErrSetup, ErrNoIdentity, EnvIdentities, EnvLegacyUsername)
	}

	return identities, nil
}

// RunID picks the output file prefix: the configured one, else the first identity.
func RunID(configured string, identities []string) string {
	if configured != "" {
		return configured
	}

	if len(identities) > 0 {
		return identities[0]
	}

	return defaultRunIDPrefix
}
