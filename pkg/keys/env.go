package keys

import (
	"bufio"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/btcsuite/btcd/btcec/v2"

	"github.com/openfed-online/federation-sdk-go/pkg/shared"
)

var dotenvLoadOnce sync.Once

// FromEnv loads a signing key pair from the environment. The private
// key is read from FEDERATION_PRIVATE_KEY (PEM text) or
// FEDERATION_PRIVATE_KEY_FILE (path to a PEM file), and the public key
// URL from FEDERATION_KEY_ID. A .env file found in or above the
// working directory is loaded first without overriding variables that
// are already set.
func FromEnv() (KeyPair, error) {
	loadDotEnvIfPresent()

	keyID := firstNonEmptyEnv("FEDERATION_KEY_ID", "FEDERATION_PUBLIC_KEY_ID")
	if keyID == "" {
		return KeyPair{}, fmt.Errorf("FEDERATION_KEY_ID is required")
	}
	publicKeyID, err := shared.NormalizeURL(keyID)
	if err != nil {
		return KeyPair{}, fmt.Errorf("FEDERATION_KEY_ID is invalid: %w", err)
	}

	pemText := firstNonEmptyEnv("FEDERATION_PRIVATE_KEY")
	if pemText == "" {
		path := firstNonEmptyEnv("FEDERATION_PRIVATE_KEY_FILE")
		if path == "" {
			return KeyPair{}, fmt.Errorf("FEDERATION_PRIVATE_KEY is required")
		}
		contents, readErr := os.ReadFile(path)
		if readErr != nil {
			return KeyPair{}, fmt.Errorf("failed to read FEDERATION_PRIVATE_KEY_FILE: %w", readErr)
		}
		pemText = string(contents)
	}

	privateKey, err := ParsePrivateKeyPEM(pemText)
	if err != nil {
		return KeyPair{}, err
	}

	pair := KeyPair{PrivateKey: privateKey, PublicKeyID: publicKeyID}
	if err := pair.Validate(); err != nil {
		return KeyPair{}, err
	}
	return pair, nil
}

// ParsePrivateKeyPEM parses the provided PEM text as a private key,
// trying PKCS#8, PKCS#1 RSA, and raw secp256k1 encodings in order.
func ParsePrivateKeyPEM(pemText string) (any, error) {
	block, _ := pem.Decode([]byte(strings.TrimSpace(pemText)))
	if block == nil {
		return nil, fmt.Errorf("no PEM block found in private key input")
	}

	pkcs8Key, pkcs8Err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if pkcs8Err == nil {
		return pkcs8Key, nil
	}

	pkcs1Key, pkcs1Err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if pkcs1Err == nil {
		return pkcs1Key, nil
	}

	if len(block.Bytes) == 32 {
		secpKey, _ := btcec.PrivKeyFromBytes(block.Bytes)
		if secpKey != nil {
			return secpKey, nil
		}
	}

	return nil, fmt.Errorf(
		"failed to parse private key as PKCS#8 (%v), PKCS#1 (%v), or secp256k1",
		pkcs8Err,
		pkcs1Err,
	)
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

		seenCandidates := make(map[string]struct{})
		for _, start := range startPaths {
			current := start
			for {
				candidate := filepath.Join(current, ".env")
				if _, exists := seenCandidates[candidate]; !exists {
					seenCandidates[candidate] = struct{}{}
					if _, statErr := os.Stat(candidate); statErr == nil {
						loadDotEnvFile(candidate)
						return
					}
				}

				parent := filepath.Dir(current)
				if parent == current {
					break
				}
				current = parent
			}
		}
	})
}

func loadDotEnvFile(path string) {
	file, err := os.Open(path)
	if err != nil {
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "export ") {
			line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		}

		separator := strings.Index(line, "=")
		if separator <= 0 {
			continue
		}

		key := strings.TrimSpace(line[:separator])
		if !isValidEnvKey(key) {
			continue
		}
		if _, alreadySet := os.LookupEnv(key); alreadySet {
			continue
		}

		value := strings.TrimSpace(line[separator+1:])
		if len(value) >= 2 {
			first := value[0]
			last := value[len(value)-1]
			if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
				value = value[1 : len(value)-1]
			}
		}

		os.Setenv(key, value)
	}
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

func firstNonEmptyEnv(names ...string) string {
	for _, name := range names {
		value := strings.TrimSpace(os.Getenv(name))
		if value != "" {
			return value
		}
	}
	return ""
}
