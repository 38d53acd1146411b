package keys

import (
	"crypto"
	"crypto/ed25519"
	"crypto/rsa"
	"net/url"

	"github.com/btcsuite/btcd/btcec/v2"
)

// Algorithm identifies a signing key algorithm. The set is closed:
// RSA keys drive the linked-data signature and the transport
// signature, Ed25519 keys drive integrity proofs, and secp256k1 keys
// are accepted as valid key material but used by neither document
// layer.
type Algorithm string

const (
	AlgorithmRSA       Algorithm = "rsa-sha256"
	AlgorithmEd25519   Algorithm = "ed25519"
	AlgorithmSecp256k1 Algorithm = "secp256k1"
)

// KeyPair is a private signing key together with the URL identifying
// its published public key.
type KeyPair struct {
	PrivateKey  crypto.PrivateKey
	PublicKeyID *url.URL
}

// Algorithm returns the algorithm tag of the key pair's private key.
func (k KeyPair) Algorithm() (Algorithm, error) {
	if err := k.Validate(); err != nil {
		return "", err
	}

	switch k.PrivateKey.(type) {
	case *rsa.PrivateKey:
		return AlgorithmRSA, nil
	case ed25519.PrivateKey:
		return AlgorithmEd25519, nil
	case *btcec.PrivateKey:
		return AlgorithmSecp256k1, nil
	default:
		return "", &KeyError{Code: ErrorCodeUnsupportedAlgorithm, KeyID: k.keyID()}
	}
}

// Validate checks that the key material is a private key of a
// supported algorithm. Public keys and keys of unknown algorithms are
// rejected.
func (k KeyPair) Validate() error {
	if k.PrivateKey == nil {
		return &KeyError{Code: ErrorCodeMissingKey, KeyID: k.keyID()}
	}

	switch typed := k.PrivateKey.(type) {
	case *rsa.PrivateKey:
		if typed == nil {
			return &KeyError{Code: ErrorCodeMissingKey, KeyID: k.keyID()}
		}
		return nil
	case ed25519.PrivateKey:
		if len(typed) != ed25519.PrivateKeySize {
			return &KeyError{Code: ErrorCodeUnsupportedAlgorithm, KeyID: k.keyID()}
		}
		return nil
	case *btcec.PrivateKey:
		if typed == nil {
			return &KeyError{Code: ErrorCodeMissingKey, KeyID: k.keyID()}
		}
		return nil
	case *rsa.PublicKey, ed25519.PublicKey, *btcec.PublicKey:
		return &KeyError{Code: ErrorCodeWrongPurpose, KeyID: k.keyID()}
	default:
		return &KeyError{Code: ErrorCodeUnsupportedAlgorithm, KeyID: k.keyID()}
	}
}

// RSAKey returns the private key as an RSA key, when it is one.
func (k KeyPair) RSAKey() (*rsa.PrivateKey, bool) {
	typed, ok := k.PrivateKey.(*rsa.PrivateKey)
	return typed, ok
}

// Ed25519Key returns the private key as an Ed25519 key, when it is
// one.
func (k KeyPair) Ed25519Key() (ed25519.PrivateKey, bool) {
	typed, ok := k.PrivateKey.(ed25519.PrivateKey)
	return typed, ok
}

func (k KeyPair) keyID() string {
	if k.PublicKeyID == nil {
		return ""
	}
	return k.PublicKeyID.String()
}
