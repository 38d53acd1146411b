package keys

import "fmt"

type ErrorCode string

const (
	ErrorCodeMissingKey           ErrorCode = "missing_key"
	ErrorCodeMissingKeyID         ErrorCode = "missing_key_id"
	ErrorCodeWrongPurpose         ErrorCode = "wrong_purpose"
	ErrorCodeUnsupportedAlgorithm ErrorCode = "unsupported_algorithm"
)

// KeyError reports invalid key material: a missing key, a public key
// supplied where a private key is required, or an unsupported
// algorithm. Key errors are always fatal to signing.
type KeyError struct {
	Code  ErrorCode
	KeyID string
}

func (e *KeyError) Error() string {
	if e.KeyID == "" {
		return fmt.Sprintf("invalid key material: %s", e.Code)
	}
	return fmt.Sprintf("invalid key material for %s: %s", e.KeyID, e.Code)
}
