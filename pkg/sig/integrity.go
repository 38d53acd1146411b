package sig

import (
	"crypto/ed25519"
	"crypto/sha256"
	"fmt"
	"strings"
	"time"

	"github.com/mr-tron/base58"

	"github.com/openfed-online/federation-sdk-go/pkg/vocab"
)

const (
	// IntegrityProofType is the type tag of embedded integrity proofs.
	IntegrityProofType = "DataIntegrityProof"
	// IntegrityProofSuite is the cryptosuite of embedded integrity
	// proofs: Ed25519 over JCS-canonicalized input.
	IntegrityProofSuite = "eddsa-jcs-2022"
	// ProofProperty is the property integrity proofs are appended to.
	ProofProperty = "proof"
)

// withIntegrityProof returns a snapshot of the message with one
// integrity proof appended for the given Ed25519 key. The unsecured
// document (every property except accumulated proofs) is what the
// proof covers, so multiple keys yield multiple independent proofs.
func withIntegrityProof(
	message *vocab.Object,
	privateKey ed25519.PrivateKey,
	publicKeyID string,
	created time.Time,
) (*vocab.Object, error) {
	unsecured, err := unsecuredDocument(message)
	if err != nil {
		return nil, err
	}

	config := map[string]any{
		"type":               IntegrityProofType,
		"cryptosuite":        IntegrityProofSuite,
		"created":            created.UTC().Format(time.RFC3339),
		"verificationMethod": publicKeyID,
		"proofPurpose":       "assertionMethod",
	}

	signature := ed25519.Sign(privateKey, integritySigningInput(config, unsecured))

	proof := make(map[string]any, len(config)+1)
	for key, value := range config {
		proof[key] = value
	}
	proof["proofValue"] = "z" + base58.Encode(signature)

	signed := message.Clone()
	signed.AddProperty(ProofProperty, vocab.Scalar(proof))
	return signed, nil
}

// VerifyIntegrityProof checks one embedded integrity proof of a
// compacted document against the given Ed25519 public key.
func VerifyIntegrityProof(document map[string]any, proof map[string]any, publicKey ed25519.PublicKey) bool {
	proofType, _ := proof["type"].(string)
	suite, _ := proof["cryptosuite"].(string)
	if proofType != IntegrityProofType || suite != IntegrityProofSuite {
		return false
	}

	proofValue, _ := proof["proofValue"].(string)
	if !strings.HasPrefix(proofValue, "z") {
		return false
	}
	signature, err := base58.Decode(proofValue[1:])
	if err != nil {
		return false
	}

	config := make(map[string]any, len(proof))
	for key, value := range proof {
		if key == "proofValue" {
			continue
		}
		config[key] = value
	}

	unsecured := make(map[string]any, len(document))
	for key, value := range document {
		if key == ProofProperty {
			continue
		}
		unsecured[key] = value
	}

	return ed25519.Verify(publicKey, integritySigningInput(config, unsecured), signature)
}

// IntegrityProofs returns the integrity proof blocks embedded in a
// compacted document.
func IntegrityProofs(document map[string]any) []map[string]any {
	raw, exists := document[ProofProperty]
	if !exists {
		return nil
	}

	var entries []any
	switch typed := raw.(type) {
	case []any:
		entries = typed
	default:
		entries = []any{raw}
	}

	proofs := make([]map[string]any, 0, len(entries))
	for _, entry := range entries {
		if proof, ok := entry.(map[string]any); ok {
			proofs = append(proofs, proof)
		}
	}
	return proofs
}

func integritySigningInput(config map[string]any, unsecured map[string]any) []byte {
	configHash := sha256.Sum256([]byte(Canonicalize(config)))
	documentHash := sha256.Sum256([]byte(Canonicalize(unsecured)))
	return append(configHash[:], documentHash[:]...)
}

func unsecuredDocument(message *vocab.Object) (map[string]any, error) {
	document, err := vocab.SerializeObject(message, vocab.ModeCompact)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize message: %w", err)
	}
	delete(document, ProofProperty)
	return document, nil
}
