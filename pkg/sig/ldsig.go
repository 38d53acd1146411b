package sig

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"time"
)

// LinkedDataSignatureType is the type tag of the document-level
// signature envelope.
const LinkedDataSignatureType = "RsaSignature2017"

// SignatureProperty is the document key the envelope is stored under.
const SignatureProperty = "signature"

// wrapWithSignature embeds a linked-data signature block into the
// already-proof-bearing compacted document, keyed by the RSA signer.
// The envelope covers the canonical form of the signature options and
// of the whole document as it stands, integrity proofs included.
func wrapWithSignature(
	document map[string]any,
	privateKey *rsa.PrivateKey,
	publicKeyID string,
	created time.Time,
) (map[string]any, error) {
	options := map[string]any{
		"type":    LinkedDataSignatureType,
		"creator": publicKeyID,
		"created": created.UTC().Format(time.RFC3339),
	}

	digest := ldSigningInput(options, document)
	signature, err := rsa.SignPKCS1v15(rand.Reader, privateKey, crypto.SHA256, digest)
	if err != nil {
		return nil, fmt.Errorf("failed to sign document: %w", err)
	}

	envelope := make(map[string]any, len(options)+1)
	for key, value := range options {
		envelope[key] = value
	}
	envelope["signatureValue"] = base64.StdEncoding.EncodeToString(signature)

	signed := make(map[string]any, len(document)+1)
	for key, value := range document {
		signed[key] = value
	}
	signed[SignatureProperty] = envelope
	return signed, nil
}

// VerifyDocumentSignature checks the embedded linked-data signature of
// a compacted document against the given RSA public key.
func VerifyDocumentSignature(document map[string]any, publicKey *rsa.PublicKey) bool {
	envelope, ok := document[SignatureProperty].(map[string]any)
	if !ok {
		return false
	}
	signatureType, _ := envelope["type"].(string)
	if signatureType != LinkedDataSignatureType {
		return false
	}
	signatureValue, _ := envelope["signatureValue"].(string)
	signature, err := base64.StdEncoding.DecodeString(signatureValue)
	if err != nil {
		return false
	}

	options := make(map[string]any, len(envelope))
	for key, value := range envelope {
		if key == "signatureValue" {
			continue
		}
		options[key] = value
	}

	unsigned := make(map[string]any, len(document))
	for key, value := range document {
		if key == SignatureProperty {
			continue
		}
		unsigned[key] = value
	}

	digest := ldSigningInput(options, unsigned)
	return rsa.VerifyPKCS1v15(publicKey, crypto.SHA256, digest, signature) == nil
}

func ldSigningInput(options map[string]any, document map[string]any) []byte {
	optionsHash := sha256.Sum256([]byte(Canonicalize(options)))
	documentHash := sha256.Sum256([]byte(Canonicalize(document)))
	combined := sha256.Sum256(append(optionsHash[:], documentHash[:]...))
	return combined[:]
}
