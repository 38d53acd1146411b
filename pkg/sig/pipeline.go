package sig

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/openfed-online/federation-sdk-go/pkg/docloader"
	"github.com/openfed-online/federation-sdk-go/pkg/keys"
	"github.com/openfed-online/federation-sdk-go/pkg/vocab"
)

// Options configures a signing pass.
type Options struct {
	// Logger receives the degradation warnings emitted when a scheme
	// has no usable key.
	Logger *zerolog.Logger
	// ContextLoader is the document-loading context for signature
	// suites that dereference linked contexts. The JCS-based suites
	// used here canonicalize without dereferencing, so it may be nil.
	ContextLoader docloader.Loader
	// Now overrides the proof timestamp source.
	Now func() time.Time
}

// Signed is the output of the signing pipeline: the final compacted
// document, ready to serialize to bytes, and the RSA signer that was
// available, which the delivery transport consumes for the transport
// signature decision.
type Signed struct {
	Document  map[string]any
	RSASigner *keys.KeyPair
}

// Bytes serializes the signed document to its wire form.
func (s *Signed) Bytes() ([]byte, error) {
	encoded, err := json.Marshal(s.Document)
	if err != nil {
		return nil, fmt.Errorf("failed to encode signed document: %w", err)
	}
	return encoded, nil
}

// Sign attaches every applicable proof to the outbound message and
// produces the serialized, signed document.
//
// The pass over the keys is single and ordered: the first RSA key
// becomes the document/transport signer, every Ed25519 key appends one
// integrity proof, and keys of other supported algorithms are
// validated but not otherwise used. Integrity proofs are attached to
// the message before serialization; the linked-data signature then
// wraps the already-proof-bearing document. A missing key for a scheme
// degrades every layer that scheme signs, with an independent warning
// per layer: no Ed25519 key costs the integrity proof, and no RSA key
// costs both the linked-data signature and the later transport
// signature. No network access is performed.
func Sign(
	ctx context.Context,
	message *vocab.Object,
	keyPairs []keys.KeyPair,
	options Options,
) (*Signed, error) {
	logger := zerolog.Nop()
	if options.Logger != nil {
		logger = *options.Logger
	}
	now := time.Now
	if options.Now != nil {
		now = options.Now
	}

	if message == nil {
		return nil, &ValidationError{Code: ErrorCodeInvalidMessage, Message: "message is required"}
	}
	if message.ID() == nil {
		return nil, &ValidationError{Code: ErrorCodeMissingID, Message: "outbound message must have an id"}
	}
	if message.PropertyID("actor") == nil && message.PropertyID("attributedTo") == nil &&
		!hasScalarAttribution(message) {
		return nil, &ValidationError{
			Code:    ErrorCodeMissingAttribution,
			Message: "outbound message must have at least one actor attribution",
		}
	}
	if len(keyPairs) == 0 {
		return nil, &ValidationError{Code: ErrorCodeEmptyKeyList, Message: "at least one key pair is required"}
	}

	for _, pair := range keyPairs {
		if err := pair.Validate(); err != nil {
			return nil, err
		}
		if pair.PublicKeyID == nil {
			return nil, &keys.KeyError{Code: keys.ErrorCodeMissingKeyID}
		}
	}

	var rsaSigner *keys.KeyPair
	integrityProofCount := 0
	snapshot := message

	for index := range keyPairs {
		pair := keyPairs[index]
		algorithm, err := pair.Algorithm()
		if err != nil {
			return nil, err
		}

		switch algorithm {
		case keys.AlgorithmRSA:
			if rsaSigner == nil {
				rsaSigner = &keyPairs[index]
			}
		case keys.AlgorithmEd25519:
			privateKey, _ := pair.Ed25519Key()
			signed, proofErr := withIntegrityProof(snapshot, privateKey, pair.PublicKeyID.String(), now())
			if proofErr != nil {
				return nil, proofErr
			}
			snapshot = signed
			integrityProofCount++
		}
	}

	document, err := vocab.SerializeObject(snapshot, vocab.ModeCompact)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize message: %w", err)
	}

	if rsaSigner != nil {
		privateKey, _ := rsaSigner.RSAKey()
		document, err = wrapWithSignature(document, privateKey, rsaSigner.PublicKeyID.String(), now())
		if err != nil {
			return nil, err
		}
	} else {
		logger.Warn().
			Str("id", message.ID().String()).
			Msg("no RSA key available; document ships without a linked-data signature")
		logger.Warn().
			Str("id", message.ID().String()).
			Msg("no RSA key available; request will be sent without a transport signature")
	}

	if integrityProofCount == 0 {
		logger.Warn().
			Str("id", message.ID().String()).
			Msg("no Ed25519 key available; document ships without an integrity proof")
	}

	return &Signed{Document: document, RSASigner: rsaSigner}, nil
}

// hasScalarAttribution accepts attribution stored as a plain string,
// the usual form on directly constructed outbound messages.
func hasScalarAttribution(message *vocab.Object) bool {
	for _, property := range []string{"actor", "attributedTo"} {
		if value, ok := message.ScalarValue(property); ok {
			if text, isText := value.(string); isText && text != "" {
				return true
			}
		}
	}
	return false
}
