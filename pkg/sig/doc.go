// Package sig implements the multi-scheme signing pipeline for
// outbound messages. A single ordered pass over the caller's keys
// attaches one Ed25519 integrity proof per Ed25519 key, selects the
// first RSA key as the document and transport signer, and validates
// everything else. Integrity proofs are attached before serialization;
// the linked-data signature envelope wraps the already-proof-bearing
// compacted document.
//
// A missing key for a scheme is not an error: every layer that scheme
// signs ships unsigned and a warning is logged, one per degraded
// layer, independently. A missing RSA key degrades two layers, the
// linked-data signature and the transport signature. Verification
// counterparts for both schemes are provided for the receive side.
package sig
