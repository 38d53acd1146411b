// Package keys defines the key material contract of the signing
// pipeline: a private signing key paired with the URL of its published
// public key, tagged with one of a closed set of algorithms.
//
// RSA keys drive the linked-data signature and the transport message
// signature. Ed25519 keys drive integrity proofs. Secp256k1 keys are
// accepted as valid key material but are used by neither document
// layer. All other key types are rejected.
//
// # Environment Variables
//
// FromEnv loads a key pair from FEDERATION_PRIVATE_KEY (PEM text) or
// FEDERATION_PRIVATE_KEY_FILE, together with FEDERATION_KEY_ID. A .env
// file in or above the working directory is honored.
package keys
