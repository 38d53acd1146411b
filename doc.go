// The Federation SDK for Go is a Go implementation of the trust and
// delivery layer of the federated-object protocol. It turns typed,
// linked documents into verifiable network messages and turns received
// documents into typed, lazily-resolvable object graphs.
//
// # Packages
//
// The SDK provides the following packages:
//
//   - pkg/vocab: federated object storage, the candidate-type registry,
//     and lazy reference resolution
//   - pkg/docloader: the document loader contract and its HTTP
//     implementation
//   - pkg/keys: signing key material, algorithm tags, and validation
//   - pkg/sig: the multi-scheme signing pipeline (integrity proofs and
//     linked-data signatures)
//   - pkg/httpsig: HTTP message signatures for outbound requests
//   - pkg/delivery: inbox target resolution and the delivery transport
//   - pkg/shared: URL helpers shared across the SDK
//
// # Installation
//
//	go get github.com/openfed-online/federation-sdk-go@latest
package federation_sdk_go
