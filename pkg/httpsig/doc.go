// Package httpsig applies HTTP message signatures (RFC 9421) to
// outbound delivery requests. The signature covers the method, the
// target URI, the content type, and a sha-256 body digest, and is
// keyed by the same RSA key that signs the document. Requests without
// an RSA signer are sent unsigned at this layer.
package httpsig
