// Package delivery computes destination inboxes for a recipient list
// and POSTs signed documents to them.
//
// InboxTargets is a pure function applying shared-inbox preference and
// origin-based exclusion; its output maps exact inbox URLs to the
// identities delivered through each. The Client sends one signed
// payload to one inbox per call, applying a transport message
// signature when the signing pipeline reported an RSA signer. Delivery
// to many inboxes is embarrassingly parallel: callers issue concurrent
// Deliver calls, reusing the same signed payload, bounded by their own
// concurrency limiter if needed.
package delivery
