// Package docloader implements the document loader contract: resolving
// a URL to its linked document. It provides the HTTP implementation
// used by the resolver and the signing pipeline, with support for
// brotli and gzip response encodings, response size limits, and a
// single process-wide default instance.
//
// Implementations of the Loader interface must be safe for concurrent
// use and must honor context cancellation and deadlines.
package docloader
