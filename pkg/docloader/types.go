package docloader

import "context"

// RemoteDocument is the result of dereferencing a linked-document URL.
type RemoteDocument struct {
	// URL is the final document URL after any redirects.
	URL string
	// Document is the decoded JSON document.
	Document map[string]any
	// ContextURL is the linked-data context the document declares, when
	// it declares one by URL.
	ContextURL string
}

// Loader resolves a URL to its linked document. Implementations must
// be safe for concurrent use and must honor context cancellation.
type Loader interface {
	Load(ctx context.Context, url string) (*RemoteDocument, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, url string) (*RemoteDocument, error)

// Load calls the underlying function.
func (f LoaderFunc) Load(ctx context.Context, url string) (*RemoteDocument, error) {
	return f(ctx, url)
}
