package vocab

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"testing"

	"github.com/openfed-online/federation-sdk-go/pkg/docloader"
)

type stubLoader struct {
	mu        sync.Mutex
	documents map[string]map[string]any
	failures  map[string]error
	calls     map[string]int
}

func newStubLoader() *stubLoader {
	return &stubLoader{
		documents: make(map[string]map[string]any),
		failures:  make(map[string]error),
		calls:     make(map[string]int),
	}
}

func (l *stubLoader) Load(ctx context.Context, url string) (*docloader.RemoteDocument, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.calls[url]++
	if err, failed := l.failures[url]; failed {
		return nil, &docloader.FetchError{URL: url, Cause: err}
	}
	document, exists := l.documents[url]
	if !exists {
		return nil, &docloader.FetchError{URL: url, Cause: errors.New("not found")}
	}
	return &docloader.RemoteDocument{URL: url, Document: document}, nil
}

func (l *stubLoader) callCount(url string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls[url]
}

func noteDocument(id string) map[string]any {
	return map[string]any{
		"@context": ActivityStreamsContext,
		"id":       id,
		"type":     "Note",
		"content":  "hi",
	}
}

func createWithObjects(t *testing.T, targets ...string) *Object {
	t.Helper()
	object := New("Create").SetID(mustURL(t, "https://example.com/activities/1"))
	slots := make([]PropertyValue, 0, len(targets))
	for _, target := range targets {
		slots = append(slots, Reference(mustURL(t, target)))
	}
	object.SetProperty("object", slots...)
	return object
}

func TestResolvePropertySuccess(t *testing.T) {
	loader := newStubLoader()
	loader.documents["https://example.com/notes/1"] = noteDocument("https://example.com/notes/1")

	registry := noteRegistry()
	resolver := NewResolver(registry, ResolverConfig{Loader: loader})
	activity := createWithObjects(t, "https://example.com/notes/1")

	resolved, err := resolver.ResolveProperty(context.Background(), activity, "object", ResolveOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved == nil || resolved.TypeName() != "Note" {
		t.Fatalf("unexpected resolution: %v", resolved)
	}
	if resolved.ID().String() != "https://example.com/notes/1" {
		t.Fatalf("unexpected id: %s", resolved.ID())
	}
}

func TestResolveMemoizesSlot(t *testing.T) {
	loader := newStubLoader()
	loader.documents["https://example.com/notes/1"] = noteDocument("https://example.com/notes/1")

	resolver := NewResolver(noteRegistry(), ResolverConfig{Loader: loader})
	activity := createWithObjects(t, "https://example.com/notes/1")

	first, err := resolver.ResolveProperty(context.Background(), activity, "object", ResolveOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := resolver.ResolveProperty(context.Background(), activity, "object", ResolveOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Fatal("expected the memoized object on the second call")
	}
	if count := loader.callCount("https://example.com/notes/1"); count != 1 {
		t.Fatalf("expected exactly one load, got %d", count)
	}
	if activity.Property("object")[0].Kind() != KindInline {
		t.Fatal("slot must be replaced in place by the resolved value")
	}
}

func TestResolvePropagatesFetchFailure(t *testing.T) {
	loader := newStubLoader()
	loader.failures["https://example.com/notes/1"] = errors.New("boom")

	resolver := NewResolver(noteRegistry(), ResolverConfig{Loader: loader})
	activity := createWithObjects(t, "https://example.com/notes/1")

	_, err := resolver.ResolveProperty(context.Background(), activity, "object", ResolveOptions{})
	var fetchErr *docloader.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if activity.Property("object")[0].Kind() != KindReference {
		t.Fatal("failed resolution must leave the slot untouched")
	}
}

func TestResolveSuppressedFailureSkipsEntry(t *testing.T) {
	loader := newStubLoader()
	loader.documents["https://example.com/notes/1"] = noteDocument("https://example.com/notes/1")
	loader.failures["https://example.com/notes/2"] = errors.New("boom")
	loader.documents["https://example.com/notes/3"] = noteDocument("https://example.com/notes/3")

	resolver := NewResolver(noteRegistry(), ResolverConfig{Loader: loader})
	activity := createWithObjects(t,
		"https://example.com/notes/1",
		"https://example.com/notes/2",
		"https://example.com/notes/3",
	)

	resolved := make([]string, 0, 3)
	for object, err := range resolver.ResolveProperties(
		context.Background(), activity, "object", ResolveOptions{SuppressErrors: true},
	) {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		resolved = append(resolved, object.ID().String())
	}

	if len(resolved) != 2 {
		t.Fatalf("expected 2 resolved objects, got %d", len(resolved))
	}
	if resolved[0] != "https://example.com/notes/1" || resolved[1] != "https://example.com/notes/3" {
		t.Fatalf("unexpected order: %v", resolved)
	}
	if activity.Property("object")[1].Kind() != KindReference {
		t.Fatal("suppressed failure must leave the slot untouched")
	}
}

func TestResolvePropertiesPropagatesWithoutSuppress(t *testing.T) {
	loader := newStubLoader()
	loader.documents["https://example.com/notes/1"] = noteDocument("https://example.com/notes/1")
	loader.failures["https://example.com/notes/2"] = errors.New("boom")

	resolver := NewResolver(noteRegistry(), ResolverConfig{Loader: loader})
	activity := createWithObjects(t, "https://example.com/notes/1", "https://example.com/notes/2")

	var sawError error
	count := 0
	for object, err := range resolver.ResolveProperties(
		context.Background(), activity, "object", ResolveOptions{},
	) {
		if err != nil {
			sawError = err
			continue
		}
		count++
		_ = object
	}
	if count != 1 {
		t.Fatalf("expected 1 object before the failure, got %d", count)
	}
	if sawError == nil {
		t.Fatal("expected the fetch failure to be yielded")
	}
}

func TestResolveSequenceRestartable(t *testing.T) {
	loader := newStubLoader()
	loader.documents["https://example.com/notes/1"] = noteDocument("https://example.com/notes/1")
	loader.documents["https://example.com/notes/2"] = noteDocument("https://example.com/notes/2")

	resolver := NewResolver(noteRegistry(), ResolverConfig{Loader: loader})
	activity := createWithObjects(t, "https://example.com/notes/1", "https://example.com/notes/2")

	sequence := resolver.ResolveProperties(context.Background(), activity, "object", ResolveOptions{})
	firstPass := 0
	for _, err := range sequence {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		firstPass++
	}
	secondPass := 0
	for _, err := range sequence {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		secondPass++
	}
	if firstPass != 2 || secondPass != 2 {
		t.Fatalf("expected both passes to yield 2 objects, got %d and %d", firstPass, secondPass)
	}
	if count := loader.callCount("https://example.com/notes/1"); count != 1 {
		t.Fatalf("restart must be served from memoized slots, got %d loads", count)
	}
}

func TestResolveCandidateOrder(t *testing.T) {
	loader := newStubLoader()
	loader.documents["https://example.com/articles/1"] = map[string]any{
		"id":   "https://example.com/articles/1",
		"type": "Article",
	}

	resolver := NewResolver(noteRegistry(), ResolverConfig{Loader: loader})
	activity := createWithObjects(t, "https://example.com/articles/1")

	resolved, err := resolver.ResolveProperty(context.Background(), activity, "object", ResolveOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved.TypeName() != "Article" {
		t.Fatalf("expected the second candidate to match, got %s", resolved.TypeName())
	}
}

func TestResolveExhaustionNamesAllCandidates(t *testing.T) {
	loader := newStubLoader()
	loader.documents["https://example.com/videos/1"] = map[string]any{
		"id":   "https://example.com/videos/1",
		"type": "Video",
	}

	resolver := NewResolver(noteRegistry(), ResolverConfig{Loader: loader})
	activity := createWithObjects(t, "https://example.com/videos/1")

	_, err := resolver.ResolveProperty(context.Background(), activity, "object", ResolveOptions{})
	var mismatch *TypeMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected TypeMismatchError, got %v", err)
	}
	if len(mismatch.Attempted) != 2 || mismatch.Attempted[0] != "Note" || mismatch.Attempted[1] != "Article" {
		t.Fatalf("unexpected attempted list: %v", mismatch.Attempted)
	}
	if mismatch.URL != "https://example.com/videos/1" {
		t.Fatalf("unexpected URL: %s", mismatch.URL)
	}
}

func TestResolveShortcutSkipsNetwork(t *testing.T) {
	loader := newStubLoader()

	registry := noteRegistry()
	resolver := NewResolver(registry, ResolverConfig{Loader: loader})

	activity := New("Create").SetID(mustURL(t, "https://example.com/activities/1"))
	activity.SetProperty("object", Reference(mustURL(t, "https://example.com/notes/1")))
	activity.RetainSource(map[string]any{
		"object": map[string]any{
			"@context": ActivityStreamsContext,
			"id":       "https://example.com/notes/1",
			"type":     "Note",
		},
	})

	resolved, err := resolver.ResolveProperty(context.Background(), activity, "object", ResolveOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved == nil || resolved.TypeName() != "Note" {
		t.Fatalf("unexpected resolution: %v", resolved)
	}
	if count := loader.callCount("https://example.com/notes/1"); count != 0 {
		t.Fatalf("shortcut must skip the loader, got %d loads", count)
	}
}

func TestResolveShortcutRequiresContextMarker(t *testing.T) {
	loader := newStubLoader()
	loader.documents["https://example.com/notes/1"] = noteDocument("https://example.com/notes/1")

	resolver := NewResolver(noteRegistry(), ResolverConfig{Loader: loader})
	activity := New("Create")
	activity.SetProperty("object", Reference(mustURL(t, "https://example.com/notes/1")))
	activity.RetainSource(map[string]any{
		"object": map[string]any{"id": "https://example.com/notes/1", "type": "Note"},
	})

	if _, err := resolver.ResolveProperty(context.Background(), activity, "object", ResolveOptions{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count := loader.callCount("https://example.com/notes/1"); count != 1 {
		t.Fatalf("fragment without a context marker must be fetched, got %d loads", count)
	}
}

func TestResolveCancellationNeverSuppressed(t *testing.T) {
	loader := newStubLoader()
	loader.documents["https://example.com/notes/1"] = noteDocument("https://example.com/notes/1")

	resolver := NewResolver(noteRegistry(), ResolverConfig{Loader: loader})
	activity := createWithObjects(t, "https://example.com/notes/1")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := resolver.ResolveProperty(ctx, activity, "object", ResolveOptions{SuppressErrors: true})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if activity.Property("object")[0].Kind() != KindReference {
		t.Fatal("cancellation must leave the slot unmodified")
	}
}

func TestResolveScalarOnlySlotYieldsNothing(t *testing.T) {
	resolver := NewResolver(noteRegistry(), ResolverConfig{Loader: newStubLoader()})
	activity := New("Create")
	activity.SetProperty("object", Scalar("plain text"))

	resolved, err := resolver.ResolveProperty(context.Background(), activity, "object", ResolveOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved != nil {
		t.Fatalf("expected no resolution for a scalar slot, got %v", resolved)
	}
}

func TestResolvePerCallLoaderOverride(t *testing.T) {
	fallback := newStubLoader()
	override := newStubLoader()
	override.documents["https://example.com/notes/1"] = noteDocument("https://example.com/notes/1")

	resolver := NewResolver(noteRegistry(), ResolverConfig{Loader: fallback})
	activity := createWithObjects(t, "https://example.com/notes/1")

	if _, err := resolver.ResolveProperty(
		context.Background(), activity, "object", ResolveOptions{Loader: override},
	); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fallback.callCount("https://example.com/notes/1") != 0 {
		t.Fatal("fallback loader must not be used when an override is supplied")
	}
	if override.callCount("https://example.com/notes/1") != 1 {
		t.Fatal("override loader must be used")
	}
}

func TestResolveParseAbortIsNotMismatch(t *testing.T) {
	loader := newStubLoader()
	loader.documents["https://example.com/notes/1"] = map[string]any{
		"id":   12345,
		"type": "Note",
	}

	resolver := NewResolver(noteRegistry(), ResolverConfig{Loader: loader})
	activity := createWithObjects(t, "https://example.com/notes/1")

	_, err := resolver.ResolveProperty(context.Background(), activity, "object", ResolveOptions{})
	if err == nil {
		t.Fatal("expected parse failure to propagate")
	}
	var mismatch *TypeMismatchError
	if errors.As(err, &mismatch) {
		t.Fatalf("a malformed document is not a mismatch: %v", err)
	}
}

func ExampleResolver_ResolveProperties() {
	registry := NewRegistry()
	registry.Register("object", AnyType{Registry: registry})

	loader := newStubLoader()
	loader.documents["https://example.com/notes/1"] = map[string]any{
		"id":   "https://example.com/notes/1",
		"type": "Note",
	}

	resolver := NewResolver(registry, ResolverConfig{Loader: loader})
	activity := New("Create")
	target, _ := url.Parse("https://example.com/notes/1")
	activity.SetProperty("object", Reference(target))

	for object, err := range resolver.ResolveProperties(context.Background(), activity, "object", ResolveOptions{}) {
		if err != nil {
			fmt.Println("error:", err)
			return
		}
		fmt.Println(object.TypeName(), object.ID())
	}
	// Output: Note https://example.com/notes/1
}
