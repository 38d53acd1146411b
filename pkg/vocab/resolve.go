package vocab

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/openfed-online/federation-sdk-go/pkg/docloader"
)

const tracerName = "github.com/openfed-online/federation-sdk-go/pkg/vocab"

// ResolverConfig configures a Resolver.
type ResolverConfig struct {
	Loader docloader.Loader
	Logger *zerolog.Logger
}

// Resolver lazily dereferences the remote references stored on an
// Object, using the document loader and the candidate type registry.
// Successful resolutions are memoized by replacing the reference slot
// in place with the resolved inline object.
type Resolver struct {
	registry *Registry
	loader   docloader.Loader
	logger   zerolog.Logger
	tracer   trace.Tracer
}

// ResolveOptions are per-call resolution options.
type ResolveOptions struct {
	// Loader overrides the resolver's document loader for this call.
	Loader docloader.Loader
	// SuppressErrors turns fetch and type-mismatch failures into
	// skipped entries instead of propagated errors. Cancellation is
	// never suppressed.
	SuppressErrors bool
}

// NewResolver creates a new Resolver over the given candidate type
// registry.
func NewResolver(registry *Registry, config ResolverConfig) *Resolver {
	loader := config.Loader
	if loader == nil {
		loader = docloader.Default()
	}

	logger := zerolog.Nop()
	if config.Logger != nil {
		logger = *config.Logger
	}

	return &Resolver{
		registry: registry,
		loader:   loader,
		logger:   logger,
		tracer:   otel.Tracer(tracerName),
	}
}

// ResolveProperty resolves the first slot of a functional property.
// It returns nil with no error when the property is empty, holds only
// scalars, or when the single failure was suppressed.
func (r *Resolver) ResolveProperty(
	ctx context.Context,
	object *Object,
	property string,
	options ResolveOptions,
) (*Object, error) {
	for index := range object.Property(property) {
		resolved, err := r.resolveSlot(ctx, object, property, index, options)
		if err != nil {
			return nil, err
		}
		if resolved != nil {
			return resolved, nil
		}
	}
	return nil, nil
}

// ResolveProperties resolves a plural property as a lazy, finite,
// restartable sequence in original slot order. Suppressed failures
// skip their entry and the sequence continues; a propagated failure is
// yielded once and ends the sequence.
func (r *Resolver) ResolveProperties(
	ctx context.Context,
	object *Object,
	property string,
	options ResolveOptions,
) iter.Seq2[*Object, error] {
	return func(yield func(*Object, error) bool) {
		for index := range object.Property(property) {
			resolved, err := r.resolveSlot(ctx, object, property, index, options)
			if err != nil {
				yield(nil, err)
				return
			}
			if resolved == nil {
				continue
			}
			if !yield(resolved, nil) {
				return
			}
		}
	}
}

// resolveSlot resolves one slot. Scalar slots and suppressed failures
// yield (nil, nil); inline slots are returned as-is; a resolved
// reference is written back into the slot before being returned, so
// the second resolution of the same slot performs no I/O.
func (r *Resolver) resolveSlot(
	ctx context.Context,
	object *Object,
	property string,
	index int,
	options ResolveOptions,
) (*Object, error) {
	slots := object.Property(property)
	if index < 0 || index >= len(slots) {
		return nil, nil
	}
	slot := slots[index]

	switch slot.Kind() {
	case KindScalar:
		return nil, nil
	case KindInline:
		resolved, _ := slot.InlineObject()
		return resolved, nil
	}

	target, _ := slot.ReferenceURL()
	if target == nil {
		return nil, nil
	}

	ctx, span := r.tracer.Start(ctx, "vocab.resolve", trace.WithAttributes(
		attribute.String("federation.property", property),
		attribute.String("federation.reference", target.String()),
	))
	defer span.End()

	resolved, err := r.dereference(ctx, object, property, index, target.String(), options)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		if !options.SuppressErrors || isCancellation(err) {
			return nil, err
		}
		r.logger.Warn().
			Str("property", property).
			Str("reference", target.String()).
			Err(err).
			Msg("suppressed resolution failure")
		return nil, nil
	}

	if resolved.ID() != nil {
		span.SetAttributes(attribute.String("federation.object.id", resolved.ID().String()))
	}
	span.SetAttributes(attribute.String("federation.object.type", resolved.TypeName()))

	object.replaceSlot(property, index, resolved)
	return resolved, nil
}

func (r *Resolver) dereference(
	ctx context.Context,
	object *Object,
	property string,
	index int,
	target string,
	options ResolveOptions,
) (*Object, error) {
	candidates := r.registry.Candidates(property)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("property %q has no candidate types", property)
	}

	document := sourceFragment(object.Source(), property, index)
	if document == nil {
		loader := options.Loader
		if loader == nil {
			loader = r.loader
		}
		remote, err := loader.Load(ctx, target)
		if err != nil {
			return nil, err
		}
		document = remote.Document
	}

	attempted := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		attempted = append(attempted, candidate.Name())

		resolved, err := candidate.Parse(document)
		if err != nil {
			var mismatch *TypeMismatchError
			if errors.As(err, &mismatch) {
				continue
			}
			return nil, err
		}
		return resolved, nil
	}

	return nil, &TypeMismatchError{URL: target, Attempted: attempted}
}

// sourceFragment returns the inline sub-document at the given property
// position of a retained source document, when one is present and
// carries its own context marker. A matching fragment lets resolution
// skip network access entirely.
func sourceFragment(source map[string]any, property string, index int) map[string]any {
	if source == nil {
		return nil
	}
	raw, exists := source[property]
	if !exists {
		return nil
	}

	values := asList(raw)
	if index < 0 || index >= len(values) {
		return nil
	}

	fragment, ok := values[index].(map[string]any)
	if !ok {
		return nil
	}
	if docloader.ContextURLOf(fragment) == "" {
		return nil
	}
	return fragment
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
