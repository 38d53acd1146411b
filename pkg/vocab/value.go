package vocab

import "net/url"

// Kind tags the variant held by a property slot.
type Kind int

const (
	// KindScalar is a primitive value.
	KindScalar Kind = iota
	// KindInline is a fully materialized federated object.
	KindInline
	// KindReference is an unresolved remote reference.
	KindReference
)

// PropertyValue is one slot of a property: a scalar, an inline object,
// or an unresolved reference.
type PropertyValue struct {
	kind      Kind
	scalar    any
	inline    *Object
	reference *url.URL
}

// Scalar creates a scalar property value.
func Scalar(value any) PropertyValue {
	return PropertyValue{kind: KindScalar, scalar: value}
}

// Inline creates a property value holding a materialized object.
func Inline(object *Object) PropertyValue {
	return PropertyValue{kind: KindInline, inline: object}
}

// Reference creates a property value holding an unresolved reference.
func Reference(target *url.URL) PropertyValue {
	return PropertyValue{kind: KindReference, reference: target}
}

// Kind returns the variant tag of the slot.
func (v PropertyValue) Kind() Kind {
	return v.kind
}

// ScalarValue returns the held scalar, when the slot is a scalar.
func (v PropertyValue) ScalarValue() (any, bool) {
	if v.kind != KindScalar {
		return nil, false
	}
	return v.scalar, true
}

// InlineObject returns the held object, when the slot is inline.
func (v PropertyValue) InlineObject() (*Object, bool) {
	if v.kind != KindInline {
		return nil, false
	}
	return v.inline, true
}

// ReferenceURL returns the held URL, when the slot is a reference.
func (v PropertyValue) ReferenceURL() (*url.URL, bool) {
	if v.kind != KindReference {
		return nil, false
	}
	return v.reference, true
}

// ID returns the URL identifying the slot's value without performing
// any I/O: the reference URL for a reference slot, the held object's
// identity for an inline slot, and nil for a scalar slot.
func (v PropertyValue) ID() *url.URL {
	switch v.kind {
	case KindReference:
		return v.reference
	case KindInline:
		if v.inline == nil {
			return nil
		}
		return v.inline.ID()
	default:
		return nil
	}
}
