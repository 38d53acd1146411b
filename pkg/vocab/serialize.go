package vocab

import (
	"fmt"
	"strings"

	"github.com/openfed-online/federation-sdk-go/pkg/shared"
)

// ActivityStreamsContext is the context URL declared on compacted
// documents.
const ActivityStreamsContext = "https://www.w3.org/ns/activitystreams"

// Mode selects a serialization form.
type Mode int

const (
	// ModeCompact produces a compacted document carrying a context
	// marker; this is the outbound wire form.
	ModeCompact Mode = iota
	// ModeExpand produces an expanded document with array-valued
	// properties and no context marker.
	ModeExpand
)

// ParseObject materializes a linked-data document into an Object. The
// registry classifies properties: values of registered properties
// become references (for URL strings) or inline objects (for embedded
// documents), everything else is stored as a scalar. The original
// document is retained for shortcut resolution.
func ParseObject(document map[string]any, registry *Registry) (*Object, error) {
	object := New(typeNameOf(document))

	if rawID, exists := document["id"]; exists {
		idText, ok := rawID.(string)
		if !ok {
			return nil, fmt.Errorf("document id must be a string, got %T", rawID)
		}
		id, err := shared.NormalizeURL(idText)
		if err != nil {
			return nil, fmt.Errorf("document has invalid id: %w", err)
		}
		object.SetID(id)
	}

	for name, raw := range document {
		if name == "@context" || name == "id" || name == "type" {
			continue
		}

		values := asList(raw)
		slots := make([]PropertyValue, 0, len(values))
		for _, value := range values {
			slot, err := parseSlot(value, name, registry)
			if err != nil {
				return nil, err
			}
			slots = append(slots, slot)
		}
		object.SetProperty(name, slots...)
	}

	object.RetainSource(document)
	return object, nil
}

func parseSlot(value any, property string, registry *Registry) (PropertyValue, error) {
	if registry == nil || !registry.Resolvable(property) {
		return Scalar(value), nil
	}

	switch typed := value.(type) {
	case string:
		if target, err := shared.NormalizeURL(typed); err == nil {
			return Reference(target), nil
		}
		return Scalar(value), nil
	case map[string]any:
		inline, err := ParseObject(typed, registry)
		if err != nil {
			return PropertyValue{}, fmt.Errorf("failed to parse inline value of %q: %w", property, err)
		}
		return Inline(inline), nil
	default:
		return Scalar(value), nil
	}
}

// SerializeObject converts an Object back into a linked-data document.
func SerializeObject(object *Object, mode Mode) (map[string]any, error) {
	if object == nil {
		return nil, fmt.Errorf("cannot serialize a nil object")
	}

	document := map[string]any{}
	if mode == ModeCompact {
		document["@context"] = ActivityStreamsContext
	}
	if object.ID() != nil {
		document["id"] = object.ID().String()
	}
	if object.TypeName() != "" {
		if mode == ModeExpand {
			document["type"] = []any{object.TypeName()}
		} else {
			document["type"] = object.TypeName()
		}
	}

	for _, name := range object.Properties() {
		slots := object.Property(name)
		values := make([]any, 0, len(slots))
		for _, slot := range slots {
			value, err := serializeSlot(slot, mode)
			if err != nil {
				return nil, fmt.Errorf("failed to serialize property %q: %w", name, err)
			}
			values = append(values, value)
		}

		if len(values) == 0 {
			continue
		}
		if mode == ModeExpand || len(values) > 1 {
			document[name] = values
		} else {
			document[name] = values[0]
		}
	}

	return document, nil
}

func serializeSlot(slot PropertyValue, mode Mode) (any, error) {
	switch slot.Kind() {
	case KindScalar:
		value, _ := slot.ScalarValue()
		return value, nil
	case KindReference:
		target, _ := slot.ReferenceURL()
		if target == nil {
			return nil, fmt.Errorf("reference slot holds no URL")
		}
		return target.String(), nil
	case KindInline:
		inline, _ := slot.InlineObject()
		return SerializeObject(inline, mode)
	default:
		return nil, fmt.Errorf("unknown slot kind %d", slot.Kind())
	}
}

func typeNameOf(document map[string]any) string {
	raw, exists := document["type"]
	if !exists {
		return ""
	}

	switch typed := raw.(type) {
	case string:
		return strings.TrimSpace(typed)
	case []any:
		for _, entry := range typed {
			if value, ok := entry.(string); ok && strings.TrimSpace(value) != "" {
				return strings.TrimSpace(value)
			}
		}
	}
	return ""
}

func asList(value any) []any {
	if list, ok := value.([]any); ok {
		return list
	}
	return []any{value}
}
