package vocab

import (
	"net/url"
	"strings"
)

// Object is the in-memory representation of a typed, property-bearing
// node of the federated object graph. Properties are stored uniformly
// as ordered slot sequences; functional properties hold at most one
// slot.
//
// Property storage is not guarded by a lock. Concurrent resolution
// calls against the same slot are last-writer-wins; callers needing
// exactly-once resolution under concurrency must serialize calls
// themselves.
type Object struct {
	id         *url.URL
	typeName   string
	properties map[string][]PropertyValue
	order      []string
	source     map[string]any
}

// New creates a new Object with the given type tag.
func New(typeName string) *Object {
	return &Object{
		typeName:   strings.TrimSpace(typeName),
		properties: make(map[string][]PropertyValue),
	}
}

// ID returns the object's identity URL, when it has one.
func (o *Object) ID() *url.URL {
	return o.id
}

// SetID sets the object's identity URL.
func (o *Object) SetID(id *url.URL) *Object {
	o.id = id
	return o
}

// TypeName returns the object's type tag.
func (o *Object) TypeName() string {
	return o.typeName
}

// Source returns the original compacted document the object was parsed
// from, when it was retained.
func (o *Object) Source() map[string]any {
	return o.source
}

// RetainSource keeps the original compacted document for shortcut
// resolution of inline fragments.
func (o *Object) RetainSource(document map[string]any) *Object {
	o.source = document
	return o
}

// SetProperty replaces the slots of the named property.
func (o *Object) SetProperty(name string, values ...PropertyValue) *Object {
	if _, exists := o.properties[name]; !exists {
		o.order = append(o.order, name)
	}
	o.properties[name] = values
	return o
}

// AddProperty appends a slot to the named property.
func (o *Object) AddProperty(name string, value PropertyValue) *Object {
	if _, exists := o.properties[name]; !exists {
		o.order = append(o.order, name)
	}
	o.properties[name] = append(o.properties[name], value)
	return o
}

// Property returns the slots of the named property in order.
func (o *Object) Property(name string) []PropertyValue {
	return o.properties[name]
}

// Properties returns the property names in insertion order.
func (o *Object) Properties() []string {
	names := make([]string, len(o.order))
	copy(names, o.order)
	return names
}

// PropertyID returns the URL behind the first slot of the named
// property without triggering resolution: the reference URL for an
// unresolved slot, the identity of the held object for an inline slot.
// It never performs I/O.
func (o *Object) PropertyID(name string) *url.URL {
	for _, value := range o.properties[name] {
		if id := value.ID(); id != nil {
			return id
		}
	}
	return nil
}

// PropertyIDs returns the URLs behind every slot of the named property
// in slot order, skipping scalar slots. It never performs I/O.
func (o *Object) PropertyIDs(name string) []*url.URL {
	ids := make([]*url.URL, 0, len(o.properties[name]))
	for _, value := range o.properties[name] {
		if id := value.ID(); id != nil {
			ids = append(ids, id)
		}
	}
	return ids
}

// ScalarValue returns the first scalar slot of the named property.
func (o *Object) ScalarValue(name string) (any, bool) {
	for _, value := range o.properties[name] {
		if scalar, ok := value.ScalarValue(); ok {
			return scalar, true
		}
	}
	return nil, false
}

// ScalarValues returns every scalar slot of the named property in slot
// order.
func (o *Object) ScalarValues(name string) []any {
	scalars := make([]any, 0, len(o.properties[name]))
	for _, value := range o.properties[name] {
		if scalar, ok := value.ScalarValue(); ok {
			scalars = append(scalars, scalar)
		}
	}
	return scalars
}

// Clone returns a snapshot of the object with its own property slot
// storage. Slot values are shared; appending to the clone leaves the
// original untouched.
func (o *Object) Clone() *Object {
	properties := make(map[string][]PropertyValue, len(o.properties))
	for name, slots := range o.properties {
		copied := make([]PropertyValue, len(slots))
		copy(copied, slots)
		properties[name] = copied
	}
	order := make([]string, len(o.order))
	copy(order, o.order)

	return &Object{
		id:         o.id,
		typeName:   o.typeName,
		properties: properties,
		order:      order,
		source:     o.source,
	}
}

// replaceSlot writes the resolved inline value back into the slot. The
// resolver is the only writer; see the concurrency note on Object.
func (o *Object) replaceSlot(name string, index int, resolved *Object) {
	slots := o.properties[name]
	if index < 0 || index >= len(slots) {
		return
	}
	slots[index] = Inline(resolved)
}
