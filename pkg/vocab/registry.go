package vocab

// CandidateType is one of several object types a reference's target
// may structurally match. Parse reports a structural mismatch with a
// *TypeMismatchError so the resolver can try the next candidate in
// declared order; any other error aborts resolution.
type CandidateType interface {
	Name() string
	Parse(document map[string]any) (*Object, error)
	Serialize(object *Object, mode Mode) (map[string]any, error)
}

// Registry maps each resolvable property to its ordered candidate type
// list. Properties absent from the registry are scalar-only: they are
// stored and returned directly and never resolved.
type Registry struct {
	candidates map[string][]CandidateType
}

// NewRegistry creates a new Registry.
func NewRegistry() *Registry {
	return &Registry{candidates: make(map[string][]CandidateType)}
}

// Register declares the candidate types of a property, in priority
// order.
func (r *Registry) Register(property string, candidates ...CandidateType) {
	r.candidates[property] = append(r.candidates[property], candidates...)
}

// Candidates returns the declared candidate types of a property, in
// priority order.
func (r *Registry) Candidates(property string) []CandidateType {
	return r.candidates[property]
}

// Resolvable reports whether the property may hold references or
// inline objects.
func (r *Registry) Resolvable(property string) bool {
	return len(r.candidates[property]) > 0
}

// NamedType is a candidate matching documents whose type tag equals
// its name.
type NamedType struct {
	TypeName string
	Registry *Registry
}

// Name returns the candidate's type name.
func (t NamedType) Name() string {
	return t.TypeName
}

// Parse materializes the document when its type tag matches, and
// reports a structural mismatch otherwise.
func (t NamedType) Parse(document map[string]any) (*Object, error) {
	if typeNameOf(document) != t.TypeName {
		return nil, &TypeMismatchError{Attempted: []string{t.TypeName}}
	}
	return ParseObject(document, t.Registry)
}

// Serialize converts the object back to a linked-data document.
func (t NamedType) Serialize(object *Object, mode Mode) (map[string]any, error) {
	return SerializeObject(object, mode)
}

// AnyType is a permissive candidate matching any typed document. It is
// usually registered last, as the fallback.
type AnyType struct {
	Registry *Registry
}

// Name returns the candidate's type name.
func (t AnyType) Name() string {
	return "Object"
}

// Parse materializes any document carrying a type tag.
func (t AnyType) Parse(document map[string]any) (*Object, error) {
	if typeNameOf(document) == "" {
		return nil, &TypeMismatchError{Attempted: []string{t.Name()}}
	}
	return ParseObject(document, t.Registry)
}

// Serialize converts the object back to a linked-data document.
func (t AnyType) Serialize(object *Object, mode Mode) (map[string]any, error) {
	return SerializeObject(object, mode)
}
