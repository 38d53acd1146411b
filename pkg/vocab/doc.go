// Package vocab implements the federated object model: typed,
// property-bearing nodes whose properties hold scalars, inline
// objects, or unresolved remote references.
//
// Raw accessors (PropertyID, PropertyIDs) return the URLs behind a
// property without any I/O. The Resolver dereferences references
// lazily through a document loader, trying each of the property's
// declared candidate types in priority order, and memoizes the result
// by replacing the reference slot in place. A retained source document
// lets resolution shortcut through inline fragments without touching
// the network.
//
// Property storage is deliberately unlocked: concurrent resolution of
// the same slot is last-writer-wins. Callers needing exactly-once
// resolution serialize calls themselves.
package vocab
