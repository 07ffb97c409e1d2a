// Package trace computes content-addressed identities for chain states.
//
// A state hash is SHA-256 over the RFC 8785 style canonical JSON of the
// state, with domain separation. Floats are not allowed in canonical JSON, so
// the mutation rate is encoded by its IEEE-754 bit pattern: two states hash
// equal iff they are bit-identical.
//
// Hashes are what the replay command compares, so the encoding here must not
// change without bumping the domain version.
package trace
