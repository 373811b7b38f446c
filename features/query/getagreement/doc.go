// Package getagreement implements the Get Agreement query use case.
//
// It returns one agreement with all its work units. Agreements the caller does not participate in
// are reported as not found, so their existence is not disclosed.
package getagreement
