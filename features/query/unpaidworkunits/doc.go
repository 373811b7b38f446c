// Package unpaidworkunits implements the Unpaid Work Units query use case.
//
// It returns the unpaid work units of all in_progress agreements the caller participates in.
package unpaidworkunits
