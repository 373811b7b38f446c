// Package listagreements implements the List Agreements query use case.
//
// It returns every agreement the caller participates in, as payer or payee, except terminated ones.
package listagreements
