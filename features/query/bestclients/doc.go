// Package bestclients implements the Best Clients report.
//
// It ranks payers by the summed price of their paid work units created within a time window.
package bestclients
