// Package bestprofession implements the Best Profession report.
//
// It returns the payee profession that earned the most within a time window. Earnings are the
// summed prices of all work units, paid or not, of in_progress agreements created in the window.
// An empty window is not an error, the result then reports Found as false.
package bestprofession
