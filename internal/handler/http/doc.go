// Package http serves the aggregate record API over chi.
//
// Devices read and overwrite whole account records under /api/records and
// probe /api/health to decide whether they are online. Bearer tokens, trace
// ids, access logs, gzip and the record hash check are middleware; status
// codes come from the sentinel errors of the service and store layers.
package http
