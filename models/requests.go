package models

// PutRecordRequest is the body of a whole-document overwrite. Hash is the
// hex HMAC-SHA256 of the JSON-encoded Record, checked by the server before the
// write is accepted.
type PutRecordRequest struct {
	Record AggregateRecord `json:"record"`
	Hash   string          `json:"hash"`
}

// QueryRecordsResponse is returned by the query-by-field endpoint.
type QueryRecordsResponse struct {
	Records []AggregateRecord `json:"records"`
	Length  int               `json:"length"`
}

// HealthResponse is returned by the health endpoint probed by clients to
// decide whether they are online.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}
