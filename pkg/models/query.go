package models

// QueryRequest is the body of a query execution call. Params are bound
// positionally when present.
type QueryRequest struct {
	SQL    string `json:"sql"`
	Params []any  `json:"params,omitempty"`
}

// ColumnInfo describes one result column; Type is the driver-reported
// database type name.
type ColumnInfo struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// QueryResult is the outcome of a successful query execution. Truncated
// is set when the row cap cut the result off.
type QueryResult struct {
	Columns   []ColumnInfo     `json:"columns"`
	Rows      []map[string]any `json:"rows"`
	RowCount  int              `json:"row_count"`
	Truncated bool             `json:"truncated"`
}

// NLQueryRequest is the body of a natural language query call. Execute
// requests that the generated SQL also be run.
type NLQueryRequest struct {
	Question string `json:"question"`
	Execute  bool   `json:"execute,omitempty"`
}

// NLQueryResponse carries the generated SQL and its explanation.
type NLQueryResponse struct {
	SQL         string `json:"sql"`
	Explanation string `json:"explanation"`
}
