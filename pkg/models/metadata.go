package models

import "time"

// Table type values stored in table metadata.
const (
	TableTypeTable = "table"
	TableTypeView  = "view"
)

// TableMetadata is one extracted table or view belonging to a registered
// connection.
type TableMetadata struct {
	ID         int64     `json:"id"`
	DBName     string    `json:"db_name"`
	SchemaName string    `json:"schema_name"`
	TableName  string    `json:"table_name"`
	TableType  string    `json:"table_type"`
	CreatedAt  time.Time `json:"created_at"`
}

// ColumnMetadata is one extracted column. Position is 1-based within its
// table. DataType is the normalized form, not the vendor spelling.
type ColumnMetadata struct {
	ID           int64   `json:"id"`
	TableID      int64   `json:"table_metadata_id"`
	ColumnName   string  `json:"column_name"`
	DataType     string  `json:"data_type"`
	IsNullable   bool    `json:"is_nullable"`
	IsPrimaryKey bool    `json:"is_primary_key"`
	DefaultValue *string `json:"default_value,omitempty"`
	Position     int     `json:"position"`
}

// ColumnDetail is the response form of one column.
type ColumnDetail struct {
	ColumnName   string  `json:"column_name"`
	DataType     string  `json:"data_type"`
	IsNullable   bool    `json:"is_nullable"`
	IsPrimaryKey bool    `json:"is_primary_key"`
	DefaultValue *string `json:"default_value,omitempty"`
	Position     int     `json:"position"`
}

// TableWithColumns is the response form of one table with its columns.
type TableWithColumns struct {
	SchemaName string         `json:"schema_name"`
	TableName  string         `json:"table_name"`
	TableType  string         `json:"table_type"`
	Columns    []ColumnDetail `json:"columns"`
}

// ConnectionMetadataResponse is the full metadata tree for a connection.
type ConnectionMetadataResponse struct {
	Name          string             `json:"name"`
	ConnectionURL string             `json:"connection_url"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
	TableCount    int                `json:"table_count"`
	ViewCount     int                `json:"view_count"`
	Tables        []TableWithColumns `json:"tables"`
}

// ExtractionResult summarizes one metadata extraction pass.
type ExtractionResult struct {
	TableCount int `json:"table_count"`
	ViewCount  int `json:"view_count"`
}
