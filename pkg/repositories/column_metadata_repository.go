package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/queryforge-io/queryforge-engine/pkg/models"
)

// ColumnMetadataRepository provides data access for extracted column
// metadata.
type ColumnMetadataRepository interface {
	// Create inserts one column record and returns it with its ID set.
	Create(ctx context.Context, column *models.ColumnMetadata) (*models.ColumnMetadata, error)

	// GetByTable retrieves a table's columns ordered by position.
	GetByTable(ctx context.Context, tableID int64) ([]*models.ColumnMetadata, error)
}

type columnMetadataRepository struct {
	db *sql.DB
}

// NewColumnMetadataRepository creates a ColumnMetadataRepository backed
// by the metadata store.
func NewColumnMetadataRepository(db *sql.DB) ColumnMetadataRepository {
	return &columnMetadataRepository{db: db}
}

var _ ColumnMetadataRepository = (*columnMetadataRepository)(nil)

func (r *columnMetadataRepository) Create(ctx context.Context, column *models.ColumnMetadata) (*models.ColumnMetadata, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO column_metadata
			(table_metadata_id, column_name, data_type, is_nullable, is_primary_key, default_value, position)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		column.TableID, column.ColumnName, column.DataType,
		column.IsNullable, column.IsPrimaryKey, column.DefaultValue, column.Position)
	if err != nil {
		return nil, fmt.Errorf("failed to create column metadata for %q: %w", column.ColumnName, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	created := *column
	created.ID = id
	return &created, nil
}

func (r *columnMetadataRepository) GetByTable(ctx context.Context, tableID int64) ([]*models.ColumnMetadata, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, table_metadata_id, column_name, data_type, is_nullable,
		       is_primary_key, default_value, position
		FROM column_metadata
		WHERE table_metadata_id = ?
		ORDER BY position`, tableID)
	if err != nil {
		return nil, fmt.Errorf("failed to list columns for table %d: %w", tableID, err)
	}
	defer rows.Close()

	var columns []*models.ColumnMetadata
	for rows.Next() {
		var c models.ColumnMetadata
		var dflt sql.NullString
		if err := rows.Scan(&c.ID, &c.TableID, &c.ColumnName, &c.DataType,
			&c.IsNullable, &c.IsPrimaryKey, &dflt, &c.Position); err != nil {
			return nil, fmt.Errorf("failed to scan column metadata: %w", err)
		}
		if dflt.Valid {
			v := dflt.String
			c.DefaultValue = &v
		}
		columns = append(columns, &c)
	}
	return columns, rows.Err()
}
