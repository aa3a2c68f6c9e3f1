// Package services implements the engine's business logic over the
// dialect adapters and the metadata store.
package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/queryforge-io/queryforge-engine/pkg/adapters/dialect"
	"github.com/queryforge-io/queryforge-engine/pkg/models"
	"github.com/queryforge-io/queryforge-engine/pkg/repositories"
)

// MetadataService extracts schema metadata from registered databases and
// serves it back out of the metadata store.
type MetadataService interface {
	// Extract introspects the target database and replaces the stored
	// metadata for the connection. Old rows are deleted first; a
	// failure mid-extraction leaves partial metadata rather than the
	// old set.
	Extract(ctx context.Context, dbName, connectionURL string) (*models.ExtractionResult, error)

	// Counts returns the stored table and view counts for a connection.
	Counts(ctx context.Context, dbName string) (tableCount, viewCount int, err error)

	// Tables returns the stored metadata tree for a connection.
	Tables(ctx context.Context, dbName string) ([]models.TableWithColumns, error)

	// BuildSchemaContext renders the stored metadata as text for
	// language model prompts.
	BuildSchemaContext(ctx context.Context, dbName string) (string, error)
}

type metadataService struct {
	factory *dialect.Factory
	manager *dialect.ConnectionManager
	tables  repositories.TableMetadataRepository
	columns repositories.ColumnMetadataRepository
	logger  *zap.Logger
}

// NewMetadataService creates a MetadataService.
func NewMetadataService(
	factory *dialect.Factory,
	manager *dialect.ConnectionManager,
	tables repositories.TableMetadataRepository,
	columns repositories.ColumnMetadataRepository,
	logger *zap.Logger,
) MetadataService {
	return &metadataService{
		factory: factory,
		manager: manager,
		tables:  tables,
		columns: columns,
		logger:  logger,
	}
}

var _ MetadataService = (*metadataService)(nil)

func (s *metadataService) Extract(ctx context.Context, dbName, connectionURL string) (*models.ExtractionResult, error) {
	adapter, err := s.factory.Adapter(connectionURL)
	if err != nil {
		return nil, err
	}
	engine, err := s.manager.GetEngine(ctx, dbName, connectionURL)
	if err != nil {
		return nil, err
	}

	if err := s.tables.DeleteByDatabase(ctx, dbName); err != nil {
		return nil, err
	}

	result := &models.ExtractionResult{}
	schemas, err := adapter.ExtractSchemas(ctx, engine, connectionURL)
	if err != nil {
		return nil, fmt.Errorf("extracting schemas: %w", err)
	}

	for _, schema := range schemas {
		tableNames, err := adapter.ListTables(ctx, engine, schema.Name)
		if err != nil {
			return nil, err
		}
		for _, tableName := range tableNames {
			if err := s.extractOne(ctx, adapter, engine, dbName, schema.Name, tableName, models.TableTypeTable); err != nil {
				return nil, err
			}
			result.TableCount++
		}

		viewNames, err := adapter.ListViews(ctx, engine, schema.Name)
		if err != nil {
			return nil, err
		}
		for _, viewName := range viewNames {
			if err := s.extractOne(ctx, adapter, engine, dbName, schema.Name, viewName, models.TableTypeView); err != nil {
				return nil, err
			}
			result.ViewCount++
		}
	}

	s.logger.Info("extracted metadata",
		zap.String("connection", dbName),
		zap.Int("tables", result.TableCount),
		zap.Int("views", result.ViewCount))
	return result, nil
}

// extractOne records one table or view and its columns.
func (s *metadataService) extractOne(ctx context.Context, adapter dialect.Adapter, engine *sql.DB, dbName, schemaName, tableName, tableType string) error {
	record, err := s.tables.Create(ctx, dbName, schemaName, tableName, tableType)
	if err != nil {
		return err
	}

	columns, err := adapter.ListColumns(ctx, engine, schemaName, tableName)
	if err != nil {
		return fmt.Errorf("listing columns of %s.%s: %w", schemaName, tableName, err)
	}

	for i, col := range columns {
		_, err := s.columns.Create(ctx, &models.ColumnMetadata{
			TableID:      record.ID,
			ColumnName:   col.Name,
			DataType:     adapter.NormalizeDataType(col.RawType),
			IsNullable:   col.Nullable,
			IsPrimaryKey: col.IsPrimaryKey,
			DefaultValue: adapter.NormalizeDefaultValue(col.Default),
			Position:     i + 1,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *metadataService) Counts(ctx context.Context, dbName string) (int, int, error) {
	tables, err := s.tables.GetByDatabase(ctx, dbName)
	if err != nil {
		return 0, 0, err
	}
	var tableCount, viewCount int
	for _, t := range tables {
		switch t.TableType {
		case models.TableTypeView:
			viewCount++
		default:
			tableCount++
		}
	}
	return tableCount, viewCount, nil
}

func (s *metadataService) Tables(ctx context.Context, dbName string) ([]models.TableWithColumns, error) {
	records, err := s.tables.GetByDatabase(ctx, dbName)
	if err != nil {
		return nil, err
	}

	tables := make([]models.TableWithColumns, 0, len(records))
	for _, record := range records {
		columns, err := s.columns.GetByTable(ctx, record.ID)
		if err != nil {
			return nil, err
		}
		details := make([]models.ColumnDetail, 0, len(columns))
		for _, col := range columns {
			details = append(details, models.ColumnDetail{
				ColumnName:   col.ColumnName,
				DataType:     col.DataType,
				IsNullable:   col.IsNullable,
				IsPrimaryKey: col.IsPrimaryKey,
				DefaultValue: col.DefaultValue,
				Position:     col.Position,
			})
		}
		tables = append(tables, models.TableWithColumns{
			SchemaName: record.SchemaName,
			TableName:  record.TableName,
			TableType:  record.TableType,
			Columns:    details,
		})
	}
	return tables, nil
}

func (s *metadataService) BuildSchemaContext(ctx context.Context, dbName string) (string, error) {
	tables, err := s.Tables(ctx, dbName)
	if err != nil {
		return "", err
	}
	if len(tables) == 0 {
		return "No tables found in the database.", nil
	}

	parts := make([]string, 0, len(tables))
	for _, table := range tables {
		defs := make([]string, 0, len(table.Columns))
		for _, col := range table.Columns {
			var constraints []string
			if col.IsPrimaryKey {
				constraints = append(constraints, "PRIMARY KEY")
			}
			if !col.IsNullable {
				constraints = append(constraints, "NOT NULL")
			}
			if col.DefaultValue != nil && *col.DefaultValue != "" {
				constraints = append(constraints, "DEFAULT "+*col.DefaultValue)
			}
			def := fmt.Sprintf("  %s %s", col.ColumnName, col.DataType)
			if len(constraints) > 0 {
				def += " " + strings.Join(constraints, ", ")
			}
			defs = append(defs, def)
		}
		parts = append(parts, fmt.Sprintf("Table: %s.%s (%s)\nColumns:\n%s",
			table.SchemaName, table.TableName, table.TableType,
			strings.Join(defs, ",\n")))
	}
	return strings.Join(parts, "\n\n"), nil
}
