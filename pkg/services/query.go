package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/queryforge-io/queryforge-engine/pkg/adapters/dialect"
	"github.com/queryforge-io/queryforge-engine/pkg/apperrors"
	"github.com/queryforge-io/queryforge-engine/pkg/logging"
	"github.com/queryforge-io/queryforge-engine/pkg/models"
	sqlguard "github.com/queryforge-io/queryforge-engine/pkg/sql"
)

// QueryService validates and executes read-only SQL against registered
// databases.
type QueryService interface {
	// Execute runs one SELECT statement and returns serialized rows.
	// The statement is validated, capped with a LIMIT, and executed
	// against the connection's pooled engine.
	Execute(ctx context.Context, conn *models.DatabaseConnection, req *models.QueryRequest) (*models.QueryResult, error)
}

type queryService struct {
	factory *dialect.Factory
	manager *dialect.ConnectionManager
	timeout time.Duration
	logger  *zap.Logger
}

// NewQueryService creates a QueryService. timeout bounds each statement's
// execution; zero means no bound.
func NewQueryService(factory *dialect.Factory, manager *dialect.ConnectionManager, timeout time.Duration, logger *zap.Logger) QueryService {
	return &queryService{
		factory: factory,
		manager: manager,
		timeout: timeout,
		logger:  logger,
	}
}

var _ QueryService = (*queryService)(nil)

func (s *queryService) Execute(ctx context.Context, conn *models.DatabaseConnection, req *models.QueryRequest) (*models.QueryResult, error) {
	adapter, err := s.factory.Adapter(conn.URL)
	if err != nil {
		return nil, err
	}

	validated, err := sqlguard.Validate(req.SQL, adapter.ParserDialect())
	if err != nil {
		return nil, apperrors.InvalidQuery(err.Error())
	}

	for _, hit := range sqlguard.CheckParameters(req.Params) {
		s.logger.Warn("query parameter rejected",
			zap.String("connection", conn.Name),
			zap.Int("param_index", hit.Index),
			zap.String("fingerprint", hit.Fingerprint))
		return nil, apperrors.InvalidQuery(
			fmt.Sprintf("parameter %d contains a SQL injection pattern", hit.Index))
	}

	transformed := validated
	if adapter.SupportsLimit() {
		transformed = sqlguard.EnsureLimit(validated, sqlguard.MaxRows)
	}

	engine, err := s.manager.GetEngine(ctx, conn.Name, conn.URL)
	if err != nil {
		return nil, err
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	rows, err := engine.QueryContext(ctx, transformed, req.Params...)
	if err != nil {
		s.logger.Error("query execution failed",
			zap.String("connection", conn.Name),
			zap.String("query", logging.SanitizeQuery(transformed)),
			zap.String("error", logging.SanitizeError(err)))
		return nil, apperrors.QueryExecution(err)
	}
	defer rows.Close()

	columnNames, err := rows.Columns()
	if err != nil {
		return nil, apperrors.QueryExecution(err)
	}
	columnTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, apperrors.QueryExecution(err)
	}

	columns := make([]models.ColumnInfo, len(columnNames))
	typeNames := make([]string, len(columnNames))
	for i, name := range columnNames {
		typeNames[i] = columnTypes[i].DatabaseTypeName()
		columns[i] = models.ColumnInfo{Name: name, Type: typeNames[i]}
	}

	result := &models.QueryResult{Columns: columns, Rows: []map[string]any{}}
	values := make([]any, len(columnNames))
	ptrs := make([]any, len(columnNames))
	for i := range values {
		ptrs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, apperrors.QueryExecution(err)
		}
		row := make(map[string]any, len(columnNames))
		for i, name := range columnNames {
			row[name] = serializeCell(adapter, values[i], typeNames[i])
		}
		result.Rows = append(result.Rows, row)

		if len(result.Rows) == sqlguard.MaxRows {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.QueryExecution(err)
	}

	result.RowCount = len(result.Rows)
	result.Truncated = result.RowCount == sqlguard.MaxRows
	return result, nil
}

// serializeCell converts one value through the adapter; a panic in a
// conversion must only lose that cell, not the whole result.
func serializeCell(adapter dialect.Adapter, value any, typeName string) (out any) {
	defer func() {
		if r := recover(); r != nil {
			if value == nil {
				out = nil
				return
			}
			out = fmt.Sprintf("%v", value)
		}
	}()
	return adapter.Serialize(value, typeName)
}
