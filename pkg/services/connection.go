package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/queryforge-io/queryforge-engine/pkg/adapters/dialect"
	"github.com/queryforge-io/queryforge-engine/pkg/apperrors"
	"github.com/queryforge-io/queryforge-engine/pkg/logging"
	"github.com/queryforge-io/queryforge-engine/pkg/models"
	"github.com/queryforge-io/queryforge-engine/pkg/repositories"
	"github.com/queryforge-io/queryforge-engine/pkg/retry"
)

// ConnectionService manages the lifecycle of registered database
// connections: probe, persist, extract metadata, and tear down.
type ConnectionService interface {
	// Create registers a new connection after verifying it is reachable,
	// then extracts its metadata.
	Create(ctx context.Context, name, connectionURL string) (*models.ConnectionResponse, error)

	// List returns every registered connection with its counts.
	List(ctx context.Context) (*models.ConnectionListResponse, error)

	// Get returns one connection with its counts.
	Get(ctx context.Context, name string) (*models.ConnectionResponse, error)

	// GetRecord returns the raw stored record, including the unmasked
	// URL for internal use. Fails with ConnectionNotFound when absent.
	GetRecord(ctx context.Context, name string) (*models.DatabaseConnection, error)

	// GetMetadata returns the full metadata tree for a connection.
	GetMetadata(ctx context.Context, name string) (*models.ConnectionMetadataResponse, error)

	// Refresh re-extracts metadata for a connection.
	Refresh(ctx context.Context, name string) (*models.ConnectionResponse, error)

	// Delete evicts the connection's engine and removes its record and
	// metadata.
	Delete(ctx context.Context, name string) error
}

type connectionService struct {
	repo           repositories.ConnectionRepository
	factory        *dialect.Factory
	manager        *dialect.ConnectionManager
	metadata       MetadataService
	connectTimeout time.Duration
	logger         *zap.Logger
}

// NewConnectionService creates a ConnectionService. connectTimeout bounds
// the connectivity probe on Create; zero means no bound.
func NewConnectionService(
	repo repositories.ConnectionRepository,
	factory *dialect.Factory,
	manager *dialect.ConnectionManager,
	metadata MetadataService,
	connectTimeout time.Duration,
	logger *zap.Logger,
) ConnectionService {
	return &connectionService{
		repo:           repo,
		factory:        factory,
		manager:        manager,
		metadata:       metadata,
		connectTimeout: connectTimeout,
		logger:         logger,
	}
}

var _ ConnectionService = (*connectionService)(nil)

func (s *connectionService) Create(ctx context.Context, name, connectionURL string) (*models.ConnectionResponse, error) {
	existing, err := s.repo.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.ConnectionAlreadyExists(name)
	}

	// Transient probe failures get a couple of retries; bad URLs and
	// bad credentials fail immediately.
	probeCtx := ctx
	if s.connectTimeout > 0 {
		var cancel context.CancelFunc
		probeCtx, cancel = context.WithTimeout(ctx, s.connectTimeout)
		defer cancel()
	}
	if err := retry.Do(probeCtx, retry.DefaultConfig(), func() error {
		return s.factory.TestConnection(probeCtx, name, connectionURL)
	}); err != nil {
		return nil, err
	}

	if _, err := s.repo.Create(ctx, name, connectionURL); err != nil {
		return nil, err
	}

	result, err := s.metadata.Extract(ctx, name, connectionURL)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Touch(ctx, name); err != nil {
		return nil, err
	}

	conn, err := s.repo.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	s.logger.Info("registered connection",
		zap.String("connection", name),
		zap.String("url", logging.MaskConnectionURL(connectionURL)),
		zap.Int("tables", result.TableCount),
		zap.Int("views", result.ViewCount))
	return s.toResponse(conn, result.TableCount, result.ViewCount), nil
}

func (s *connectionService) List(ctx context.Context) (*models.ConnectionListResponse, error) {
	conns, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	resp := &models.ConnectionListResponse{Data: []models.ConnectionResponse{}}
	for _, conn := range conns {
		tableCount, viewCount, err := s.metadata.Counts(ctx, conn.Name)
		if err != nil {
			return nil, err
		}
		resp.Data = append(resp.Data, *s.toResponse(conn, tableCount, viewCount))
	}
	return resp, nil
}

func (s *connectionService) Get(ctx context.Context, name string) (*models.ConnectionResponse, error) {
	conn, err := s.GetRecord(ctx, name)
	if err != nil {
		return nil, err
	}
	tableCount, viewCount, err := s.metadata.Counts(ctx, name)
	if err != nil {
		return nil, err
	}
	return s.toResponse(conn, tableCount, viewCount), nil
}

func (s *connectionService) GetRecord(ctx context.Context, name string) (*models.DatabaseConnection, error) {
	conn, err := s.repo.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	if conn == nil {
		return nil, apperrors.ConnectionNotFound(name)
	}
	return conn, nil
}

func (s *connectionService) GetMetadata(ctx context.Context, name string) (*models.ConnectionMetadataResponse, error) {
	conn, err := s.GetRecord(ctx, name)
	if err != nil {
		return nil, err
	}
	tables, err := s.metadata.Tables(ctx, name)
	if err != nil {
		return nil, err
	}

	var tableCount, viewCount int
	for _, t := range tables {
		if t.TableType == models.TableTypeView {
			viewCount++
		} else {
			tableCount++
		}
	}
	return &models.ConnectionMetadataResponse{
		Name:          conn.Name,
		ConnectionURL: logging.MaskConnectionURL(conn.URL),
		CreatedAt:     conn.CreatedAt,
		UpdatedAt:     conn.UpdatedAt,
		TableCount:    tableCount,
		ViewCount:     viewCount,
		Tables:        tables,
	}, nil
}

func (s *connectionService) Refresh(ctx context.Context, name string) (*models.ConnectionResponse, error) {
	conn, err := s.GetRecord(ctx, name)
	if err != nil {
		return nil, err
	}

	result, err := s.metadata.Extract(ctx, name, conn.URL)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Touch(ctx, name); err != nil {
		return nil, err
	}

	conn, err = s.GetRecord(ctx, name)
	if err != nil {
		return nil, err
	}
	return s.toResponse(conn, result.TableCount, result.ViewCount), nil
}

func (s *connectionService) Delete(ctx context.Context, name string) error {
	conn, err := s.GetRecord(ctx, name)
	if err != nil {
		return err
	}

	if err := s.manager.RemoveEngine(name, conn.URL); err != nil {
		// eviction failure should not keep the record alive
		s.logger.Warn("failed to remove engine",
			zap.String("connection", name),
			zap.String("error", logging.SanitizeError(err)))
	}

	deleted, err := s.repo.Delete(ctx, name)
	if err != nil {
		return err
	}
	if !deleted {
		return apperrors.ConnectionNotFound(name)
	}
	s.logger.Info("deleted connection", zap.String("connection", name))
	return nil
}

func (s *connectionService) toResponse(conn *models.DatabaseConnection, tableCount, viewCount int) *models.ConnectionResponse {
	dbType, err := s.factory.DatabaseType(conn.URL)
	if err != nil {
		dbType = ""
	}
	return &models.ConnectionResponse{
		Name:          conn.Name,
		ConnectionURL: logging.MaskConnectionURL(conn.URL),
		DBType:        dbType,
		CreatedAt:     conn.CreatedAt,
		UpdatedAt:     conn.UpdatedAt,
		TableCount:    tableCount,
		ViewCount:     viewCount,
	}
}
