package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/queryforge-io/queryforge-engine/pkg/adapters/dialect"
	"github.com/queryforge-io/queryforge-engine/pkg/apperrors"
	"github.com/queryforge-io/queryforge-engine/pkg/jsonutil"
	"github.com/queryforge-io/queryforge-engine/pkg/llm"
	"github.com/queryforge-io/queryforge-engine/pkg/models"
	"github.com/queryforge-io/queryforge-engine/pkg/retry"
)

const nlSystemPromptFormat = `You are an expert SQL assistant. Given a database schema and a natural language question, generate a valid SQL SELECT query.

Rules:
1. Only generate SELECT queries. Never generate INSERT, UPDATE, DELETE, or DDL statements.
2. Use proper table and column names from the provided schema.
3. Include appropriate JOINs when the question requires data from multiple tables.
4. Add WHERE clauses to filter data based on the question.
5. Use LIMIT when appropriate to avoid returning too many rows.
6. Return the SQL query and a brief explanation of what the query does.

Database type: %s
%s

Respond in the following JSON format:
{
  "sql": "your SQL query here",
  "explanation": "brief explanation of the query"
}`

const nlUserPromptFormat = `Database Schema:
%s

Question: %s

Generate a SQL query to answer this question.`

// NLQueryService turns natural language questions into SQL using the
// stored schema metadata and a language model.
type NLQueryService interface {
	// Generate produces a SELECT statement answering the question
	// against the connection's schema.
	Generate(ctx context.Context, conn *models.DatabaseConnection, question string) (*models.NLQueryResponse, error)
}

type nlQueryService struct {
	client   llm.Client
	factory  *dialect.Factory
	metadata MetadataService
	logger   *zap.Logger
}

// NewNLQueryService creates an NLQueryService. client may be nil when no
// provider is configured; Generate then fails with a clear error.
func NewNLQueryService(client llm.Client, factory *dialect.Factory, metadata MetadataService, logger *zap.Logger) NLQueryService {
	return &nlQueryService{
		client:   client,
		factory:  factory,
		metadata: metadata,
		logger:   logger,
	}
}

var _ NLQueryService = (*nlQueryService)(nil)

// generatedQuery keeps raw fields because models occasionally return
// non-string values where strings were asked for.
type generatedQuery struct {
	SQL         json.RawMessage `json:"sql"`
	Explanation json.RawMessage `json:"explanation"`
}

func (s *nlQueryService) Generate(ctx context.Context, conn *models.DatabaseConnection, question string) (*models.NLQueryResponse, error) {
	if s.client == nil {
		return nil, apperrors.NlQueryGeneration("natural language querying is not configured", nil)
	}
	if strings.TrimSpace(question) == "" {
		return nil, apperrors.NlQueryGeneration("question must not be empty", nil)
	}

	adapter, err := s.factory.Adapter(conn.URL)
	if err != nil {
		return nil, err
	}

	schemaContext, err := s.metadata.BuildSchemaContext(ctx, conn.Name)
	if err != nil {
		return nil, err
	}

	systemPrompt := fmt.Sprintf(nlSystemPromptFormat, strings.ToUpper(adapter.Type()), adapter.NLRules())
	userPrompt := fmt.Sprintf(nlUserPromptFormat, schemaContext, question)

	response, err := retry.DoWithResult(ctx, retry.LLMConfig(), func() (string, error) {
		return s.client.Generate(ctx, systemPrompt, userPrompt)
	})
	if err != nil {
		return nil, apperrors.NlQueryGeneration("failed to generate SQL", err)
	}

	generated, err := llm.ParseJSONResponse[generatedQuery](response)
	if err != nil {
		s.logger.Warn("malformed model response",
			zap.String("connection", conn.Name),
			zap.Error(err))
		return nil, apperrors.NlQueryGeneration("model returned a malformed response", err)
	}

	generatedSQL := jsonutil.FlexibleString(generated.SQL)
	if strings.TrimSpace(generatedSQL) == "" {
		return nil, apperrors.NlQueryGeneration("model returned no SQL", nil)
	}

	s.logger.Info("generated SQL from question",
		zap.String("connection", conn.Name),
		zap.String("model", s.client.Model()))
	return &models.NLQueryResponse{
		SQL:         generatedSQL,
		Explanation: jsonutil.FlexibleString(generated.Explanation),
	}, nil
}
