// Package sql validates and rewrites client-submitted SQL before execution.
//
// Validation is structural where possible: statements are parsed and
// classified by AST node type, which correctly handles CTEs, string literals
// containing semicolons, and quoted identifiers. Dialect constructs the
// parser cannot handle (PostgreSQL casts, dollar parameters) fall back to a
// quote-aware textual scan as a last resort.
package sql

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pingcap/tidb/pkg/parser"
	"github.com/pingcap/tidb/pkg/parser/ast"
	_ "github.com/pingcap/tidb/pkg/parser/test_driver"
)

var (
	// ErrEmptyStatement indicates the statement was empty after trimming.
	ErrEmptyStatement = errors.New("empty SQL statement")

	// ErrMultipleStatements indicates the input contains more than one SQL
	// statement. Only single statements are permitted.
	ErrMultipleStatements = errors.New("multiple SQL statements are not allowed")
)

// NonSelectError indicates the statement is not a SELECT.
type NonSelectError struct {
	Statement string // leading keyword of the rejected statement
}

func (e *NonSelectError) Error() string {
	return fmt.Sprintf("only SELECT statements are allowed, got: %s", e.Statement)
}

// Validate checks that sqlText is a single read-only SELECT statement and
// returns it normalized (trimmed, trailing semicolon stripped).
//
// The dialect names the SQL flavor ("postgres", "mysql", "sqlite") and is
// used when structural parsing is unavailable and the textual fallback must
// decide which quoting rules apply.
func Validate(sqlText, dialect string) (string, error) {
	normalized := stripTrailingSemicolon(strings.TrimSpace(sqlText))
	if normalized == "" {
		return "", ErrEmptyStatement
	}

	stmts, err := parseStatements(normalized)
	if err != nil {
		// Structural parsing unavailable for this statement; fall back to
		// the quote-aware textual scan.
		return validateTextual(normalized)
	}

	if len(stmts) > 1 {
		return "", ErrMultipleStatements
	}
	if !isSelect(stmts[0]) {
		return "", &NonSelectError{Statement: firstKeyword(normalized)}
	}
	return normalized, nil
}

// parseStatements parses sqlText into its component statements.
func parseStatements(sqlText string) ([]ast.StmtNode, error) {
	p := parser.New()
	stmts, warns, err := p.Parse(sqlText, "", "")
	if err != nil {
		return nil, err
	}
	_ = warns
	if len(stmts) == 0 {
		return nil, ErrEmptyStatement
	}
	return stmts, nil
}

// isSelect reports whether stmt is a plain SELECT or a set operation
// (UNION/INTERSECT/EXCEPT) over SELECTs. Both are read-only.
func isSelect(stmt ast.StmtNode) bool {
	switch stmt.(type) {
	case *ast.SelectStmt, *ast.SetOprStmt:
		return true
	default:
		return false
	}
}

// validateTextual is the last-resort validation path for statements the
// parser cannot handle. It requires a leading SELECT keyword and rejects any
// statement separator outside string literals or quoted identifiers.
func validateTextual(normalized string) (string, error) {
	if !strings.EqualFold(firstKeyword(normalized), "SELECT") {
		return "", &NonSelectError{Statement: firstKeyword(normalized)}
	}
	if hasSemicolonOutsideStrings(normalized) {
		return "", ErrMultipleStatements
	}
	return normalized, nil
}

// firstKeyword returns the leading word of a statement, uppercased.
func firstKeyword(sqlText string) string {
	fields := strings.Fields(sqlText)
	if len(fields) == 0 {
		return ""
	}
	word := fields[0]
	// Strip anything glued to the keyword, e.g. "SELECT(1)".
	if idx := strings.IndexAny(word, "(;"); idx > 0 {
		word = word[:idx]
	}
	return strings.ToUpper(word)
}

// hasSemicolonOutsideStrings returns true if the SQL contains any semicolon
// outside single-quoted strings, double-quoted identifiers, or backtick
// identifiers.
func hasSemicolonOutsideStrings(sqlText string) bool {
	const (
		stateNormal = iota
		stateSingleQuote
		stateDoubleQuote
		stateBacktick
	)

	state := stateNormal
	prevChar := rune(0)

	for _, char := range sqlText {
		switch state {
		case stateNormal:
			switch char {
			case ';':
				return true
			case '\'':
				state = stateSingleQuote
			case '"':
				state = stateDoubleQuote
			case '`':
				state = stateBacktick
			}
		case stateSingleQuote:
			// Both backslash escape (\') and SQL doubled quote ('') keep us
			// inside the literal; the doubled form exits and immediately
			// re-enters on the next quote.
			if char == '\'' && prevChar != '\\' {
				state = stateNormal
			}
		case stateDoubleQuote:
			if char == '"' && prevChar != '\\' {
				state = stateNormal
			}
		case stateBacktick:
			if char == '`' {
				state = stateNormal
			}
		}
		prevChar = char
	}

	return false
}

// stripTrailingSemicolon removes a single trailing statement separator and
// surrounding whitespace.
func stripTrailingSemicolon(sqlText string) string {
	sqlText = strings.TrimRight(sqlText, " \t\n\r")
	if strings.HasSuffix(sqlText, ";") {
		sqlText = strings.TrimRight(strings.TrimSuffix(sqlText, ";"), " \t\n\r")
	}
	return sqlText
}
