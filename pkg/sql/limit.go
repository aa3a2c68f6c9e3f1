package sql

import (
	"fmt"
	"regexp"

	"github.com/pingcap/tidb/pkg/parser/ast"
)

// MaxRows is the row cap appended to unbounded SELECT statements.
const MaxRows = 1000

// Matches an existing LIMIT clause with a literal count or a bind parameter
// (?, $1, :name). Used only when structural parsing is unavailable.
var limitPattern = regexp.MustCompile(`(?i)\bLIMIT\s+(\d+|\?|\$\d+|:\w+)`)

// EnsureLimit appends a LIMIT clause of maxRows to sqlText unless one is
// already present. Presence is checked structurally on the parsed statement;
// the textual pattern is the fallback for statements the parser cannot
// handle. The input must already be validated and normalized.
func EnsureLimit(sqlText string, maxRows int) string {
	if maxRows <= 0 {
		maxRows = MaxRows
	}

	if stmts, err := parseStatements(sqlText); err == nil && len(stmts) == 1 {
		if hasLimitClause(stmts[0]) {
			return sqlText
		}
		return fmt.Sprintf("%s LIMIT %d", sqlText, maxRows)
	}

	if limitPattern.MatchString(sqlText) {
		return sqlText
	}
	return fmt.Sprintf("%s LIMIT %d", sqlText, maxRows)
}

// hasLimitClause reports whether the statement carries a LIMIT clause at its
// top level. Limits inside subqueries do not bound the result and are
// ignored.
func hasLimitClause(stmt ast.StmtNode) bool {
	switch s := stmt.(type) {
	case *ast.SelectStmt:
		return s.Limit != nil
	case *ast.SetOprStmt:
		return s.Limit != nil
	default:
		return false
	}
}
