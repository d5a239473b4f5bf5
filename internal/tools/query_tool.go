package tools

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	t_utils "github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"

	"github.com/finsage/finsage/internal/models"
)

// maxQueryRows bounds the tabular text handed back to the model.
const maxQueryRows = 200

// readOnlyStatements is the statement-kind allowlist. Anything else is
// refused before it reaches the store.
var readOnlyStatements = map[string]bool{
	"SELECT":   true,
	"WITH":     true,
	"SHOW":     true,
	"DESCRIBE": true,
	"DESC":     true,
	"EXPLAIN":  true,
}

// NewQueryTool exposes read-only SQL against the financial store. The
// guard is structural: the system prompt also tells the model not to
// mutate data, but that instruction is advisory only.
func NewQueryTool(pool *sql.DB) tool.BaseTool {
	return t_utils.NewTool(
		&schema.ToolInfo{
			Name: "execute_sql",
			Desc: "Execute a read-only SQL query against the company_data table in the financial database " +
				"and return the resulting rows as text. Only SELECT-style statements are permitted; " +
				"INSERT, UPDATE, DELETE, DROP and other mutating statements are rejected.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"query": {
					Type:     schema.String,
					Desc:     "The SQL query to execute",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, input models.QueryInput) (*models.QueryOutput, error) {
			if err := CheckReadOnly(input.Query); err != nil {
				return &models.QueryOutput{Result: "Error: " + err.Error()}, nil
			}
			result, err := runQuery(ctx, pool, input.Query)
			if err != nil {
				return &models.QueryOutput{Result: "Error: " + err.Error()}, nil
			}
			return &models.QueryOutput{Result: result}, nil
		},
	)
}

// CheckReadOnly rejects any statement whose kind is not pure data
// retrieval. It strips comments first so the leading keyword cannot be
// hidden, and refuses multi-statement input outright.
func CheckReadOnly(sqlText string) error {
	stripped := stripSQLComments(sqlText)
	trimmed := strings.TrimSpace(stripped)
	if trimmed == "" {
		return fmt.Errorf("empty query")
	}

	if idx := strings.Index(trimmed, ";"); idx >= 0 {
		if rest := strings.TrimSpace(trimmed[idx+1:]); rest != "" {
			return fmt.Errorf("multiple statements are not allowed; submit one SELECT at a time")
		}
		trimmed = strings.TrimSpace(trimmed[:idx])
	}

	fields := strings.Fields(trimmed)
	if len(fields) == 0 {
		return fmt.Errorf("empty query")
	}
	keyword := strings.ToUpper(strings.Trim(fields[0], "("))
	if !readOnlyStatements[keyword] {
		return fmt.Errorf("statement kind %s is not allowed: this tool only executes read-only queries (SELECT, SHOW, DESCRIBE, EXPLAIN)", keyword)
	}
	// MySQL allows WITH ... DELETE and WITH ... UPDATE, so the CTE
	// prelude alone proves nothing about the statement body.
	if keyword == "WITH" {
		body := strings.Fields(cteBody(trimmed))
		if len(body) == 0 {
			return fmt.Errorf("incomplete WITH statement")
		}
		bodyKeyword := strings.ToUpper(strings.Trim(body[0], "("))
		if bodyKeyword != "SELECT" {
			return fmt.Errorf("WITH statement must resolve to a SELECT; %s is not allowed", bodyKeyword)
		}
	}
	return nil
}

// cteBody returns the statement body following a WITH clause's CTE
// list: it walks past each `name [(cols)] AS (subquery)` entry,
// tracking parentheses and quoted strings, and returns what follows
// the last one. An unterminated list yields "".
func cteBody(stmt string) string {
	rest := stmt[len("WITH"):]
	depth := 0
	for i := 0; i < len(rest); i++ {
		switch rest[i] {
		case '\'', '"':
			q := rest[i]
			for i++; i < len(rest) && rest[i] != q; i++ {
			}
		case '(':
			depth++
		case ')':
			depth--
			if depth != 0 {
				continue
			}
			j := i + 1
			for j < len(rest) && isSQLSpace(rest[j]) {
				j++
			}
			if j < len(rest) && rest[j] == ',' {
				// another CTE follows
				i = j
				continue
			}
			if hasKeywordPrefix(rest[j:], "AS") {
				// that was a column list; the subquery is next
				i = j
				continue
			}
			return rest[j:]
		}
	}
	return ""
}

func isSQLSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func hasKeywordPrefix(s, kw string) bool {
	if len(s) < len(kw) || !strings.EqualFold(s[:len(kw)], kw) {
		return false
	}
	return len(s) == len(kw) || isSQLSpace(s[len(kw)]) || s[len(kw)] == '('
}

// stripSQLComments removes --, # and /* */ comments without touching
// quoted strings.
func stripSQLComments(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	var inSingle, inDouble, inLine, inBlock bool
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case inLine:
			if c == '\n' {
				inLine = false
				b.WriteByte(c)
			}
		case inBlock:
			if c == '*' && i+1 < len(s) && s[i+1] == '/' {
				inBlock = false
				i++
			}
		case inSingle:
			b.WriteByte(c)
			if c == '\'' {
				inSingle = false
			}
		case inDouble:
			b.WriteByte(c)
			if c == '"' {
				inDouble = false
			}
		case c == '\'':
			inSingle = true
			b.WriteByte(c)
		case c == '"':
			inDouble = true
			b.WriteByte(c)
		case c == '-' && i+1 < len(s) && s[i+1] == '-':
			inLine = true
			i++
		case c == '#':
			inLine = true
		case c == '/' && i+1 < len(s) && s[i+1] == '*':
			inBlock = true
			i++
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func runQuery(ctx context.Context, pool *sql.DB, query string) (string, error) {
	rows, err := pool.QueryContext(ctx, query)
	if err != nil {
		return "", fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return "", fmt.Errorf("read result columns: %w", err)
	}

	var b strings.Builder
	b.WriteString(strings.Join(cols, " | "))
	b.WriteString("\n")

	count := 0
	values := make([]sql.RawBytes, len(cols))
	scanArgs := make([]any, len(cols))
	for i := range values {
		scanArgs[i] = &values[i]
	}

	for rows.Next() {
		if count >= maxQueryRows {
			b.WriteString(fmt.Sprintf("... truncated at %d rows\n", maxQueryRows))
			break
		}
		if err := rows.Scan(scanArgs...); err != nil {
			return "", fmt.Errorf("scan row: %w", err)
		}
		fields := make([]string, len(values))
		for i, v := range values {
			if v == nil {
				fields[i] = "NULL"
			} else {
				fields[i] = string(v)
			}
		}
		b.WriteString(strings.Join(fields, " | "))
		b.WriteString("\n")
		count++
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("iterate rows: %w", err)
	}

	if count == 0 {
		return "(no rows)", nil
	}
	b.WriteString(fmt.Sprintf("(%d rows)", count))
	return b.String(), nil
}
