/*
 * MEW
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package session

import (
	"strings"
	"time"

	"github.com/bdjafer/mew/internal/parser"
	"github.com/bdjafer/mew/internal/query"
	"github.com/bdjafer/mew/internal/value"
)

// explainPlan describes a MATCH or WALK statement's physical plan tree,
// one operator per line indented by depth. Non-MATCH/WALK statements
// have no physical plan, so they describe only their statement kind.
func (s *Session) explainPlan(stmt *parser.Stmt) (*Result, error) {
	var lines []string
	switch stmt.Kind {
	case parser.StmtMatch:
		plan, err := s.query.Plan(stmt.Match)
		if err != nil {
			return nil, err
		}
		lines = describeOp(plan.Root, 0)
	case parser.StmtWalk:
		plan, err := s.query.PlanWalk(stmt.Walk)
		if err != nil {
			return nil, err
		}
		lines = describeOp(plan.Root, 0)
	default:
		lines = []string{"no physical plan for this statement"}
	}

	rows := make([]query.QueryRow, len(lines))
	for i, l := range lines {
		rows[i] = query.QueryRow{Values: []value.Value{value.String(l)}}
	}
	return &Result{
		Kind:  ResultQuery,
		Query: &query.QueryResult{Columns: []string{"plan"}, Rows: rows},
	}, nil
}

// profileStmt runs the inner statement normally, timing it, and
// reports the elapsed wall time alongside its ordinary result.
func (s *Session) profileStmt(stmt *parser.Stmt) (*Result, error) {
	start := time.Now()
	res, err := s.executeStmt(stmt)
	if err != nil {
		return nil, err
	}
	res.Elapsed = time.Since(start)
	return res, nil
}

func describeOp(op *query.PlanOp, depth int) []string {
	if op == nil {
		return nil
	}
	indent := strings.Repeat("  ", depth)
	lines := []string{indent + op.Kind.String()}
	for _, child := range []*query.PlanOp{op.Input, op.Left, op.Right} {
		lines = append(lines, describeOp(child, depth+1)...)
	}
	return lines
}
