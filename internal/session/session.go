/*
 * MEW
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

/*
Package session is the per-connection coordinator: it owns one graph.Store,
dispatches parsed statements to the query executor or the mutation executor,
tracks the variable bindings mutation targets resolve by name, and tracks
transaction state. It never re-implements target resolution or constraint
checking itself; those stay the mutation package's job.
*/
package session

import (
	"github.com/bdjafer/mew/internal/analyzer"
	"github.com/bdjafer/mew/internal/graph"
	"github.com/bdjafer/mew/internal/mewerr"
	"github.com/bdjafer/mew/internal/mewlog"
	"github.com/bdjafer/mew/internal/mutation"
	"github.com/bdjafer/mew/internal/parser"
	"github.com/bdjafer/mew/internal/pattern"
	"github.com/bdjafer/mew/internal/query"
	"github.com/bdjafer/mew/internal/registry"
)

// ID identifies a session within a SessionManager.
type ID uint64

// Session runs statements against one graph.Store, sharing a single
// Registry with every other session spawned from the same compiled
// ontology. SPAWN/LINK bind their variable into bindings, which persists
// across Execute calls on the same Session until the process that holds
// it discards the Session.
type Session struct {
	id       ID
	reg      *registry.Registry
	store    *graph.Store
	mutation *mutation.Executor
	query    *query.Executor
	analyzer *analyzer.Analyzer

	autoCommit   bool
	inTransction bool

	bindings pattern.Bindings
}

// New creates a session with a fresh, empty graph.Store.
func New(id ID, reg *registry.Registry) *Session {
	return WithStore(id, reg, graph.New(reg))
}

// WithStore creates a session sharing an existing Store, letting
// multiple sessions coordinate over the same graph.
func WithStore(id ID, reg *registry.Registry, store *graph.Store) *Session {
	return &Session{
		id:         id,
		reg:        reg,
		store:      store,
		mutation:   mutation.NewExecutor(reg, store),
		query:      query.NewExecutor(reg, store),
		analyzer:   analyzer.New(reg),
		autoCommit: true,
		bindings:   pattern.NewBindings(),
	}
}

func (s *Session) ID() ID                        { return s.id }
func (s *Session) Registry() *registry.Registry   { return s.reg }
func (s *Session) Store() *graph.Store            { return s.store }
func (s *Session) IsAutoCommit() bool             { return s.autoCommit }
func (s *Session) SetAutoCommit(enabled bool)     { s.autoCommit = enabled }
func (s *Session) InTransaction() bool            { return s.inTransction }

// Execute parses and runs exactly one statement.
func (s *Session) Execute(input string) (*Result, error) {
	stmts, err := parser.New(input).ParseStmts()
	if err != nil {
		return nil, err
	}
	if len(stmts) != 1 {
		return nil, mewerr.New(mewerr.ErrUnexpectedToken, "expected exactly one statement")
	}
	return s.executeStmt(stmts[0])
}

// ExecuteAll parses and runs every statement in input in order. When
// more than one statement ran, the mutation counts across every
// statement that produced a mutation result are summed into one
// aggregated Result; otherwise the sole statement's own Result is
// returned unchanged.
func (s *Session) ExecuteAll(input string) (*Result, error) {
	stmts, err := parser.New(input).ParseStmts()
	if err != nil {
		return nil, err
	}
	if len(stmts) == 0 {
		return &Result{Kind: ResultMutation, Mutation: &MutationSummary{}}, nil
	}
	if len(stmts) == 1 {
		return s.executeStmt(stmts[0])
	}

	var totalNodes, totalEdges int64
	var last *Result
	for _, stmt := range stmts {
		res, err := s.executeStmt(stmt)
		if err != nil {
			return nil, err
		}
		if res.Kind == ResultMutation && res.Mutation != nil {
			totalNodes += res.Mutation.NodesAffected
			totalEdges += res.Mutation.EdgesAffected
		}
		last = res
	}

	if totalNodes > 0 || totalEdges > 0 {
		return &Result{
			Kind:     ResultMutation,
			Mutation: &MutationSummary{NodesAffected: totalNodes, EdgesAffected: totalEdges},
		}, nil
	}
	return last, nil
}

// executeStmt type-checks stmt against the session's accumulated variable
// scope before dispatching it, so an unknown type, attribute, edge type,
// or variable is reported as an analysis error rather than surfacing as
// a confusing failure deep in the planner or mutation executor. The
// analyzer's scope persists across calls on the same Session exactly
// like bindings does, so a variable SPAWN bound in an earlier Execute
// call resolves correctly when a later LINK or SET statement refers to it.
func (s *Session) executeStmt(stmt *parser.Stmt) (*Result, error) {
	if _, err := s.analyzer.AnalyzeStmt(stmt); err != nil {
		return nil, err
	}

	switch stmt.Kind {
	case parser.StmtMatch:
		res, err := s.query.ExecuteMatch(stmt.Match)
		if err != nil {
			return nil, err
		}
		return &Result{Kind: ResultQuery, Query: res}, nil

	case parser.StmtMatchMutate:
		res, err := s.mutation.MatchMutate(stmt.MatchMutate, s.bindings)
		if err != nil {
			mewlog.Warnf("match-mutate rejected: %v", err)
			return nil, err
		}
		mewlog.Debugf("match-mutate applied: %d nodes, %d edges", res.NodesAffected, res.EdgesAffected)
		return &Result{Kind: ResultMutation, Mutation: &MutationSummary{
			NodesAffected: res.NodesAffected, EdgesAffected: res.EdgesAffected, Returning: res.Returning,
		}}, nil

	case parser.StmtMatchWalk:
		res, err := s.query.ExecuteMatchWalk(stmt.MatchWalk)
		if err != nil {
			return nil, err
		}
		return &Result{Kind: ResultQuery, Query: res}, nil

	case parser.StmtSpawn:
		res, err := s.mutation.Spawn(stmt.Spawn, s.bindings)
		if err != nil {
			mewlog.Warnf("spawn rejected: %v", err)
			return nil, err
		}
		mewlog.Debugf("spawned %s", stmt.Spawn.TypeName)
		return mutationResult(res), nil

	case parser.StmtKill:
		res, err := s.mutation.Kill(stmt.Kill, s.bindings)
		if err != nil {
			mewlog.Warnf("kill rejected: %v", err)
			return nil, err
		}
		mewlog.Debugf("killed node")
		return mutationResult(res), nil

	case parser.StmtLink:
		res, err := s.mutation.Link(stmt.Link, s.bindings)
		if err != nil {
			mewlog.Warnf("link rejected: %v", err)
			return nil, err
		}
		mewlog.Debugf("linked %s", stmt.Link.EdgeType)
		return mutationResult(res), nil

	case parser.StmtUnlink:
		res, err := s.mutation.Unlink(stmt.Unlink, s.bindings)
		if err != nil {
			mewlog.Warnf("unlink rejected: %v", err)
			return nil, err
		}
		mewlog.Debugf("unlinked edge")
		return mutationResult(res), nil

	case parser.StmtSet:
		res, err := s.mutation.Set(stmt.Set, s.bindings)
		if err != nil {
			mewlog.Warnf("set rejected: %v", err)
			return nil, err
		}
		mewlog.Debugf("set applied")
		return mutationResult(res), nil

	case parser.StmtWalk:
		res, err := s.query.ExecuteWalk(stmt.Walk)
		if err != nil {
			return nil, err
		}
		return &Result{Kind: ResultQuery, Query: res}, nil

	case parser.StmtInspect:
		res, err := s.inspect(stmt.Inspect)
		if err != nil {
			return nil, err
		}
		return &Result{Kind: ResultQuery, Query: res}, nil

	case parser.StmtTxnBegin:
		if s.inTransction {
			return nil, mewerr.New(mewerr.ErrTransactionActive, "")
		}
		s.inTransction = true
		return &Result{Kind: ResultTransaction, Transaction: TxnBegun}, nil

	case parser.StmtTxnCommit:
		if !s.inTransction {
			return nil, mewerr.New(mewerr.ErrNoActiveTransaction, "")
		}
		s.inTransction = false
		return &Result{Kind: ResultTransaction, Transaction: TxnCommitted}, nil

	case parser.StmtTxnRollback:
		if !s.inTransction {
			return nil, mewerr.New(mewerr.ErrNoActiveTransaction, "")
		}
		s.inTransction = false
		return &Result{Kind: ResultTransaction, Transaction: TxnRolledBack}, nil

	case parser.StmtExplain:
		return s.explainPlan(stmt.Inner)

	case parser.StmtProfile:
		return s.profileStmt(stmt.Inner)

	default:
		return nil, mewerr.New(mewerr.ErrTargetTypeMismatch, "unsupported statement")
	}
}

func mutationResult(r *mutation.Result) *Result {
	return &Result{Kind: ResultMutation, Mutation: &MutationSummary{
		NodesAffected: r.NodesAffected, EdgesAffected: r.EdgesAffected, Returning: r.Returning,
	}}
}
