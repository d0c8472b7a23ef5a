/*
 * MEW
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

/*
Package parser turns a MEW token stream into statement and ontology
ASTs. Expressions and patterns are fully structured trees the analyzer
and pattern compiler walk; constraint and rule bodies are kept as
opaque source-text productions (see registry.ConstraintDef/RuleDef) so
the parser only needs to record their span, not their grammar.
*/
package parser

import "github.com/bdjafer/mew/internal/mewerr"

// Span is a source-text range; aliased from mewerr so every AST node
// and every error the parser raises share one position representation.
type Span = mewerr.Span

// ---- Expressions ----

// ExprKind discriminates the Expr tagged union.
type ExprKind int

const (
	ExprVar ExprKind = iota
	ExprPropertyAccess
	ExprLiteral
	ExprListLiteral
	ExprUnary
	ExprBinary
	ExprFuncCall
	ExprExists
	ExprParam
	ExprIDRef
)

// LiteralKind discriminates the scalar literal carried by an ExprLiteral node.
type LiteralKind int

const (
	LitNull LiteralKind = iota
	LitBool
	LitInt
	LitFloat
	LitString
	LitTimestamp
	LitDuration
)

// Expr is one node of an expression tree. Only the fields relevant to
// Kind are populated.
type Expr struct {
	span Span

	K ExprKind

	// ExprVar / ExprPropertyAccess base
	Name string
	Base *Expr // ExprPropertyAccess: Base.Name

	// ExprLiteral
	LitKind LiteralKind
	Bool    bool
	Int     int64
	Float   float64
	Str     string

	// ExprListLiteral
	Items []*Expr

	// ExprUnary
	Op  string
	Arg *Expr

	// ExprBinary
	Left, Right *Expr

	// ExprFuncCall
	Args []*Expr

	// ExprExists (EXISTS / NOT EXISTS subpattern)
	Negated bool
	Pattern []PatternElement
	Where   *Expr
}

func (e *Expr) Span() Span { return e.span }

// ---- Patterns ----

// PatternElement is either a NodePattern or an EdgePattern.
type PatternElement interface {
	patternElement()
	Span() Span
}

// NodePattern binds Var to any node whose type is TypeName (or a
// subtype of it). TypeName == "" means the variable is a bare
// reference to an already-bound variable, not a fresh scan.
type NodePattern struct {
	Var      string
	TypeName string
	span     Span
}

func (n *NodePattern) patternElement() {}
func (n *NodePattern) Span() Span      { return n.span }

// EdgePattern matches edges of EdgeType whose target tuple binds to
// Targets; "_" is a wildcard target. Var names the edge itself, and is
// empty when the edge is unnamed.
type EdgePattern struct {
	Var      string
	EdgeType string
	Targets  []string
	span     Span
}

func (e *EdgePattern) patternElement() {}
func (e *EdgePattern) Span() Span      { return e.span }

// ---- Projections / ordering ----

type Projection struct {
	Expr  *Expr
	Alias string
	Span  Span
}

type OrderDirection int

const (
	OrderAsc OrderDirection = iota
	OrderDesc
)

type OrderTerm struct {
	Expr      *Expr
	Direction OrderDirection
	Span      Span
}

type OptionalMatch struct {
	Pattern []PatternElement
	Where   *Expr
	Span    Span
}

type ReturnClause struct {
	Distinct    bool
	Projections []Projection
	Span        Span
}

// ---- Attribute assignment / returning ----

type AttrAssignment struct {
	Name  string
	Value *Expr
	Span  Span
}

type ReturningKind int

const (
	ReturningNone ReturningKind = iota
	ReturningID
	ReturningAll
	ReturningFields
)

type ReturningClause struct {
	Kind   ReturningKind
	Fields []string
	Span   Span
}

// ---- Targets (KILL/UNLINK/SET) ----

type TargetKind int

const (
	TargetVar TargetKind = iota
	TargetID
	TargetPattern
	TargetEdgePattern
)

type Target struct {
	Kind       TargetKind
	Var        string
	ID         string
	Pattern    *MatchStmt
	EdgeType   string
	EdgeTargets []string
	Span       Span
}

// TargetRef is a LINK target position: a bound variable, a literal
// #id, or an inline {pattern} yielding exactly one binding.
type TargetRef struct {
	Kind    TargetKind // TargetVar, TargetID, or TargetPattern
	Var     string
	ID      string
	Pattern *MatchStmt
	Span    Span
}

// ---- Statements ----

type StmtKind int

const (
	StmtMatch StmtKind = iota
	StmtMatchMutate
	StmtMatchWalk
	StmtSpawn
	StmtKill
	StmtLink
	StmtUnlink
	StmtSet
	StmtWalk
	StmtInspect
	StmtTxnBegin
	StmtTxnCommit
	StmtTxnRollback
	StmtExplain
	StmtProfile
)

// Stmt is the parser's single output node per top-level statement;
// exactly one of the typed sub-structs below is populated, selected by Kind.
type Stmt struct {
	Kind Kind
	Span Span

	Match       *MatchStmt
	MatchMutate *MatchMutateStmt
	MatchWalk   *MatchWalkStmt
	Spawn       *SpawnStmt
	Kill        *KillStmt
	Link        *LinkStmt
	Unlink      *UnlinkStmt
	Set         *SetStmt
	Walk        *WalkStmt
	Inspect     *InspectStmt
	Isolation   *IsolationLevel // StmtTxnBegin only; nil when BEGIN names no isolation level (the session does not read this field)
	Inner       *Stmt           // StmtExplain / StmtProfile
}

// Kind is an alias kept distinct from StmtKind so Stmt.Kind reads
// naturally at call sites (stmt.Kind == parser.StmtMatch).
type Kind = StmtKind

type IsolationLevel int

const (
	IsolationReadCommitted IsolationLevel = iota
	IsolationSerializable
)

type MatchStmt struct {
	Pattern         []PatternElement
	Where           *Expr
	OptionalMatches []OptionalMatch
	Return          ReturnClause
	OrderBy         []OrderTerm
	Limit           *int64
	Offset          *int64
	Span            Span
}

type MutationActionKind int

const (
	ActionLink MutationActionKind = iota
	ActionSet
	ActionKill
	ActionUnlink
)

type MutationAction struct {
	Kind   MutationActionKind
	Link   *LinkStmt
	Set    *SetStmt
	Kill   *KillStmt
	Unlink *UnlinkStmt
}

type MatchMutateStmt struct {
	Pattern   []PatternElement
	Where     *Expr
	Mutations []MutationAction
	Span      Span
}

type MatchWalkStmt struct {
	Pattern []PatternElement
	Where   *Expr
	Walk    *WalkStmt
	Span    Span
}

type SpawnStmt struct {
	Var       string
	TypeName  string
	Attrs     []AttrAssignment
	Returning *ReturningClause
	Span      Span
}

type KillStmt struct {
	Target    Target
	Cascade   *bool // nil = use edge type's declared on_kill action
	Returning *ReturningClause
	Span      Span
}

type LinkStmt struct {
	Var       string // "" if unnamed
	EdgeType  string
	Targets   []TargetRef
	Attrs     []AttrAssignment
	Returning *ReturningClause
	Span      Span
}

type UnlinkStmt struct {
	Target    Target
	Returning *ReturningClause
	Span      Span
}

type SetStmt struct {
	Target      Target
	Assignments []AttrAssignment
	Returning   *ReturningClause
	Span        Span
}

type WalkDirection int

const (
	WalkOutbound WalkDirection = iota
	WalkInbound
	WalkAny
)

type FollowClause struct {
	EdgeTypes []string // ["*"] means any edge type
	Direction WalkDirection
	MinDepth  *int64
	MaxDepth  *int64
	Span      Span
}

type WalkReturnKind int

const (
	WalkReturnPath WalkReturnKind = iota
	WalkReturnNodes
	WalkReturnEdges
	WalkReturnTerminal
	WalkReturnProjections
)

type WalkReturn struct {
	Kind        WalkReturnKind
	Alias       string
	Projections []Projection
}

type WalkStmt struct {
	From       *Expr
	Follow     []FollowClause
	Until      *Expr
	ReturnType WalkReturn
	Span       Span
}

type InspectStmt struct {
	ID          string
	Projections []Projection // nil means "no RETURN clause: full dump"
	Span        Span
}

// ---- Ontology ----

type OntologyDefKind int

const (
	DefTypeAlias OntologyDefKind = iota
	DefNode
	DefEdge
	DefConstraint
	DefRule
)

type OntologyDef struct {
	Kind       OntologyDefKind
	TypeAlias  *TypeAliasDef
	Node       *NodeTypeDef
	Edge       *EdgeTypeDef
	Constraint *ConstraintDef
	Rule       *RuleDef
	Span       Span
}

type AttrModifierKind int

const (
	ModRequired AttrModifierKind = iota
	ModUnique
	ModDefault
	ModInValues
	ModMatch
	ModRangeMin
	ModRangeMax
	ModRange
)

type AttrModifier struct {
	Kind    AttrModifierKind
	Default *Expr
	Values  []*Expr
	Pattern string
	Min     *Expr
	Max     *Expr
}

type TypeAliasDef struct {
	Name      string
	BaseType  string
	Modifiers []AttrModifier
	Span      Span
}

type AttrDecl struct {
	Name         string
	TypeName     string
	Nullable     bool
	Modifiers    []AttrModifier
	DefaultValue *Expr
	Span         Span
}

type NodeTypeDef struct {
	Name       string
	Parents    []string
	Attrs      []AttrDecl
	IsAbstract bool
	IsSealed   bool
	Span       Span
}

type EdgeModifierKind int

const (
	EdgeModAcyclic EdgeModifierKind = iota
	EdgeModUnique
	EdgeModNoSelf
	EdgeModSymmetric
	EdgeModIndexed
	EdgeModOnKillTarget
	EdgeModOnKillSource
	EdgeModCardinality
)

// ReferentialActionName matches the surface syntax's three spellings;
// the registry.ReferentialAction enum it lowers to uses spec.md's own
// vocabulary (cascade/unlink/restrict).
type ReferentialActionName int

const (
	RefCascade ReferentialActionName = iota
	RefUnlink
	RefRestrict
)

type EdgeModifier struct {
	Kind      EdgeModifierKind
	OnKill    ReferentialActionName
	CardParam string
	CardMin   int64
	CardMax   *int64 // nil = unbounded
}

type EdgeParamDecl struct {
	Name string
	Type string
}

type EdgeTypeDef struct {
	Name      string
	Params    []EdgeParamDecl
	Attrs     []AttrDecl
	Modifiers []EdgeModifier
	Span      Span
}

type ConstraintModifiers struct {
	Soft    bool
	Message string
}

// ConstraintDef's Pattern/Condition are kept as raw, unparsed source
// text; the registry only needs to store and index them, never
// evaluate them (see the Open Question resolution in DESIGN.md).
type ConstraintDef struct {
	Name      string
	Pattern   string
	Condition string
	Modifiers ConstraintModifiers
	Span      Span
}

type RuleDef struct {
	Name       string
	Pattern    string
	Production string
	Auto       bool
	Priority   *int64
	Span       Span
}
