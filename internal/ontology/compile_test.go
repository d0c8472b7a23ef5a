/*
 * MEW
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package ontology_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bdjafer/mew/internal/mewerr"
	"github.com/bdjafer/mew/internal/ontology"
	"github.com/bdjafer/mew/internal/registry"
)

func TestCompileSimpleNodeType(t *testing.T) {
	reg, err := ontology.Compile(`
		node Task {
			title: String
		}
	`)
	require.NoError(t, err)

	task, ok := reg.GetTypeByName("Task")
	require.True(t, ok)
	require.Equal(t, "Task", task.Name)
	require.Contains(t, task.Attributes, "title")
}

func TestCompileNodeWithRequiredAndUniqueModifiers(t *testing.T) {
	reg, err := ontology.Compile(`
		node Task {
			title: String [required]
			code: String [unique]
		}
	`)
	require.NoError(t, err)

	task, ok := reg.GetTypeByName("Task")
	require.True(t, ok)
	require.True(t, task.Attributes["title"].Required)
	require.True(t, task.Attributes["code"].Unique)
}

func TestCompileSimpleEdgeType(t *testing.T) {
	reg, err := ontology.Compile(`
		node Person { name: String }
		node Task { title: String }
		edge owns(owner: Person, task: Task)
	`)
	require.NoError(t, err)

	owns, ok := reg.GetEdgeTypeByName("owns")
	require.True(t, ok)
	require.Equal(t, 2, owns.Arity())
}

func TestCompileDuplicateTypeRejected(t *testing.T) {
	_, err := ontology.Compile(`
		node Task { title: String }
		node Task { name: String }
	`)
	require.Error(t, err)
	require.True(t, errors.Is(err, mewerr.ErrDuplicateName))
}

func TestCompileUnknownParamTypeRejected(t *testing.T) {
	_, err := ontology.Compile(`
		node Person { name: String }
		edge owns(owner: Person, task: Unknown)
	`)
	require.Error(t, err)
	require.True(t, errors.Is(err, mewerr.ErrUnknownType))
}

func TestCompileUnknownParentRejected(t *testing.T) {
	_, err := ontology.Compile(`
		node Employee: Missing { name: String }
	`)
	require.Error(t, err)
	require.True(t, errors.Is(err, mewerr.ErrUnknownParent))
}

func TestCompileForwardDeclaredParentResolves(t *testing.T) {
	reg, err := ontology.Compile(`
		node Manager: Employee { reports: Int }
		node Employee { name: String }
	`)
	require.NoError(t, err)

	manager, ok := reg.GetTypeByName("Manager")
	require.True(t, ok)
	employee, ok := reg.GetTypeByName("Employee")
	require.True(t, ok)
	require.True(t, reg.IsSubtype(manager.ID, manager.ID))
	require.True(t, reg.IsSubtype(manager.ID, employee.ID))
}

func TestCompileAbstractAndSealedModifiers(t *testing.T) {
	reg, err := ontology.Compile(`
		abstract node Entity {
			created: Timestamp
		}
		sealed node FinalType: Entity {
			note: String
		}
	`)
	require.NoError(t, err)

	entity, ok := reg.GetTypeByName("Entity")
	require.True(t, ok)
	require.True(t, entity.IsAbstract)

	final, ok := reg.GetTypeByName("FinalType")
	require.True(t, ok)
	require.True(t, final.IsSealed)
}

func TestCompileTypeAliasChainResolves(t *testing.T) {
	reg, err := ontology.Compile(`
		type Label = String
		type Name = Label [required]
		node Person {
			name: Name
		}
	`)
	require.NoError(t, err)

	person, ok := reg.GetTypeByName("Person")
	require.True(t, ok)
	attr := person.Attributes["name"]
	require.Equal(t, "String", attr.TypeName)
	require.True(t, attr.Required)
}

func TestCompileCyclicAliasRejected(t *testing.T) {
	_, err := ontology.Compile(`
		type A = B
		type B = A
		node Task {
			x: A
		}
	`)
	require.Error(t, err)
	require.True(t, errors.Is(err, mewerr.ErrCyclicAlias))
}

func TestCompileUnresolvedAliasRejected(t *testing.T) {
	_, err := ontology.Compile(`
		node Task {
			x: Nope
		}
	`)
	require.Error(t, err)
	require.True(t, errors.Is(err, mewerr.ErrUnresolvedAlias))
}

func TestCompileRangeEnumAndRegexModifiers(t *testing.T) {
	reg, err := ontology.Compile(`
		node Task {
			priority: Int [0..10]
			status: String [in: ["open", "closed"]]
			code: String [match: "^[A-Z]{3}$"]
		}
	`)
	require.NoError(t, err)

	task, ok := reg.GetTypeByName("Task")
	require.True(t, ok)

	priority := task.Attributes["priority"]
	require.True(t, priority.HasRange)
	require.Equal(t, float64(0), priority.RangeMin)
	require.Equal(t, float64(10), priority.RangeMax)

	status := task.Attributes["status"]
	require.True(t, status.HasEnum)
	require.Equal(t, []string{"open", "closed"}, status.Enum)

	code := task.Attributes["code"]
	require.True(t, code.HasRegex)
	require.Equal(t, "^[A-Z]{3}$", code.Regex)
}

func TestCompileOneSidedRangeLeavesOtherBoundUnbounded(t *testing.T) {
	reg, err := ontology.Compile(`
		node Task {
			priority: Int [>= 0]
		}
	`)
	require.NoError(t, err)

	task, _ := reg.GetTypeByName("Task")
	priority := task.Attributes["priority"]
	require.True(t, priority.HasRange)
	require.Equal(t, float64(0), priority.RangeMin)
	require.True(t, priority.RangeMax > 1e300)
}

func TestCompileDefaultValueModifier(t *testing.T) {
	reg, err := ontology.Compile(`
		node Task {
			priority: Int [default: 1]
		}
	`)
	require.NoError(t, err)

	task, _ := reg.GetTypeByName("Task")
	priority := task.Attributes["priority"]
	require.NotNil(t, priority.Default)
	n, ok := priority.Default.AsInt()
	require.True(t, ok)
	require.Equal(t, int64(1), n)
}

func TestCompileEdgeModifiersLifted(t *testing.T) {
	reg, err := ontology.Compile(`
		node Task { title: String }
		edge depends_on(a: Task, b: Task) [acyclic, unique, no_self, symmetric]
	`)
	require.NoError(t, err)

	dep, ok := reg.GetEdgeTypeByName("depends_on")
	require.True(t, ok)
	require.True(t, dep.Acyclic)
	require.True(t, dep.Unique)
	require.True(t, dep.NoSelf)
	require.True(t, dep.Symmetric)
}

func TestCompileOnKillModifiers(t *testing.T) {
	reg, err := ontology.Compile(`
		node Person { name: String }
		node Item { name: String }
		edge owns(owner: Person, item: Item) [on_kill_target: cascade, on_kill_source: restrict]
	`)
	require.NoError(t, err)

	owns, ok := reg.GetEdgeTypeByName("owns")
	require.True(t, ok)
	require.Equal(t, registry.Restrict, owns.OnKill[0])
	require.Equal(t, registry.Cascade, owns.OnKill[1])
}

func TestCompileCardinalityModifier(t *testing.T) {
	reg, err := ontology.Compile(`
		node Person { name: String }
		node Item { name: String }
		edge owns(owner: Person, item: Item) [item -> 0..1]
	`)
	require.NoError(t, err)

	owns, ok := reg.GetEdgeTypeByName("owns")
	require.True(t, ok)
	require.Equal(t, uint32(0), owns.Params[1].Cardinality.Min)
	require.NotNil(t, owns.Params[1].Cardinality.Max)
	require.Equal(t, uint32(1), *owns.Params[1].Cardinality.Max)
}

func TestCompileConstraintResolvesSubjectType(t *testing.T) {
	reg, err := ontology.Compile(`
		node Task {
			priority: Int
		}
		constraint priority_positive: t: Task => t.priority >= 0
	`)
	require.NoError(t, err)

	task, ok := reg.GetTypeByName("Task")
	require.True(t, ok)
	constraints := reg.ConstraintsForType(task.ID)
	require.Len(t, constraints, 1)
	require.Equal(t, "priority_positive", constraints[0].Name)
}

func TestCompileConstraintUnknownTypeRejected(t *testing.T) {
	_, err := ontology.Compile(`
		constraint bogus: t: Nope => t.x >= 0
	`)
	require.Error(t, err)
	require.True(t, errors.Is(err, mewerr.ErrUnknownType))
}

func TestCompileUnknownParentSuggestsCloseName(t *testing.T) {
	_, err := ontology.Compile(`
		node Employe { name: String }
		node Manager: Employee { reports: Int }
	`)
	require.Error(t, err)
	require.True(t, errors.Is(err, mewerr.ErrUnknownParent))
	require.Contains(t, err.Error(), `did you mean "Employe"`)
}

func TestCompileUnresolvedAliasSuggestsCloseName(t *testing.T) {
	_, err := ontology.Compile(`
		node Task {
			x: Strng
		}
	`)
	require.Error(t, err)
	require.True(t, errors.Is(err, mewerr.ErrUnresolvedAlias))
	require.Contains(t, err.Error(), `did you mean "String"`)
}

func TestCompileRuleResolvesSubjectTypeAndMetadata(t *testing.T) {
	reg, err := ontology.Compile(`
		node Task {
			status: String
		}
		rule auto_complete [auto, priority: 10]: t: Task => SET t.status = "done"
	`)
	require.NoError(t, err)

	task, ok := reg.GetTypeByName("Task")
	require.True(t, ok)
	rules := reg.RulesForType(task.ID)
	require.Len(t, rules, 1)
	require.True(t, rules[0].Auto)
	require.Equal(t, int32(10), rules[0].Priority)
}
