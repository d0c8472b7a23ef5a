/*
 * MEW
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package query

import (
	"fmt"
	"sort"

	"github.com/bdjafer/mew/internal/pattern"
	"github.com/bdjafer/mew/internal/value"
)

// execAggregate groups rows by op.GroupBy and reduces op.Aggregates
// per group. An empty input with no group-by columns still produces
// one row (COUNT = 0, everything else Null) rather than zero rows.
func (c *Context) execAggregate(op *PlanOp, initial pattern.Bindings) ([]Row, error) {
	rows, err := c.inputRows(op, initial)
	if err != nil {
		return nil, err
	}

	if len(op.GroupBy) == 0 {
		if len(rows) == 0 {
			vals := make([]value.Value, len(op.Aggregates))
			for i, a := range op.Aggregates {
				if a.Kind == AggCount {
					vals[i] = value.Int(0)
				} else {
					vals[i] = value.Null()
				}
			}
			return []Row{{Values: vals}}, nil
		}
		vals, err := c.reduceAggregates(op.Aggregates, rows)
		if err != nil {
			return nil, err
		}
		return []Row{{Values: vals}}, nil
	}

	type group struct {
		keyVals []value.Value
		rows    []Row
	}
	order := make([]string, 0)
	groups := make(map[string]*group)

	for _, row := range rows {
		keyVals := make([]value.Value, len(op.GroupBy))
		for i, g := range op.GroupBy {
			v, err := c.eval.Eval(g.Expr, row.Bindings)
			if err != nil {
				return nil, err
			}
			keyVals[i] = v
		}
		key := fmt.Sprint(keyVals)
		g, ok := groups[key]
		if !ok {
			g = &group{keyVals: keyVals}
			groups[key] = g
			order = append(order, key)
		}
		g.rows = append(g.rows, row)
	}
	sort.Strings(order)

	out := make([]Row, 0, len(order))
	for _, key := range order {
		g := groups[key]
		aggVals, err := c.reduceAggregates(op.Aggregates, g.rows)
		if err != nil {
			return nil, err
		}
		out = append(out, Row{Values: append(append([]value.Value(nil), g.keyVals...), aggVals...)})
	}
	return out, nil
}

func (c *Context) reduceAggregates(specs []AggregateSpec, rows []Row) ([]value.Value, error) {
	out := make([]value.Value, len(specs))
	for i, spec := range specs {
		v, err := c.reduceOne(spec, rows)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (c *Context) reduceOne(spec AggregateSpec, rows []Row) (value.Value, error) {
	switch spec.Kind {
	case AggCount:
		if spec.Arg == nil {
			return value.Int(int64(len(rows))), nil
		}
		var n int64
		for _, row := range rows {
			v, err := c.eval.Eval(spec.Arg, row.Bindings)
			if err != nil {
				return value.Null(), err
			}
			if !v.IsNull() {
				n++
			}
		}
		return value.Int(n), nil

	case AggSum:
		var isFloat bool
		var sumI int64
		var sumF float64
		for _, row := range rows {
			v, err := c.eval.Eval(spec.Arg, row.Bindings)
			if err != nil {
				return value.Null(), err
			}
			if v.IsNull() {
				continue
			}
			f, ok := v.Numeric()
			if !ok {
				continue
			}
			if !isFloat {
				if _, isF := v.AsFloat(); isF {
					isFloat = true
					sumF = float64(sumI) + f
					continue
				}
				i, _ := v.AsInt()
				sumI += i
				continue
			}
			sumF += f
		}
		if isFloat {
			return value.Float(sumF), nil
		}
		return value.Int(sumI), nil

	case AggAvg:
		var sum float64
		var n int64
		for _, row := range rows {
			v, err := c.eval.Eval(spec.Arg, row.Bindings)
			if err != nil {
				return value.Null(), err
			}
			if v.IsNull() {
				continue
			}
			f, ok := v.Numeric()
			if !ok {
				continue
			}
			sum += f
			n++
		}
		if n == 0 {
			return value.Null(), nil
		}
		return value.Float(sum / float64(n)), nil

	case AggMin, AggMax:
		var best value.Value
		have := false
		for _, row := range rows {
			v, err := c.eval.Eval(spec.Arg, row.Bindings)
			if err != nil {
				return value.Null(), err
			}
			if v.IsNull() {
				continue
			}
			if !have {
				best, have = v, true
				continue
			}
			cmp := value.CmpSortable(v, best)
			if (spec.Kind == AggMin && cmp < 0) || (spec.Kind == AggMax && cmp > 0) {
				best = v
			}
		}
		if !have {
			return value.Null(), nil
		}
		return best, nil

	default:
		return value.Null(), nil
	}
}
