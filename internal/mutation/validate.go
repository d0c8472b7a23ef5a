/*
 * MEW
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package mutation

import (
	"regexp"

	"github.com/bdjafer/mew/internal/mewerr"
	"github.com/bdjafer/mew/internal/registry"
	"github.com/bdjafer/mew/internal/value"
)

// validateAttr checks one assigned value against its AttrDef's type,
// range, enum and regex constraints. It does not check uniqueness or
// required-ness; callers that need those check them separately since
// the probe differs for a fresh SPAWN versus an in-place SET.
func validateAttr(def registry.AttrDef, v value.Value) error {
	if v.IsNull() {
		if def.Nullable {
			return nil
		}
		return mewerr.New(mewerr.ErrRequiredMissing, def.Name)
	}

	if err := checkKind(def, v); err != nil {
		return err
	}

	if def.HasRange {
		n, ok := v.Numeric()
		if !ok || n < def.RangeMin || n > def.RangeMax {
			return mewerr.New(mewerr.ErrRangeViolation, def.Name)
		}
	}

	if def.HasEnum {
		s, ok := v.AsString()
		if !ok || !stringIn(def.Enum, s) {
			return mewerr.New(mewerr.ErrEnumViolation, def.Name)
		}
	}

	if def.HasRegex {
		s, ok := v.AsString()
		if !ok {
			return mewerr.New(mewerr.ErrRegexViolation, def.Name)
		}
		matched, err := regexp.MatchString(def.Regex, s)
		if err != nil || !matched {
			return mewerr.New(mewerr.ErrRegexViolation, def.Name)
		}
	}

	return nil
}

func checkKind(def registry.AttrDef, v value.Value) error {
	ok := false
	switch def.TypeName {
	case "String":
		_, ok = v.AsString()
	case "Int":
		_, ok = v.AsInt()
	case "Float":
		_, ok = v.AsFloat()
		if !ok {
			_, ok = v.AsInt() // an integer literal satisfies a Float attribute
		}
	case "Bool":
		_, ok = v.AsBool()
	case "Timestamp":
		_, ok = v.AsTimestamp()
	case "Duration":
		_, ok = v.AsDuration()
	default:
		ok = true
	}
	if !ok {
		return mewerr.New(mewerr.ErrTypeMismatch, def.Name)
	}
	return nil
}

func stringIn(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}
