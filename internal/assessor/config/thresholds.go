/*
 * Licensed to the Apache Software Foundation (ASF) under one
 * or more contributor license agreements.  See the NOTICE file
 * distributed with this work for additional information
 * regarding copyright ownership.  The ASF licenses this file
 * to you under the Apache License, Version 2.0 (the
 * "License"); you may not use this file except in compliance
 * with the License.  You may obtain a copy of the License at
 *
 *   http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

package config

import (
	"fmt"

	"github.com/configassess/config-assessor-go/internal/assessor/types"
	assessorerr "github.com/configassess/config-assessor-go/internal/assessor/types/err"
)

// Rule operators for numeric indicators.
const (
	OpGTE = "gte"
	OpLTE = "lte"
	OpEQ  = "eq"
)

// Rule is one pass/fail criterion for an evaluated indicator. Numeric rules
// set Op and Value; boolean rules set Expect. A missing indicator always
// fails the rule.
type Rule struct {
	Op     string  `yaml:"op,omitempty"`
	Value  float64 `yaml:"value,omitempty"`
	Expect *bool   `yaml:"expect,omitempty"`
}

// Satisfied evaluates the rule against an indicator value from the evaluated
// result map. present=false means the indicator was never computed, which
// never passes.
func (r Rule) Satisfied(value any, present bool) bool {

	if !present {
		return false
	}

	if r.Expect != nil {
		b, ok := value.(bool)
		return ok && b == *r.Expect
	}

	f, ok := value.(float64)
	if !ok {
		return false
	}

	switch r.Op {
	case OpGTE:
		return f >= r.Value
	case OpLTE:
		return f <= r.Value
	case OpEQ:
		return f == r.Value
	default:
		return false
	}
}

// GradeRules maps evaluated indicator name to the rule an entity must
// satisfy to earn one grade.
type GradeRules map[string]Rule

// JobStepThresholds holds the rule sets for one job step, keyed by grade.
// Bronze carries no rules; it is the fallback.
type JobStepThresholds map[types.Grade]GradeRules

// ThresholdSpec is the full nested threshold configuration,
// componentType -> jobStepName -> grade -> indicator rules. Loaded once per
// run and immutable afterwards.
type ThresholdSpec map[types.ComponentType]map[string]JobStepThresholds

// ForJobStep resolves the rule sets for one (componentType, jobStep) pair.
// A missing entry is a run-wide misconfiguration and surfaces as a typed
// fatal error, never a silent default.
func (s ThresholdSpec) ForJobStep(componentType types.ComponentType, jobStepName string) (JobStepThresholds, error) {

	byStep, ok := s[componentType]
	if !ok {
		return nil, &assessorerr.ThresholdConfigError{
			ComponentType: string(componentType),
			JobStep:       jobStepName,
			Missing:       "componentType entry",
		}
	}

	thresholds, ok := byStep[jobStepName]
	if !ok {
		return nil, &assessorerr.ThresholdConfigError{
			ComponentType: string(componentType),
			JobStep:       jobStepName,
			Missing:       "jobStep entry",
		}
	}

	return thresholds, nil
}

// Validate rejects malformed rules up front so a misconfiguration surfaces
// once at load time with enough context to fix it.
func (s ThresholdSpec) Validate() error {

	if s == nil {
		return assessorerr.ThresholdSpecIsNil
	}

	for componentType, byStep := range s {
		for jobStepName, thresholds := range byStep {
			for grade, rules := range thresholds {
				if grade.Ordinal() < 0 {
					return &assessorerr.ThresholdConfigError{
						ComponentType: string(componentType),
						JobStep:       jobStepName,
						Missing:       fmt.Sprintf("valid grade label (got %q)", grade),
					}
				}
				for indicator, rule := range rules {
					if rule.Expect == nil && rule.Op != OpGTE && rule.Op != OpLTE && rule.Op != OpEQ {
						return &assessorerr.ThresholdConfigError{
							ComponentType: string(componentType),
							JobStep:       jobStepName,
							Missing:       fmt.Sprintf("valid operator for indicator %q (got %q)", indicator, rule.Op),
						}
					}
				}
			}
		}
	}

	return nil
}
