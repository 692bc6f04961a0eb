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

package grading

import (
	"github.com/configassess/config-assessor-go/internal/assessor/config"
	"github.com/configassess/config-assessor-go/internal/assessor/types"
)

// Outcome is the result of grading one entity's evaluated indicators.
type Outcome struct {
	// Grade is the highest grade whose rules are all satisfied; bronze when
	// none are.
	Grade types.Grade

	// PassCounts records, per rule-carrying grade, how many of its rules
	// the entity satisfied.
	PassCounts map[types.Grade]int

	// IndicatorGrades records, per evaluated indicator, the highest grade
	// whose rule for that indicator passes. Feeds per-cell coloring in
	// downstream reports.
	IndicatorGrades map[string]types.Grade
}

// Grade evaluates the indicator map against one job step's threshold rules.
//
// The scan runs from platinum downward and stops at the first grade whose
// rules are all satisfied; it is not additive, a single failing platinum
// rule drops evaluation to the gold rule set. A missing indicator fails its
// rule. Deterministic: identical inputs always produce identical output.
func Grade(evaluated *types.ResultMap, thresholds config.JobStepThresholds) Outcome {

	outcome := Outcome{
		Grade:           types.GradeBronze,
		PassCounts:      make(map[types.Grade]int),
		IndicatorGrades: make(map[string]types.Grade),
	}

	graded := false
	for _, grade := range types.GradesDescending {
		rules, ok := thresholds[grade]
		if !ok {
			continue
		}

		passed := 0
		for indicator, rule := range rules {
			value, present := evaluated.Get(indicator)
			if rule.Satisfied(value, present) {
				passed++
			}
		}
		outcome.PassCounts[grade] = passed

		if !graded && passed == len(rules) {
			outcome.Grade = grade
			graded = true
		}
	}

	for _, indicator := range evaluated.Keys() {
		outcome.IndicatorGrades[indicator] = indicatorGrade(evaluated, thresholds, indicator)
	}

	return outcome
}

// indicatorGrade is the highest grade whose rule the single indicator
// satisfies, bronze when none do or no grade carries a rule for it.
func indicatorGrade(evaluated *types.ResultMap, thresholds config.JobStepThresholds, indicator string) types.Grade {

	value, present := evaluated.Get(indicator)

	for _, grade := range types.GradesDescending {
		rule, ok := thresholds[grade][indicator]
		if !ok {
			continue
		}
		if rule.Satisfied(value, present) {
			return grade
		}
	}

	return types.GradeBronze
}
