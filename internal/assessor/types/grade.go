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

package types

// Grade is the maturity tier label assigned per application per job step.
// Ordering is bronze < silver < gold < platinum.
type Grade string

const (
	GradeBronze   Grade = "bronze"
	GradeSilver   Grade = "silver"
	GradeGold     Grade = "gold"
	GradePlatinum Grade = "platinum"
)

// GradesDescending lists the grades that carry threshold rules, scanned from
// the highest down. Bronze is the fallback and never carries rules.
var GradesDescending = []Grade{GradePlatinum, GradeGold, GradeSilver}

var gradeOrdinals = map[Grade]int{
	GradeBronze:   0,
	GradeSilver:   1,
	GradeGold:     2,
	GradePlatinum: 3,
}

// Ordinal returns the rank of the grade, bronze being 0. Unknown labels rank
// below bronze.
func (g Grade) Ordinal() int {

	ordinal, ok := gradeOrdinals[g]
	if !ok {
		return -1
	}
	return ordinal
}

// GradeFromOrdinal is the inverse of Ordinal, clamping out-of-range values.
func GradeFromOrdinal(ordinal int) Grade {

	switch {
	case ordinal <= 0:
		return GradeBronze
	case ordinal == 1:
		return GradeSilver
	case ordinal == 2:
		return GradeGold
	default:
		return GradePlatinum
	}
}
