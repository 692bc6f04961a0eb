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

package agentver

import (
	"regexp"
	"strconv"
	"time"
)

var semanticVersionRegex = regexp.MustCompile(`[0-9]+\.[0-9]+\.`)

// legacyMajorVersion agents predate year-based versioning and are always
// treated as three years stale.
const (
	legacyMajorVersion = 4
	legacyAge          = 3
)

// Version is the parsed major.minor prefix of an agent version string.
type Version struct {
	Major int
	Minor int
}

// Parse extracts the major.minor prefix of an agent version string.
// ok is false when the string carries no parsable semantic version; callers
// skip age computation for that node rather than failing the application.
func Parse(version string) (Version, bool) {

	match := semanticVersionRegex.FindString(version)
	if match == "" {
		return Version{}, false
	}

	// match is "major.minor." by construction
	dot := 0
	for i, c := range match {
		if c == '.' {
			dot = i
			break
		}
	}

	major, err := strconv.Atoi(match[:dot])
	if err != nil {
		return Version{}, false
	}
	minor, err := strconv.Atoi(match[dot+1 : len(match)-1])
	if err != nil {
		return Version{}, false
	}

	return Version{Major: major, Minor: minor}, true
}

// Age computes the agent age in years at the given time.
//
// Agent versions are year-based: the major component is a two digit year and
// the minor component a month. Major version 4 is legacy and always three
// years old. Otherwise age is the two digit current year minus the major
// version, plus one when the minor component is older than the current month.
func Age(version string, now time.Time) (int, bool) {

	v, ok := Parse(version)
	if !ok {
		return 0, false
	}

	if v.Major == legacyMajorVersion {
		return legacyAge, true
	}

	currYear := now.Year() % 100
	currMonth := int(now.Month())

	years := currYear - v.Major
	if v.Minor < currMonth {
		years++
	}

	return years, true
}
