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

package metricpath

import "strings"

// Separator is the segment delimiter used in controller metric paths,
// e.g. "Application Infrastructure Performance|tierA|Individual Nodes|node1|Agent|App|Availability".
const Separator = "|"

// BetweenMarkers returns the substring strictly between the first occurrence
// of left and the first occurrence of right that follows it.
//
// Missing markers yield "" rather than an error. Metric paths are allowed to
// omit segments (a tier with zero nodes produces a path with no node
// segment); an empty segment simply fails the subsequent map lookup.
func BetweenMarkers(path, left, right string) string {

	start := strings.Index(path, left)
	if start < 0 {
		return ""
	}
	start += len(left)

	end := strings.Index(path[start:], right)
	if end < 0 {
		return ""
	}

	return path[start : start+end]
}

// NodeKey builds the composite lookup key joining a metric-path fragment
// back to a node.
func NodeKey(tierName, nodeName string) string {

	return tierName + Separator + nodeName
}

// TierAndNode extracts the tier and node names from a metric path given the
// markers that precede each segment. Either value may be "" when the path
// omits that segment.
func TierAndNode(path, tierMarker, nodeMarker string) (string, string) {

	tierName := BetweenMarkers(path, tierMarker, Separator)
	nodeName := BetweenMarkers(path, nodeMarker, Separator)

	return tierName, nodeName
}
