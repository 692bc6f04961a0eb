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

// ComponentType is a named category of monitored entity collected per
// controller. A controller processes one or more component types
// independently.
type ComponentType string

const (
	ComponentAPM  ComponentType = "apm"
	ComponentBRUM ComponentType = "brum"
)

// Controller identifies one monitored platform instance. Credentials is an
// opaque handle resolved by the API client, never interpreted here.
type Controller struct {
	Host          string `yaml:"host" json:"host"`
	Credentials   string `yaml:"credentials" json:"-"`
	TimeRangeMins int    `yaml:"timeRangeMins" json:"timeRangeMins"`
}

// Tier is a named grouping of nodes within an application. It exists mainly
// as the string key joining metric-path fragments back to nodes.
type Tier struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Node is one running process instance within a tier. Fields past TierName
// are decorations accumulated by successive job steps; a populated node list
// is append/decorate-only, later steps attach fields to existing node
// objects and never replace the list wholesale.
type Node struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	TierName string `json:"tierName"`

	AgentType       string `json:"agentType,omitempty"`
	AppAgentPresent bool   `json:"appAgentPresent"`
	AppAgentVersion string `json:"appAgentVersion,omitempty"`

	// AppAgentAvailability is the availability metric normalized to a
	// percentage of the queried time range.
	AppAgentAvailability float64 `json:"appAgentAvailability"`

	// MetricUploadRequestsExceedingLimit counts rollup buckets in which the
	// node exceeded its metric upload limit.
	MetricUploadRequestsExceedingLimit float64 `json:"metricUploadRequestsExceedingLimit"`

	AppAgentAge      int  `json:"appAgentAge"`
	AppAgentAgeKnown bool `json:"appAgentAgeKnown"`
}

// Backend is a remote system discovered behind an application.
type Backend struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Type string `json:"exitPointType"`
}

// ErrorRule is one custom error-detection rule configured on an application.
type ErrorRule struct {
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

// Application belongs to exactly one (controller, componentType) pair.
// Results holds one entry per job step, written exactly once per run through
// the aggregator.
type Application struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	Tiers []Tier  `json:"tiers"`
	Nodes []*Node `json:"nodes"`

	Backends   []Backend   `json:"backends,omitempty"`
	ErrorRules []ErrorRule `json:"errorRules,omitempty"`

	Results map[string]*JobStepResult `json:"results"`
}

// MetricValue is one rollup bucket of a metric series.
type MetricValue struct {
	StartTimeMillis int64   `json:"startTimeInMillis"`
	Value           float64 `json:"value"`
	Min             float64 `json:"min"`
	Max             float64 `json:"max"`
	Current         float64 `json:"current"`
	Sum             float64 `json:"sum"`
	Count           int64   `json:"count"`
}

// MetricSeries is the result of a single remote metric query. Values may
// legitimately be empty: no data for that entity in the time range, which is
// distinct from an error response.
type MetricSeries struct {
	MetricPath string        `json:"metricPath"`
	Values     []MetricValue `json:"metricValues"`
}

// Sum returns the sum of the first rollup bucket, the value every composite
// key lookup joins on, or 0 when the series carries no data.
func (s MetricSeries) Sum() float64 {

	if len(s.Values) == 0 {
		return 0
	}
	return s.Values[0].Sum
}

// JobStepResult is the per (application, jobStep) outcome: the raw metric
// map, the evaluated indicator map, the entity grade, and the highest grade
// each individual indicator satisfies.
type JobStepResult struct {
	Raw             *ResultMap       `json:"raw"`
	Evaluated       *ResultMap       `json:"evaluated"`
	Grade           Grade            `json:"grade"`
	IndicatorGrades map[string]Grade `json:"indicatorGrades,omitempty"`
}
