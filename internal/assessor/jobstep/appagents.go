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

package jobstep

import (
	"context"

	"github.com/configassess/config-assessor-go/internal/assessor/aggregate"
	"github.com/configassess/config-assessor-go/internal/assessor/api"
	"github.com/configassess/config-assessor-go/internal/assessor/config"
	"github.com/configassess/config-assessor-go/internal/assessor/types"
	"github.com/configassess/config-assessor-go/internal/util/agentver"
)

const (
	availabilityMetricPath = "Application Infrastructure Performance|*|Individual Nodes|*|Agent|App|Availability"
	exceedingMetricPath    = "Application Infrastructure Performance|*|Individual Nodes|*|Agent|Metric Upload|Requests Exceeding Limit"

	tierMarker = "Application Infrastructure Performance|"
	nodeMarker = "Individual Nodes|"
)

// AppAgents assesses agent health per application: agent age from the
// version string, availability over the queried time range, metric upload
// limit pressure, and version fragmentation.
type AppAgents struct {
	base
}

func NewAppAgents(deps Deps) *AppAgents {

	return &AppAgents{base: newBase(StepAppAgents, types.ComponentAPM, deps)}
}

// Extract queries two metric series per application, availability and
// requests exceeding the upload limit, and decorates each node via
// tierName|nodeName lookup. A missing key defaults to zero; a failed query
// degrades to zero for that application, never aborting the step.
func (s *AppAgents) Extract(ctx context.Context, client api.Client, agg *aggregate.Aggregator) error {

	s.logger.Info("extracting", "host", client.Host())

	apps := agg.Applications(client.Host(), s.componentType)

	availabilityBatches := s.gatherMetricData(ctx, client, apps, availabilityMetricPath)
	exceedingBatches := s.gatherMetricData(ctx, client, apps, exceedingMetricPath)

	timeRangeMins := float64(client.TimeRangeMins())

	for i, app := range apps {
		agg.MergeMetricSeries(app, availabilityBatches[i], tierMarker, nodeMarker, func(node *types.Node, value float64) {
			node.AppAgentAvailability = value / timeRangeMins * 100
		})
		agg.MergeMetricSeries(app, exceedingBatches[i], tierMarker, nodeMarker, func(node *types.Node, value float64) {
			node.MetricUploadRequestsExceedingLimit = value
		})
	}

	return nil
}

// Analyze computes agent health indicators per application and grades them.
func (s *AppAgents) Analyze(client api.Client, agg *aggregate.Aggregator, thresholds config.ThresholdSpec) error {

	jobStepThresholds, err := thresholds.ForJobStep(s.componentType, s.name)
	if err != nil {
		return err
	}

	s.logger.Info("analyzing", "host", client.Host())

	now := s.now()

	apps := agg.Applications(client.Host(), s.componentType)
	s.analyzeEach(client, apps, func(app *types.Application) error {
		raw := types.NewResultMap()
		evaluated := types.NewResultMap()

		var numberNodesWithAppAgentInstalled float64
		var numberAppAgentsLessThan1YearOld float64
		var numberAppAgentsLessThan2YearsOld float64
		var numberAppAgentsReportingData float64
		var numberAppAgentsRunningSameVersion float64

		evaluated.Set("metricLimitNotHit", true)

		// First-seen order makes the most-common-version tie-break
		// deterministic: ties resolve to the earliest version encountered.
		versionCounts := make(map[string]float64)
		var versionOrder []string

		for _, node := range app.Nodes {
			appAgentPresent := node.AppAgentPresent || node.AppAgentVersion != ""
			if !appAgentPresent {
				continue
			}

			if _, seen := versionCounts[node.AppAgentVersion]; !seen {
				versionOrder = append(versionOrder, node.AppAgentVersion)
			}
			versionCounts[node.AppAgentVersion]++

			numberNodesWithAppAgentInstalled++

			age, ok := agentver.Age(node.AppAgentVersion, now)
			if !ok {
				// Cannot parse semantic version, skip aging logic
				continue
			}
			node.AppAgentAge = age
			node.AppAgentAgeKnown = true

			if age <= 2 {
				numberAppAgentsLessThan2YearsOld++
			}
			if age <= 1 {
				numberAppAgentsLessThan1YearOld++
			}

			if node.AppAgentAvailability != 0 {
				numberAppAgentsReportingData++
			}

			if node.MetricUploadRequestsExceedingLimit != 0 {
				evaluated.Set("metricLimitNotHit", false)
			}
		}

		// Largest same-version cohort regardless of which version it is.
		for _, version := range versionOrder {
			if versionCounts[version] > numberAppAgentsRunningSameVersion {
				numberAppAgentsRunningSameVersion = versionCounts[version]
			}
		}
		if len(versionOrder) == 0 {
			s.logger.Sugar().Debugf("%s - no app agents returned for application %s, unable to parse agent versions", client.Host(), app.Name)
		}

		// All percentages default to 0 when no node has an agent installed.
		if numberNodesWithAppAgentInstalled != 0 {
			evaluated.Set("percentAgentsLessThan1YearOld", numberAppAgentsLessThan1YearOld/numberNodesWithAppAgentInstalled*100)
			evaluated.Set("percentAgentsLessThan2YearsOld", numberAppAgentsLessThan2YearsOld/numberNodesWithAppAgentInstalled*100)
			evaluated.Set("percentAgentsReportingData", numberAppAgentsReportingData/numberNodesWithAppAgentInstalled*100)
			evaluated.Set("percentAgentsRunningSameVersion", numberAppAgentsRunningSameVersion/numberNodesWithAppAgentInstalled*100)
		} else {
			evaluated.Set("percentAgentsLessThan1YearOld", float64(0))
			evaluated.Set("percentAgentsLessThan2YearsOld", float64(0))
			evaluated.Set("percentAgentsReportingData", float64(0))
			evaluated.Set("percentAgentsRunningSameVersion", float64(0))
		}

		raw.Set("numberOfNodes", float64(len(app.Nodes)))
		raw.Set("numberOfTiers", float64(len(app.Tiers)))
		raw.Set("numberNodesWithAppAgentInstalled", numberNodesWithAppAgentInstalled)
		raw.Set("numberAppAgentsLessThan1YearOld", numberAppAgentsLessThan1YearOld)
		raw.Set("numberAppAgentsLessThan2YearsOld", numberAppAgentsLessThan2YearsOld)
		raw.Set("numberOfAgentsReportingData", numberAppAgentsReportingData)
		raw.Set("numberAppAgentsRunningSameVersion", numberAppAgentsRunningSameVersion)

		return s.gradeAndRecord(agg, app, raw, evaluated, jobStepThresholds)
	})

	return nil
}
