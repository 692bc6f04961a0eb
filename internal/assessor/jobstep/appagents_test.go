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
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/configassess/config-assessor-go/internal/assessor/aggregate"
	"github.com/configassess/config-assessor-go/internal/assessor/api"
	"github.com/configassess/config-assessor-go/internal/assessor/config"
	"github.com/configassess/config-assessor-go/internal/assessor/types"
	assessorerr "github.com/configassess/config-assessor-go/internal/assessor/types/err"
)

func boolPtr(b bool) *bool { return &b }

func appAgentThresholds() config.ThresholdSpec {
	return config.ThresholdSpec{
		types.ComponentAPM: {
			StepApplicationDiscovery: config.JobStepThresholds{
				types.GradePlatinum: {
					"hasTiers": {Expect: boolPtr(true)},
					"hasNodes": {Expect: boolPtr(true)},
				},
				types.GradeGold: {
					"hasNodes": {Expect: boolPtr(true)},
				},
				types.GradeSilver: {},
			},
			StepAppAgents: config.JobStepThresholds{
				types.GradePlatinum: {
					"percentAgentsLessThan1YearOld": {Op: config.OpGTE, Value: 100},
					"percentAgentsReportingData":    {Op: config.OpGTE, Value: 100},
					"metricLimitNotHit":             {Expect: boolPtr(true)},
				},
				types.GradeGold: {
					"percentAgentsLessThan2YearsOld": {Op: config.OpGTE, Value: 100},
					"percentAgentsReportingData":     {Op: config.OpGTE, Value: 100},
				},
				types.GradeSilver: {
					"percentAgentsReportingData": {Op: config.OpGTE, Value: 50},
				},
			},
		},
	}
}

// twoAppFixture builds a controller with two applications. Application 1 has
// two nodes in one tier, one carrying agent version 24.5.1 with availability
// data, the other bare. Application 2 has two agentless nodes.
func twoAppFixture() *fakeClient {
	client := newFakeClient()

	client.applications = []api.ApplicationSummary{
		{ID: 1, Name: "checkout"},
		{ID: 2, Name: "inventory"},
	}
	client.tiers[1] = []types.Tier{{ID: 10, Name: "web"}}
	client.tiers[2] = []types.Tier{{ID: 20, Name: "batch"}}
	client.nodes[1] = []*types.Node{
		{ID: 101, Name: "web-1", TierName: "web"},
		{ID: 102, Name: "web-2", TierName: "web"},
	}
	client.nodes[2] = []*types.Node{
		{ID: 201, Name: "batch-1", TierName: "batch"},
		{ID: 202, Name: "batch-2", TierName: "batch"},
	}
	client.metadata[1] = []api.AgentMetadata{
		{NodeID: 101, AgentType: "JAVA", AgentVersion: "Server Agent v24.5.1 GA", AgentPresent: true},
		{NodeID: 102},
	}
	client.metadata[2] = []api.AgentMetadata{
		{NodeID: 201},
		{NodeID: 202},
	}
	client.metricData[1] = map[string][]types.MetricSeries{
		availabilityMetricPath: {
			{
				MetricPath: "Application Infrastructure Performance|web|Individual Nodes|web-1|Agent|App|Availability",
				Values:     []types.MetricValue{{Sum: 50}},
			},
		},
	}

	return client
}

func runDiscoveryAndAppAgents(t *testing.T, client *fakeClient, now time.Time) *aggregate.Aggregator {
	t.Helper()

	deps := testDeps(now)
	agg := aggregate.New()
	thresholds := appAgentThresholds()
	ctx := context.Background()

	discovery := NewApplicationDiscovery(deps)
	require.NoError(t, discovery.Extract(ctx, client, agg))
	require.NoError(t, discovery.Analyze(client, agg, thresholds))

	appAgents := NewAppAgents(deps)
	require.NoError(t, appAgents.Extract(ctx, client, agg))
	require.NoError(t, appAgents.Analyze(client, agg, thresholds))

	return agg
}

func TestAppAgentsEndToEnd(t *testing.T) {
	client := twoAppFixture()
	now := time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)

	agg := runDiscoveryAndAppAgents(t, client, now)

	apps := agg.Applications(client.Host(), types.ComponentAPM)
	require.Len(t, apps, 2)

	checkout := apps[0]
	require.Equal(t, "checkout", checkout.Name)

	// web-1 reported 50 minutes of availability over a 50 minute range.
	assert.InDelta(t, 100.0, checkout.Nodes[0].AppAgentAvailability, 0.001)
	assert.Zero(t, checkout.Nodes[1].AppAgentAvailability)
	assert.True(t, checkout.Nodes[0].AppAgentPresent)
	assert.False(t, checkout.Nodes[1].AppAgentPresent)
	assert.True(t, checkout.Nodes[0].AppAgentAgeKnown)
	assert.Equal(t, 2, checkout.Nodes[0].AppAgentAge)

	result := checkout.Results[StepAppAgents]
	require.NotNil(t, result)

	assert.Equal(t, 1.0, result.Raw.Float("numberNodesWithAppAgentInstalled"))

	// One agent-bearing node, and it reports, so 100 percent.
	assert.Equal(t, 100.0, result.Evaluated.Float("percentAgentsReportingData"))
	assert.Equal(t, 100.0, result.Evaluated.Float("percentAgentsLessThan2YearsOld"))
	assert.Zero(t, result.Evaluated.Float("percentAgentsLessThan1YearOld"))
	assert.Equal(t, 100.0, result.Evaluated.Float("percentAgentsRunningSameVersion"))

	limitNotHit, _ := result.Evaluated.Get("metricLimitNotHit")
	assert.Equal(t, true, limitNotHit)

	// Platinum fails on agent age, gold passes on all rules.
	assert.Equal(t, types.GradeGold, result.Grade)
}

func TestAppAgentsNoAgentsIsZeroSafe(t *testing.T) {
	client := twoAppFixture()
	now := time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)

	agg := runDiscoveryAndAppAgents(t, client, now)

	apps := agg.Applications(client.Host(), types.ComponentAPM)
	require.Len(t, apps, 2)

	inventory := apps[1]
	require.Equal(t, "inventory", inventory.Name)

	result := inventory.Results[StepAppAgents]
	require.NotNil(t, result)

	// No agent-bearing nodes: every percentage is 0, never NaN.
	for _, indicator := range []string{
		"percentAgentsLessThan1YearOld",
		"percentAgentsLessThan2YearsOld",
		"percentAgentsReportingData",
		"percentAgentsRunningSameVersion",
	} {
		_, present := result.Evaluated.Get(indicator)
		require.True(t, present, indicator)
		assert.Zero(t, result.Evaluated.Float(indicator), indicator)
	}

	assert.Equal(t, types.GradeBronze, result.Grade)
}

func TestAppAgentsMetricLimitHit(t *testing.T) {
	client := twoAppFixture()
	client.metricData[1][exceedingMetricPath] = []types.MetricSeries{
		{
			MetricPath: "Application Infrastructure Performance|web|Individual Nodes|web-1|Agent|Metric Upload|Requests Exceeding Limit",
			Values:     []types.MetricValue{{Sum: 7}},
		},
	}
	now := time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)

	agg := runDiscoveryAndAppAgents(t, client, now)

	apps := agg.Applications(client.Host(), types.ComponentAPM)
	result := apps[0].Results[StepAppAgents]
	require.NotNil(t, result)

	limitNotHit, _ := result.Evaluated.Get("metricLimitNotHit")
	assert.Equal(t, false, limitNotHit)
}

func TestAppAgentsMetricQueryFailureDegradesToZero(t *testing.T) {
	client := twoAppFixture()
	client.errs["GetMetricData"] = errors.New("controller timeout")
	now := time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)

	agg := runDiscoveryAndAppAgents(t, client, now)

	apps := agg.Applications(client.Host(), types.ComponentAPM)
	result := apps[0].Results[StepAppAgents]
	require.NotNil(t, result)

	// The agent is still installed but no availability data arrived.
	assert.Zero(t, result.Evaluated.Float("percentAgentsReportingData"))
	assert.Equal(t, 1.0, result.Raw.Float("numberNodesWithAppAgentInstalled"))
}

func TestAppAgentsMissingThresholdsIsFatal(t *testing.T) {
	client := twoAppFixture()
	now := time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)
	deps := testDeps(now)
	agg := aggregate.New()

	appAgents := NewAppAgents(deps)
	require.NoError(t, appAgents.Extract(context.Background(), client, agg))

	err := appAgents.Analyze(client, agg, config.ThresholdSpec{})
	require.Error(t, err)
	assert.True(t, assessorerr.IsThresholdConfigError(err))
}

func TestApplicationDiscoveryDegradedController(t *testing.T) {
	client := twoAppFixture()
	client.errs["GetApplications"] = errors.New("401 unauthorized")
	deps := testDeps(time.Now())
	agg := aggregate.New()

	discovery := NewApplicationDiscovery(deps)
	require.NoError(t, discovery.Extract(context.Background(), client, agg))

	assert.Empty(t, agg.Applications(client.Host(), types.ComponentAPM))
}
