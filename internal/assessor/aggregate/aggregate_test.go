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

package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/configassess/config-assessor-go/internal/assessor/types"
	assessorerr "github.com/configassess/config-assessor-go/internal/assessor/types/err"
)

const testHost = "https://ctrl.example.com"

func TestGetOrCreateApplicationIdempotent(t *testing.T) {
	agg := New()

	first := agg.GetOrCreateApplication(testHost, types.ComponentAPM, 42)
	second := agg.GetOrCreateApplication(testHost, types.ComponentAPM, 42)
	assert.Same(t, first, second)

	other := agg.GetOrCreateApplication(testHost, types.ComponentAPM, 43)
	assert.NotSame(t, first, other)

	// Same id under another component type is a distinct application.
	brum := agg.GetOrCreateApplication(testHost, types.ComponentBRUM, 42)
	assert.NotSame(t, first, brum)
}

func TestApplicationsOrderedByID(t *testing.T) {
	agg := New()
	for _, id := range []int64{9, 3, 7, 1} {
		agg.GetOrCreateApplication(testHost, types.ComponentAPM, id)
	}

	apps := agg.Applications(testHost, types.ComponentAPM)
	require.Len(t, apps, 4)
	for i := 1; i < len(apps); i++ {
		assert.Less(t, apps[i-1].ID, apps[i].ID)
	}

	assert.Nil(t, agg.Applications("https://unknown", types.ComponentAPM))
}

func TestMergeMetricSeriesDefaultsToZero(t *testing.T) {
	agg := New()
	app := agg.GetOrCreateApplication(testHost, types.ComponentAPM, 1)
	app.Nodes = []*types.Node{
		{Name: "node-1", TierName: "web"},
		{Name: "node-2", TierName: "web"},
	}

	series := []types.MetricSeries{
		{
			MetricPath: "Application Infrastructure Performance|web|Individual Nodes|node-1|Agent|App|Availability",
			Values:     []types.MetricValue{{Sum: 50}},
		},
		// Path omitting the node segment: empty composite key, matches no node.
		{
			MetricPath: "Application Infrastructure Performance|idle-tier",
			Values:     []types.MetricValue{{Sum: 99}},
		},
	}

	agg.MergeMetricSeries(app, series, "Application Infrastructure Performance|", "Individual Nodes|", func(node *types.Node, value float64) {
		node.AppAgentAvailability = value
	})

	assert.Equal(t, float64(50), app.Nodes[0].AppAgentAvailability)
	assert.Equal(t, float64(0), app.Nodes[1].AppAgentAvailability)
}

func TestMergeMetricSeriesKeepsEarlierDecorations(t *testing.T) {
	agg := New()
	app := agg.GetOrCreateApplication(testHost, types.ComponentAPM, 1)
	app.Nodes = []*types.Node{
		{Name: "node-1", TierName: "web", AppAgentVersion: "24.5.1", AppAgentPresent: true},
	}

	agg.MergeMetricSeries(app, nil, "A|", "B|", func(node *types.Node, value float64) {
		node.MetricUploadRequestsExceedingLimit = value
	})

	// Decorations written by earlier steps survive later merges.
	assert.Equal(t, "24.5.1", app.Nodes[0].AppAgentVersion)
	assert.True(t, app.Nodes[0].AppAgentPresent)
}

func TestRecordJobStepResultSingleWriter(t *testing.T) {
	agg := New()
	app := agg.GetOrCreateApplication(testHost, types.ComponentAPM, 1)

	result := &types.JobStepResult{
		Raw:       types.NewResultMap(),
		Evaluated: types.NewResultMap(),
		Grade:     types.GradeSilver,
	}
	require.NoError(t, agg.RecordJobStepResult(app, "AppAgents", result))

	err := agg.RecordJobStepResult(app, "AppAgents", result)
	assert.ErrorIs(t, err, assessorerr.DuplicateJobStepResult)

	// Same step for a different application is fine.
	other := agg.GetOrCreateApplication(testHost, types.ComponentAPM, 2)
	assert.NoError(t, agg.RecordJobStepResult(other, "AppAgents", result))
}

func TestHostsStableOrder(t *testing.T) {
	agg := New()
	agg.AddController(types.Controller{Host: "https://b.example.com"})
	agg.AddController(types.Controller{Host: "https://a.example.com"})
	agg.AddController(types.Controller{Host: "https://b.example.com"})

	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, agg.Hosts())
}
