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
	"os"
	"time"

	"github.com/configassess/config-assessor-go/internal/assessor/api"
	"github.com/configassess/config-assessor-go/internal/assessor/limiter"
	"github.com/configassess/config-assessor-go/internal/assessor/types"
	loggertypes "github.com/configassess/config-assessor-go/internal/types/logger"
	"github.com/configassess/config-assessor-go/internal/util/logger"
)

// fakeClient serves canned payloads keyed by application id. A nil map
// entry is a legitimate empty payload; entries in errs fail the call.
type fakeClient struct {
	host          string
	timeRangeMins int

	applications []api.ApplicationSummary
	tiers        map[int64][]types.Tier
	nodes        map[int64][]*types.Node
	metadata     map[int64][]api.AgentMetadata
	metricData   map[int64]map[string][]types.MetricSeries
	backends     map[int64][]types.Backend
	errorRules   map[int64][]types.ErrorRule

	errs map[string]error
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		host:          "https://fake.example.com",
		timeRangeMins: 50,
		tiers:         make(map[int64][]types.Tier),
		nodes:         make(map[int64][]*types.Node),
		metadata:      make(map[int64][]api.AgentMetadata),
		metricData:    make(map[int64]map[string][]types.MetricSeries),
		backends:      make(map[int64][]types.Backend),
		errorRules:    make(map[int64][]types.ErrorRule),
		errs:          make(map[string]error),
	}
}

func (f *fakeClient) Host() string { return f.host }

func (f *fakeClient) TimeRangeMins() int { return f.timeRangeMins }

func (f *fakeClient) GetApplications(_ context.Context, _ types.ComponentType) ([]api.ApplicationSummary, error) {
	if err := f.errs["GetApplications"]; err != nil {
		return nil, err
	}
	return f.applications, nil
}

func (f *fakeClient) GetTiers(_ context.Context, appID int64) ([]types.Tier, error) {
	if err := f.errs["GetTiers"]; err != nil {
		return nil, err
	}
	return f.tiers[appID], nil
}

func (f *fakeClient) GetNodes(_ context.Context, appID int64) ([]*types.Node, error) {
	if err := f.errs["GetNodes"]; err != nil {
		return nil, err
	}
	return f.nodes[appID], nil
}

func (f *fakeClient) GetAppAgentMetadata(_ context.Context, appID int64, _ []int64) ([]api.AgentMetadata, error) {
	if err := f.errs["GetAppAgentMetadata"]; err != nil {
		return nil, err
	}
	return f.metadata[appID], nil
}

func (f *fakeClient) GetMetricData(_ context.Context, appID int64, metricPath string, _ bool, _ int) ([]types.MetricSeries, error) {
	if err := f.errs["GetMetricData"]; err != nil {
		return nil, err
	}
	return f.metricData[appID][metricPath], nil
}

func (f *fakeClient) GetBackends(_ context.Context, appID int64) ([]types.Backend, error) {
	if err := f.errs["GetBackends"]; err != nil {
		return nil, err
	}
	return f.backends[appID], nil
}

func (f *fakeClient) GetErrorRules(_ context.Context, appID int64) ([]types.ErrorRule, error) {
	if err := f.errs["GetErrorRules"]; err != nil {
		return nil, err
	}
	return f.errorRules[appID], nil
}

func testDeps(now time.Time) Deps {
	l, err := limiter.New(4)
	if err != nil {
		panic(err)
	}
	return Deps{
		Limiter: l,
		Logger:  logger.DefaultLogger(os.Stdout, loggertypes.LogLevelError),
		Now:     func() time.Time { return now },
	}
}
