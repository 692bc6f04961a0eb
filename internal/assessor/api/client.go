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

package api

import (
	"context"
	"fmt"

	"github.com/configassess/config-assessor-go/internal/assessor/types"
)

// ApplicationSummary is the listing entry returned by the applications
// endpoint, before tiers and nodes are discovered.
type ApplicationSummary struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// AgentMetadata is the per-node agent detail returned by the agent metadata
// endpoint, same order as the node id list it was queried with.
type AgentMetadata struct {
	NodeID       int64  `json:"nodeId"`
	AgentType    string `json:"agentType"`
	AgentVersion string `json:"agentVersion"`
	AgentPresent bool   `json:"agentPresent"`
}

// Client is the read-only surface of one controller's REST API consumed by
// the job steps. Every method applies its own per-call timeout; a timed-out
// or failed call returns a *RequestError which callers consume as "no data".
// A nil error with an empty slice is a legitimate empty payload, not a
// failure.
type Client interface {
	GetApplications(ctx context.Context, componentType types.ComponentType) ([]ApplicationSummary, error)
	GetTiers(ctx context.Context, applicationID int64) ([]types.Tier, error)
	GetNodes(ctx context.Context, applicationID int64) ([]*types.Node, error)
	GetAppAgentMetadata(ctx context.Context, applicationID int64, nodeIDs []int64) ([]AgentMetadata, error)
	GetMetricData(ctx context.Context, applicationID int64, metricPath string, rollup bool, durationMins int) ([]types.MetricSeries, error)
	GetBackends(ctx context.Context, applicationID int64) ([]types.Backend, error)
	GetErrorRules(ctx context.Context, applicationID int64) ([]types.ErrorRule, error)

	// Host identifies the controller for logging.
	Host() string

	// TimeRangeMins is the configured metric query window.
	TimeRangeMins() int
}

// RequestError wraps any remote-call failure: timeout, HTTP error status, or
// malformed payload. It is never fatal to a run.
type RequestError struct {
	Op         string
	URL        string
	StatusCode int
	Err        error
}

func (e *RequestError) Error() string {

	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: status %d", e.Op, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *RequestError) Unwrap() error {

	return e.Err
}
