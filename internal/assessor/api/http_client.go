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
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/configassess/config-assessor-go/internal/assessor/types"
	loggertypes "github.com/configassess/config-assessor-go/internal/types/logger"
	"github.com/configassess/config-assessor-go/internal/util/logger"
)

// HTTPClient talks to one controller over its REST API with basic auth.
// Credentials is the opaque "user@account:secret" handle from the job
// config, split at the first colon.
type HTTPClient struct {
	controller  types.Controller
	callTimeout time.Duration
	httpClient  *http.Client
	logger      logger.Logger
}

func NewHTTPClient(controller types.Controller, callTimeout time.Duration, log logger.Logger) *HTTPClient {

	return &HTTPClient{
		controller:  controller,
		callTimeout: callTimeout,
		httpClient:  &http.Client{},
		logger:      log.WithName(string(loggertypes.LogComponentAPIClient)),
	}
}

func (c *HTTPClient) Host() string {

	return c.controller.Host
}

func (c *HTTPClient) TimeRangeMins() int {

	return c.controller.TimeRangeMins
}

func (c *HTTPClient) GetApplications(ctx context.Context, componentType types.ComponentType) ([]ApplicationSummary, error) {

	path := "/controller/rest/applications"
	if componentType == types.ComponentBRUM {
		path = "/controller/rest/eumApplications"
	}

	var apps []ApplicationSummary
	if err := c.get(ctx, "GetApplications", path, nil, &apps); err != nil {
		return nil, err
	}
	return apps, nil
}

func (c *HTTPClient) GetTiers(ctx context.Context, applicationID int64) ([]types.Tier, error) {

	var tiers []types.Tier
	path := fmt.Sprintf("/controller/rest/applications/%d/tiers", applicationID)
	if err := c.get(ctx, "GetTiers", path, nil, &tiers); err != nil {
		return nil, err
	}
	return tiers, nil
}

func (c *HTTPClient) GetNodes(ctx context.Context, applicationID int64) ([]*types.Node, error) {

	var nodes []*types.Node
	path := fmt.Sprintf("/controller/rest/applications/%d/nodes", applicationID)
	if err := c.get(ctx, "GetNodes", path, nil, &nodes); err != nil {
		return nil, err
	}
	return nodes, nil
}

func (c *HTTPClient) GetAppAgentMetadata(ctx context.Context, applicationID int64, nodeIDs []int64) ([]AgentMetadata, error) {

	ids := make([]string, len(nodeIDs))
	for i, id := range nodeIDs {
		ids[i] = strconv.FormatInt(id, 10)
	}

	query := url.Values{"node-ids": []string{strings.Join(ids, ",")}}

	var metadata []AgentMetadata
	path := fmt.Sprintf("/controller/restui/agents/%d/appAgentMetadata", applicationID)
	if err := c.get(ctx, "GetAppAgentMetadata", path, query, &metadata); err != nil {
		return nil, err
	}
	return metadata, nil
}

func (c *HTTPClient) GetMetricData(ctx context.Context, applicationID int64, metricPath string, rollup bool, durationMins int) ([]types.MetricSeries, error) {

	query := url.Values{
		"metric-path":      []string{metricPath},
		"rollup":           []string{strconv.FormatBool(rollup)},
		"time-range-type":  []string{"BEFORE_NOW"},
		"duration-in-mins": []string{strconv.Itoa(durationMins)},
	}

	var series []types.MetricSeries
	path := fmt.Sprintf("/controller/rest/applications/%d/metric-data", applicationID)
	if err := c.get(ctx, "GetMetricData", path, query, &series); err != nil {
		return nil, err
	}
	return series, nil
}

func (c *HTTPClient) GetBackends(ctx context.Context, applicationID int64) ([]types.Backend, error) {

	var backends []types.Backend
	path := fmt.Sprintf("/controller/rest/applications/%d/backends", applicationID)
	if err := c.get(ctx, "GetBackends", path, nil, &backends); err != nil {
		return nil, err
	}
	return backends, nil
}

func (c *HTTPClient) GetErrorRules(ctx context.Context, applicationID int64) ([]types.ErrorRule, error) {

	var rules []types.ErrorRule
	path := fmt.Sprintf("/controller/restui/applicationConfiguration/%d/errorRules", applicationID)
	if err := c.get(ctx, "GetErrorRules", path, nil, &rules); err != nil {
		return nil, err
	}
	return rules, nil
}

// get performs one JSON GET with the per-call timeout, the sole cancellation
// primitive for remote calls.
func (c *HTTPClient) get(ctx context.Context, op, path string, query url.Values, out any) error {

	ctx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	if query == nil {
		query = url.Values{}
	}
	query.Set("output", "JSON")

	requestURL := strings.TrimSuffix(c.controller.Host, "/") + path + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return &RequestError{Op: op, URL: requestURL, Err: err}
	}

	if user, secret, found := strings.Cut(c.controller.Credentials, ":"); found {
		req.SetBasicAuth(user, secret)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Sugar().Debugf("%s - %s failed: %v", c.controller.Host, op, err)
		return &RequestError{Op: op, URL: requestURL, Err: err}
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Error(err, "close response body failed")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		c.logger.Sugar().Debugf("%s - %s returned status %d", c.controller.Host, op, resp.StatusCode)
		return &RequestError{Op: op, URL: requestURL, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &RequestError{Op: op, URL: requestURL, Err: err}
	}

	return nil
}
