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
	"github.com/configassess/config-assessor-go/internal/assessor/limiter"
	"github.com/configassess/config-assessor-go/internal/assessor/obs"
	"github.com/configassess/config-assessor-go/internal/assessor/types"
)

// ApplicationDiscovery seeds the aggregator for one controller: the
// application list, each application's tiers and nodes, and per-node agent
// metadata. It must run before every other step; later steps decorate the
// node lists it creates and never replace them.
type ApplicationDiscovery struct {
	base
}

func NewApplicationDiscovery(deps Deps) *ApplicationDiscovery {

	return &ApplicationDiscovery{base: newBase(StepApplicationDiscovery, types.ComponentAPM, deps)}
}

func (s *ApplicationDiscovery) Extract(ctx context.Context, client api.Client, agg *aggregate.Aggregator) error {

	s.logger.Info("extracting", "host", client.Host())

	summaries, err := client.GetApplications(ctx, s.componentType)
	obs.ObserveRemoteCall("GetApplications", err)
	if err != nil {
		// Degraded controller: no applications discoverable this run.
		s.logger.Error(err, "listing applications failed, controller will have no data", "host", client.Host())
		return nil
	}

	apps := make([]*types.Application, len(summaries))
	for i, summary := range summaries {
		app := agg.GetOrCreateApplication(client.Host(), s.componentType, summary.ID)
		app.Name = summary.Name
		app.Description = summary.Description
		apps[i] = app
	}

	// Tiers and nodes are fetched as two same-order batches and zipped back
	// onto apps, so both fan-outs go through the order-preserving limiter.
	tierTasks := make([]limiter.Task[[]types.Tier], len(apps))
	nodeTasks := make([]limiter.Task[[]*types.Node], len(apps))
	for i, app := range apps {
		appID := app.ID
		tierTasks[i] = func(ctx context.Context) ([]types.Tier, error) {
			return client.GetTiers(ctx, appID)
		}
		nodeTasks[i] = func(ctx context.Context) ([]*types.Node, error) {
			return client.GetNodes(ctx, appID)
		}
	}

	tierResults := limiter.Run(ctx, s.limiter, tierTasks)
	nodeResults := limiter.Run(ctx, s.limiter, nodeTasks)

	for i, app := range apps {
		obs.ObserveRemoteCall("GetTiers", tierResults[i].Err)
		if tierResults[i].Err != nil {
			s.logger.Sugar().Debugf("%s - tier listing failed for application %d: %v", client.Host(), app.ID, tierResults[i].Err)
		} else {
			app.Tiers = tierResults[i].Value
		}

		obs.ObserveRemoteCall("GetNodes", nodeResults[i].Err)
		if nodeResults[i].Err != nil {
			s.logger.Sugar().Debugf("%s - node listing failed for application %d: %v", client.Host(), app.ID, nodeResults[i].Err)
		} else {
			app.Nodes = nodeResults[i].Value
		}
	}

	// Agent metadata arrives in node-id order, zipped against each
	// application's node list.
	metadataTasks := make([]limiter.Task[[]api.AgentMetadata], len(apps))
	for i, app := range apps {
		appID := app.ID
		nodeIDs := make([]int64, len(app.Nodes))
		for j, node := range app.Nodes {
			nodeIDs[j] = node.ID
		}
		metadataTasks[i] = func(ctx context.Context) ([]api.AgentMetadata, error) {
			if len(nodeIDs) == 0 {
				return nil, nil
			}
			return client.GetAppAgentMetadata(ctx, appID, nodeIDs)
		}
	}

	metadataResults := limiter.Run(ctx, s.limiter, metadataTasks)
	for i, app := range apps {
		obs.ObserveRemoteCall("GetAppAgentMetadata", metadataResults[i].Err)
		if metadataResults[i].Err != nil {
			s.logger.Sugar().Debugf("%s - agent metadata failed for application %d: %v", client.Host(), app.ID, metadataResults[i].Err)
			continue
		}
		for j, metadata := range metadataResults[i].Value {
			if j >= len(app.Nodes) {
				break
			}
			node := app.Nodes[j]
			node.AgentType = metadata.AgentType
			node.AppAgentVersion = metadata.AgentVersion
			node.AppAgentPresent = metadata.AgentPresent || metadata.AgentVersion != ""
		}
	}

	return nil
}

func (s *ApplicationDiscovery) Analyze(client api.Client, agg *aggregate.Aggregator, thresholds config.ThresholdSpec) error {

	jobStepThresholds, err := thresholds.ForJobStep(s.componentType, s.name)
	if err != nil {
		return err
	}

	s.logger.Info("analyzing", "host", client.Host())

	apps := agg.Applications(client.Host(), s.componentType)
	s.analyzeEach(client, apps, func(app *types.Application) error {
		raw := types.NewResultMap()
		evaluated := types.NewResultMap()

		raw.Set("numberOfApplications", float64(len(apps)))
		raw.Set("numberOfTiers", float64(len(app.Tiers)))
		raw.Set("numberOfNodes", float64(len(app.Nodes)))

		evaluated.Set("hasTiers", len(app.Tiers) > 0)
		evaluated.Set("hasNodes", len(app.Nodes) > 0)

		return s.gradeAndRecord(agg, app, raw, evaluated, jobStepThresholds)
	})

	return nil
}
