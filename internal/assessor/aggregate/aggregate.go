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
	"fmt"
	"sort"
	"sync"

	"github.com/configassess/config-assessor-go/internal/assessor/types"
	assessorerr "github.com/configassess/config-assessor-go/internal/assessor/types/err"
	"github.com/configassess/config-assessor-go/internal/util/metricpath"
)

// ControllerData is one controller's slice of the result tree.
type ControllerData struct {
	Controller types.Controller                                      `json:"controller"`
	Components map[types.ComponentType]map[int64]*types.Application `json:"components"`
}

// Aggregator is the in-memory result tree job steps read from and write
// into: controller -> component type -> application -> nodes/results.
//
// Structural mutation (creating controllers, applications, recording
// results) is guarded by a mutex and safe for concurrent writers decorating
// disjoint applications. Node decoration within one application is
// serialized by phase: all concurrent fan-out for one metric type completes
// and merges before the next begins.
type Aggregator struct {
	mu          sync.Mutex
	controllers map[string]*ControllerData
}

func New() *Aggregator {

	return &Aggregator{
		controllers: make(map[string]*ControllerData),
	}
}

// AddController seeds the tree for one controller. Idempotent.
func (a *Aggregator) AddController(controller types.Controller) *ControllerData {

	a.mu.Lock()
	defer a.mu.Unlock()

	if data, ok := a.controllers[controller.Host]; ok {
		return data
	}

	data := &ControllerData{
		Controller: controller,
		Components: make(map[types.ComponentType]map[int64]*types.Application),
	}
	a.controllers[controller.Host] = data

	return data
}

// GetOrCreateApplication returns the one Application object for
// (controller, componentType, appID), creating it on first use. Every job
// step sees the same object.
func (a *Aggregator) GetOrCreateApplication(host string, componentType types.ComponentType, appID int64) *types.Application {

	a.mu.Lock()
	defer a.mu.Unlock()

	data, ok := a.controllers[host]
	if !ok {
		data = &ControllerData{
			Controller: types.Controller{Host: host},
			Components: make(map[types.ComponentType]map[int64]*types.Application),
		}
		a.controllers[host] = data
	}

	apps, ok := data.Components[componentType]
	if !ok {
		apps = make(map[int64]*types.Application)
		data.Components[componentType] = apps
	}

	app, ok := apps[appID]
	if !ok {
		app = &types.Application{
			ID:      appID,
			Results: make(map[string]*types.JobStepResult),
		}
		apps[appID] = app
	}

	return app
}

// Applications returns one controller/componentType's applications in
// ascending id order, for deterministic iteration.
func (a *Aggregator) Applications(host string, componentType types.ComponentType) []*types.Application {

	a.mu.Lock()
	defer a.mu.Unlock()

	data, ok := a.controllers[host]
	if !ok {
		return nil
	}

	apps := make([]*types.Application, 0, len(data.Components[componentType]))
	for _, app := range data.Components[componentType] {
		apps = append(apps, app)
	}
	sort.Slice(apps, func(i, j int) bool { return apps[i].ID < apps[j].ID })

	return apps
}

// MergeMetricSeries decorates an application's nodes from one metric query's
// result batch. It builds a composite tierName|nodeName -> value map first,
// then walks the node list applying decorate with the looked-up value, 0 on
// a missing key. Partial data is expected: a series whose path omits a
// segment produces an empty key that matches no node and is dropped
// harmlessly. Existing decorations from earlier job steps are never removed.
func (a *Aggregator) MergeMetricSeries(app *types.Application, series []types.MetricSeries, tierMarker, nodeMarker string, decorate func(node *types.Node, value float64)) {

	byNodeKey := make(map[string]float64, len(series))
	for _, s := range series {
		tierName, nodeName := metricpath.TierAndNode(s.MetricPath, tierMarker, nodeMarker)
		byNodeKey[metricpath.NodeKey(tierName, nodeName)] = s.Sum()
	}

	for _, node := range app.Nodes {
		value := byNodeKey[metricpath.NodeKey(node.TierName, node.Name)]
		decorate(node, value)
	}
}

// RecordJobStepResult writes one job step's outcome for one application.
// Single writer per (application, jobStepName): a second write for the same
// pair is a programming error and is rejected rather than silently replacing
// the first.
func (a *Aggregator) RecordJobStepResult(app *types.Application, jobStepName string, result *types.JobStepResult) error {

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := app.Results[jobStepName]; ok {
		return fmt.Errorf("%w: %q for application %d", assessorerr.DuplicateJobStepResult, jobStepName, app.ID)
	}
	app.Results[jobStepName] = result

	return nil
}

// Snapshot exposes the completed tree, read-only from that point forward,
// for report writers.
func (a *Aggregator) Snapshot() map[string]*ControllerData {

	a.mu.Lock()
	defer a.mu.Unlock()

	return a.controllers
}

// Hosts returns controller hosts in stable order.
func (a *Aggregator) Hosts() []string {

	a.mu.Lock()
	defer a.mu.Unlock()

	hosts := make([]string, 0, len(a.controllers))
	for host := range a.controllers {
		hosts = append(hosts, host)
	}
	sort.Strings(hosts)

	return hosts
}
