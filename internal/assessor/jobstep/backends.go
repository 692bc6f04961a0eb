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

// backendRegistrationLimit is the controller-side cap on registered
// backends per application; hitting it means new backends silently stop
// being discovered.
const backendRegistrationLimit = 300

// Backends assesses backend configuration coverage per application.
type Backends struct {
	base
}

func NewBackends(deps Deps) *Backends {

	return &Backends{base: newBase(StepBackends, types.ComponentAPM, deps)}
}

func (s *Backends) Extract(ctx context.Context, client api.Client, agg *aggregate.Aggregator) error {

	s.logger.Info("extracting", "host", client.Host())

	apps := agg.Applications(client.Host(), s.componentType)

	tasks := make([]limiter.Task[[]types.Backend], len(apps))
	for i, app := range apps {
		appID := app.ID
		tasks[i] = func(ctx context.Context) ([]types.Backend, error) {
			return client.GetBackends(ctx, appID)
		}
	}

	results := limiter.Run(ctx, s.limiter, tasks)
	for i, r := range results {
		obs.ObserveRemoteCall("GetBackends", r.Err)
		if r.Err != nil {
			s.logger.Sugar().Debugf("%s - backend listing failed for application %d: %v", client.Host(), apps[i].ID, r.Err)
			continue
		}
		apps[i].Backends = r.Value
	}

	return nil
}

func (s *Backends) Analyze(client api.Client, agg *aggregate.Aggregator, thresholds config.ThresholdSpec) error {

	jobStepThresholds, err := thresholds.ForJobStep(s.componentType, s.name)
	if err != nil {
		return err
	}

	s.logger.Info("analyzing", "host", client.Host())

	apps := agg.Applications(client.Host(), s.componentType)
	s.analyzeEach(client, apps, func(app *types.Application) error {
		raw := types.NewResultMap()
		evaluated := types.NewResultMap()

		raw.Set("numberOfBackends", float64(len(app.Backends)))

		evaluated.Set("backendLimitNotHit", len(app.Backends) < backendRegistrationLimit)
		evaluated.Set("numberOfBackends", float64(len(app.Backends)))

		return s.gradeAndRecord(agg, app, raw, evaluated, jobStepThresholds)
	})

	return nil
}
