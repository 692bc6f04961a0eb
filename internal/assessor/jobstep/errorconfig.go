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

// ErrorConfiguration assesses custom error-detection rule coverage per
// application.
type ErrorConfiguration struct {
	base
}

func NewErrorConfiguration(deps Deps) *ErrorConfiguration {

	return &ErrorConfiguration{base: newBase(StepErrorConfiguration, types.ComponentAPM, deps)}
}

func (s *ErrorConfiguration) Extract(ctx context.Context, client api.Client, agg *aggregate.Aggregator) error {

	s.logger.Info("extracting", "host", client.Host())

	apps := agg.Applications(client.Host(), s.componentType)

	tasks := make([]limiter.Task[[]types.ErrorRule], len(apps))
	for i, app := range apps {
		appID := app.ID
		tasks[i] = func(ctx context.Context) ([]types.ErrorRule, error) {
			return client.GetErrorRules(ctx, appID)
		}
	}

	results := limiter.Run(ctx, s.limiter, tasks)
	for i, r := range results {
		obs.ObserveRemoteCall("GetErrorRules", r.Err)
		if r.Err != nil {
			s.logger.Sugar().Debugf("%s - error rule listing failed for application %d: %v", client.Host(), apps[i].ID, r.Err)
			continue
		}
		apps[i].ErrorRules = r.Value
	}

	return nil
}

func (s *ErrorConfiguration) Analyze(client api.Client, agg *aggregate.Aggregator, thresholds config.ThresholdSpec) error {

	jobStepThresholds, err := thresholds.ForJobStep(s.componentType, s.name)
	if err != nil {
		return err
	}

	s.logger.Info("analyzing", "host", client.Host())

	apps := agg.Applications(client.Host(), s.componentType)
	s.analyzeEach(client, apps, func(app *types.Application) error {
		raw := types.NewResultMap()
		evaluated := types.NewResultMap()

		var enabled float64
		for _, rule := range app.ErrorRules {
			if rule.Enabled {
				enabled++
			}
		}

		raw.Set("numberOfCustomErrorRules", float64(len(app.ErrorRules)))
		raw.Set("numberOfEnabledErrorRules", enabled)

		evaluated.Set("hasCustomErrorRules", len(app.ErrorRules) > 0)
		if len(app.ErrorRules) != 0 {
			evaluated.Set("percentErrorRulesEnabled", enabled/float64(len(app.ErrorRules))*100)
		} else {
			evaluated.Set("percentErrorRulesEnabled", float64(0))
		}

		return s.gradeAndRecord(agg, app, raw, evaluated, jobStepThresholds)
	})

	return nil
}
