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
	"fmt"
	"time"

	"github.com/configassess/config-assessor-go/internal/assessor/aggregate"
	"github.com/configassess/config-assessor-go/internal/assessor/api"
	"github.com/configassess/config-assessor-go/internal/assessor/config"
	"github.com/configassess/config-assessor-go/internal/assessor/grading"
	"github.com/configassess/config-assessor-go/internal/assessor/limiter"
	"github.com/configassess/config-assessor-go/internal/assessor/obs"
	"github.com/configassess/config-assessor-go/internal/assessor/types"
	loggertypes "github.com/configassess/config-assessor-go/internal/types/logger"
	"github.com/configassess/config-assessor-go/internal/util/logger"
)

// JobStep is one evaluation area's extract+analyze unit.
//
// Extract is network bound: it issues remote queries through the shared
// limiter and merges results into the aggregator. A remote failure degrades
// that query's contribution to zero, it never aborts the step. Analyze is
// CPU only and never suspends; it computes the raw and evaluated indicator
// maps per application, grades them, and records the result.
//
// A step instance is reused across controllers and must not retain state
// between Extract calls for different controllers.
type JobStep interface {
	Name() string
	ComponentType() types.ComponentType
	Extract(ctx context.Context, client api.Client, agg *aggregate.Aggregator) error
	Analyze(client api.Client, agg *aggregate.Aggregator, thresholds config.ThresholdSpec) error
}

// Deps carries the shared collaborators injected into every step. Now is
// injectable so that time-derived indicators stay testable.
type Deps struct {
	Limiter *limiter.Limiter
	Logger  logger.Logger
	Now     func() time.Time
}

// base carries the identity and collaborators every concrete step embeds.
type base struct {
	name          string
	componentType types.ComponentType
	limiter       *limiter.Limiter
	logger        logger.Logger
	now           func() time.Time
}

func newBase(name string, componentType types.ComponentType, deps Deps) base {

	now := deps.Now
	if now == nil {
		now = time.Now
	}

	return base{
		name:          name,
		componentType: componentType,
		limiter:       deps.Limiter,
		logger:        deps.Logger.WithName(string(loggertypes.LogComponentJobStep)).WithValues("jobStep", name),
		now:           now,
	}
}

func (b *base) Name() string { return b.name }

func (b *base) ComponentType() types.ComponentType { return b.componentType }

// gatherMetricData issues one metric query per application through the
// limiter and returns one batch per application in application order. A
// failed query yields an empty batch for that application.
func (b *base) gatherMetricData(ctx context.Context, client api.Client, apps []*types.Application, metricPath string) [][]types.MetricSeries {

	tasks := make([]limiter.Task[[]types.MetricSeries], len(apps))
	for i, app := range apps {
		appID := app.ID
		tasks[i] = func(ctx context.Context) ([]types.MetricSeries, error) {
			return client.GetMetricData(ctx, appID, metricPath, true, client.TimeRangeMins())
		}
	}

	results := limiter.Run(ctx, b.limiter, tasks)

	batches := make([][]types.MetricSeries, len(apps))
	for i, r := range results {
		obs.ObserveRemoteCall("GetMetricData", r.Err)
		if r.Err != nil {
			b.logger.Sugar().Debugf("%s - metric query failed for application %d, treating as no data: %v", client.Host(), apps[i].ID, r.Err)
			continue
		}
		batches[i] = r.Value
	}

	return batches
}

// analyzeEach runs fn once per application, recovering from per-application
// panics so a programming error in one entity's analysis never crashes the
// siblings.
func (b *base) analyzeEach(client api.Client, apps []*types.Application, fn func(app *types.Application) error) {

	for _, app := range apps {
		if err := b.analyzeOne(app, fn); err != nil {
			b.logger.Error(err, "analysis failed for application", "host", client.Host(), "application", app.Name, "applicationId", app.ID)
		}
	}
}

func (b *base) analyzeOne(app *types.Application, fn func(app *types.Application) error) (err error) {

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("analysis panic: %v", r)
		}
	}()

	return fn(app)
}

// gradeAndRecord grades one application's evaluated indicators and records
// the full job step result.
func (b *base) gradeAndRecord(agg *aggregate.Aggregator, app *types.Application, raw, evaluated *types.ResultMap, thresholds config.JobStepThresholds) error {

	outcome := grading.Grade(evaluated, thresholds)

	return agg.RecordJobStepResult(app, b.name, &types.JobStepResult{
		Raw:             raw,
		Evaluated:       evaluated,
		Grade:           outcome.Grade,
		IndicatorGrades: outcome.IndicatorGrades,
	})
}
