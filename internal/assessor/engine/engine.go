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

package engine

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/configassess/config-assessor-go/internal/assessor/aggregate"
	"github.com/configassess/config-assessor-go/internal/assessor/api"
	"github.com/configassess/config-assessor-go/internal/assessor/config"
	"github.com/configassess/config-assessor-go/internal/assessor/jobstep"
	"github.com/configassess/config-assessor-go/internal/assessor/obs"
	"github.com/configassess/config-assessor-go/internal/assessor/types"
	loggertypes "github.com/configassess/config-assessor-go/internal/types/logger"
	"github.com/configassess/config-assessor-go/internal/util/logger"
)

// ClientFactory builds the API client for one controller. Injectable so runs
// can be driven against a fake in tests.
type ClientFactory func(controller types.Controller, callTimeout time.Duration, log logger.Logger) api.Client

// DefaultClientFactory builds the REST client used in production runs.
func DefaultClientFactory(controller types.Controller, callTimeout time.Duration, log logger.Logger) api.Client {

	return api.NewHTTPClient(controller, callTimeout, log)
}

// Orchestrator drives one assessment run: controllers sequentially, and for
// each controller every configured job step's Extract in order followed by
// every Analyze in order. Concurrency lives inside the steps' fan-out, never
// across controllers or steps.
type Orchestrator struct {
	cfg           *config.JobConfig
	thresholds    config.ThresholdSpec
	registry      *jobstep.Registry
	agg           *aggregate.Aggregator
	logger        logger.Logger
	clientFactory ClientFactory
}

func New(cfg *config.JobConfig, thresholds config.ThresholdSpec, registry *jobstep.Registry, agg *aggregate.Aggregator, log logger.Logger, clientFactory ClientFactory) *Orchestrator {

	if clientFactory == nil {
		clientFactory = DefaultClientFactory
	}

	return &Orchestrator{
		cfg:           cfg,
		thresholds:    thresholds,
		registry:      registry,
		agg:           agg,
		logger:        log.WithName(string(loggertypes.LogComponentEngine)),
		clientFactory: clientFactory,
	}
}

// Run executes the full assessment. Remote failures degrade to missing data
// inside the steps; the errors that surface here are configuration or
// programming errors and abort the run.
func (o *Orchestrator) Run(ctx context.Context) error {

	runID := uuid.NewString()
	log := o.logger.WithValues("runId", runID)

	started := time.Now()
	log.Info("assessment run starting", "controllers", len(o.cfg.Controllers))

	for _, controller := range o.cfg.Controllers {
		if err := o.runController(ctx, controller, log); err != nil {
			return err
		}
	}

	if err := o.rollUp(); err != nil {
		return err
	}

	log.Info("assessment run finished", "elapsed", time.Since(started).String())

	return nil
}

func (o *Orchestrator) runController(ctx context.Context, controller types.Controller, log logger.Logger) error {

	log.Info("assessing controller", "host", controller.Host)

	o.agg.AddController(controller)
	client := o.clientFactory(controller, o.cfg.CallTimeoutDuration(), o.logger)

	for _, componentType := range o.componentTypes() {
		steps, err := o.registry.Resolve(componentType, o.cfg.JobSteps[componentType])
		if err != nil {
			return err
		}

		// Both phases run in configured order: analysis of one step may read
		// node decorations extracted by an earlier one.
		for _, step := range steps {
			if err := o.runPhase(step.Name(), "extract", func() error {
				return step.Extract(ctx, client, o.agg)
			}); err != nil {
				return err
			}
		}

		for _, step := range steps {
			if err := o.runPhase(step.Name(), "analyze", func() error {
				return step.Analyze(client, o.agg, o.thresholds)
			}); err != nil {
				return err
			}
		}
	}

	return nil
}

func (o *Orchestrator) runPhase(stepName, phase string, fn func() error) error {

	started := time.Now()
	err := fn()
	obs.JobStepDuration.WithLabelValues(stepName, phase).Observe(time.Since(started).Seconds())

	return err
}

// componentTypes returns the configured component types in stable order so
// runs over the same config visit them identically.
func (o *Orchestrator) componentTypes() []types.ComponentType {

	componentTypes := make([]types.ComponentType, 0, len(o.cfg.JobSteps))
	for componentType := range o.cfg.JobSteps {
		componentTypes = append(componentTypes, componentType)
	}
	sort.Slice(componentTypes, func(i, j int) bool { return componentTypes[i] < componentTypes[j] })

	return componentTypes
}

// rollUp writes the overall assessment per application: the floor of the mean
// grade ordinal across every graded job step. An application with no graded
// steps rolls up to bronze.
func (o *Orchestrator) rollUp() error {

	for _, host := range o.agg.Hosts() {
		for _, componentType := range o.componentTypes() {
			for _, app := range o.agg.Applications(host, componentType) {
				if err := o.rollUpApplication(app); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

func (o *Orchestrator) rollUpApplication(app *types.Application) error {

	var sum, count int
	for name, result := range app.Results {
		if name == jobstep.StepOverallAssessment {
			continue
		}
		ordinal := result.Grade.Ordinal()
		if ordinal < 0 {
			continue
		}
		sum += ordinal
		count++
	}

	overall := types.GradeBronze
	raw := types.NewResultMap()
	evaluated := types.NewResultMap()

	if count > 0 {
		overall = types.GradeFromOrdinal(sum / count)
		evaluated.Set("meanGradeOrdinal", float64(sum)/float64(count))
	} else {
		evaluated.Set("meanGradeOrdinal", float64(0))
	}
	raw.Set("numberOfGradedJobSteps", float64(count))

	return o.agg.RecordJobStepResult(app, jobstep.StepOverallAssessment, &types.JobStepResult{
		Raw:       raw,
		Evaluated: evaluated,
		Grade:     overall,
	})
}
