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

package cmd

import (
	"context"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/configassess/config-assessor-go/internal/assessor/aggregate"
	"github.com/configassess/config-assessor-go/internal/assessor/config"
	"github.com/configassess/config-assessor-go/internal/assessor/engine"
	"github.com/configassess/config-assessor-go/internal/assessor/jobstep"
	"github.com/configassess/config-assessor-go/internal/assessor/limiter"
	"github.com/configassess/config-assessor-go/internal/assessor/obs"
	"github.com/configassess/config-assessor-go/internal/assessor/report"
	"github.com/configassess/config-assessor-go/internal/util/logger"
)

var (
	jobPath        string
	thresholdsPath string
)

func AssessCommand() *cobra.Command {

	cmd := &cobra.Command{
		Use:     "assess",
		Aliases: []string{"assess", "run", "a"},
		Short:   "Run a configuration maturity assessment",
		RunE: func(cmd *cobra.Command, args []string) error {
			return assess(cmd.Context(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&jobPath, "config", "c", "", "job config file path")
	cmd.Flags().StringVarP(&thresholdsPath, "thresholds", "t", "", "threshold spec file path")
	return cmd
}

func loadByPath() (*config.JobConfig, config.ThresholdSpec, error) {

	loader := config.New(jobPath, thresholdsPath)

	cfg, err := loader.LoadJobConfig()
	if err != nil {
		return nil, nil, err
	}
	if err := loader.ValidateJobConfig(cfg); err != nil {
		return nil, nil, err
	}

	thresholds, err := loader.LoadThresholdSpec()
	if err != nil {
		return nil, nil, err
	}

	return cfg, thresholds, nil
}

func assess(ctx context.Context, logOut io.Writer) error {

	cfg, thresholds, err := loadByPath()
	if err != nil {
		return err
	}

	log := logger.NewLogger(logOut, cfg.Logging)

	// A signal during the run cancels in-flight remote calls; completed
	// analysis stays in the aggregator but no snapshot is written.
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.MetricsAddr != "" {
		metricsRunner := obs.New(cfg.MetricsAddr, log)
		go func() {
			if err := metricsRunner.Start(ctx); err != nil {
				log.Error(err, "metrics server stopped")
			}
		}()
	}

	lim, err := limiter.New(cfg.MaxConcurrency)
	if err != nil {
		return err
	}

	registry, err := jobstep.DefaultRegistry(jobstep.Deps{
		Limiter: lim,
		Logger:  log,
	})
	if err != nil {
		return err
	}

	agg := aggregate.New()
	orch := engine.New(cfg, thresholds, registry, agg, log, nil)

	if err := orch.Run(ctx); err != nil {
		log.Error(err, "assessment run failed")
		return err
	}

	if cfg.SnapshotPath != "" {
		writer := report.NewWriter(cfg.SnapshotPath, log)
		if err := writer.Write(agg); err != nil {
			log.Error(err, "snapshot write failed")
			return err
		}
	}

	return nil
}
