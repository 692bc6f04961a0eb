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

package config

import (
	"errors"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/configassess/config-assessor-go/internal/assessor/types"
	assessorerr "github.com/configassess/config-assessor-go/internal/assessor/types/err"
	loggertypes "github.com/configassess/config-assessor-go/internal/types/logger"
	"github.com/configassess/config-assessor-go/internal/util/logger"
)

const (
	DefaultMaxConcurrency = 50
	DefaultTimeRangeMins  = 1440
	DefaultCallTimeout    = 30 * time.Second
)

// JobConfig is the per-run job configuration: which controllers to assess,
// in which order the job steps run, and the fan-out tuning.
type JobConfig struct {
	Controllers []types.Controller `yaml:"controllers"`

	// JobSteps is the ordered step-name registry per component type. Order
	// matters: later steps decorate nodes discovered by earlier ones.
	JobSteps map[types.ComponentType][]string `yaml:"jobSteps"`

	// MaxConcurrency bounds in-flight remote calls per controller. It is
	// fixed for the run, never adjusted dynamically.
	MaxConcurrency int `yaml:"maxConcurrency"`

	// CallTimeout is the per-call timeout, the only cancellation primitive
	// applied to remote calls. Duration string, e.g. "30s".
	CallTimeout string `yaml:"callTimeout"`

	// MetricsAddr, when set, serves prometheus metrics during the run,
	// e.g. ":9090".
	MetricsAddr string `yaml:"metricsAddr"`

	// SnapshotPath, when set, is where the completed result tree is written
	// as JSON for downstream report writers.
	SnapshotPath string `yaml:"snapshotPath"`

	Logging *loggertypes.AssessorLogging `yaml:"logging"`
}

// CallTimeoutDuration resolves the per-call timeout, falling back to the
// default when unset or unparsable.
func (c *JobConfig) CallTimeoutDuration() time.Duration {

	if c.CallTimeout != "" {
		if d, err := time.ParseDuration(c.CallTimeout); err == nil {
			return d
		}
	}
	return DefaultCallTimeout
}

type Loader struct {
	jobPath        string
	thresholdsPath string
	logger         logger.Logger
}

func New(jobPath, thresholdsPath string) *Loader {

	return &Loader{
		jobPath:        jobPath,
		thresholdsPath: thresholdsPath,
	}
}

func (l *Loader) LoadJobConfig() (*JobConfig, error) {

	l.logger = logger.DefaultLogger(os.Stdout, loggertypes.LogLevelInfo).WithName("config-loader")

	var cfg JobConfig
	if err := l.decodeYAML(l.jobPath, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (l *Loader) LoadThresholdSpec() (ThresholdSpec, error) {

	l.logger = logger.DefaultLogger(os.Stdout, loggertypes.LogLevelInfo).WithName("config-loader")

	var spec ThresholdSpec
	if err := l.decodeYAML(l.thresholdsPath, &spec); err != nil {
		return nil, err
	}

	if err := spec.Validate(); err != nil {
		l.logger.Error(err, "threshold spec validation failed", "path", l.thresholdsPath)
		return nil, err
	}

	return spec, nil
}

func (l *Loader) decodeYAML(path string, out any) error {

	if path == "" {
		l.logger.Info("assessor-config-loader: path is empty")
		return errors.New("assessor-config-loader: path is empty")
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		l.logger.Error(err, "assessor-config-loader: file not exist", "path", path)
		return err
	}

	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func(file *os.File) {
		err := file.Close()
		if err != nil {
			l.logger.Error(err, "close config file failed")
		}
	}(file)

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(out); err != nil {
		l.logger.Error(err, "decode config file failed", "path", path)
		return err
	}

	return nil
}

func (l *Loader) ValidateJobConfig(cfg *JobConfig) error {

	if cfg == nil {
		l.logger.Error(assessorerr.JobConfigIsNil, "assessor-config-loader is nil")
		return assessorerr.JobConfigIsNil
	}

	if len(cfg.Controllers) == 0 {
		l.logger.Error(assessorerr.NoControllersConfigured, "job config has no controllers")
		return assessorerr.NoControllersConfigured
	}

	if len(cfg.JobSteps) == 0 {
		l.logger.Error(assessorerr.NoJobStepsConfigured, "job config has no job steps")
		return assessorerr.NoJobStepsConfigured
	}

	if cfg.MaxConcurrency == 0 {
		l.logger.Sugar().Debugf("maxConcurrency not set, defaulting to %d", DefaultMaxConcurrency)
		cfg.MaxConcurrency = DefaultMaxConcurrency
	}
	if cfg.MaxConcurrency < 0 {
		return assessorerr.ConcurrencyNotPositive
	}

	if _, err := time.ParseDuration(cfg.CallTimeout); cfg.CallTimeout != "" && err != nil {
		l.logger.Error(err, "invalid callTimeout", "callTimeout", cfg.CallTimeout)
		return err
	}

	for i := range cfg.Controllers {
		if cfg.Controllers[i].TimeRangeMins <= 0 {
			cfg.Controllers[i].TimeRangeMins = DefaultTimeRangeMins
		}
	}

	if cfg.Logging == nil {
		cfg.Logging = loggertypes.DefaultAssessorLogging()
	}
	cfg.Logging.SetAssessorLoggingDefaults()

	return nil
}
