// Licensed to the Apache Software Foundation (ASF) under one
// or more contributor license agreements.  See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership.  The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License.  You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/configassess/config-assessor-go/internal/assessor/types"
	assessorerr "github.com/configassess/config-assessor-go/internal/assessor/types/err"
	loggertypes "github.com/configassess/config-assessor-go/internal/types/logger"
	"github.com/configassess/config-assessor-go/internal/util/logger"
)

func testLogger() logger.Logger {
	return logger.DefaultLogger(os.Stdout, loggertypes.LogLevelError)
}

func writeTempFile(t *testing.T, pattern, content string) string {
	t.Helper()

	dumpfile, err := os.CreateTemp("", pattern)
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Remove(dumpfile.Name()); err != nil {
			t.Logf("failed to remove temp file: %v", err)
		}
	})
	if _, err := dumpfile.Write([]byte(content)); err != nil {
		t.Fatalf("failed to write to temp file: %v", err)
	}
	if err := dumpfile.Close(); err != nil {
		t.Fatalf("failed to close temp file: %v", err)
	}

	return dumpfile.Name()
}

func TestLoadJobConfig(t *testing.T) {
	content := `
controllers:
  - host: https://one.example.com
    credentials: one-secret
    timeRangeMins: 60
  - host: https://two.example.com
    credentials: two-secret
jobSteps:
  apm:
    - ApplicationDiscovery
    - AppAgents
maxConcurrency: 10
callTimeout: 15s
`
	jobPath := writeTempFile(t, "assessor_job_*.yaml", content)

	loader := New(jobPath, "")
	cfg, err := loader.LoadJobConfig()
	require.NoError(t, err)
	require.NoError(t, loader.ValidateJobConfig(cfg))

	require.Len(t, cfg.Controllers, 2)
	assert.Equal(t, "https://one.example.com", cfg.Controllers[0].Host)
	assert.Equal(t, 60, cfg.Controllers[0].TimeRangeMins)
	// Unset time range falls back to the default.
	assert.Equal(t, DefaultTimeRangeMins, cfg.Controllers[1].TimeRangeMins)
	assert.Equal(t, 10, cfg.MaxConcurrency)
	assert.Equal(t, 15*time.Second, cfg.CallTimeoutDuration())
	assert.Equal(t, []string{"ApplicationDiscovery", "AppAgents"}, cfg.JobSteps[types.ComponentAPM])
}

func TestValidateJobConfigDefaults(t *testing.T) {
	loader := New("", "")
	loader.logger = testLogger()

	cfg := &JobConfig{
		Controllers: []types.Controller{{Host: "https://c.example.com"}},
		JobSteps:    map[types.ComponentType][]string{types.ComponentAPM: {"AppAgents"}},
	}
	require.NoError(t, loader.ValidateJobConfig(cfg))
	assert.Equal(t, DefaultMaxConcurrency, cfg.MaxConcurrency)
	assert.Equal(t, DefaultCallTimeout, cfg.CallTimeoutDuration())
	assert.NotNil(t, cfg.Logging)
}

func TestValidateJobConfigRejectsEmpty(t *testing.T) {
	loader := New("", "")
	loader.logger = testLogger()

	err := loader.ValidateJobConfig(nil)
	assert.ErrorIs(t, err, assessorerr.JobConfigIsNil)

	err = loader.ValidateJobConfig(&JobConfig{})
	assert.ErrorIs(t, err, assessorerr.NoControllersConfigured)

	err = loader.ValidateJobConfig(&JobConfig{Controllers: []types.Controller{{Host: "h"}}})
	assert.ErrorIs(t, err, assessorerr.NoJobStepsConfigured)
}

func TestLoadThresholdSpec(t *testing.T) {
	content := `
apm:
  AppAgents:
    platinum:
      percentAgentsLessThan1YearOld: {op: gte, value: 100}
      metricLimitNotHit: {expect: true}
    gold:
      percentAgentsLessThan1YearOld: {op: gte, value: 80}
    silver:
      percentAgentsLessThan1YearOld: {op: gte, value: 50}
`
	thresholdsPath := writeTempFile(t, "assessor_thresholds_*.yaml", content)

	loader := New("", thresholdsPath)
	loader.logger = testLogger()

	spec, err := loader.LoadThresholdSpec()
	require.NoError(t, err)

	thresholds, err := spec.ForJobStep(types.ComponentAPM, "AppAgents")
	require.NoError(t, err)

	rule := thresholds[types.GradePlatinum]["percentAgentsLessThan1YearOld"]
	assert.Equal(t, OpGTE, rule.Op)
	assert.Equal(t, float64(100), rule.Value)

	boolRule := thresholds[types.GradePlatinum]["metricLimitNotHit"]
	require.NotNil(t, boolRule.Expect)
	assert.True(t, *boolRule.Expect)
}

func TestForJobStepMissingEntries(t *testing.T) {
	spec := ThresholdSpec{
		types.ComponentAPM: {
			"AppAgents": JobStepThresholds{},
		},
	}

	_, err := spec.ForJobStep(types.ComponentBRUM, "AppAgents")
	require.Error(t, err)
	assert.True(t, assessorerr.IsThresholdConfigError(err))

	_, err = spec.ForJobStep(types.ComponentAPM, "Backends")
	require.Error(t, err)
	assert.True(t, assessorerr.IsThresholdConfigError(err))
}

func TestValidateThresholdSpecRejectsBadRules(t *testing.T) {
	spec := ThresholdSpec{
		types.ComponentAPM: {
			"AppAgents": JobStepThresholds{
				types.GradeGold: GradeRules{
					"percentAgentsReportingData": {Op: "between", Value: 50},
				},
			},
		},
	}
	err := spec.Validate()
	require.Error(t, err)
	assert.True(t, assessorerr.IsThresholdConfigError(err))

	badGrade := ThresholdSpec{
		types.ComponentAPM: {
			"AppAgents": JobStepThresholds{
				"diamond": GradeRules{},
			},
		},
	}
	err = badGrade.Validate()
	require.Error(t, err)
	assert.True(t, assessorerr.IsThresholdConfigError(err))
}

func TestRuleSatisfied(t *testing.T) {
	gte := Rule{Op: OpGTE, Value: 80}
	assert.True(t, gte.Satisfied(float64(80), true))
	assert.True(t, gte.Satisfied(float64(100), true))
	assert.False(t, gte.Satisfied(float64(79.9), true))
	// Missing indicator never passes.
	assert.False(t, gte.Satisfied(nil, false))

	lte := Rule{Op: OpLTE, Value: 2}
	assert.True(t, lte.Satisfied(float64(2), true))
	assert.False(t, lte.Satisfied(float64(3), true))

	expect := true
	boolean := Rule{Expect: &expect}
	assert.True(t, boolean.Satisfied(true, true))
	assert.False(t, boolean.Satisfied(false, true))
	assert.False(t, boolean.Satisfied(float64(1), true))
}
