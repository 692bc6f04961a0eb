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

package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/configassess/config-assessor-go/internal/assessor/aggregate"
	"github.com/configassess/config-assessor-go/internal/assessor/types"
	loggertypes "github.com/configassess/config-assessor-go/internal/types/logger"
	"github.com/configassess/config-assessor-go/internal/util/logger"
)

func TestWriteSnapshot(t *testing.T) {
	agg := aggregate.New()
	agg.AddController(types.Controller{Host: "https://one.example.com", TimeRangeMins: 60})
	app := agg.GetOrCreateApplication("https://one.example.com", types.ComponentAPM, 1)
	app.Name = "checkout"

	evaluated := types.NewResultMap()
	evaluated.Set("hasNodes", true)
	require.NoError(t, agg.RecordJobStepResult(app, "ApplicationDiscovery", &types.JobStepResult{
		Raw:       types.NewResultMap(),
		Evaluated: evaluated,
		Grade:     types.GradeGold,
	}))

	path := filepath.Join(t.TempDir(), "out", "snapshot.json")
	writer := NewWriter(path, logger.DefaultLogger(os.Stdout, loggertypes.LogLevelError))

	require.NoError(t, writer.Write(agg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var snapshot struct {
		Controllers map[string]struct {
			Controller types.Controller `json:"controller"`
			Components map[string]map[string]struct {
				Name    string `json:"name"`
				Results map[string]struct {
					Grade string `json:"grade"`
				} `json:"results"`
			} `json:"components"`
		} `json:"controllers"`
	}
	require.NoError(t, json.Unmarshal(data, &snapshot))

	controller, ok := snapshot.Controllers["https://one.example.com"]
	require.True(t, ok)
	assert.Equal(t, 60, controller.Controller.TimeRangeMins)

	apps, ok := controller.Components["apm"]
	require.True(t, ok)
	checkout, ok := apps["1"]
	require.True(t, ok)
	assert.Equal(t, "checkout", checkout.Name)
	assert.Equal(t, "gold", checkout.Results["ApplicationDiscovery"].Grade)
}

func TestWriteSnapshotCredentialsNeverSerialized(t *testing.T) {
	agg := aggregate.New()
	agg.AddController(types.Controller{
		Host:        "https://one.example.com",
		Credentials: "user@account:secret",
	})

	path := filepath.Join(t.TempDir(), "snapshot.json")
	writer := NewWriter(path, logger.DefaultLogger(os.Stdout, loggertypes.LogLevelError))

	require.NoError(t, writer.Write(agg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret")
}
