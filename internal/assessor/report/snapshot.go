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
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/configassess/config-assessor-go/internal/assessor/aggregate"
	"github.com/configassess/config-assessor-go/internal/util/logger"
)

// Snapshot is the serialized form of one completed run: every controller's
// result tree plus run metadata.
type Snapshot struct {
	GeneratedAt time.Time                            `json:"generatedAt"`
	Controllers map[string]*aggregate.ControllerData `json:"controllers"`
}

// Writer persists the completed result tree as JSON for downstream report
// tooling. It runs after the last analyze phase, when the tree is read-only.
type Writer struct {
	path   string
	logger logger.Logger
	now    func() time.Time
}

func NewWriter(path string, log logger.Logger) *Writer {

	return &Writer{
		path:   path,
		logger: log.WithName("report"),
		now:    time.Now,
	}
}

// Write serializes the aggregator's tree to the configured path, creating
// parent directories as needed. The file is written atomically via a rename
// so a crash never leaves a truncated snapshot behind.
func (w *Writer) Write(agg *aggregate.Aggregator) error {

	snapshot := Snapshot{
		GeneratedAt: w.now().UTC(),
		Controllers: agg.Snapshot(),
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot directory %q: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".snapshot-*.json")
	if err != nil {
		return fmt.Errorf("create snapshot temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close snapshot temp file: %w", err)
	}

	if err := os.Rename(tmpName, w.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename snapshot into place: %w", err)
	}

	w.logger.Info("snapshot written", "path", w.path, "bytes", len(data))

	return nil
}
