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
	"fmt"

	"github.com/configassess/config-assessor-go/internal/assessor/types"
)

// Step names, the keys into result maps and the threshold spec.
const (
	StepApplicationDiscovery = "ApplicationDiscovery"
	StepAppAgents            = "AppAgents"
	StepBackends             = "Backends"
	StepErrorConfiguration   = "ErrorConfiguration"

	// StepOverallAssessment is the reserved result name for the engine's
	// final roll-up. No job step may register under it.
	StepOverallAssessment = "OverallAssessment"
)

// Registry maps (componentType, step name) to the step implementation. It
// is built explicitly at startup; step selection is a map lookup, never
// reflection.
type Registry struct {
	steps map[types.ComponentType]map[string]JobStep
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {

	return &Registry{
		steps: make(map[types.ComponentType]map[string]JobStep),
	}
}

// Register adds a step. Registering twice under one name, or under the
// reserved roll-up name, is a programming error.
func (r *Registry) Register(step JobStep) error {

	if step.Name() == StepOverallAssessment {
		return fmt.Errorf("job step name %q is reserved", StepOverallAssessment)
	}

	byName, ok := r.steps[step.ComponentType()]
	if !ok {
		byName = make(map[string]JobStep)
		r.steps[step.ComponentType()] = byName
	}

	if _, ok := byName[step.Name()]; ok {
		return fmt.Errorf("job step %q already registered for componentType %q", step.Name(), step.ComponentType())
	}
	byName[step.Name()] = step

	return nil
}

// Resolve maps the configured ordered name list to step implementations,
// preserving order. Order matters: later steps depend on node decorations
// written by earlier ones.
func (r *Registry) Resolve(componentType types.ComponentType, names []string) ([]JobStep, error) {

	resolved := make([]JobStep, 0, len(names))
	for _, name := range names {
		step, ok := r.steps[componentType][name]
		if !ok {
			return nil, fmt.Errorf("unknown job step %q for componentType %q", name, componentType)
		}
		resolved = append(resolved, step)
	}

	return resolved, nil
}

// DefaultRegistry registers every built-in step with the given
// collaborators.
func DefaultRegistry(deps Deps) (*Registry, error) {

	registry := NewRegistry()

	steps := []JobStep{
		NewApplicationDiscovery(deps),
		NewAppAgents(deps),
		NewBackends(deps),
		NewErrorConfiguration(deps),
	}
	for _, step := range steps {
		if err := registry.Register(step); err != nil {
			return nil, err
		}
	}

	return registry, nil
}
