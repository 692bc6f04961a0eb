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

package limiter

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"

	assessorerr "github.com/configassess/config-assessor-go/internal/assessor/types/err"
)

// Task is one zero-argument remote operation. Implementations apply their
// own per-call timeout; the limiter adds no deadline of its own.
type Task[T any] func(ctx context.Context) (T, error)

// Result is the outcome of one task. A failed task yields Err without
// aborting its siblings; callers consume the failure as "no data".
type Result[T any] struct {
	Value T
	Err   error
}

// Limiter bounds the number of simultaneously in-flight tasks. A single
// instance is shared by every job step of a run unless isolation is wanted.
type Limiter struct {
	maxConcurrency int64
}

func New(maxConcurrency int) (*Limiter, error) {

	if maxConcurrency <= 0 {
		return nil, assessorerr.ConcurrencyNotPositive
	}

	return &Limiter{maxConcurrency: int64(maxConcurrency)}, nil
}

// MaxConcurrency returns the configured bound.
func (l *Limiter) MaxConcurrency() int {

	return int(l.maxConcurrency)
}

// Run executes tasks with at most maxConcurrency in flight and returns their
// results in input order regardless of completion order. A completed task,
// success or failure, immediately frees a slot for the next queued task.
//
// An empty task list returns an empty result list without spawning a worker.
func Run[T any](ctx context.Context, l *Limiter, tasks []Task[T]) []Result[T] {

	if len(tasks) == 0 {
		return []Result[T]{}
	}

	sem := semaphore.NewWeighted(l.maxConcurrency)
	results := make([]Result[T], len(tasks))

	var wg sync.WaitGroup
	for i, task := range tasks {
		wg.Add(1)
		go func(i int, task Task[T]) {
			defer wg.Done()

			if err := sem.Acquire(ctx, 1); err != nil {
				results[i] = Result[T]{Err: err}
				return
			}
			defer sem.Release(1)

			value, err := task(ctx)
			results[i] = Result[T]{Value: value, Err: err}
		}(i, task)
	}
	wg.Wait()

	return results
}
