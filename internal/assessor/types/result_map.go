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

package types

import (
	"bytes"
	"encoding/json"
)

// ResultMap is an insertion-ordered mapping of metric or indicator name to
// value. Downstream report writers emit columns in the order job steps set
// them, so iteration order is part of the contract.
//
// Values are float64 or bool.
type ResultMap struct {
	keys   []string
	values map[string]any
}

func NewResultMap() *ResultMap {

	return &ResultMap{
		values: make(map[string]any),
	}
}

// Set inserts or updates a value, preserving first-insertion order.
func (m *ResultMap) Set(name string, value any) {

	if _, ok := m.values[name]; !ok {
		m.keys = append(m.keys, name)
	}
	m.values[name] = value
}

// Get returns the value for name and whether it is present.
func (m *ResultMap) Get(name string) (any, bool) {

	value, ok := m.values[name]
	return value, ok
}

// Float returns the numeric value for name, 0 when absent or non-numeric.
func (m *ResultMap) Float(name string) float64 {

	value, ok := m.values[name]
	if !ok {
		return 0
	}
	f, ok := value.(float64)
	if !ok {
		return 0
	}
	return f
}

// Keys returns names in insertion order. The returned slice must not be
// mutated.
func (m *ResultMap) Keys() []string {

	return m.keys
}

func (m *ResultMap) Len() int {

	return len(m.keys)
}

// MarshalJSON emits entries in insertion order.
func (m *ResultMap) MarshalJSON() ([]byte, error) {

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyJSON, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(keyJSON)
		buf.WriteByte(':')
		valueJSON, err := json.Marshal(m.values[key])
		if err != nil {
			return nil, err
		}
		buf.Write(valueJSON)
	}
	buf.WriteByte('}')

	return buf.Bytes(), nil
}
