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

package logger

// assessor logger related types

type LogLevel string

const (
	// LogLevelTrace defines the "Trace" logger level.
	LogLevelTrace LogLevel = "trace"

	// LogLevelDebug defines the "debug" logger level.
	LogLevelDebug LogLevel = "debug"

	// LogLevelInfo defines the "Info" logger level.
	LogLevelInfo LogLevel = "info"

	// LogLevelWarn defines the "Warn" logger level.
	LogLevelWarn LogLevel = "warn"

	// LogLevelError defines the "Error" logger level.
	LogLevelError LogLevel = "error"
)

type AssessorLogging struct {
	Level map[AssessorLogComponent]LogLevel `json:"level,omitempty" yaml:"level,omitempty"`
}

type AssessorLogComponent string

const (
	LogComponentAssessorDefault AssessorLogComponent = "default"

	LogComponentEngine AssessorLogComponent = "engine"

	LogComponentJobStep AssessorLogComponent = "jobstep"

	LogComponentAPIClient AssessorLogComponent = "api-client"
)

func DefaultAssessorLogging() *AssessorLogging {

	return &AssessorLogging{
		Level: map[AssessorLogComponent]LogLevel{
			LogComponentAssessorDefault: LogLevelInfo,
		},
	}
}

func (logging *AssessorLogging) DefaultAssessorLoggingLevel(level LogLevel) LogLevel {

	if level != "" {
		return level
	}

	if logging.Level[LogComponentAssessorDefault] != "" {

		return logging.Level[LogComponentAssessorDefault]
	}

	return LogLevelInfo
}

func (logging *AssessorLogging) SetAssessorLoggingDefaults() {

	if logging != nil && logging.Level != nil && logging.Level[LogComponentAssessorDefault] == "" {

		logging.Level[LogComponentAssessorDefault] = LogLevelInfo
	}
}
