/*
 * Copyright 2025 SREDiag Authors
 * Copyright 2023 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package link

import (
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/srediag/mumble-link/pkg/shm"
)

const (
	defaultSamplingWindow = 100
)

var validate = validator.New()

// Config is used to tune a link session.
type Config struct {
	// SegmentName is the shared memory object name. The default is the
	// protocol name the host uses on this platform; sessions also use it when
	// SegmentName is empty.
	SegmentName string `validate:"required"`

	// Backend opens the segment. The default is shm.System().
	Backend shm.Backend

	// SamplingWindow is the number of Update calls between state
	// reevaluations of a SharedLink. An occupant whose tick does not move
	// for a whole window is presumed dead and the segment is taken over, so a
	// live occupant that updates slower than once per window is taken over
	// too. Larger windows reduce that risk and slow down reattachment.
	SamplingWindow uint32 `validate:"gt=0"`

	// Meter and Tracer receive link instrumentation. Nil means no-op.
	Meter  metric.Meter
	Tracer trace.Tracer

	// LogOutput is the session's log destination. Nil means os.Stdout.
	LogOutput io.Writer
}

// DefaultConfig is used to return a default configuration.
func DefaultConfig() *Config {
	return &Config{
		SegmentName:    shm.DefaultName(),
		Backend:        shm.System(),
		SamplingWindow: defaultSamplingWindow,
		LogOutput:      os.Stdout,
	}
}

// VerifyConfig is used to verify the sanity of configuration.
func VerifyConfig(config *Config) error {
	if config == nil {
		return fmt.Errorf("%w: nil config", ErrInvalidConfig)
	}
	if err := validate.Struct(config); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if config.Backend == nil {
		return fmt.Errorf("%w: Backend is nil", ErrInvalidConfig)
	}
	return nil
}

// prepareConfig copies conf, or the default when nil, fills SegmentName and
// the optional fields and verifies the result. The caller's Config is never modified.
func prepareConfig(conf *Config) (*Config, error) {
	if conf == nil {
		conf = DefaultConfig()
	}
	c := *conf
	if c.SegmentName == "" {
		c.SegmentName = shm.DefaultName()
	}
	if c.LogOutput == nil {
		c.LogOutput = os.Stdout
	}
	if err := VerifyConfig(&c); err != nil {
		return nil, err
	}
	return &c, nil
}
