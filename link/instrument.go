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
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

const instrumentationName = "github.com/srediag/mumble-link/link"

type instruments struct {
	tracer      trace.Tracer
	flushes     metric.Int64Counter
	transitions metric.Int64Counter
	segment     attribute.KeyValue
	flushOpt    metric.AddOption
}

func newInstruments(conf *Config, log *logger) *instruments {
	meter := conf.Meter
	if meter == nil {
		meter = metricnoop.NewMeterProvider().Meter(instrumentationName)
	}
	tracer := conf.Tracer
	if tracer == nil {
		tracer = tracenoop.NewTracerProvider().Tracer(instrumentationName)
	}

	flushes, err := meter.Int64Counter("mumblelink.flushes",
		metric.WithDescription("Local copy flushes into the shared segment."),
		metric.WithUnit("{flush}"))
	if err != nil {
		log.warnf("create flushes counter failed, using no-op: %v", err)
		flushes, _ = metricnoop.Meter{}.Int64Counter("mumblelink.flushes")
	}
	transitions, err := meter.Int64Counter("mumblelink.transitions",
		metric.WithDescription("Session state transitions by target state."),
		metric.WithUnit("{transition}"))
	if err != nil {
		log.warnf("create transitions counter failed, using no-op: %v", err)
		transitions, _ = metricnoop.Meter{}.Int64Counter("mumblelink.transitions")
	}

	segment := attribute.String("segment", conf.SegmentName)
	return &instruments{
		tracer:      tracer,
		flushes:     flushes,
		transitions: transitions,
		segment:     segment,
		flushOpt:    metric.WithAttributeSet(attribute.NewSet(segment)),
	}
}

func (in *instruments) flush() {
	in.flushes.Add(context.Background(), 1, in.flushOpt)
}

func (in *instruments) transition(to StatusKind) {
	in.transitions.Add(context.Background(), 1,
		metric.WithAttributes(in.segment, attribute.String("state", to.String())))
}

func (in *instruments) start(ctx context.Context, name string) (context.Context, trace.Span) {
	return in.tracer.Start(ctx, name, trace.WithAttributes(in.segment))
}

func spanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
