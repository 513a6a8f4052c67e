// Package timing mide y registra el tiempo de ejecución de los métodos
// marcados. Un método queda marcado cuando su nombre está en Tags; los demás
// se invocan directo, sin cronómetro ni log.
package timing

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"petclinic/internal/platform/logger"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
	OutcomePanic = "panic"
)

// Recorder recibe cada medición además del log (p.ej. un histograma).
type Recorder interface {
	ObserveMethod(method, outcome string, elapsed time.Duration)
}

type Interceptor struct {
	tags     Tags
	log      logger.Logger
	recorder Recorder
	tracer   trace.Tracer
	now      func() time.Time
}

type Option func(*Interceptor)

func WithRecorder(r Recorder) Option {
	return func(in *Interceptor) { in.recorder = r }
}

func WithTracer(t trace.Tracer) Option {
	return func(in *Interceptor) {
		if t != nil {
			in.tracer = t
		}
	}
}

// WithClock reemplaza time.Now (tests).
func WithClock(now func() time.Time) Option {
	return func(in *Interceptor) {
		if now != nil {
			in.now = now
		}
	}
}

func New(tags Tags, log logger.Logger, opts ...Option) *Interceptor {
	if log == nil {
		log = logger.Nop()
	}
	in := &Interceptor{
		tags:   tags,
		log:    log,
		tracer: noop.NewTracerProvider().Tracer("petclinic/timing"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Tagged indica si method será interceptado. Un Interceptor nil no marca nada.
func (in *Interceptor) Tagged(method string) bool {
	return in != nil && in.tags.Has(method)
}

// Run invoca fn y, si method está marcado, mide y registra la llamada.
// El error de fn se devuelve tal cual.
func (in *Interceptor) Run(ctx context.Context, method string, fn func(context.Context) error) error {
	if !in.Tagged(method) {
		return fn(ctx)
	}
	return in.around(ctx, method, fn)
}

// Call es Run para funciones que devuelven un valor.
func Call[T any](ctx context.Context, in *Interceptor, method string, fn func(context.Context) (T, error)) (T, error) {
	if !in.Tagged(method) {
		return fn(ctx)
	}

	var out T
	err := in.around(ctx, method, func(ctx context.Context) error {
		var err error
		out, err = fn(ctx)
		return err
	})
	return out, err
}

// Handler envuelve un endpoint HTTP. Si method no está marcado devuelve h
// sin envolver. Una respuesta 5xx se reporta con outcome error; los 4xx
// cuentan como ok porque el endpoint respondió.
func (in *Interceptor) Handler(method string, h http.HandlerFunc) http.HandlerFunc {
	if !in.Tagged(method) {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		_ = in.around(r.Context(), method, func(ctx context.Context) error {
			h(ww, r.WithContext(ctx))
			if status := ww.Status(); status >= http.StatusInternalServerError {
				return fmt.Errorf("http status %d", status)
			}
			return nil
		})
	}
}

// around mide exactamente una vez por llamada. El reporte corre en un defer
// para que también se emita cuando fn falla o entra en pánico; el pánico
// sigue propagándose sin recover.
func (in *Interceptor) around(ctx context.Context, method string, fn func(context.Context) error) (err error) {
	ctx, span := in.tracer.Start(ctx, method, trace.WithAttributes(
		attribute.String("code.function", method),
	))

	sw := NewStopwatch(method)
	sw.now = in.now
	_ = sw.Start(method)

	outcome := OutcomePanic
	defer func() {
		_ = sw.Stop()
		in.report(sw, outcome, err)

		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else if outcome == OutcomePanic {
			span.SetStatus(codes.Error, OutcomePanic)
		}
		span.End()
	}()

	err = fn(ctx)
	if err != nil {
		outcome = OutcomeError
	} else {
		outcome = OutcomeOK
	}
	return err
}

func (in *Interceptor) report(sw *Stopwatch, outcome string, err error) {
	elapsed := sw.Total()

	fields := map[string]any{
		"method":     sw.ID(),
		"elapsed":    elapsed.String(),
		"elapsed_ns": elapsed.Nanoseconds(),
		"outcome":    outcome,
		"summary":    sw.ShortSummary(),
	}
	if err != nil {
		fields["error"] = err.Error()
	}
	in.log.Info("execution time", fields)

	if in.recorder != nil {
		in.recorder.ObserveMethod(sw.ID(), outcome, elapsed)
	}
}
