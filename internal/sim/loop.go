package sim

import (
	"context"
	"fmt"
	"math"
	"sync"

	"go.uber.org/zap"

	"github.com/san-kum/invpend/internal/dynamo"
)

// Loop couples one plant and one controller. Each tick reads the plant angle,
// computes a torque when control is enabled (zero otherwise) and advances the
// plant with it. All mutation goes through the loop's mutex.
type Loop struct {
	mu sync.Mutex

	plant      Plant
	controller Controller
	dt         float64

	enabled  bool
	validate bool
	step     int
	tau      float64

	metrics   []Metric
	observers []Observer
	log       *zap.Logger
}

// MaxSteps bounds the ticks of a single Run.
const MaxSteps = 10_000_000

// preallocSamples caps the sample buffer reserved up front; longer runs grow it.
const preallocSamples = 1 << 16

type Option func(*Loop)

func WithLogger(log *zap.Logger) Option { return func(l *Loop) { l.log = log } }
func WithObserver(o Observer) Option    { return func(l *Loop) { l.observers = append(l.observers, o) } }
func WithMetric(m Metric) Option        { return func(l *Loop) { l.metrics = append(l.metrics, m) } }
func WithEnabled(on bool) Option        { return func(l *Loop) { l.enabled = on } }

// WithValidateState makes Run stop with ErrInvalidState once theta, omega or
// tau stops being finite.
func WithValidateState(on bool) Option { return func(l *Loop) { l.validate = on } }

// WithDt sets the tick interval for plants that do not report one.
func WithDt(dt float64) Option { return func(l *Loop) { l.dt = dt } }

// New builds a loop. The tick interval comes from the plant when it reports
// one; a controller reporting a different interval is rejected.
func New(plant Plant, ctrl Controller, opts ...Option) (*Loop, error) {
	l := &Loop{
		plant:      plant,
		controller: ctrl,
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.log == nil {
		l.log = zap.NewNop()
	}

	if s, ok := plant.(stepper); ok {
		l.dt = s.Dt()
	}
	if !dynamo.IsFinite(l.dt) || l.dt <= 0 {
		return nil, dynamo.BoundsError("dt", l.dt)
	}
	if s, ok := ctrl.(stepper); ok && s.Dt() != l.dt {
		return nil, fmt.Errorf("%w: plant=%v controller=%v", dynamo.ErrDtMismatch, l.dt, s.Dt())
	}
	return l, nil
}

func (l *Loop) AddMetric(m Metric) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.metrics = append(l.metrics, m)
}

func (l *Loop) AddObserver(o Observer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.observers = append(l.observers, o)
}

// Tick runs one control step and returns the resulting sample.
func (l *Loop) Tick() Sample {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.tick()
}

func (l *Loop) tick() Sample {
	tau := 0.0
	if l.enabled {
		tau = l.controller.Compute(l.plant.Theta())
	}
	l.plant.Update(tau)
	l.tau = tau
	l.step++

	s := l.snapshot()
	for _, m := range l.metrics {
		m.Observe(s)
	}
	for _, o := range l.observers {
		o.OnStep(s)
	}
	return s
}

// Snapshot returns the current sample without advancing.
func (l *Loop) Snapshot() Sample {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshot()
}

func (l *Loop) snapshot() Sample {
	s := Sample{
		Step:    l.step,
		Time:    float64(l.step) * l.dt,
		Theta:   l.plant.Theta(),
		Omega:   l.plant.Omega(),
		Tau:     l.tau,
		Enabled: l.enabled,
	}
	if sp, ok := l.controller.(setpointer); ok {
		s.Setpoint = sp.Setpoint()
	}
	return s
}

// Tau is the torque applied on the last tick; exactly 0 when control was off.
func (l *Loop) Tau() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.tau
}

func (l *Loop) Dt() float64 { return l.dt }

func (l *Loop) Enabled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.enabled
}

func (l *Loop) SetEnabled(on bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.enabled != on {
		l.log.Debug("control toggled", zap.Bool("enabled", on), zap.Int("step", l.step))
	}
	l.enabled = on
}

// Toggle flips the enable flag and returns the new value.
func (l *Loop) Toggle() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.enabled = !l.enabled
	l.log.Debug("control toggled", zap.Bool("enabled", l.enabled), zap.Int("step", l.step))
	return l.enabled
}

// Reset re-initializes the plant and the loop clock. Controller state is left
// as is.
func (l *Loop) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.plant.Reset()
	l.step = 0
	l.tau = 0
	l.log.Debug("plant reset")
}

// Configure runs fn between ticks, inside the loop's mutual exclusion. Hosts
// use it for gain and setpoint changes.
func (l *Loop) Configure(fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fn()
}

// Run ticks for duration seconds, checking ctx between ticks. On cancellation
// the partial result is returned with the context error.
func (l *Loop) Run(ctx context.Context, duration float64) (*Result, error) {
	if !dynamo.IsFinite(duration) || duration <= 0 {
		return nil, fmt.Errorf("duration must be positive, got %f", duration)
	}

	n := math.Round(duration / l.dt)
	if n > MaxSteps {
		return nil, fmt.Errorf("%w: %.0f steps exceeds %d", dynamo.ErrParameterBounds, n, MaxSteps)
	}
	steps := int(n)
	result := &Result{
		Samples: make([]Sample, 0, min(steps+1, preallocSamples)),
		Metrics: make(map[string]float64),
	}

	l.mu.Lock()
	for _, m := range l.metrics {
		m.Reset()
	}
	result.Samples = append(result.Samples, l.snapshot())
	l.mu.Unlock()

	defer l.collect(result)

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		l.mu.Lock()
		s := l.tick()
		l.mu.Unlock()

		result.Samples = append(result.Samples, s)
		result.StepsTaken++

		if l.validate && !dynamo.IsFinite(s.Theta, s.Omega, s.Tau) {
			err := &dynamo.SimulationError{
				Step:    s.Step,
				Time:    s.Time,
				State:   dynamo.State{s.Theta, s.Omega},
				Wrapped: dynamo.ErrInvalidState,
			}
			l.log.Warn("simulation diverged", zap.Int("step", s.Step), zap.Float64("time", s.Time))
			return result, err
		}
	}

	return result, nil
}

func (l *Loop) collect(result *Result) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, m := range l.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}
