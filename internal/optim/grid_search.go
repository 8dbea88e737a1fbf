package optim

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/invpend/internal/experiment"
)

// Candidate is one point of the grid and the metric it scored.
type Candidate struct {
	Params map[string]float64 `json:"params"`
	Score  float64            `json:"score"`
	Err    string             `json:"error,omitempty"`
}

type Outcome struct {
	Best       map[string]float64 `json:"best"`
	Score      float64            `json:"score"`
	Candidates []Candidate        `json:"candidates"`
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	workers    int
	log        *zap.Logger
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{
		paramNames: params,
		ranges:     ranges,
		workers:    runtime.GOMAXPROCS(0),
		log:        zap.NewNop(),
	}
}

func (g *GridSearch) WithWorkers(n int) *GridSearch {
	if n > 0 {
		g.workers = n
	}
	return g
}

func (g *GridSearch) WithLogger(log *zap.Logger) *GridSearch {
	if log != nil {
		g.log = log
	}
	return g
}

// Search builds and runs one experiment per grid point, concurrently, and
// minimizes metricName. Every candidate gets its own experiment. Negative or
// NaN scores (settling time never reached) and failed runs rank last; ties
// go to the earliest point in grid order.
func (g *GridSearch) Search(
	ctx context.Context,
	buildExperiment func(params map[string]float64) (*experiment.Experiment, error),
	metricName string,
) (*Outcome, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, fmt.Errorf("grid search: %d names for %d ranges", len(g.paramNames), len(g.ranges))
	}

	var points []map[string]float64
	g.enumerate(0, make(map[string]float64), &points)
	if len(points) == 0 {
		return nil, fmt.Errorf("grid search: empty grid")
	}

	candidates := make([]Candidate, len(points))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.workers)

	for i, params := range points {
		i, params := i, params
		eg.Go(func() error {
			candidates[i] = g.evaluate(ctx, params, buildExperiment, metricName)
			return ctx.Err()
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	out := &Outcome{Score: math.Inf(1), Candidates: candidates}
	for _, c := range candidates {
		if c.Score < out.Score {
			out.Score = c.Score
			out.Best = c.Params
		}
	}
	if out.Best == nil {
		return out, fmt.Errorf("grid search: no candidate produced a finite %s", metricName)
	}
	return out, nil
}

func (g *GridSearch) evaluate(
	ctx context.Context,
	params map[string]float64,
	buildExperiment func(map[string]float64) (*experiment.Experiment, error),
	metricName string,
) Candidate {
	c := Candidate{Params: params, Score: math.Inf(1)}

	exp, err := buildExperiment(params)
	if err != nil {
		c.Err = err.Error()
		return c
	}
	result, err := exp.Run(ctx)
	if err != nil {
		c.Err = err.Error()
		g.log.Debug("candidate failed", zap.Any("params", params), zap.Error(err))
		return c
	}

	val, ok := result.Metrics[metricName]
	if !ok {
		c.Err = fmt.Sprintf("metric %q not recorded", metricName)
		return c
	}
	if val >= 0 {
		c.Score = val
	}
	g.log.Debug("candidate", zap.Any("params", params), zap.Float64(metricName, val))
	return c
}

func (g *GridSearch) enumerate(depth int, current map[string]float64, out *[]map[string]float64) {
	if depth == len(g.paramNames) {
		point := make(map[string]float64, len(current))
		for k, v := range current {
			point[k] = v
		}
		*out = append(*out, point)
		return
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		current[paramName] = val
		g.enumerate(depth+1, current, out)
	}
	delete(current, paramName)
}
