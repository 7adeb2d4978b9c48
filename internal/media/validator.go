package media

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// FallbackCount is how many raw candidates are shown when nothing validates.
const FallbackCount = 4

// Validator probes candidates concurrently and keeps the ones that load.
type Validator struct {
	prober Prober
	limit  int
	log    *zap.Logger
}

// NewValidator returns a validator running at most limit probes at once (<=0 means unbounded).
func NewValidator(prober Prober, limit int, log *zap.Logger) *Validator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Validator{prober: prober, limit: limit, log: log}
}

// Validate returns the loadable candidates in their original order. A failing
// probe only drops its own entry. If every probe fails the first
// min(FallbackCount, len) raw candidates are returned instead.
func (v *Validator) Validate(ctx context.Context, candidates []Photo) []Photo {
	ok := make([]bool, len(candidates))
	var g errgroup.Group
	if v.limit > 0 {
		g.SetLimit(v.limit)
	}
	for i, c := range candidates {
		g.Go(func() error {
			if err := v.prober.Probe(ctx, c); err != nil {
				v.log.Debug("photo skipped", zap.Int("index", i), zap.String("src", c.Src), zap.Error(err))
				return nil
			}
			ok[i] = true
			return nil
		})
	}
	_ = g.Wait()

	valid := make([]Photo, 0, len(candidates))
	for i, c := range candidates {
		if ok[i] {
			valid = append(valid, c)
		}
	}
	v.log.Info("photos validated", zap.Int("candidates", len(candidates)), zap.Int("valid", len(valid)))
	if len(valid) == 0 {
		out := make([]Photo, min(FallbackCount, len(candidates)))
		copy(out, candidates)
		return out
	}
	return valid
}
