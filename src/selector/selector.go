package selector

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"

	"github.com/DreamFulFil/Automatic-Equity-Trader-sub005/src/model"
	"github.com/DreamFulFil/Automatic-Equity-Trader-sub005/src/repository"
)

// Selector promotes the best-scoring strategy/symbol combination to MAIN
// and keeps a shadow set of runners-up. The incumbent keeps its slot
// unless a challenger beats its score by the configured swap margin, so
// noise in the rankings does not churn the live strategy.
type Selector struct {
	performances *repository.PerformanceRepository
	selections   *repository.SelectionRepository
	config       Config
	now          func() time.Time
}

func New(
	performances *repository.PerformanceRepository,
	selections *repository.SelectionRepository,
	config Config,
) *Selector {
	return &Selector{
		performances: performances,
		selections:   selections,
		config:       config,
		now:          time.Now,
	}
}

// candidate pairs a snapshot with its score.
type candidate struct {
	perf  model.StrategyPerformance
	score float64
}

// RunSelection recomputes the active/shadow set from the latest
// performance snapshots and persists it as one batch. Returns the rows
// that were written.
func (s *Selector) RunSelection(ctx context.Context) ([]model.StrategySelection, error) {
	since := s.now().AddDate(0, 0, -s.config.LookbackDays)

	var snapshots []model.StrategyPerformance
	for _, mode := range []string{model.ModeBacktest, model.ModeShadow, model.ModeMain} {
		rows, err := s.performances.FindLatestByMode(ctx, mode, since)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, rows...)
	}

	candidates := s.rank(snapshots)
	if len(candidates) == 0 {
		logger.Warn("no performance snapshots available, selection unchanged")
		return nil, nil
	}

	active, err := s.selections.FindActive(ctx)
	if err != nil {
		return nil, err
	}

	winner := s.pickWinner(candidates, active)

	batchID := "sel-" + uuid.NewString()
	rows := make([]model.StrategySelection, 0, 1+s.config.ShadowCount)
	rows = append(rows, model.StrategySelection{
		BatchID:      batchID,
		StrategyName: winner.perf.StrategyName,
		Symbol:       winner.perf.Symbol,
		Mode:         model.ModeMain,
		Score:        winner.score,
	})

	shadows := s.shadowRowsFor(batchID, candidates, winner)
	rows = append(rows, shadows...)

	if err := s.selections.ReplaceAll(ctx, rows); err != nil {
		return nil, err
	}

	logger.WithFields(map[string]interface{}{
		"batch_id": batchID,
		"main":     winner.perf.StrategyName + "/" + winner.perf.Symbol,
		"score":    winner.score,
		"shadows":  len(shadows),
	}).Info("strategy selection persisted")

	return rows, nil
}

// shadowRowsFor picks the next-best distinct symbols for paper trading,
// one strategy per symbol, never the symbol already traded live.
func (s *Selector) shadowRowsFor(batchID string, candidates []candidate, winner candidate) []model.StrategySelection {
	taken := map[string]bool{winner.perf.Symbol: true}
	rows := make([]model.StrategySelection, 0, s.config.ShadowCount)
	for _, c := range candidates {
		if len(rows) >= s.config.ShadowCount {
			break
		}
		if taken[c.perf.Symbol] {
			continue
		}
		taken[c.perf.Symbol] = true
		rows = append(rows, model.StrategySelection{
			BatchID:      batchID,
			StrategyName: c.perf.StrategyName,
			Symbol:       c.perf.Symbol,
			Mode:         model.ModeShadow,
			Score:        c.score,
		})
	}
	return rows
}

// rank scores and sorts candidates best-first, skipping combinations with
// too few trades to trust. Ties break by name then symbol so repeated runs
// over identical data produce identical batches.
func (s *Selector) rank(snapshots []model.StrategyPerformance) []candidate {
	excluded := make(map[string]bool, len(s.config.ExcludedStrategies))
	for _, name := range s.config.ExcludedStrategies {
		if name != "" {
			excluded[name] = true
		}
	}

	candidates := make([]candidate, 0, len(snapshots))
	for _, perf := range snapshots {
		if perf.TotalTrades < s.config.MinTradesForScore {
			continue
		}
		if excluded[perf.StrategyName] {
			continue
		}
		candidates = append(candidates, candidate{perf: perf, score: Score(perf)})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		if candidates[i].perf.StrategyName != candidates[j].perf.StrategyName {
			return candidates[i].perf.StrategyName < candidates[j].perf.StrategyName
		}
		return candidates[i].perf.Symbol < candidates[j].perf.Symbol
	})
	return candidates
}

// pickWinner applies the swap margin: the best challenger replaces the
// incumbent only when its score clears incumbentScore * SwapMargin.
func (s *Selector) pickWinner(candidates []candidate, active *model.StrategySelection) candidate {
	best := candidates[0]
	if active == nil {
		return best
	}

	var incumbent *candidate
	for i := range candidates {
		if candidates[i].perf.StrategyName == active.StrategyName && candidates[i].perf.Symbol == active.Symbol {
			incumbent = &candidates[i]
			break
		}
	}
	if incumbent == nil {
		// Incumbent fell out of the rankings entirely.
		return best
	}

	if best.score > incumbent.score*s.config.SwapMargin {
		logger.WithFields(map[string]interface{}{
			"incumbent":        incumbent.perf.StrategyName + "/" + incumbent.perf.Symbol,
			"incumbent_score":  incumbent.score,
			"challenger":       best.perf.StrategyName + "/" + best.perf.Symbol,
			"challenger_score": best.score,
		}).Info("active strategy swapped")
		return best
	}
	return *incumbent
}
