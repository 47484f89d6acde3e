package styling

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lookbook/backend/internal/domain/catalog"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrEmptyRationale is reported when a generator returns blank text
var ErrEmptyRationale = errors.New("rationale generator returned empty text")

// lastResortRationale is used when even the templated rationale fails
const lastResortRationale = "A coordinated look picked from the styling rules for your request."

// optionalCategories are filled after the required slots when stock allows
var optionalCategories = []catalog.Category{
	catalog.CategoryOuterwear,
	catalog.CategoryShoes,
	catalog.CategoryAccessory,
}

// RecommenderConfig tunes the outfit recommender
type RecommenderConfig struct {
	// RationaleTimeout bounds each rationale call. Zero disables the bound.
	RationaleTimeout time.Duration
	// MaxPriceDeviation caps the price-diversity penalty as a fraction of score.
	MaxPriceDeviation float64
	// RationaleWorkers is the number of rationale calls run at once.
	RationaleWorkers int
}

// DefaultRecommenderConfig returns the default recommender configuration
func DefaultRecommenderConfig() RecommenderConfig {
	return RecommenderConfig{
		RationaleTimeout:  3 * time.Second,
		MaxPriceDeviation: 0.5,
		RationaleWorkers:  4,
	}
}

// OutfitRecommender composes scored catalog items into outfits
type OutfitRecommender struct {
	engine    *RulesEngine
	rationale RationaleGenerator
	template  func(RationaleRequest) string
	config    RecommenderConfig
	logger    *zap.Logger
}

// NewOutfitRecommender creates a new outfit recommender.
// A nil rationale generator means every outfit gets the templated rationale.
func NewOutfitRecommender(engine *RulesEngine, rationale RationaleGenerator, config RecommenderConfig, logger *zap.Logger) *OutfitRecommender {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.MaxPriceDeviation <= 0 {
		config.MaxPriceDeviation = DefaultRecommenderConfig().MaxPriceDeviation
	}
	return &OutfitRecommender{
		engine:    engine,
		rationale: rationale,
		template:  TemplateRationaleText,
		config:    config,
		logger:    logger,
	}
}

// GenerateRecommendations builds up to maxOutfits distinct outfits from the
// candidate items for the intent.
//
// Configuration gaps (no rules, no matching items) yield an empty list.
// A failure while assembling one outfit drops that outfit only, and an
// unexpected failure anywhere else yields an empty list. The only error
// returned is shared.ErrRulesUnavailable when the rule store cannot be read.
func (r *OutfitRecommender) GenerateRecommendations(
	ctx context.Context,
	tenantID uuid.UUID,
	intent Intent,
	candidates []catalog.Item,
	maxOutfits int,
) (outfits []Outfit, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("Recommendation pipeline failed",
				zap.Any("panic", rec),
				zap.String("intent", intent.Label()),
				zap.Stack("stack"),
			)
			outfits, err = []Outfit{}, nil
		}
	}()

	if maxOutfits <= 0 || len(candidates) == 0 {
		return []Outfit{}, nil
	}

	rs, err := r.engine.GetRulesForIntent(ctx, tenantID, intent.Label())
	if err != nil {
		return nil, err
	}
	if rs.Empty() {
		r.logger.Warn("No styling rules configured for intent",
			zap.String("intent", intent.Label()),
			zap.String("tenant_id", tenantID.String()),
		)
		return []Outfit{}, nil
	}

	outfits = r.assemble(rs, intent, candidates, maxOutfits)
	r.attachRationales(ctx, rs, intent, outfits)
	return outfits, nil
}

func (r *OutfitRecommender) assemble(rs *RuleSet, intent Intent, candidates []catalog.Item, maxOutfits int) []Outfit {
	scored := r.engine.ApplyRulesToItems(candidates, rs, intent)
	if len(scored) == 0 {
		r.logger.Info("No candidate items passed the styling rules",
			zap.String("intent", rs.Intent),
			zap.Int("candidates", len(candidates)),
		)
		return []Outfit{}
	}

	limit := maxOutfits
	if bound := len(scored) / 3; bound < limit {
		limit = bound
	}

	pool := newBucketPool(scored)
	required := rs.RequiredCategories()
	outfits := make([]Outfit, 0, limit)

	for n := 0; n < limit; n++ {
		outfit, ok, err := r.buildOutfit(pool, required)
		if err != nil {
			r.logger.Error("Skipping outfit after assembly failure",
				zap.Int("outfit_index", n),
				zap.Error(err),
			)
			continue
		}
		if !ok {
			r.logger.Debug("Remaining items cannot fill an outfit",
				zap.Int("outfit_index", n),
			)
			break
		}
		outfits = append(outfits, outfit)
	}

	return outfits
}

// buildOutfit selects one outfit from the pool and removes its items.
// ok is false when the pool cannot fill a required slot plus one more.
func (r *OutfitRecommender) buildOutfit(pool *bucketPool, required []catalog.Category) (outfit Outfit, ok bool, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			outfit, ok, err = Outfit{}, false, fmt.Errorf("outfit assembly panicked: %v", rec)
		}
	}()

	selection := r.selectRequired(pool, required)
	if len(selection) == 0 {
		return Outfit{}, false, nil
	}

	for _, cat := range optionalCategories {
		if _, filled := selection[cat]; filled {
			continue
		}
		if pick, found := r.pick(pool.bucket(cat), cat); found {
			selection[cat] = pick
		}
	}

	if len(selection) < MinOutfitSlots {
		return Outfit{}, false, nil
	}

	pool.consume(selection)
	return newOutfit(selection), true, nil
}

// selectRequired fills the required slots. A required dress competes with
// the top and bottom pair: the dress is taken when it outscores the mean of
// the best top and bottom, or when the pair cannot be completed.
func (r *OutfitRecommender) selectRequired(pool *bucketPool, required []catalog.Category) map[catalog.Category]ScoredItem {
	selection := make(map[catalog.Category]ScoredItem, len(required)+len(optionalCategories))

	needsDress := false
	garments := make([]catalog.Category, 0, len(required))
	for _, c := range required {
		if c == catalog.CategoryDress {
			needsDress = true
			continue
		}
		garments = append(garments, c)
	}

	if needsDress {
		if dress, found := r.pick(pool.bucket(catalog.CategoryDress), catalog.CategoryDress); found {
			if len(garments) == 0 || dressBeatsGarments(pool, dress, garments) {
				selection[catalog.CategoryDress] = dress
				return selection
			}
		}
	}

	for _, c := range garments {
		if pick, found := r.pick(pool.bucket(c), c); found {
			selection[c] = pick
		}
	}
	return selection
}

func dressBeatsGarments(pool *bucketPool, dress ScoredItem, garments []catalog.Category) bool {
	var total float64
	for _, c := range garments {
		bucket := pool.bucket(c)
		if len(bucket) == 0 {
			return true
		}
		total += bucket[0].Score
	}
	return dress.Score > total/float64(len(garments))
}

// pick chooses one item from a bucket sorted by rule score.
// Dresses and single candidates take the top item; otherwise the best
// combined score wins and earlier items win ties.
func (r *OutfitRecommender) pick(bucket []ScoredItem, cat catalog.Category) (ScoredItem, bool) {
	if len(bucket) == 0 {
		return ScoredItem{}, false
	}
	if cat == catalog.CategoryDress || len(bucket) == 1 {
		return bucket[0], true
	}

	var total float64
	for _, s := range bucket {
		total += s.Item.PriceFloat()
	}
	avg := total / float64(len(bucket))

	best := -1
	var bestScore float64
	for i, s := range bucket {
		combined := CombinedScore(s.Score, s.Item.PriceFloat(), avg, r.config.MaxPriceDeviation)
		if combined > 0 && (best < 0 || combined > bestScore) {
			best, bestScore = i, combined
		}
	}
	if best < 0 {
		return bucket[0], true
	}
	return bucket[best], true
}

// CombinedScore dampens a rule score by how far the price sits from the
// bucket average. The penalty is linear and capped at maxDeviation.
func CombinedScore(score, price, avgPrice, maxDeviation float64) float64 {
	if avgPrice <= 0 {
		return score
	}
	penalty := math.Min(math.Abs(price-avgPrice)/avgPrice, maxDeviation)
	return score * (1 - penalty)
}

func newOutfit(selection map[catalog.Category]ScoredItem) Outfit {
	outfit := Outfit{Items: make([]OutfitItem, 0, len(selection))}
	seenKeys := make(map[string]struct{})

	var total float64
	for _, cat := range catalog.AllBuckets() {
		s, ok := selection[cat]
		if !ok {
			continue
		}
		outfit.Items = append(outfit.Items, OutfitItem{
			ItemID:   s.Item.ID,
			SKU:      s.Item.SKU,
			Title:    s.Item.Title,
			Role:     cat,
			Price:    s.Item.Price,
			Score:    s.Score,
			ImageKey: s.Item.ImageKey,
			Color:    s.Item.Attributes.Color,
			Material: s.Item.Attributes.Material,
		})
		total += s.Score
		for _, key := range s.Matched {
			if _, dup := seenKeys[key]; dup {
				continue
			}
			seenKeys[key] = struct{}{}
			outfit.Matched = append(outfit.Matched, key)
		}
	}

	if len(outfit.Items) > 0 {
		outfit.Score = clamp01(total / float64(len(outfit.Items)))
	}
	return outfit
}

func (r *OutfitRecommender) attachRationales(ctx context.Context, rs *RuleSet, intent Intent, outfits []Outfit) {
	rules := rs.Names()
	apply := func(i int) {
		defer func() {
			if rec := recover(); rec != nil {
				r.logger.Error("Rationale step panicked",
					zap.Int("outfit_index", i),
					zap.Any("panic", rec),
				)
				outfits[i].Rationale = lastResortRationale
				outfits[i].RationaleFallback = true
			}
		}()
		res := r.explain(ctx, RationaleRequest{Intent: intent, Outfit: outfits[i], Rules: rules})
		if res.Fallback {
			r.logger.Warn("Using templated rationale",
				zap.Int("outfit_index", i),
				zap.Error(res.Err),
			)
		}
		outfits[i].Rationale = res.Text
		outfits[i].RationaleFallback = res.Fallback
	}

	if r.config.RationaleWorkers <= 1 || len(outfits) <= 1 {
		for i := range outfits {
			apply(i)
		}
		return
	}

	var g errgroup.Group
	g.SetLimit(r.config.RationaleWorkers)
	for i := range outfits {
		g.Go(func() error {
			apply(i)
			return nil
		})
	}
	_ = g.Wait()
}

// explain runs the rationale generator under the configured timeout and
// falls back to the template on error, timeout, panic or blank output
func (r *OutfitRecommender) explain(ctx context.Context, req RationaleRequest) RationaleResult {
	fallback := func(err error) RationaleResult {
		return RationaleResult{Text: r.template(req), Fallback: true, Err: err}
	}
	if r.rationale == nil {
		return fallback(nil)
	}

	if r.config.RationaleTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.config.RationaleTimeout)
		defer cancel()
	}

	type outcome struct {
		text string
		err  error
	}
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				done <- outcome{err: fmt.Errorf("rationale generator panicked: %v", rec)}
			}
		}()
		text, err := r.rationale.Generate(ctx, req)
		done <- outcome{text: text, err: err}
	}()

	select {
	case out := <-done:
		if out.err != nil {
			return fallback(out.err)
		}
		text := strings.TrimSpace(out.text)
		if text == "" {
			return fallback(ErrEmptyRationale)
		}
		return RationaleResult{Text: text}
	case <-ctx.Done():
		return fallback(ctx.Err())
	}
}

// bucketPool holds the scored items still available, grouped by slot
type bucketPool struct {
	buckets map[catalog.Category][]ScoredItem
}

func newBucketPool(scored []ScoredItem) *bucketPool {
	pool := &bucketPool{buckets: make(map[catalog.Category][]ScoredItem)}
	for _, s := range scored {
		cat := s.Item.Category().Bucket()
		pool.buckets[cat] = append(pool.buckets[cat], s)
	}
	for _, bucket := range pool.buckets {
		sort.SliceStable(bucket, func(i, j int) bool {
			return bucket[i].Score > bucket[j].Score
		})
	}
	return pool
}

func (p *bucketPool) bucket(cat catalog.Category) []ScoredItem {
	return p.buckets[cat]
}

func (p *bucketPool) consume(selection map[catalog.Category]ScoredItem) {
	for cat, picked := range selection {
		bucket := p.buckets[cat]
		for i, s := range bucket {
			if s.Item == picked.Item {
				p.buckets[cat] = append(bucket[:i:i], bucket[i+1:]...)
				break
			}
		}
	}
}
