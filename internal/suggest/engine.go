package suggest

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wanderlist/wanderlist/internal/cache"
	"github.com/wanderlist/wanderlist/internal/models"
)

const (
	// DefaultMaxSuggestions is the number of category suggestions shown on
	// the discovery surface.
	DefaultMaxSuggestions = 6
	// serendipityMinSlots is the minimum exploration slot count before one
	// slot is given to a uniform random pick.
	serendipityMinSlots = 3
)

// PreferenceSource supplies a user's interaction counts by place type.
// Implemented by the preference statistics repository.
type PreferenceSource interface {
	// GetInteractionCounts returns the counts, or an empty map for users
	// with no history.
	GetInteractionCounts(ctx context.Context, userID uuid.UUID) (map[string]int, error)
}

// Config holds suggestion engine settings.
type Config struct {
	MaxSuggestions int
	// CacheTTL bounds how long a suggestion set is reused for the same
	// user and time of day. Zero disables caching.
	CacheTTL        time.Duration
	CacheMaxEntries int
	// Seed fixes the random source for deterministic tests. Zero seeds
	// from the clock.
	Seed int64
}

// DefaultConfig returns production engine settings.
func DefaultConfig() *Config {
	return &Config{
		MaxSuggestions:  DefaultMaxSuggestions,
		CacheTTL:        5 * time.Minute,
		CacheMaxEntries: 1024,
	}
}

// Validate checks config invariants.
func (c *Config) Validate() error {
	if c.MaxSuggestions <= 0 {
		return fmt.Errorf("max suggestions must be positive, got %d", c.MaxSuggestions)
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("cache ttl must not be negative")
	}
	return nil
}

// Metadata describes how a suggestion set was produced. Exploitation and
// Exploration carry the classification explicitly; it is never re-derived
// from the position of a suggestion in the final slice.
type Metadata struct {
	Source               models.SuggestionSource `json:"source"`
	HasPreferences       bool                    `json:"has_preferences"`
	ExplorationUsed      bool                    `json:"exploration_used"`
	TimeOfDay            models.TimeOfDay        `json:"time_of_day"`
	Exploitation         []models.CategoryGroup  `json:"exploitation_suggestions,omitempty"`
	Exploration          []models.CategoryGroup  `json:"exploration_suggestions,omitempty"`
	UserPreferencesCount int                     `json:"user_preferences_count,omitempty"`
}

// Result is a ranked, deduplicated, time-filtered suggestion set.
type Result struct {
	Suggestions []models.CategoryGroup `json:"suggestions"`
	Metadata    Metadata               `json:"metadata"`
}

// Engine produces category suggestions blending exploitation of known
// preference with exploration of the rest of the catalog. It is stateless
// per request and safe for concurrent use.
type Engine struct {
	config  *Config
	logger  *zap.Logger
	catalog []models.CategoryGroup
	prefs   PreferenceSource
	clock   func() time.Time

	rng   *rand.Rand
	rngMu sync.Mutex

	cache *cache.TTLCache
}

// NewEngine creates a suggestion engine over the static catalog.
func NewEngine(cfg *Config, prefs PreferenceSource, logger *zap.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid suggestion config: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	e := &Engine{
		config:  cfg,
		logger:  logger,
		catalog: Catalog(),
		prefs:   prefs,
		clock:   time.Now,
		rng:     rand.New(rand.NewSource(seed)), //nolint:gosec // sampling, not crypto
	}
	if cfg.CacheTTL > 0 {
		e.cache = cache.New(cfg.CacheMaxEntries, cfg.CacheTTL, nil)
	}
	return e, nil
}

// SetClock overrides the server clock. Intended for tests.
func (e *Engine) SetClock(clock func() time.Time) {
	if clock != nil {
		e.clock = clock
	}
}

// Suggest produces the suggestion set for a user (nil userID means
// anonymous). A preference lookup failure degrades to the default set; this
// surface is a UX enhancement and never fails the request.
func (e *Engine) Suggest(ctx context.Context, userID *uuid.UUID, in TimeInput) *Result {
	hour := in.EffectiveHour(e.clock())
	tod := TimeOfDayForHour(hour)

	counts := e.loadPreferences(ctx, userID)

	if key, ok := e.cacheKey(userID, tod, len(counts)); ok {
		if cached, hit := e.cache.Get(key); hit {
			return cached.(*Result)
		}
	}

	eligible := e.eligibleGroups(tod)

	var result *Result
	if len(counts) == 0 {
		result = e.defaultSet(eligible, tod, hour)
	} else {
		result = e.personalizedSet(eligible, counts, tod, hour)
	}

	if key, ok := e.cacheKey(userID, tod, len(counts)); ok {
		e.cache.Set(key, result)
	}

	e.logger.Debug("suggestions_generated",
		zap.String("source", string(result.Metadata.Source)),
		zap.String("time_of_day", string(tod)),
		zap.Int("count", len(result.Suggestions)),
		zap.Bool("exploration_used", result.Metadata.ExplorationUsed),
	)
	return result
}

// loadPreferences fetches interaction counts, degrading to empty on any
// failure.
func (e *Engine) loadPreferences(ctx context.Context, userID *uuid.UUID) map[string]int {
	if userID == nil || e.prefs == nil {
		return nil
	}
	counts, err := e.prefs.GetInteractionCounts(ctx, *userID)
	if err != nil {
		e.logger.Warn("preference_lookup_failed_using_defaults",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
		return nil
	}
	return counts
}

// eligibleGroups applies the time filter to the catalog, preserving catalog
// order.
func (e *Engine) eligibleGroups(tod models.TimeOfDay) []models.CategoryGroup {
	eligible := make([]models.CategoryGroup, 0, len(e.catalog))
	for i := range e.catalog {
		if groupAllowedAt(&e.catalog[i], tod) {
			eligible = append(eligible, e.catalog[i])
		}
	}
	return eligible
}

// defaultSet samples the time-appropriate catalog by base weight. Weighted
// sampling rather than strict top-N keeps the anonymous surface from going
// stale.
func (e *Engine) defaultSet(eligible []models.CategoryGroup, tod models.TimeOfDay, hour int) *Result {
	picked := e.sample(eligible, func(g *models.CategoryGroup) float64 {
		return g.BaseWeight()
	}, e.config.MaxSuggestions)

	suggestions := make([]models.CategoryGroup, 0, len(picked))
	for _, g := range picked {
		clone := cloneGroup(g)
		clone.Weight = g.BaseWeight()
		applyNightStyling(&clone, hour)
		suggestions = append(suggestions, clone)
	}
	suggestions = dedupeByID(suggestions)

	return &Result{
		Suggestions: suggestions,
		Metadata: Metadata{
			Source:          models.SourceDefault,
			HasPreferences:  false,
			ExplorationUsed: false,
			TimeOfDay:       tod,
		},
	}
}

// personalizedSet blends exploitation of preferred types with exploration of
// the remaining catalog.
func (e *Engine) personalizedSet(eligible []models.CategoryGroup, counts map[string]int, tod models.TimeOfDay, hour int) *Result {
	ratio := exploitationRatio(len(counts))
	exploitSlots, exploreSlots := splitSlots(e.config.MaxSuggestions, ratio)

	exploitation := e.exploit(eligible, counts, exploitSlots)
	if len(exploitation) < exploitSlots {
		// Not enough preference-matching candidates; give the unused
		// slots to exploration so the cap is still reached.
		exploreSlots += exploitSlots - len(exploitation)
	}

	exploration := e.explore(eligible, exploitation, exploreSlots)

	for i := range exploitation {
		applyNightStyling(&exploitation[i], hour)
	}
	for i := range exploration {
		applyNightStyling(&exploration[i], hour)
	}

	suggestions := make([]models.CategoryGroup, 0, len(exploitation)+len(exploration))
	suggestions = append(suggestions, exploitation...)
	suggestions = append(suggestions, exploration...)
	suggestions = dedupeByID(suggestions)
	if len(suggestions) > e.config.MaxSuggestions {
		suggestions = suggestions[:e.config.MaxSuggestions]
	}

	source := models.SourceMixed
	if exploreSlots == 0 || len(exploration) == 0 {
		source = models.SourceUserPreferences
	}

	return &Result{
		Suggestions: suggestions,
		Metadata: Metadata{
			Source:               source,
			HasPreferences:       true,
			ExplorationUsed:      len(exploration) > 0,
			TimeOfDay:            tod,
			Exploitation:         exploitation,
			Exploration:          exploration,
			UserPreferencesCount: len(counts),
		},
	}
}

// exploit samples groups matching the user's preferred types, weighted by
// summed interaction count so stronger preferences surface more often while
// repeated calls still vary.
func (e *Engine) exploit(eligible []models.CategoryGroup, counts map[string]int, slots int) []models.CategoryGroup {
	if slots <= 0 {
		return nil
	}

	candidates := make([]models.CategoryGroup, 0, len(eligible))
	for _, g := range eligible {
		score := interactionScore(&g, counts)
		if score == 0 {
			continue
		}
		if g.Metadata != nil && g.Metadata.MinimumInteractionCount > 0 && score < g.Metadata.MinimumInteractionCount {
			continue
		}
		candidates = append(candidates, g)
	}
	// Rank by score; sampling below keeps the order from being the whole
	// story.
	sort.SliceStable(candidates, func(i, j int) bool {
		return interactionScore(&candidates[i], counts) > interactionScore(&candidates[j], counts)
	})

	picked := e.sample(candidates, func(g *models.CategoryGroup) float64 {
		return float64(interactionScore(g, counts))
	}, slots)

	out := make([]models.CategoryGroup, 0, len(picked))
	for _, g := range picked {
		clone := cloneGroup(g)
		clone.Weight = float64(interactionScore(&g, counts))
		out = append(out, clone)
	}
	return out
}

// explore samples the remaining time-appropriate catalog by base weight.
// Groups already exploited (or subtypes of them, ids of the form
// "{exploitedID}_*") and groups requiring explicit user intent are excluded
// from the pool before sampling. One slot may be filled by a uniform random
// pick flagged IsRandomExploration to guarantee serendipity.
func (e *Engine) explore(eligible, exploitation []models.CategoryGroup, slots int) []models.CategoryGroup {
	if slots <= 0 {
		return nil
	}

	pool := make([]models.CategoryGroup, 0, len(eligible))
	for _, g := range eligible {
		if excludedFromExploration(&g, exploitation) {
			continue
		}
		pool = append(pool, g)
	}

	weightedSlots := slots
	useSerendipity := slots >= serendipityMinSlots && len(pool) > slots
	if useSerendipity {
		weightedSlots--
	}

	picked := e.sample(pool, func(g *models.CategoryGroup) float64 {
		return g.BaseWeight()
	}, weightedSlots)

	out := make([]models.CategoryGroup, 0, slots)
	for _, g := range picked {
		clone := cloneGroup(g)
		clone.Weight = g.BaseWeight()
		out = append(out, clone)
	}

	if useSerendipity {
		remaining := make([]models.CategoryGroup, 0, len(pool))
		for _, g := range pool {
			if containsID(out, g.ID) {
				continue
			}
			remaining = append(remaining, g)
		}
		e.rngMu.Lock()
		random, ok := sampleUniform(e.rng, remaining)
		e.rngMu.Unlock()
		if ok {
			clone := cloneGroup(random)
			clone.Weight = random.BaseWeight()
			clone.Metadata.IsRandomExploration = true
			out = append(out, clone)
		}
	}

	return out
}

// sample runs the weighted sampling primitive under the rng lock.
func (e *Engine) sample(groups []models.CategoryGroup, weightOf weightFunc, k int) []models.CategoryGroup {
	e.rngMu.Lock()
	defer e.rngMu.Unlock()
	return sampleWithoutReplacement(e.rng, groups, weightOf, k)
}

func (e *Engine) cacheKey(userID *uuid.UUID, tod models.TimeOfDay, prefCount int) (string, bool) {
	if e.cache == nil {
		return "", false
	}
	who := "anon"
	if userID != nil {
		who = userID.String()
	}
	return fmt.Sprintf("suggest:%s:%s:%d", who, tod, prefCount), true
}

// interactionScore sums the user's interaction counts over a group's types.
func interactionScore(g *models.CategoryGroup, counts map[string]int) int {
	var score int
	for _, t := range g.Types {
		score += counts[t.ID]
	}
	return score
}

// excludedFromExploration reports whether a group must not enter the
// exploration pool.
func excludedFromExploration(g *models.CategoryGroup, exploitation []models.CategoryGroup) bool {
	if g.Metadata != nil && g.Metadata.RequiresUserIntent {
		return true
	}
	for _, chosen := range exploitation {
		if g.ID == chosen.ID || strings.HasPrefix(g.ID, chosen.ID+"_") {
			return true
		}
	}
	return false
}

// applyNightStyling flags very-late intensity on nightlife suggestions.
func applyNightStyling(g *models.CategoryGroup, hour int) {
	if g.Metadata != nil && g.Metadata.IsNightSuggestion && IsVeryLate(hour) {
		g.Metadata.IsVeryLate = true
	}
}

// cloneGroup copies a catalog group so per-request tagging never mutates the
// shared catalog.
func cloneGroup(g models.CategoryGroup) models.CategoryGroup {
	out := g
	out.Types = append([]models.PlaceType(nil), g.Types...)
	meta := models.CategoryMetadata{}
	if g.Metadata != nil {
		meta = *g.Metadata
		if g.Metadata.TimeAppropriate != nil {
			ta := make(map[models.TimeOfDay]bool, len(g.Metadata.TimeAppropriate))
			for k, v := range g.Metadata.TimeAppropriate {
				ta[k] = v
			}
			meta.TimeAppropriate = ta
		}
	}
	out.Metadata = &meta
	return out
}

// dedupeByID drops later duplicates, preserving order.
func dedupeByID(groups []models.CategoryGroup) []models.CategoryGroup {
	seen := make(map[string]struct{}, len(groups))
	out := groups[:0]
	for _, g := range groups {
		if _, dup := seen[g.ID]; dup {
			continue
		}
		seen[g.ID] = struct{}{}
		out = append(out, g)
	}
	return out
}

func containsID(groups []models.CategoryGroup, id string) bool {
	for _, g := range groups {
		if g.ID == id {
			return true
		}
	}
	return false
}
