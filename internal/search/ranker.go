package search

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/parchmentlabs/questmatch/internal/metrics"
	"github.com/parchmentlabs/questmatch/internal/models"
	"github.com/parchmentlabs/questmatch/internal/textmatch"
)

// DefaultCandidateLimit bounds the candidate set pulled from the index for
// one query.
const DefaultCandidateLimit = 200

// QuestSource reads quests for ranking.
type QuestSource interface {
	ListQuests(ctx context.Context) ([]models.Quest, error)
	GetQuestsByIDs(ctx context.Context, ids []string) ([]models.Quest, error)
}

// CandidateIndex looks up quest ids whose token set intersects the query
// tokens (any-match).
type CandidateIndex interface {
	FindIDsByAnyToken(ctx context.Context, tokens []string, limit int) ([]string, error)
}

// ResultCache holds full ranked hit lists for a short TTL so pagination
// within the window slices a cached list instead of rescoring. Best-effort
// only; dropping or duplicating entries is always safe.
type ResultCache interface {
	Get(key string) ([]models.SearchHit, bool)
	Set(key string, hits []models.SearchHit)
}

// Ranker scores index candidates against a query plus structured filters.
type Ranker struct {
	quests         QuestSource
	index          CandidateIndex
	cache          ResultCache
	candidateLimit int
	weights        map[string]float64
}

func NewRanker(quests QuestSource, index CandidateIndex, cache ResultCache, candidateLimit int) *Ranker {
	if candidateLimit <= 0 {
		candidateLimit = DefaultCandidateLimit
	}
	return &Ranker{
		quests:         quests,
		index:          index,
		cache:          cache,
		candidateLimit: candidateLimit,
		weights:        textmatch.CanonicalFieldWeights(),
	}
}

// Search ranks the catalog for a free-text query plus filters and returns
// one page of hits. An empty query returns an empty result; search
// requires text.
func (r *Ranker) Search(ctx context.Context, req models.SearchRequest) (*models.SearchResult, error) {
	started := time.Now()
	defer func() {
		metrics.SearchDuration.Observe(time.Since(started).Seconds())
	}()

	query := strings.TrimSpace(req.Query)
	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 {
		pageSize = 10
	}

	if query == "" {
		return &models.SearchResult{Total: 0, Page: page, PageSize: pageSize, Hits: []models.SearchHit{}}, nil
	}

	key := cacheKey(query, req.Filters)
	if hits, ok := r.cache.Get(key); ok {
		metrics.SearchRequests.WithLabelValues("hit").Inc()
		return paginate(hits, page, pageSize), nil
	}
	metrics.SearchRequests.WithLabelValues("miss").Inc()

	candidates, err := r.candidates(ctx, query)
	if err != nil {
		return nil, err
	}

	target := filterFields(req.Filters)
	hits := make([]models.SearchHit, 0, len(candidates))
	for i := range candidates {
		q := &candidates[i]
		if !passesFilters(q, req.Filters) {
			continue
		}

		fieldScore := textmatch.FieldMatchGraded(target, textmatch.QuestFields(q), r.weights)
		titleSim := textmatch.TextSimilarity(query, q.Title)
		summarySim := textmatch.TextSimilarity(query, q.Summary)
		textScore := (titleSim + summarySim) / 2
		score := textmatch.HybridFieldWeight*fieldScore + textmatch.HybridTextWeight*textScore

		// A zero hybrid score means no text overlap and no filter
		// agreement; such candidates are not results.
		if score <= 0 {
			continue
		}

		snippetSource := q.Summary
		if snippetSource == "" {
			snippetSource = q.Title
		}

		hits = append(hits, models.SearchHit{
			ID:      q.ID,
			Title:   q.Title,
			Snippet: Snippet(snippetSource, query),
			Score:   score,
		})
	}

	// Stable: equal scores keep candidate order.
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })

	r.cache.Set(key, hits)

	return paginate(hits, page, pageSize), nil
}

// candidates retrieves the scoring candidate set: an any-match index
// lookup bounded by candidateLimit, falling back to a full catalog scan
// when the lookup errors or yields nothing. Correctness over speed for
// small catalogs.
func (r *Ranker) candidates(ctx context.Context, query string) ([]models.Quest, error) {
	tokens := textmatch.Tokenize(query)
	if len(tokens) > 0 {
		ids, err := r.index.FindIDsByAnyToken(ctx, tokens, r.candidateLimit)
		if err != nil {
			log.Warn().Err(err).Msg("Index lookup failed, falling back to full scan")
		} else if len(ids) > 0 {
			quests, err := r.quests.GetQuestsByIDs(ctx, ids)
			if err != nil {
				log.Warn().Err(err).Msg("Candidate fetch failed, falling back to full scan")
			} else if len(quests) > 0 {
				return quests, nil
			}
		}
	}

	quests, err := r.quests.ListQuests(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to scan catalog: %w", err)
	}
	return quests, nil
}

func paginate(hits []models.SearchHit, page, pageSize int) *models.SearchResult {
	total := len(hits)
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	pageHits := make([]models.SearchHit, end-start)
	copy(pageHits, hits[start:end])

	return &models.SearchResult{
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		Hits:     pageHits,
	}
}

// passesFilters applies the attribute equality constraints: for each filter
// key the quest's value must equal the filter value (or, for a list filter,
// match any of its values). For set-valued quest attributes a scalar filter
// value passes when the set contains it.
func passesFilters(q *models.Quest, filters map[string]interface{}) bool {
	for key, val := range filters {
		if val == nil {
			continue
		}
		if !matchesFilterValue(q, key, val) {
			return false
		}
	}
	return true
}

func matchesFilterValue(q *models.Quest, key string, val interface{}) bool {
	if list, ok := val.([]interface{}); ok {
		for _, v := range list {
			if matchesFilterValue(q, key, v) {
				return true
			}
		}
		return false
	}

	want := renderScalar(val)
	switch key {
	case textmatch.FieldTags:
		return containsString(q.Tags, want)
	case textmatch.FieldEnvironment:
		return containsString(q.Environment, want)
	case textmatch.FieldCommonMonsters:
		return containsString(q.CommonMonsters, want)
	case textmatch.FieldLevel:
		return q.Level > 0 && strconv.Itoa(q.Level) == want
	case textmatch.FieldPlayers:
		return q.Players > 0 && strconv.Itoa(q.Players) == want
	case textmatch.FieldDuration:
		return q.Duration == want
	case textmatch.FieldGameSystem:
		return q.GameSystem == want || q.StandardizedGameSystem == want
	default:
		// Unknown filter keys never match; callers see zero hits rather
		// than a silently ignored constraint.
		return false
	}
}

// filterFields builds the synthetic field-match target from the supplied
// filters, so filter agreement contributes to ranking the same way quest
// attributes do in related-list scoring.
func filterFields(filters map[string]interface{}) textmatch.FieldSet {
	fs := textmatch.FieldSet{
		Scalars: make(map[string]string),
		Sets:    make(map[string][]string),
	}
	for key, val := range filters {
		if val == nil {
			continue
		}
		switch key {
		case textmatch.FieldTags, textmatch.FieldEnvironment, textmatch.FieldCommonMonsters:
			fs.Sets[key] = renderList(val)
		case textmatch.FieldLevel, textmatch.FieldPlayers, textmatch.FieldDuration, textmatch.FieldGameSystem:
			if list, ok := val.([]interface{}); ok {
				if len(list) > 0 {
					fs.Scalars[key] = renderScalar(list[0])
				}
			} else {
				fs.Scalars[key] = renderScalar(val)
			}
		}
	}
	return fs
}

func renderList(val interface{}) []string {
	switch v := val.(type) {
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, renderScalar(item))
		}
		return out
	case []string:
		return v
	default:
		return []string{renderScalar(val)}
	}
}

// renderScalar normalizes filter values to comparable strings. JSON
// numbers arrive as float64; whole values render without a fraction so
// they compare equal to quest ints.
func renderScalar(val interface{}) string {
	switch v := val.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func containsString(list []string, want string) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}
	return false
}

// cacheKey canonicalizes a query+filters pair: normalized query plus
// sorted filter key/value rendering, so equivalent requests share an
// entry.
func cacheKey(query string, filters map[string]interface{}) string {
	var sb strings.Builder
	sb.WriteString(strings.ToLower(strings.TrimSpace(query)))

	keys := make([]string, 0, len(filters))
	for k := range filters {
		if filters[k] != nil {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		vals := renderList(filters[k])
		sort.Strings(vals)
		sb.WriteString("|")
		sb.WriteString(k)
		sb.WriteString("=")
		sb.WriteString(strings.Join(vals, ","))
	}
	return sb.String()
}
