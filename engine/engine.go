// Package engine 是推荐系统的门面：装配目录、交互日志、内容索引与
// 协同模型，对外暴露推荐/记录/训练三类操作。
//
// 边界约定：输入校验（k、userID、画像、权重配置）在这里同步完成，
// 核心组件假定输入已合法；核心的“数据不足”一律降级为空信号，
// 不会以错误形态穿透到调用方。
package engine

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/rushteam/edurec/als"
	"github.com/rushteam/edurec/core"
	"github.com/rushteam/edurec/filter"
	"github.com/rushteam/edurec/hybrid"
	"github.com/rushteam/edurec/recall"
	"github.com/rushteam/edurec/store"
	"github.com/rushteam/edurec/textindex"
)

// 默认融合权重。
// 已知用户：协同为主，内容其次，热门兜底；
// 临时画像（冷启动）：兴趣规则为主。
var (
	defaultUserWeights = map[string]float64{
		"als":     0.7,
		"content": 0.2,
		"hot":     0.1,
	}
	defaultInterestWeights = map[string]float64{
		"interest": 0.7,
		"content":  0.2,
		"hot":      0.1,
	}
)

// Config 是引擎配置。零值字段取默认值。
type Config struct {
	// UserWeights 已知用户请求的融合权重（als/content/hot）
	UserWeights map[string]float64

	// InterestWeights 临时画像请求的融合权重（interest/content/hot）
	InterestWeights map[string]float64

	// RateThreshold 评分计入正向参与的阈值，默认 3.5
	RateThreshold float64

	// RecallMultiplier 召回深度相对 k 的倍数，默认 3
	RecallMultiplier int

	// Timeout 单个召回源的超时时间，0 表示不限制
	Timeout time.Duration

	// ALS 协同模型超参数
	ALS als.Config
}

func (c *Config) withDefaults() Config {
	out := *c
	if out.UserWeights == nil {
		out.UserWeights = defaultUserWeights
	}
	if out.InterestWeights == nil {
		out.InterestWeights = defaultInterestWeights
	}
	if out.RateThreshold <= 0 {
		out.RateThreshold = 3.5
	}
	if out.RecallMultiplier <= 0 {
		out.RecallMultiplier = 3
	}
	return out
}

// Engine 是推荐引擎门面。并发安全：
// 推荐读取的是索引/模型的不可变快照，Record 与 Train 可与读请求并发。
type Engine struct {
	cfg     Config
	catalog *core.Catalog
	log     core.InteractionStore
	index   *textindex.Index
	model   *als.Model
	kv      core.Store
	hotKey  string
	logger  *zap.Logger
}

// Option 是 Engine 的配置选项。
type Option func(*Engine)

// WithConfig 设置引擎配置。
func WithConfig(cfg Config) Option {
	return func(e *Engine) { e.cfg = cfg }
}

// WithInteractionStore 替换默认的内存交互日志。
func WithInteractionStore(log core.InteractionStore) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithStore 设置 KV 存储（预计算热门榜单等）。
func WithStore(kv core.Store, hotKey string) Option {
	return func(e *Engine) {
		e.kv = kv
		e.hotKey = hotKey
	}
}

// WithLogger 设置结构化日志，默认为 Nop。
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New 创建引擎：校验权重配置、构建内容索引、初始化协同模型。
// 目录为空或权重配置非法返回 INVALID_INPUT。
func New(catalog *core.Catalog, opts ...Option) (*Engine, error) {
	if catalog == nil || catalog.Len() == 0 {
		return nil, core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput, "engine: course catalog must not be empty")
	}

	e := &Engine{
		catalog: catalog,
		log:     store.NewInteractionLog(),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.cfg = e.cfg.withDefaults()

	if err := validateWeights(e.cfg.UserWeights, "als", "content", "hot"); err != nil {
		return nil, err
	}
	if err := validateWeights(e.cfg.InterestWeights, "interest", "content", "hot"); err != nil {
		return nil, err
	}

	e.index = textindex.NewIndex()
	e.index.Fit(catalog.All())

	e.model = als.New(e.log, catalog, e.cfg.ALS, als.WithLogger(e.logger))

	e.logger.Info("engine initialized",
		zap.Int("courses", catalog.Len()),
		zap.Int("vocab", e.index.VocabSize()),
	)
	return e, nil
}

func validateWeights(weights map[string]float64, known ...string) error {
	var sum float64
	for name, w := range weights {
		ok := false
		for _, k := range known {
			if name == k {
				ok = true
				break
			}
		}
		if !ok {
			return core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput, "engine: unknown source in weights: "+name)
		}
		if w < 0 {
			return core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput, "engine: weight must not be negative: "+name)
		}
		sum += w
	}
	if sum <= 0 {
		return core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput, "engine: weights must sum to a positive value")
	}
	return nil
}

// RecordInteraction 追加一条交互记录。
// 记录后协同模型进入 Stale 状态，直到下一次 Train。
func (e *Engine) RecordInteraction(ctx context.Context, in core.Interaction) error {
	if !e.catalog.Has(in.CourseID) {
		return core.NewDomainError(core.ModuleEngine, core.ErrorCodeNotFound, "engine: unknown course: "+in.CourseID)
	}
	return e.log.Record(ctx, in)
}

// Train 重训协同模型。
// 交互矩阵为空时返回 INSUFFICIENT_DATA；此时协同信号不可用，
// 推荐请求仍然正常工作（权重再分配给其余信号源）。
func (e *Engine) Train(ctx context.Context) error {
	err := e.model.Train(ctx)
	if err != nil {
		if core.IsInsufficientData(err) {
			e.logger.Warn("als training skipped", zap.Error(err))
		}
		return err
	}
	return nil
}

// TrainIfStale 仅在模型未训练或已过期时重训。
func (e *Engine) TrainIfStale(ctx context.Context) error {
	if e.model.State() == als.StateTrained {
		return nil
	}
	return e.Train(ctx)
}

// ModelState 返回协同模型状态（untrained / trained / stale）。
func (e *Engine) ModelState() als.State {
	return e.model.State()
}

// GetRecommendations 为已知用户返回 Top-K 推荐。
// k <= 0 或 userID 为空返回 INVALID_INPUT。
// 未知/冷用户不是错误：协同与内容信号为空，由热门信号兜底。
func (e *Engine) GetRecommendations(ctx context.Context, userID string, k int) ([]*core.Item, error) {
	if k <= 0 {
		return nil, core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput, "engine: k must be positive")
	}
	if userID == "" {
		return nil, core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput, "engine: userID must not be empty")
	}

	rctx := &core.RecommendContext{UserID: userID}
	items, err := e.blend(ctx, rctx, e.cfg.UserWeights, k)
	if err != nil {
		return nil, err
	}
	e.logger.Info("recommendations served",
		zap.String("user_id", userID),
		zap.Int("k", k),
		zap.Int("returned", len(items)),
		zap.String("model_state", string(e.model.State())),
	)
	return items, nil
}

// GetInterestBasedRecommendations 为临时兴趣画像返回 Top-K 推荐（冷启动路径）。
// 画像为空返回 INVALID_INPUT。
func (e *Engine) GetInterestBasedRecommendations(ctx context.Context, profile *core.InterestProfile, k int) ([]*core.Item, error) {
	if k <= 0 {
		return nil, core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput, "engine: k must be positive")
	}
	if profile.IsEmpty() {
		return nil, core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput, "engine: interest profile must not be empty")
	}

	rctx := &core.RecommendContext{Profile: profile}
	items, err := e.blend(ctx, rctx, e.cfg.InterestWeights, k)
	if err != nil {
		return nil, err
	}
	e.logger.Info("interest recommendations served",
		zap.Strings("interests", profile.NormalizedInterests()),
		zap.Int("k", k),
		zap.Int("returned", len(items)),
	)
	return items, nil
}

// blend 按请求构建融合节点并执行。召回深度 = k * RecallMultiplier，
// 给硬过滤与多源去重留出余量。
func (e *Engine) blend(ctx context.Context, rctx *core.RecommendContext, weights map[string]float64, k int) ([]*core.Item, error) {
	topK := k * e.cfg.RecallMultiplier

	sources := make([]hybrid.WeightedSource, 0, len(weights))
	for _, name := range []string{"als", "content", "interest", "hot"} {
		w, ok := weights[name]
		if !ok {
			continue
		}
		sources = append(sources, hybrid.WeightedSource{
			Source: e.source(name, topK),
			Weight: w,
		})
	}

	blender, err := hybrid.NewBlender(sources)
	if err != nil {
		return nil, err
	}
	blender.Catalog = e.catalog
	blender.Interacted = filter.NewInteractedFilter(e.log)
	blender.Hot = e.hotSource(topK)
	blender.K = k
	blender.Timeout = e.cfg.Timeout

	return blender.Blend(ctx, rctx)
}

func (e *Engine) source(name string, topK int) recall.Source {
	switch name {
	case "als":
		return &recall.ALSRecall{Model: e.model, TopK: topK}
	case "content":
		return &recall.ContentRecall{
			Index:         e.index,
			Log:           e.log,
			Catalog:       e.catalog,
			TopK:          topK,
			RateThreshold: e.cfg.RateThreshold,
		}
	case "interest":
		return &recall.InterestRecall{Catalog: e.catalog, Hot: e.hotSource(topK), TopK: topK}
	default:
		return e.hotSource(topK)
	}
}

func (e *Engine) hotSource(topK int) *recall.Hot {
	return &recall.Hot{
		Log:     e.log,
		Catalog: e.catalog,
		Store:   e.kv,
		Key:     e.hotKey,
		TopK:    topK,
	}
}

// PublishHotScores 把在线聚合的热度写入 KV 存储的有序集合，
// 供多实例共享榜单。未配置存储时返回 NOT_SUPPORTED。
func (e *Engine) PublishHotScores(ctx context.Context) error {
	return e.hotSource(0).Publish(ctx)
}
