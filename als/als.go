// Package als 实现隐式反馈的交替最小二乘矩阵分解
// （Hu, Koren, Volinsky: Collaborative Filtering for Implicit Feedback Datasets）。
//
// 状态机：Untrained → Trained → Stale → Trained。
// Train 在旁路构建完整的隐向量快照，训练完成后通过原子指针一次性发布；
// 读请求要么看到整个旧快照、要么看到整个新快照。重训之间快照保持不变
// （不做在线增量更新）；交互日志每次追加都会使快照进入 Stale。
package als

import (
	"context"
	"math/rand"
	"sort"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/rushteam/edurec/core"
)

// State 是模型状态。
type State string

const (
	StateUntrained State = "untrained"
	StateTrained   State = "trained"
	StateStale     State = "stale"
)

// Config 是 ALS 超参数。
// 给定相同的随机种子、矩阵和超参数，两次训练产出相同的隐向量。
type Config struct {
	Factors        int     // 隐向量维度，默认 50
	Iterations     int     // 交替迭代轮数，默认 20
	Regularization float64 // L2 正则系数，默认 0.01
	Alpha          float64 // 隐式反馈置信度缩放，默认 40
	Seed           int64   // 随机种子，默认 42
}

func (c *Config) withDefaults() Config {
	out := *c
	if out.Factors <= 0 {
		out.Factors = 50
	}
	if out.Iterations <= 0 {
		out.Iterations = 20
	}
	if out.Regularization <= 0 {
		out.Regularization = 0.01
	}
	if out.Alpha <= 0 {
		out.Alpha = 40
	}
	if out.Seed == 0 {
		out.Seed = 42
	}
	return out
}

// Snapshot 是一次训练产出的不可变隐因子快照。
type Snapshot struct {
	// UserFactors / ItemFactors 是固定秩 r 的稠密隐向量
	UserFactors map[string][]float64
	ItemFactors map[string][]float64

	// Interacted 记录训练语料中出现过的 (user, item) 对，
	// 召回时用于排除已交互的课程
	Interacted map[string]map[string]struct{}
}

// Model 是协同过滤模型：独占地拥有从交互日志派生的交互矩阵。
type Model struct {
	cfg     Config
	log     core.InteractionStore
	catalog *core.Catalog
	logger  *zap.Logger

	snap           atomic.Pointer[Snapshot]
	trainedVersion atomic.Uint64
}

// Option 是 Model 的配置选项。
type Option func(*Model)

// WithLogger 配置选项：设置结构化日志。默认为 Nop。
func WithLogger(logger *zap.Logger) Option {
	return func(m *Model) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// New 创建协同过滤模型。catalog 用于在矩阵构建时丢弃无效的课程引用。
func New(log core.InteractionStore, catalog *core.Catalog, cfg Config, opts ...Option) *Model {
	m := &Model{
		cfg:     cfg.withDefaults(),
		log:     log,
		catalog: catalog,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State 返回当前模型状态。Stale 由日志版本号派生，不需要显式标记。
func (m *Model) State() State {
	if m.snap.Load() == nil {
		return StateUntrained
	}
	if m.log != nil && m.log.Version() != m.trainedVersion.Load() {
		return StateStale
	}
	return StateTrained
}

// Snapshot 返回当前已发布的隐因子快照；未训练时返回 nil。
// 返回的快照不可变，可被多个请求并发读取。
func (m *Model) Snapshot() *Snapshot {
	return m.snap.Load()
}

// Train 从交互日志构建交互矩阵并做矩阵分解，成功后原子发布新快照。
//
// 失败语义：矩阵为空（没有任何有效交互）时返回 ErrInsufficientData——
// 这是该组件自身的致命条件，但不应使请求链路崩溃：调用方把
// 未训练/训练失败视为“协同信号不可用”（召回返回空）。
func (m *Model) Train(ctx context.Context) error {
	start := time.Now()
	logVersion := m.log.Version()

	interactions, err := m.log.All(ctx)
	if err != nil {
		return err
	}

	conf, interacted := m.buildMatrix(interactions)
	if len(conf) == 0 {
		return core.ErrInsufficientData
	}

	users := make([]string, 0, len(conf))
	itemSet := make(map[string]struct{})
	for u, items := range conf {
		users = append(users, u)
		for i := range items {
			itemSet[i] = struct{}{}
		}
	}
	items := make([]string, 0, len(itemSet))
	for i := range itemSet {
		items = append(items, i)
	}
	// 排序保证训练过程完全确定
	sort.Strings(users)
	sort.Strings(items)

	itemIdx := make(map[string]int, len(items))
	for i, it := range items {
		itemIdx[it] = i
	}

	userFactors, itemFactors := m.factorize(conf, users, items, itemIdx)

	snap := &Snapshot{
		UserFactors: make(map[string][]float64, len(users)),
		ItemFactors: make(map[string][]float64, len(items)),
		Interacted:  interacted,
	}
	for i, u := range users {
		snap.UserFactors[u] = userFactors[i]
	}
	for i, it := range items {
		snap.ItemFactors[it] = itemFactors[i]
	}

	m.snap.Store(snap)
	m.trainedVersion.Store(logVersion)

	m.logger.Info("als training complete",
		zap.Int("users", len(users)),
		zap.Int("items", len(items)),
		zap.Int("factors", m.cfg.Factors),
		zap.Int("iterations", m.cfg.Iterations),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// buildMatrix 把交互日志聚合为稀疏置信度矩阵。
//   - 同一 (user, course) 的多次交互权重累加
//   - dislike 抑制：该 (user, course) 从矩阵中剔除（但仍计入 Interacted）
//   - 课程不在目录中的记录直接丢弃，不报错
func (m *Model) buildMatrix(interactions []core.Interaction) (map[string]map[string]float64, map[string]map[string]struct{}) {
	conf := make(map[string]map[string]float64)
	interacted := make(map[string]map[string]struct{})
	disliked := make(map[string]map[string]struct{})

	for i := range interactions {
		in := &interactions[i]
		if in.UserID == "" || in.CourseID == "" {
			continue
		}
		if m.catalog != nil && !m.catalog.Has(in.CourseID) {
			continue
		}

		if interacted[in.UserID] == nil {
			interacted[in.UserID] = make(map[string]struct{})
		}
		interacted[in.UserID][in.CourseID] = struct{}{}

		if in.Event == core.EventDislike {
			if disliked[in.UserID] == nil {
				disliked[in.UserID] = make(map[string]struct{})
			}
			disliked[in.UserID][in.CourseID] = struct{}{}
			continue
		}

		w := in.Confidence()
		if w <= 0 {
			continue
		}
		if conf[in.UserID] == nil {
			conf[in.UserID] = make(map[string]float64)
		}
		conf[in.UserID][in.CourseID] += w
	}

	// dislike 剔除：负反馈压过同对的正反馈
	for u, courses := range disliked {
		for c := range courses {
			if conf[u] != nil {
				delete(conf[u], c)
				if len(conf[u]) == 0 {
					delete(conf, u)
				}
			}
		}
	}
	return conf, interacted
}

// factorize 执行隐式反馈 ALS：
// 交替固定物品/用户因子，对另一侧求解加权岭回归
//
//	A x_u = b，A = YtY + Yt(Cu−I)Y + λI，b = Yt Cu p(u)
//
// 置信度 c_ui = 1 + alpha * w_ui；未观测条目 c=1, p=0。
func (m *Model) factorize(
	conf map[string]map[string]float64,
	users, items []string,
	itemIdx map[string]int,
) ([][]float64, [][]float64) {
	f := m.cfg.Factors
	lambda := m.cfg.Regularization
	alpha := m.cfg.Alpha

	rng := rand.New(rand.NewSource(m.cfg.Seed))
	initFactors := func(n int) [][]float64 {
		out := make([][]float64, n)
		for i := range out {
			row := make([]float64, f)
			for j := range row {
				row[j] = rng.Float64() * 0.01
			}
			out[i] = row
		}
		return out
	}
	// 初始化顺序固定（先用户后物品），保证可复现
	x := initFactors(len(users))
	y := initFactors(len(items))

	// 倒排：item -> (userIdx, weight)，供物品侧求解使用
	type obs struct {
		idx int
		w   float64
	}
	userObs := make([][]obs, len(users))
	itemObs := make([][]obs, len(items))
	for ui, u := range users {
		courses := conf[u]
		keys := make([]string, 0, len(courses))
		for c := range courses {
			keys = append(keys, c)
		}
		sort.Strings(keys)
		for _, c := range keys {
			ii := itemIdx[c]
			w := courses[c]
			userObs[ui] = append(userObs[ui], obs{idx: ii, w: w})
			itemObs[ii] = append(itemObs[ii], obs{idx: ui, w: w})
		}
	}

	solveSide := func(solveFor [][]float64, fixed [][]float64, observations [][]obs) {
		// 预计算 YtY（f×f），每轮复用
		yty := make([][]float64, f)
		for i := range yty {
			yty[i] = make([]float64, f)
		}
		for _, row := range fixed {
			for a := 0; a < f; a++ {
				va := row[a]
				if va == 0 {
					continue
				}
				for b := 0; b < f; b++ {
					yty[a][b] += va * row[b]
				}
			}
		}

		a := make([][]float64, f)
		for i := range a {
			a[i] = make([]float64, f)
		}
		b := make([]float64, f)

		for idx := range solveFor {
			// A = YtY + λI；再叠加观测条目的 (c−1) y y^T
			for i := 0; i < f; i++ {
				copy(a[i], yty[i])
				a[i][i] += lambda
				b[i] = 0
			}
			for _, o := range observations[idx] {
				c := 1 + alpha*o.w
				row := fixed[o.idx]
				for i := 0; i < f; i++ {
					vi := row[i]
					if vi == 0 {
						continue
					}
					scale := (c - 1) * vi
					for j := 0; j < f; j++ {
						a[i][j] += scale * row[j]
					}
					b[i] += c * vi
				}
			}
			solveLinear(a, b, solveFor[idx])
		}
	}

	for iter := 0; iter < m.cfg.Iterations; iter++ {
		solveSide(x, y, userObs)
		solveSide(y, x, itemObs)
	}
	return x, y
}

// solveLinear 用带部分主元的高斯消元解 A·out = b（A 为 f×f 对称正定矩阵）。
// A 与 b 会被原地修改。
func solveLinear(a [][]float64, b []float64, out []float64) {
	n := len(b)
	for col := 0; col < n; col++ {
		// 选主元
		pivot := col
		for r := col + 1; r < n; r++ {
			if abs(a[r][col]) > abs(a[pivot][col]) {
				pivot = r
			}
		}
		if pivot != col {
			a[col], a[pivot] = a[pivot], a[col]
			b[col], b[pivot] = b[pivot], b[col]
		}
		p := a[col][col]
		if p == 0 {
			continue // 奇异列，跳过（正则项 λ>0 时不会出现）
		}
		for r := col + 1; r < n; r++ {
			factor := a[r][col] / p
			if factor == 0 {
				continue
			}
			for c := col; c < n; c++ {
				a[r][c] -= factor * a[col][c]
			}
			b[r] -= factor * b[col]
		}
	}
	// 回代
	for r := n - 1; r >= 0; r-- {
		sum := b[r]
		for c := r + 1; c < n; c++ {
			sum -= a[r][c] * out[c]
		}
		if a[r][r] != 0 {
			out[r] = sum / a[r][r]
		} else {
			out[r] = 0
		}
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// Predict 返回用户对课程的亲和度预测（隐向量点积）。
// 用户或课程不在快照中返回 (0, false)。
func (s *Snapshot) Predict(userID, courseID string) (float64, bool) {
	if s == nil {
		return 0, false
	}
	uv, ok := s.UserFactors[userID]
	if !ok {
		return 0, false
	}
	iv, ok := s.ItemFactors[courseID]
	if !ok {
		return 0, false
	}
	var dot float64
	for i := range uv {
		dot += uv[i] * iv[i]
	}
	return dot, true
}

// HasInteracted 判断训练语料中用户是否交互过该课程。
func (s *Snapshot) HasInteracted(userID, courseID string) bool {
	if s == nil {
		return false
	}
	items, ok := s.Interacted[userID]
	if !ok {
		return false
	}
	_, ok = items[courseID]
	return ok
}
