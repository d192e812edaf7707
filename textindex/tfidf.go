// Package textindex 实现课程内容索引：把课程文本元数据
// （title + description + skill_tags）向量化为 TF-IDF 稀疏向量，
// 并提供课程间的余弦相似度查询。
//
// 并发模型：Fit 在旁路构建完整快照后通过原子指针一次性发布；
// 读请求要么看到整个旧快照、要么看到整个新快照，绝不会看到半成品。
// 词表在 Fit 时固定；查询期出现的新词被忽略。
package textindex

import (
	"math"
	"sort"
	"sync/atomic"

	"github.com/rushteam/edurec/core"
)

// Vector 是词表下标 -> TF-IDF 权重的稀疏向量（已 L2 归一化）。
type Vector map[int]float64

// snapshot 是一次 Fit 产出的不可变内容索引。
type snapshot struct {
	vocab   map[string]int // term -> 词表下标
	idf     []float64
	vectors map[string]Vector // courseId -> 内容向量
}

// Index 是内容索引。零值不可用，使用 NewIndex 创建。
type Index struct {
	snap atomic.Pointer[snapshot]
}

func NewIndex() *Index {
	return &Index{}
}

// Fit 对整个课程语料计算 TF-IDF 词表与权重。
// 给定相同语料与分词器，结果确定；目录变化后必须重新 Fit。
func (ix *Index) Fit(courses []*core.Course) {
	// 1. 分词并统计文档频率
	docs := make([]struct {
		id    string
		terms []string
	}, 0, len(courses))
	df := make(map[string]int)

	for _, c := range courses {
		if c == nil || c.ID == "" {
			continue
		}
		terms := Tokenize(c.CombinedText())
		docs = append(docs, struct {
			id    string
			terms []string
		}{id: c.ID, terms: terms})

		seen := make(map[string]struct{}, len(terms))
		for _, t := range terms {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			df[t]++
		}
	}

	// 2. 固定词表（按字典序分配下标，保证确定性）
	vocabTerms := make([]string, 0, len(df))
	for t := range df {
		vocabTerms = append(vocabTerms, t)
	}
	sort.Strings(vocabTerms)

	vocab := make(map[string]int, len(vocabTerms))
	idf := make([]float64, len(vocabTerms))
	n := float64(len(docs))
	for i, t := range vocabTerms {
		vocab[t] = i
		// 平滑 IDF：ln((1+N)/(1+df)) + 1，避免除零并保证权重为正
		idf[i] = math.Log((1+n)/(1+float64(df[t]))) + 1
	}

	// 3. 计算每个课程的 L2 归一化 TF-IDF 向量
	vectors := make(map[string]Vector, len(docs))
	for _, d := range docs {
		tf := make(map[int]float64, len(d.terms))
		for _, t := range d.terms {
			tf[vocab[t]]++
		}
		vec := make(Vector, len(tf))
		var norm float64
		for idx, count := range tf {
			w := count * idf[idx]
			vec[idx] = w
			norm += w * w
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for idx := range vec {
				vec[idx] /= norm
			}
		}
		vectors[d.id] = vec
	}

	ix.snap.Store(&snapshot{vocab: vocab, idf: idf, vectors: vectors})
}

// Fitted 判断索引是否已构建。
func (ix *Index) Fitted() bool {
	return ix.snap.Load() != nil
}

// VectorFor 返回课程的内容向量。
// 未知课程或未 Fit 返回空向量（视为“无信号”，不是错误）。
func (ix *Index) VectorFor(courseID string) Vector {
	s := ix.snap.Load()
	if s == nil {
		return Vector{}
	}
	if vec, ok := s.vectors[courseID]; ok {
		return vec
	}
	return Vector{}
}

// Similarity 计算两个课程内容向量的余弦相似度。
// 任一向量为零向量时返回 0（不传播除零）。
func (ix *Index) Similarity(courseA, courseB string) float64 {
	a := ix.VectorFor(courseA)
	b := ix.VectorFor(courseB)
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	// 向量已 L2 归一化，余弦即点积；遍历较小的一侧
	if len(b) < len(a) {
		a, b = b, a
	}
	var dot float64
	for idx, wa := range a {
		if wb, ok := b[idx]; ok {
			dot += wa * wb
		}
	}
	return dot
}

// VocabSize 返回词表大小（用于观测/调试）。
func (ix *Index) VocabSize() int {
	s := ix.snap.Load()
	if s == nil {
		return 0
	}
	return len(s.vocab)
}
