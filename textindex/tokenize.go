package textindex

import "strings"

// stopwords 是英文停用词表（截取自 sklearn 的 english 列表中高频部分）。
// 词表固定，保证同一语料两次 Fit 结果一致。
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"by": {}, "for": {}, "from": {}, "has": {}, "have": {}, "how": {},
	"in": {}, "into": {}, "is": {}, "it": {}, "its": {}, "of": {}, "on": {},
	"or": {}, "that": {}, "the": {}, "this": {}, "to": {}, "was": {},
	"were": {}, "will": {}, "with": {}, "you": {}, "your": {}, "we": {},
	"our": {}, "can": {}, "using": {}, "use": {}, "learn": {}, "course": {},
}

// Tokenize 把文本切分为规范化词元：小写、按非字母数字切分、
// 丢弃单字符词与停用词。确定性：相同输入永远产生相同输出。
func Tokenize(text string) []string {
	if text == "" {
		return nil
	}
	lower := strings.ToLower(text)
	fields := strings.FieldsFunc(lower, func(r rune) bool {
		return !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9')
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) < 2 {
			continue
		}
		if _, ok := stopwords[f]; ok {
			continue
		}
		out = append(out, f)
	}
	return out
}
