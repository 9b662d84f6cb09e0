package question

import (
	"fmt"
	"strconv"
	"strings"
)

// QuestionKey 是问题在一次导入的题包文档中的位置，不是稳定ID。
// 文本形式为 "round,theme,question"，可以作为JSON对象的键。
type QuestionKey struct {
	Round    int
	Theme    int
	Question int
}

func (k QuestionKey) String() string {
	return fmt.Sprintf("%d,%d,%d", k.Round, k.Theme, k.Question)
}

func (k QuestionKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *QuestionKey) UnmarshalText(text []byte) error {
	parts := strings.Split(string(text), ",")
	if len(parts) != 3 {
		return fmt.Errorf("question: invalid key %q", text)
	}
	var values [3]int
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return fmt.Errorf("question: invalid key %q: %w", text, err)
		}
		values[i] = v
	}
	*k = QuestionKey{Round: values[0], Theme: values[1], Question: values[2]}
	return nil
}
