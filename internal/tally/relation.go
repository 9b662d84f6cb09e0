package tally

import (
	"fmt"
	"strings"
)

// RelationType 描述一次答案出现与问题的关系
type RelationType int

const (
	Right RelationType = iota
	Wrong
	Apellated
	Accepted
	Rejected
	Complained
)

var relationNames = [...]string{
	Right:      "right",
	Wrong:      "wrong",
	Apellated:  "apellated",
	Accepted:   "accepted",
	Rejected:   "rejected",
	Complained: "complained",
}

// storageCodes 是关系类型与数据库整数值之间唯一的映射表
var storageCodes = map[RelationType]int16{
	Right:      0,
	Wrong:      1,
	Apellated:  2,
	Accepted:   3,
	Rejected:   4,
	Complained: 5,
}

func (t RelationType) Valid() bool {
	return t >= Right && t <= Complained
}

func (t RelationType) String() string {
	if !t.Valid() {
		return fmt.Sprintf("RelationType(%d)", int(t))
	}
	return relationNames[t]
}

func (t RelationType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("tally: unknown relation type %d", int(t))
	}
	return []byte(relationNames[t]), nil
}

func (t *RelationType) UnmarshalText(text []byte) error {
	parsed, err := ParseRelationType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseRelationType 解析关系类型名称，忽略大小写
func ParseRelationType(name string) (RelationType, error) {
	for i, n := range relationNames {
		if strings.EqualFold(n, name) {
			return RelationType(i), nil
		}
	}
	return 0, fmt.Errorf("tally: unknown relation type %q", name)
}

func toStorage(t RelationType) (int16, error) {
	code, ok := storageCodes[t]
	if !ok {
		return 0, fmt.Errorf("tally: unknown relation type %d", int(t))
	}
	return code, nil
}

func fromStorage(code int16) (RelationType, error) {
	for t, c := range storageCodes {
		if c == code {
			return t, nil
		}
	}
	return 0, fmt.Errorf("tally: unknown stored relation type %d", code)
}
