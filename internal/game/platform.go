package game

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Platforms 是游戏平台的位标志集合
type Platforms int

const (
	Local      Platforms = 1
	GameServer Platforms = 2

	AllPlatforms = Local | GameServer
)

// Single 判断是否恰好为一个已知平台
func (p Platforms) Single() bool {
	return p == Local || p == GameServer
}

func (p Platforms) String() string {
	var names []string
	if p&Local != 0 {
		names = append(names, "local")
	}
	if p&GameServer != 0 {
		names = append(names, "gameServer")
	}
	if len(names) == 0 {
		return strconv.Itoa(int(p))
	}
	return strings.Join(names, ",")
}

// ParsePlatforms 解析查询参数中的平台，支持整数或逗号分隔的名称
func ParsePlatforms(value string) (Platforms, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return AllPlatforms, nil
	}
	if n, err := strconv.Atoi(value); err == nil {
		p := Platforms(n)
		if p <= 0 || p&^AllPlatforms != 0 {
			return 0, fmt.Errorf("game: unknown platform %q", value)
		}
		return p, nil
	}
	var p Platforms
	for _, name := range strings.Split(value, ",") {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "local":
			p |= Local
		case "gameserver":
			p |= GameServer
		default:
			return 0, fmt.Errorf("game: unknown platform %q", name)
		}
	}
	return p, nil
}

// MarshalText 输出 camelCase 平台名称，与 relationType 的格式一致
func (p Platforms) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Platforms) UnmarshalText(text []byte) error {
	parsed, err := ParsePlatforms(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// UnmarshalJSON 同时接受名称字符串和整数
func (p *Platforms) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		return p.UnmarshalText([]byte(s))
	}
	return p.UnmarshalText(data)
}
