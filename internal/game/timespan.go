package game

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Duration 以 "[-][d.]hh:mm:ss[.fffffff]" 的文本形式序列化，与现有客户端的时间间隔格式一致。
// 反序列化时也接受Go的时长写法，例如 "40m"。
type Duration time.Duration

const tick = 100 * time.Nanosecond

func (d Duration) String() string {
	v := time.Duration(d)
	var sb strings.Builder
	if v < 0 {
		sb.WriteByte('-')
		if v == math.MinInt64 {
			v = math.MaxInt64
		} else {
			v = -v
		}
	}
	day := 24 * time.Hour
	days := v / day
	v -= days * day
	hours := v / time.Hour
	v -= hours * time.Hour
	minutes := v / time.Minute
	v -= minutes * time.Minute
	seconds := v / time.Second
	v -= seconds * time.Second
	ticks := v / tick

	if days > 0 {
		fmt.Fprintf(&sb, "%d.", days)
	}
	fmt.Fprintf(&sb, "%02d:%02d:%02d", hours, minutes, seconds)
	if ticks > 0 {
		fmt.Fprintf(&sb, ".%07d", ticks)
	}
	return sb.String()
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("game: duration must be a string: %w", err)
	}
	parsed, err := ParseDuration(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

var errDurationFormat = errors.New("game: invalid duration")

// ParseDuration 解析时间间隔文本
func ParseDuration(s string) (Duration, error) {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, ":") {
		v, err := time.ParseDuration(s)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", errDurationFormat, s)
		}
		return Duration(v), nil
	}

	neg := strings.HasPrefix(s, "-")
	rest := strings.TrimPrefix(s, "-")

	var days int64
	colon := strings.IndexByte(rest, ':')
	if dot := strings.IndexByte(rest, '.'); dot >= 0 && dot < colon {
		n, err := strconv.ParseInt(rest[:dot], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", errDurationFormat, s)
		}
		days = n
		rest = rest[dot+1:]
	}

	var frac string
	if dot := strings.IndexByte(rest, '.'); dot >= 0 {
		frac = rest[dot+1:]
		rest = rest[:dot]
	}
	parts := strings.Split(rest, ":")
	if len(parts) != 3 || len(frac) > 7 {
		return 0, fmt.Errorf("%w: %q", errDurationFormat, s)
	}
	var hms [3]int64
	for i, p := range parts {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("%w: %q", errDurationFormat, s)
		}
		hms[i] = n
	}
	if hms[0] > 23 || hms[1] > 59 || hms[2] > 59 {
		return 0, fmt.Errorf("%w: %q", errDurationFormat, s)
	}
	var ticks int64
	if frac != "" {
		n, err := strconv.ParseInt(frac+strings.Repeat("0", 7-len(frac)), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", errDurationFormat, s)
		}
		ticks = n
	}

	if days > int64(math.MaxInt64/int64(24*time.Hour)) {
		return 0, fmt.Errorf("%w: %q out of range", errDurationFormat, s)
	}
	v := time.Duration(days)*24*time.Hour +
		time.Duration(hms[0])*time.Hour +
		time.Duration(hms[1])*time.Minute +
		time.Duration(hms[2])*time.Second +
		time.Duration(ticks)*tick
	if neg {
		v = -v
	}
	return Duration(v), nil
}

// addSaturating 相加两个非负时长，溢出时返回最大值
func addSaturating(a, b time.Duration) time.Duration {
	if b > 0 && a > math.MaxInt64-b {
		return math.MaxInt64
	}
	return a + b
}
