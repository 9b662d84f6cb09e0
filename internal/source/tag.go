package source

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrInvalidSource 表示来源地址不是带主机名的绝对URI
var ErrInvalidSource = errors.New("source: uri has no host")

// HostTag 计算主机名的稳定标签：小写主机名SHA-256的前4字节，按小端序解释为有符号32位整数。
// 不同主机理论上可能得到相同标签，这里不做冲突检测。
func HostTag(host string) int32 {
	sum := sha256.Sum256([]byte(strings.ToLower(host)))
	return int32(binary.LittleEndian.Uint32(sum[:4]))
}

// StableHostTag 解析URI并计算其主机的稳定标签
func StableHostTag(uri string) (int32, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidSource, err)
	}
	host := u.Hostname()
	if host == "" {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSource, uri)
	}
	return HostTag(host), nil
}
