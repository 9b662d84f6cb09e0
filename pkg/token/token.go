package token

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"errors"
)

// ErrEmptySecret 表示没有配置管理密钥
var ErrEmptySecret = errors.New("token: admin secret is empty")

// Verifier 以恒定时间比较客户端提交的管理密钥。
// 两侧的值先用进程启动时生成的随机密钥做HMAC，再用 hmac.Equal 比较，
// 比较耗时与输入长度和内容无关。
type Verifier struct {
	key    []byte
	digest []byte
}

// NewVerifier 为给定的管理密钥创建校验器
func NewVerifier(secret string) (*Verifier, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	v := &Verifier{key: key}
	v.digest = v.sum(secret)
	return v, nil
}

func (v *Verifier) sum(value string) []byte {
	mac := hmac.New(sha256.New, v.key)
	mac.Write([]byte(value))
	return mac.Sum(nil)
}

// Verify 判断提交的值是否与管理密钥一致
func (v *Verifier) Verify(provided string) bool {
	if v == nil || provided == "" {
		return false
	}
	return hmac.Equal(v.digest, v.sum(provided))
}
