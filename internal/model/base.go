package model

import (
	"github.com/google/uuid"
)

func GenerateUUID() string {
	return uuid.New().String()
}

// GenerateHexID 返回不带连字符的 uuid，用于草稿题 id
func GenerateHexID() string {
	u := uuid.New()
	dst := make([]byte, 32)
	const hexdigits = "0123456789abcdef"
	for i, b := range u {
		dst[i*2] = hexdigits[b>>4]
		dst[i*2+1] = hexdigits[b&0x0f]
	}
	return string(dst)
}
