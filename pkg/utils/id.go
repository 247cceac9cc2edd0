package utils

import (
	"strings"

	"github.com/google/uuid"
)

// NewID 32 位无连字符 ID（对应 varchar(32) 主键）
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
