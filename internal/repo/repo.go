package repo

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"classifieds-api/internal/domain"
)

// translate 统一把驱动层的唯一冲突映射为 domain.ErrDuplicate
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || isDupKey(err) {
		return domain.ErrDuplicate
	}
	return err
}

// isDupKey 兜底：部分驱动未实现 ErrorTranslator
func isDupKey(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation")
}

const likeEscape = "!"

// likePattern 转义 LIKE 通配符，返回 %s%
func likePattern(s string) string {
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return "%" + r.Replace(strings.ToLower(s)) + "%"
}
