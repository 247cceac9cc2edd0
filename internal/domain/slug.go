package domain

import (
	"crypto/rand"
	"math/big"
	"regexp"
	"strings"
)

var (
	reSlugDrop   = regexp.MustCompile(`[^a-z0-9\s-]`)
	reSlugSpace  = regexp.MustCompile(`\s+`)
	reSlugHyphen = regexp.MustCompile(`-+`)
)

// SlugBase 标题归一化；可能为空
func SlugBase(title string) string {
	s := strings.TrimSpace(strings.ToLower(title))
	s = reSlugDrop.ReplaceAllString(s, "")
	s = reSlugSpace.ReplaceAllString(s, "-")
	s = reSlugHyphen.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

func NewSlug(title string) string {
	base := SlugBase(title)
	if base == "" {
		base = "ad"
	}
	return base + "-" + randomDigits(6)
}

func randomDigits(n int) string {
	b := make([]byte, n)
	ten := big.NewInt(10)
	for i := range b {
		d, err := rand.Int(rand.Reader, ten)
		if err != nil {
			d = big.NewInt(int64(i % 10))
		}
		b[i] = byte('0' + d.Int64())
	}
	return string(b)
}
