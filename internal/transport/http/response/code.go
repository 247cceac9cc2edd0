package response

import (
	"net/http"

	"classifieds-api/internal/domain"
)

// StatusOf 错误类型 -> HTTP 状态码
func StatusOf(k domain.Kind) int {
	switch k {
	case domain.KindValidation, domain.KindConflict, domain.KindAuth:
		return http.StatusBadRequest
	case domain.KindUnauthenticated:
		return http.StatusUnauthorized
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// MsgMap 中间件等非业务错误的默认提示
var MsgMap = map[int]string{
	http.StatusBadRequest:            "Bad request",
	http.StatusUnauthorized:          "Access denied. No token provided.",
	http.StatusForbidden:             "Access denied. Admin privileges required.",
	http.StatusNotFound:              "Route not found",
	http.StatusRequestEntityTooLarge: "Request body too large",
	http.StatusTooManyRequests:       "Too many requests",
	http.StatusInternalServerError:   "Internal server error",
	http.StatusServiceUnavailable:    "Server busy",
	http.StatusGatewayTimeout:        "Request timeout",
}

func Msg(status int) string {
	if m, ok := MsgMap[status]; ok {
		return m
	}
	return http.StatusText(status)
}
