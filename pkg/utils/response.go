package utils

import (
	"log"
	"net/http"

	"github.com/bytedance/sonic"
)

// ErrorBody 是 REST、SSE 与 WebSocket 共用的错误结构
type ErrorBody struct {
	Error  string `json:"error"`
	Status int    `json:"status,omitempty"`
}

// StatusMapper 将业务错误映射为 HTTP 状态码
type StatusMapper func(error) int

// NewErrorBody 解析错误对应的状态码，5xx 错误只返回通用提示
func NewErrorBody(err error, statusFor StatusMapper) ErrorBody {
	status := http.StatusInternalServerError
	if statusFor != nil {
		status = statusFor(err)
	}
	if status >= http.StatusInternalServerError {
		log.Printf("[http] internal error: %v", err)
		return ErrorBody{Error: "internal error", Status: status}
	}
	return ErrorBody{Error: err.Error(), Status: status}
}

// RespondJSON 发送JSON响应
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := sonic.ConfigStd.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("[http] failed to encode response: %v", err)
	}
}

// RespondError 发送错误响应
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, ErrorBody{Error: message})
}

// RespondMappedError 按 statusFor 的映射发送错误响应
func RespondMappedError(w http.ResponseWriter, err error, statusFor StatusMapper) {
	body := NewErrorBody(err, statusFor)
	RespondJSON(w, body.Status, body)
}
