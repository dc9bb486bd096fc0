package util

import "errors"

// 业务侧哨兵错误，service 层返回，controller 层映射为 HTTP 状态码
var (
	ErrNotFound             = errors.New("resource not found")
	ErrInvalidState         = errors.New("invalid state")
	ErrNoQuestionsAvailable = errors.New("no questions available for selection")
	ErrEmptyQuestionBank    = errors.New("question bank is empty")
	ErrInvalidCredentials   = errors.New("invalid credentials")
)
