package errors

// ========== 错误码常量定义 ==========

// 成功码
const (
	CodeSuccess = 200
	CodeCreated = 201
)

// HTTP层错误码 (400-599)
const (
	CodeInvalidParam = 400
	CodeUnauthorized = 401
	CodeForbidden    = 403
	CodeNotFound     = 404
	CodeConflict     = 409
	CodeServerError  = 500
)
