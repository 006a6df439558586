package errors

// 元数据中标识错误种类的键
const KindKey = "kind"

// 会话相关的错误种类
const (
	KindUnauthorized      = "unauthorized"
	KindForbidden         = "forbidden"
	KindNotFoundPrincipal = "principal_not_found"
	KindNetwork           = "network"
)

func BadRequest(format string, args ...any) *Error {
	return New(400, format, args...)
}

func Unauthorized(format string, args ...any) *Error {
	return New(401, format, args...).WithMetadata(map[string]string{KindKey: KindUnauthorized})
}

func Forbidden(format string, args ...any) *Error {
	return New(403, format, args...).WithMetadata(map[string]string{KindKey: KindForbidden})
}

func NotFound(format string, args ...any) *Error {
	return New(404, format, args...)
}

// NotFoundPrincipal 当前登录的用户在服务端已不存在
func NotFoundPrincipal(format string, args ...any) *Error {
	return New(404, format, args...).WithMetadata(map[string]string{KindKey: KindNotFoundPrincipal})
}

func Conflict(format string, args ...any) *Error {
	return New(409, format, args...)
}

func Internal(format string, args ...any) *Error {
	return New(500, format, args...)
}

// Network 请求没有拿到响应
func Network(cause error, format string, args ...any) *Error {
	return New(NetworkCode, format, args...).
		WithMetadata(map[string]string{KindKey: KindNetwork}).
		WithCause(cause)
}

// Kind 返回错误种类，未标记时返回空字符串
func Kind(err error) string {
	var ge *Error
	if As(err, &ge) {
		return ge.Metadata[KindKey]
	}
	return ""
}

// IsUnauthorized 是否为 401
func IsUnauthorized(err error) bool {
	return Code(err) == 401
}

// IsForbidden 是否为 403
func IsForbidden(err error) bool {
	return Code(err) == 403
}
