package desensitize

var (
	// BearerRule Authorization 头中的凭证 (Bearer abc.def.ghi -> Bearer ******)
	BearerRule = MustNewContentRule(
		"bearer",
		`(?i)(bearer\s+)[A-Za-z0-9\-_.~+/]+=*`,
		"${1}******",
	)

	// JWTRule 日志中出现的裸 JWT，保留头部便于排查
	JWTRule = MustNewContentRule(
		"jwt",
		`\b(eyJ[A-Za-z0-9_-]*)\.[A-Za-z0-9_-]+\.[A-Za-z0-9_-]*`,
		"$1.******",
	)

	// PasswordRule 密码字段
	PasswordRule = MustNewFieldRule("password", "password", "******")

	// ConfirmPasswordRule 注册表单中的确认密码字段
	ConfirmPasswordRule = MustNewFieldRule("confirm_password", "confirmPassword", "******")

	// TokenRule token 字段
	TokenRule = MustNewFieldRule("token", "token", "******")
)

// BuiltinRules 返回所有内置规则，按应用顺序排列
func BuiltinRules() []Rule {
	return []Rule{
		PasswordRule,
		ConfirmPasswordRule,
		TokenRule,
		BearerRule,
		JWTRule,
	}
}
