package errors

// askwx 服务代码: 21 (业务服务范围 20-79)
// 错误码格式: AABBCCC

var (
	// ErrAskInvalidRequest 请求体缺少 question 字段或格式错误 (ClientError)
	ErrAskInvalidRequest = NewRequestErr(ServiceAskWX, 1, "Invalid request: a JSON body with a string \"question\" field is required", "请求参数无效")

	// ErrAskRetrieval 检索服务调用失败或响应结构缺失 (RetrievalError)
	ErrAskRetrieval = NewUpstreamErr(ServiceAskWX, 1, "Passage retrieval failed", "段落检索失败")

	// ErrAskGeneration 生成服务调用失败 (BackendError)
	ErrAskGeneration = NewUpstreamErr(ServiceAskWX, 2, "Answer generation failed", "答案生成失败")

	// ErrAskAuth 获取访问令牌失败 (AuthError)
	ErrAskAuth = NewConfigErr(ServiceAskWX, 1, "Issue obtaining access token. Check variables?", "获取访问令牌失败，请检查配置")

	// ErrAskTimeout 下游调用超时
	ErrAskTimeout = NewTimeoutErr(ServiceAskWX, 1, "Upstream service timed out", "下游服务超时")
)
