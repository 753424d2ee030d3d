// Package biz 提供 askwx 问答服务的业务逻辑层。
//
// 一次问答是一条线性流水线：
//   - PassageCollector: 调用检索后端，清洗并按文档聚合段落
//   - PromptBuilder: 将上下文与问题填入提示模板
//   - AnswerGenerator: 获取访问令牌，调用生成后端并提取答案
//   - AskService: 依次编排以上三个阶段，任一阶段失败即终止
//
// 所有错误均为 pkg/utils/errors 中的 askwx 错误码，原始错误只作为 cause 记录在日志中。
package biz
