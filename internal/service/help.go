package service

import (
	"fmt"
	"strings"
)

// HelpText describes how to use the summarizer under the current rules
func (s *JinaSumService) HelpText(verbose bool) string {
	var b strings.Builder
	b.WriteString("网页内容总结插件\n")
	if !verbose {
		return b.String()
	}

	p := s.rules.Policy
	b.WriteString("使用方法:\n")
	b.WriteString("1. 总结网页内容:\n")
	b.WriteString("   - 总结 网址 (总结指定网页的内容)\n")

	if p.AutoSum {
		b.WriteString("2. 单聊时，默认自动总结分享消息或URL\n")
		if len(p.BlackUserList) > 0 {
			b.WriteString("   (黑名单用户需要发送「总结」才能触发)\n")
		}
		if len(p.WhiteUserList) > 0 {
			b.WriteString("   (白名单用户将自动总结)\n")
		}
		b.WriteString("3. 群聊中，默认自动总结分享消息或URL\n")
		if len(p.BlackGroupList) > 0 {
			b.WriteString("   (黑名单群组需要发送「总结」才能触发)\n")
		}
		if len(p.WhiteGroupList) > 0 {
			b.WriteString("   (白名单群组将自动总结)\n")
		}
	} else {
		b.WriteString("2. 单聊时，需要发送「总结」才能触发总结， 白名单用户除外。\n")
		if len(p.WhiteUserList) > 0 {
			b.WriteString("  (白名单用户将自动总结)\n")
		}
		b.WriteString("3. 群聊中，需要发送「总结」才能触发总结，白名单群组除外。\n")
		if len(p.WhiteGroupList) > 0 {
			b.WriteString("  (白名单群组将自动总结)\n")
		}
	}

	fmt.Fprintf(&b, "4. 总结完成后%d分钟内，可以发送「%sxxx」来询问文章相关问题\n",
		int(s.rules.ContentTimeout.Minutes()), s.rules.QATrigger)
	fmt.Fprintf(&b, "注：手动触发的网页总结指令需要在%d秒内发出", int(s.rules.PendingTimeout.Seconds()))
	return b.String()
}
