package domain

import "slices"

// AccessPolicy decides whether shared links are summarized without an explicit command
type AccessPolicy struct {
	AutoSum        bool
	WhiteGroupList []string
	BlackGroupList []string
	WhiteUserList  []string
	BlackUserList  []string
}

// ShouldAutoSummarize applies blacklist, then whitelist, then the global default
func (p *AccessPolicy) ShouldAutoSummarize(id ConversationIdentity, isGroup bool) bool {
	white, black := p.WhiteUserList, p.BlackUserList
	if isGroup {
		white, black = p.WhiteGroupList, p.BlackGroupList
	}

	name := string(id)
	if slices.Contains(black, name) {
		return false
	}
	if len(white) > 0 && slices.Contains(white, name) {
		return true
	}
	return p.AutoSum
}
