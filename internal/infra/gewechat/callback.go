package gewechat

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
)

// Raw message types carried in AddMsg callbacks
const (
	MsgTypeText   = 1
	MsgTypeAppMsg = 49
)

// App message sub-types inside <appmsg><type>
const (
	appMsgLink  = 5
	appMsgQuote = 57
)

const chatroomSuffix = "@chatroom"

// Kind is the normalized kind of a callback message
type Kind string

const (
	KindText    Kind = "text"
	KindSharing Kind = "sharing"
	KindOther   Kind = "other"
)

type stringField struct {
	String string `json:"string"`
}

// callbackPayload is the JSON gewechat posts to the callback URL
type callbackPayload struct {
	TypeName string `json:"TypeName"`
	Appid    string `json:"Appid"`
	Wxid     string `json:"Wxid"`
	TestMsg  string `json:"testMsg"`
	Data     struct {
		MsgID        int64       `json:"MsgId"`
		NewMsgID     int64       `json:"NewMsgId"`
		FromUserName stringField `json:"FromUserName"`
		ToUserName   stringField `json:"ToUserName"`
		MsgType      int         `json:"MsgType"`
		Content      stringField `json:"Content"`
		CreateTime   int64       `json:"CreateTime"`
	} `json:"Data"`
}

// Message is a parsed AddMsg callback
type Message struct {
	MsgID      string
	AppID      string
	BotWxid    string
	FromID     string // Chatroom ID for groups, sender wxid for direct chats
	SenderID   string
	IsGroup    bool
	Kind       Kind
	Content    string // Text body, or the link for sharing messages
	Title      string // Title of a shared link
	CreateTime int64  // Unix seconds
}

// IsFromSelf checks if the bot sent the message itself
func (m *Message) IsFromSelf() bool {
	return m.BotWxid != "" && m.SenderID == m.BotWxid
}

// appMsgXML is the part of an app message we care about
type appMsgXML struct {
	XMLName xml.Name `xml:"msg"`
	AppMsg  struct {
		Title string `xml:"title"`
		Des   string `xml:"des"`
		Type  int    `xml:"type"`
		URL   string `xml:"url"`
	} `xml:"appmsg"`
}

// ParseCallback parses a callback body. It returns (nil, nil) for payloads
// that carry no chat message, such as the connectivity test or status pushes.
func ParseCallback(body []byte) (*Message, error) {
	var payload callbackPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode callback: %w", err)
	}
	if payload.TestMsg != "" || payload.TypeName != "AddMsg" {
		return nil, nil
	}

	data := payload.Data
	msgID := data.NewMsgID
	if msgID == 0 {
		msgID = data.MsgID
	}

	msg := &Message{
		MsgID:      strconv.FormatInt(msgID, 10),
		AppID:      payload.Appid,
		BotWxid:    payload.Wxid,
		FromID:     data.FromUserName.String,
		SenderID:   data.FromUserName.String,
		IsGroup:    strings.HasSuffix(data.FromUserName.String, chatroomSuffix),
		CreateTime: data.CreateTime,
	}

	content := data.Content.String
	if msg.IsGroup {
		msg.SenderID, content = splitGroupContent(content)
	}

	switch data.MsgType {
	case MsgTypeText:
		msg.Kind = KindText
		msg.Content = content
	case MsgTypeAppMsg:
		parseAppMsg(msg, content)
	default:
		msg.Kind = KindOther
		msg.Content = content
	}
	return msg, nil
}

// splitGroupContent splits "wxid_sender:\nbody" into sender and body
func splitGroupContent(content string) (string, string) {
	idx := strings.Index(content, ":\n")
	if idx <= 0 {
		return "", content
	}
	return content[:idx], content[idx+2:]
}

func parseAppMsg(msg *Message, content string) {
	msg.Kind = KindOther
	msg.Content = content

	var app appMsgXML
	if err := xml.Unmarshal([]byte(strings.TrimSpace(content)), &app); err != nil {
		return
	}
	msg.Title = app.AppMsg.Title

	switch app.AppMsg.Type {
	case appMsgLink:
		if app.AppMsg.URL != "" {
			msg.Kind = KindSharing
			msg.Content = app.AppMsg.URL
		}
	case appMsgQuote:
		// A quoted reply's own text is in <title>
		msg.Kind = KindText
		msg.Content = app.AppMsg.Title
	}
}
