package gewechat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	tokenHeader    = "X-GEWE-TOKEN"
	defaultTimeout = 30 * time.Second
	retOK          = 200
)

// BriefInfo is a contact returned by contacts/getBriefInfo
type BriefInfo struct {
	UserName string `json:"userName"`
	NickName string `json:"nickName"`
	Remark   string `json:"remark"`
}

// ChatroomInfo is a group returned by group/getChatroomInfo
type ChatroomInfo struct {
	ChatroomID string `json:"chatroomId"`
	NickName   string `json:"nickName"`
	Remark     string `json:"remark"`
}

// apiResponse is the envelope of every gewechat API answer
type apiResponse struct {
	Ret  int             `json:"ret"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// APIError is returned when gewechat answers with ret != 200
type APIError struct {
	Path string
	Ret  int
	Msg  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gewechat %s: ret=%d msg=%s", e.Path, e.Ret, e.Msg)
}

// Client is the gewechat HTTP API client
type Client struct {
	baseURL string
	token   string
	appID   string
	http    *http.Client
}

// NewClient creates a new gewechat client
func NewClient(baseURL, token, appID string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		appID:   appID,
		http:    &http.Client{Timeout: defaultTimeout},
	}
}

// SetHTTPClient replaces the underlying HTTP client
func (c *Client) SetHTTPClient(hc *http.Client) {
	c.http = hc
}

// AppID returns the device app ID the client acts for
func (c *Client) AppID() string {
	return c.appID
}

// GetBriefInfo gets nicknames for up to 100 wxids
func (c *Client) GetBriefInfo(ctx context.Context, wxids []string) ([]BriefInfo, error) {
	body := map[string]interface{}{
		"appId": c.appID,
		"wxids": wxids,
	}
	var infos []BriefInfo
	if err := c.post(ctx, "/contacts/getBriefInfo", body, &infos); err != nil {
		return nil, err
	}
	return infos, nil
}

// GetChatroomInfo gets a chatroom's name and metadata
func (c *Client) GetChatroomInfo(ctx context.Context, chatroomID string) (*ChatroomInfo, error) {
	body := map[string]interface{}{
		"appId":      c.appID,
		"chatroomId": chatroomID,
	}
	var info ChatroomInfo
	if err := c.post(ctx, "/group/getChatroomInfo", body, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// PostText sends a text message. ats is a comma separated wxid list to @ in groups.
func (c *Client) PostText(ctx context.Context, toWxid, content, ats string) error {
	body := map[string]interface{}{
		"appId":   c.appID,
		"toWxid":  toWxid,
		"content": content,
	}
	if ats != "" {
		body["ats"] = ats
	}
	return c.post(ctx, "/message/postText", body, nil)
}

// post calls a gewechat endpoint and decodes data into out (if non-nil)
func (c *Client) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(tokenHeader, c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gewechat %s: http status %d", path, resp.StatusCode)
	}

	var envelope apiResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if envelope.Ret != retOK {
		return &APIError{Path: path, Ret: envelope.Ret, Msg: envelope.Msg}
	}
	if out == nil || len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}
