package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/devricklin/jina-sum-bridge/internal/conf"
	"github.com/devricklin/jina-sum-bridge/internal/infra/gewechat"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: send-message <to_wxid> <message> [at_wxid,...]")
		os.Exit(1)
	}

	cfg, err := conf.Load(os.Getenv("JINASUM_CONFIG"))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	if cfg.GewechatBaseURL == "" || cfg.GewechatToken == "" || cfg.GewechatAppID == "" {
		fmt.Println("Error: gewechat_base_url, gewechat_token and gewechat_app_id must be set")
		os.Exit(1)
	}

	toWxid := os.Args[1]
	message := os.Args[2]
	ats := ""
	if len(os.Args) > 3 {
		ats = strings.TrimSpace(os.Args[3])
	}

	client := gewechat.NewClient(cfg.GewechatBaseURL, cfg.GewechatToken, cfg.GewechatAppID)
	if err := client.PostText(context.Background(), toWxid, message, ats); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Message sent successfully!")
}
