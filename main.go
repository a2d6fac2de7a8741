package main

import (
	"log"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"docchat/api"
	"docchat/chat"
	tuichat "docchat/tui/chat"
	"docchat/upload"
)

func init() {
	// 加载 .env 配置文件，失败时沿用进程环境
	if err := godotenv.Load(); err != nil {
		log.Println("未找到 .env 文件，使用系统环境变量")
	}
}

func main() {
	// 后端地址来自 DOCCHAT_API_URL，缺省指向本地开发后端
	client := api.NewClient("", api.WithAuth(api.NewAuthContext()))

	store := chat.NewStore()
	chatCtl := chat.NewController(client, store)
	uploadCtl := upload.NewController(client)
	defer chatCtl.Close()
	defer uploadCtl.Close()

	p := tea.NewProgram(
		tuichat.InitialModel(uploadCtl, chatCtl),
		tea.WithAltScreen(),       // 全屏模式
		tea.WithMouseCellMotion(), // 鼠标滚轮支持
	)
	if _, err := p.Run(); err != nil {
		log.Fatalf("程序运行失败: %v", err)
	}
}
