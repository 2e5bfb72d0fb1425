package cli

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"coursechat/internal/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the assistant in the terminal",
	Run: func(cmd *cobra.Command, args []string) {
		a := buildApp(context.Background())
		defer a.Close()

		id, _ := cmd.Flags().GetString("conversation")
		timeout := time.Duration(a.Config.LLM.TimeoutSecs) * time.Second * 2
		m := tui.New(a.Chat, id, timeout)
		if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
			exitErr("tui", err, a)
		}
	},
}

func init() {
	chatCmd.Flags().String("conversation", "", "Resume an existing conversation id")
	RootCmd.AddCommand(chatCmd)
}
