package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a single question and print the answer",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		a := buildApp(ctx)
		defer a.Close()

		id, _ := cmd.Flags().GetString("conversation")
		reply, err := a.Chat.Ask(ctx, strings.Join(args, " "), id)
		if err != nil {
			exitErr("ask", err, a)
		}
		fmt.Println(reply.Text)
		fmt.Printf("\nconversation: %s\n", reply.ConversationID)
	},
}

var translateCmd = &cobra.Command{
	Use:   "translate <text>",
	Short: "Translate text and record it in a conversation",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		a := buildApp(ctx)
		defer a.Close()

		id, _ := cmd.Flags().GetString("conversation")
		lang, _ := cmd.Flags().GetString("lang")
		reply, err := a.Chat.Translate(ctx, strings.Join(args, " "), lang, id)
		if err != nil {
			exitErr("translate", err, a)
		}
		fmt.Println(reply.Text)
	},
}

func init() {
	askCmd.Flags().String("conversation", "", "Conversation id to continue")
	translateCmd.Flags().String("conversation", "", "Conversation id to record the translation under")
	translateCmd.Flags().StringP("lang", "l", "es", "Target language code")
	RootCmd.AddCommand(askCmd)
	RootCmd.AddCommand(translateCmd)
}
