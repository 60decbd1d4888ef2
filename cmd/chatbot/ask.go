// cmd/chatbot/ask.go
package main

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"support-chatbot/internal/chat"
	"support-chatbot/internal/models"
)

var askConversationID string

var askCmd = &cobra.Command{
	Use:   "ask <message>",
	Short: "Send one message through the chat pipeline and print the reply as JSON",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		rt, err := newRuntime(ctx, "chatbot-cli", 1)
		if err != nil {
			return err
		}
		defer rt.close()

		resp, err := rt.chat.ReplyFrom(ctx, chat.SourceCLI, models.ChatRequest{
			Message:        strings.Join(args, " "),
			ConversationID: askConversationID,
		})
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	},
}

func init() {
	askCmd.Flags().StringVar(&askConversationID, "conversation-id", "", "Conversation id to store the exchange under (default: new uuid)")
}
