package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	convUser  string
	convLimit int
)

var conversationsCmd = &cobra.Command{
	Use:   "conversations",
	Short: "List your conversations",
	RunE:  runConversations,
}

func init() {
	conversationsCmd.Flags().StringVar(&convUser, "user", "", "acting user id (required)")
	conversationsCmd.Flags().IntVar(&convLimit, "limit", 20, "maximum number of conversations to show")
	conversationsCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(conversationsCmd)
}

func runConversations(cmd *cobra.Command, args []string) error {
	app, err := buildApp()
	if err != nil {
		return err
	}
	defer app.Close()

	convs, err := app.store.Conversations().ListByUser(cmd.Context(), convUser, convLimit, 0)
	if err != nil {
		return err
	}

	if len(convs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No conversations.")
		return nil
	}

	for _, conv := range convs {
		count, err := app.store.Messages().CountByConversation(cmd.Context(), conv.ID)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %d message(s), last active %s\n",
			conv.ID, count, conv.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}
