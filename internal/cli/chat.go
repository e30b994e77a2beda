package cli

import (
	"bufio"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/nadia/taskwise/internal/observability"
	"github.com/nadia/taskwise/internal/retention"
	"github.com/spf13/cobra"
)

var (
	chatUser         string
	chatConversation string
	chatMetricsAddr  string
)

var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Talk to the task assistant",
	Long: `Send a message to the task assistant. With a message argument a
single turn is executed and the reply printed. Without arguments an
interactive session is started; type "exit" to leave.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVar(&chatUser, "user", "", "acting user id (required)")
	chatCmd.Flags().StringVar(&chatConversation, "conversation", "", "conversation id to continue")
	chatCmd.Flags().StringVar(&chatMetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	chatCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	app, err := buildApp()
	if err != nil {
		return err
	}
	defer app.Close()

	sess, err := app.newSession()
	if err != nil {
		return err
	}

	if chatMetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", observability.MetricsHandler())
		go func() {
			if err := http.ListenAndServe(chatMetricsAddr, mux); err != nil {
				app.log.Error().Err(err).Msg("Metrics server stopped")
			}
		}()
	}

	if app.cfg.Retention.Enabled {
		sweeper, err := retention.NewSweeper(app.store, app.cfg.Retention, app.log.GetZerolog())
		if err != nil {
			return err
		}
		if err := sweeper.Start(); err != nil {
			return err
		}
		defer sweeper.Stop()
	}

	conversationID := chatConversation

	// One-shot mode
	if len(args) == 1 {
		result := sess.Execute(cmd.Context(), chatUser, args[0], conversationID)
		fmt.Fprintln(cmd.OutOrStdout(), result.Response)
		fmt.Fprintf(cmd.OutOrStdout(), "\n(conversation: %s)\n", result.ConversationID)
		return nil
	}

	// Interactive mode
	fmt.Fprintln(cmd.OutOrStdout(), "Taskwise ready. Type \"exit\" to leave.")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Fprint(cmd.OutOrStdout(), "> ")
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}

		result := sess.Execute(cmd.Context(), chatUser, line, conversationID)
		conversationID = result.ConversationID
		fmt.Fprintln(cmd.OutOrStdout(), result.Response)
	}

	return scanner.Err()
}
