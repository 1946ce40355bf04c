package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dispatchd/dispatchd/internal/core/domain"
	"github.com/dispatchd/dispatchd/internal/notify"
)

var (
	sendTarget  string
	sendChannel string
	sendHeader  string
	sendText    string
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send a one-off notification to a configured target",
	Run:   runSend,
}

func init() {
	sendCmd.Flags().StringVar(&sendTarget, "target", "", "target name from the config file")
	sendCmd.Flags().StringVar(&sendChannel, "channel", "", "channel override")
	sendCmd.Flags().StringVar(&sendHeader, "header", "", "header rendered as a block layout")
	sendCmd.Flags().StringVar(&sendText, "text", "", "message text")
	sendCmd.MarkFlagRequired("target")
	rootCmd.AddCommand(sendCmd)
}

func runSend(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	var notifier *notify.Notifier
	for _, t := range cfg.Targets {
		if t.Name == sendTarget {
			notifier = notify.NewNotifier(
				t.Target(),
				notify.NewHTTPTransport(t.Timeout),
				cfg.PolicyFor(t),
			)
			break
		}
	}
	if notifier == nil {
		slog.Error("Unknown target", "target", sendTarget)
		os.Exit(1)
	}
	if sendText == "" && sendHeader == "" {
		slog.Error("Either --text or --header is required")
		os.Exit(1)
	}

	msg := domain.Message{
		Channel: sendChannel,
		Header:  sendHeader,
		Text:    sendText,
	}

	body, err := notifier.Notify(context.Background(), msg)
	if err != nil {
		slog.Error("Delivery failed", "target", sendTarget, "error", err)
		os.Exit(1)
	}

	fmt.Println(body)
}
