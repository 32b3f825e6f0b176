package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"messenger-be/pkg/events"
	pktNats "messenger-be/pkg/nats"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	tailSubject string
	tailDurable string
)

var tailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Follow domain events on the NATS stream",
	Long: `Follow MESSAGE_CREATED and MESSAGE_READ events as the journal consumer forwards them.

Examples:
  messengerctl tail
  messengerctl tail --subject events.MESSAGE_READ --durable reads`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
		if err != nil {
			return err
		}
		defer sub.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		stopConsume, err := sub.Subscribe(ctx, tailSubject, tailDurable, printEvent)
		if err != nil {
			return err
		}
		defer stopConsume()

		color.Cyan("Tailing %s on %s (Ctrl+C to stop)", tailSubject, cfg.App.NatsURL)
		<-ctx.Done()
		return nil
	},
}

func init() {
	tailCmd.Flags().StringVar(&tailSubject, "subject", pktNats.SubjectPrefix+">", "subject filter")
	tailCmd.Flags().StringVar(&tailDurable, "durable", "messengerctl-tail", "durable consumer name")
	rootCmd.AddCommand(tailCmd)
}

func printEvent(_ context.Context, event events.Event) error {
	payload := event.Payload()
	chatID, _ := events.Int64(payload, "chat_id")
	messageID, _ := events.Int64(payload, "message_id")
	at := event.Timestamp().Format(time.RFC3339Nano)

	switch event.EventType() {
	case events.TypeMessageCreated:
		senderID, _ := events.Int64(payload, "sender_id")
		color.Green("%s %-16s chat=%d message=%d sender=%d", at, event.EventType(), chatID, messageID, senderID)
	case events.TypeMessageRead:
		readerID, _ := events.Int64(payload, "reader_id")
		color.Yellow("%s %-16s chat=%d message=%d reader=%d", at, event.EventType(), chatID, messageID, readerID)
	default:
		color.White("%s %-16s %v", at, event.EventType(), payload)
	}
	return nil
}
