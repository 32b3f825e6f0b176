package cmd

import (
	"os"
	"strings"
	"time"

	"messenger-be/internal/config"
	"messenger-be/internal/entity"
	"messenger-be/internal/service"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	baseURL string
	cfg     *config.Config
)

var allScopes = []string{entity.ScopeChatsRead, entity.ScopeChatsWrite, entity.ScopeMessagesRead, entity.ScopeMessagesWrite}

var rootCmd = &cobra.Command{
	Use:   "messengerctl",
	Short: "Operator tooling for the messenger backend",
	Long: `messengerctl talks to a running messenger backend and its event stream.

Available commands:
  token      Mint an access token for a user (needs JWT_SECRET)
  history    Print a chat's history as a table
  smoke      Exercise idempotent send, fan-out and read receipts end to end
  tail       Follow domain events on the NATS stream`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&baseURL, "base", "http://localhost:3000/api/v1", "API base URL")
}

// mintToken signs a token locally with the server's secret. No user lookup happens here.
func mintToken(userID int64, scopes []string, ttl time.Duration) (string, error) {
	return service.NewAuthService(nil, cfg.Auth.JwtSecret).IssueToken(userID, scopes, ttl)
}

func wsURL(chatID int64, token string) string {
	u := strings.Replace(baseURL, "http", "ws", 1)
	return u + "/ws/" + itoa(chatID) + "?token=" + token
}
