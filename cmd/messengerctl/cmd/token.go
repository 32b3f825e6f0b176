package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	tokenScopes []string
	tokenTTL    time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token <user_id>",
	Short: "Mint an access token",
	Long: `Mint an HS256 access token for a user, signed with JWT_SECRET.

Examples:
  messengerctl token 1
  messengerctl token 2 --scopes chats:read,messages:read --ttl 5m`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := parseID(args[0])
		if err != nil {
			return err
		}
		tok, err := mintToken(userID, tokenScopes, tokenTTL)
		if err != nil {
			return err
		}
		fmt.Println(tok)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringSliceVar(&tokenScopes, "scopes", allScopes, "comma separated scopes")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", time.Hour, "token lifetime")
	rootCmd.AddCommand(tokenCmd)
}
