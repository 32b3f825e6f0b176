package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var (
	historyAs    int64
	historySkip  int
	historyLimit int
)

var historyCmd = &cobra.Command{
	Use:   "history <chat_id>",
	Short: "Print a chat's history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		chatID, err := parseID(args[0])
		if err != nil {
			return err
		}
		tok, err := mintToken(historyAs, allScopes, time.Minute)
		if err != nil {
			return err
		}

		path := fmt.Sprintf("/history/%d?skip=%d&limit=%d", chatID, historySkip, historyLimit)
		status, env, err := call(http.MethodGet, path, tok, nil)
		if err != nil {
			return err
		}
		if status != http.StatusOK {
			return fmt.Errorf("history: %d %s", status, env.Message)
		}

		var msgs []message
		if err := json.Unmarshal(env.Data, &msgs); err != nil {
			return err
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"ID", "Sender", "Timestamp", "Read", "Text"})
		table.SetAutoWrapText(false)
		table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
		table.SetAlignment(tablewriter.ALIGN_LEFT)
		table.SetBorder(false)
		for _, m := range msgs {
			table.Append([]string{
				itoa(m.Id),
				itoa(m.SenderId),
				m.Timestamp.UTC().Format(time.RFC3339Nano),
				strconv.FormatBool(m.Read),
				m.Text,
			})
		}
		table.Render()
		return nil
	},
}

func init() {
	historyCmd.Flags().Int64Var(&historyAs, "as", 1, "user id to read as (must be a member)")
	historyCmd.Flags().IntVar(&historySkip, "skip", 0, "messages to skip")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 50, "page size")
	rootCmd.AddCommand(historyCmd)
}
