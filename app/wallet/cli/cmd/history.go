package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"
)

var historyUser string

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Print the transaction history of an account.",
	Run:   historyRun,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().StringVarP(&historyUser, "user", "u", "", "Username to query.")
	historyCmd.MarkFlagRequired("user")
}

func historyRun(cmd *cobra.Command, args []string) {
	resp, err := request(fmt.Sprintf("GET_HISTORY|%s", historyUser))
	if err != nil {
		log.Fatal(err)
	}

	var records []struct {
		ID        string `json:"id"`
		From      string `json:"from"`
		To        string `json:"to"`
		Amount    string `json:"amount"`
		Fee       string `json:"fee"`
		Status    string `json:"status"`
		Timestamp string `json:"timestamp"`
		Type      string `json:"type"`
	}
	if err := json.Unmarshal([]byte(resp), &records); err != nil {
		fmt.Println(strings.TrimSpace(resp))
		return
	}

	for _, rec := range records {
		fmt.Printf("%s  %-8s  %s -> %s  amount=%s fee=%s  [%s]\n",
			rec.Timestamp, rec.Type, rec.From, rec.To, rec.Amount, rec.Fee, rec.Status)
	}
}
