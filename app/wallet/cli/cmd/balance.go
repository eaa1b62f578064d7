package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"
)

var balanceUser string

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Print the balance of an account.",
	Run:   balanceRun,
}

func init() {
	rootCmd.AddCommand(balanceCmd)
	balanceCmd.Flags().StringVarP(&balanceUser, "user", "u", "", "Username to query.")
	balanceCmd.MarkFlagRequired("user")
}

func balanceRun(cmd *cobra.Command, args []string) {
	resp, err := request(fmt.Sprintf("GET_BALANCE|%s", balanceUser))
	if err != nil {
		log.Fatal(err)
	}

	var payload struct {
		Balance string `json:"balance"`
	}
	if err := json.Unmarshal([]byte(resp), &payload); err != nil {
		fmt.Println(strings.TrimSpace(resp))
		return
	}

	fmt.Printf("For Account: %s\n", balanceUser)
	fmt.Println(payload.Balance)
}
