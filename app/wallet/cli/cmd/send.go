package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

var (
	sendFrom   string
	sendTo     string
	sendAmount string
)

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send coins to another account.",
	Run: func(cmd *cobra.Command, args []string) {
		resp, err := request(fmt.Sprintf("SEND_TRANSACTION|%s|%s|%s", sendFrom, sendTo, sendAmount))
		if err != nil {
			log.Fatal(err)
		}

		fmt.Println(resp)
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&sendFrom, "from", "f", "", "Account to send from.")
	sendCmd.Flags().StringVarP(&sendTo, "to", "t", "", "Account to send to.")
	sendCmd.Flags().StringVarP(&sendAmount, "amount", "v", "", "Amount to send.")
	sendCmd.MarkFlagRequired("from")
	sendCmd.MarkFlagRequired("to")
	sendCmd.MarkFlagRequired("amount")
}
