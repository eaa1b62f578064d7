package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

var (
	airdropUser   string
	airdropAmount string
)

var airdropCmd = &cobra.Command{
	Use:   "airdrop",
	Short: "Credit an account out of thin air.",
	Run: func(cmd *cobra.Command, args []string) {
		resp, err := request(fmt.Sprintf("AIR_DROP|%s|%s", airdropUser, airdropAmount))
		if err != nil {
			log.Fatal(err)
		}

		fmt.Println(resp)
	},
}

func init() {
	rootCmd.AddCommand(airdropCmd)
	airdropCmd.Flags().StringVarP(&airdropUser, "user", "u", "", "Account to credit.")
	airdropCmd.Flags().StringVarP(&airdropAmount, "amount", "v", "", "Amount to credit.")
	airdropCmd.MarkFlagRequired("user")
	airdropCmd.MarkFlagRequired("amount")
}
