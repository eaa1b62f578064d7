package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

var (
	mineUser    string
	mineSeconds int
)

var mineCmd = &cobra.Command{
	Use:   "mine",
	Short: "Claim a mining reward for an account.",
	Run: func(cmd *cobra.Command, args []string) {
		resp, err := request(fmt.Sprintf("MINE|%s|%d", mineUser, mineSeconds))
		if err != nil {
			log.Fatal(err)
		}

		fmt.Println(resp)
	},
}

func init() {
	rootCmd.AddCommand(mineCmd)
	mineCmd.Flags().StringVarP(&mineUser, "user", "u", "", "Account to credit.")
	mineCmd.Flags().IntVarP(&mineSeconds, "seconds", "s", 0, "Seconds spent mining.")
	mineCmd.MarkFlagRequired("user")
}
