package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

var usernameCmd = &cobra.Command{
	Use:   "username <name>",
	Short: "Check whether a username is available.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		resp, err := request(fmt.Sprintf("CHECK_USERNAME|%s", args[0]))
		if err != nil {
			log.Fatal(err)
		}

		fmt.Println(resp)
	},
}

func init() {
	rootCmd.AddCommand(usernameCmd)
}
