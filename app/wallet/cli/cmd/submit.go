package cmd

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/CookieClickerdev/Vanilla-Coin-Final/foundation/ledger/hash"
	"github.com/spf13/cobra"
)

var submitFile string

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a mined block to the node.",
	Long: `Submit a mined block to the node. The block text is read from the
given file, hashed, and sent for validation.`,
	Run: submitRun,
}

func init() {
	rootCmd.AddCommand(submitCmd)
	submitCmd.Flags().StringVarP(&submitFile, "file", "f", "", "File holding the block text.")
	submitCmd.MarkFlagRequired("file")
}

func submitRun(cmd *cobra.Command, args []string) {
	data, err := os.ReadFile(submitFile)
	if err != nil {
		log.Fatal(err)
	}

	blockText := strings.TrimRight(string(data), "\n")

	resp, err := request(fmt.Sprintf("%s|||%s", blockText, hash.Single(blockText)))
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(resp)
}
