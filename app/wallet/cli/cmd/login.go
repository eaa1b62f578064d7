package cmd

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

var (
	loginUsername string
	loginPassword string
	loginWords    []string
	loginCPU      string
	loginRAM      string
	loginDisk     string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to an account.",
	Run:   loginRun,
}

func init() {
	rootCmd.AddCommand(loginCmd)
	loginCmd.Flags().StringVarP(&loginUsername, "user", "u", "", "Username to log in as.")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "Password for the account.")
	loginCmd.Flags().StringSliceVarP(&loginWords, "words", "w", nil, "Recovery words, in order.")
	loginCmd.Flags().StringVar(&loginCPU, "cpu", "", "CPU identifier of this machine.")
	loginCmd.Flags().StringVar(&loginRAM, "ram", "", "RAM identifier of this machine.")
	loginCmd.Flags().StringVar(&loginDisk, "disk", "", "Disk serial of this machine.")
	loginCmd.MarkFlagRequired("user")
	loginCmd.MarkFlagRequired("password")
}

func loginRun(cmd *cobra.Command, args []string) {
	msg := fmt.Sprintf("LOGIN|%s|%s", loginUsername, loginPassword)

	words := ""
	if len(loginWords) > 0 {
		data, err := json.Marshal(loginWords)
		if err != nil {
			log.Fatal(err)
		}
		words = string(data)
	}

	hw := hardwareJSON(loginCPU, loginRAM, loginDisk)
	switch {
	case hw != "":
		msg = fmt.Sprintf("%s|%s|%s", msg, words, hw)
	case words != "":
		msg = fmt.Sprintf("%s|%s", msg, words)
	}

	resp, err := request(msg)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(resp)
}
