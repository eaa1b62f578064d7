package cmd

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"log"
	"math/big"
	"strings"

	"github.com/spf13/cobra"
)

var (
	regUsername string
	regPassword string
	regWords    []string
	regCPU      string
	regRAM      string
	regDisk     string
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a new account.",
	Run:   registerRun,
}

func init() {
	rootCmd.AddCommand(registerCmd)
	registerCmd.Flags().StringVarP(&regUsername, "user", "u", "", "Username to register.")
	registerCmd.Flags().StringVarP(&regPassword, "password", "p", "", "Password for the account.")
	registerCmd.Flags().StringSliceVarP(&regWords, "words", "w", nil, "Recovery words, in order. Generated when omitted.")
	registerCmd.Flags().StringVar(&regCPU, "cpu", "", "CPU identifier to bind the account to.")
	registerCmd.Flags().StringVar(&regRAM, "ram", "", "RAM identifier to bind the account to.")
	registerCmd.Flags().StringVar(&regDisk, "disk", "", "Disk serial to bind the account to.")
	registerCmd.MarkFlagRequired("user")
	registerCmd.MarkFlagRequired("password")
}

func registerRun(cmd *cobra.Command, args []string) {
	if len(regWords) == 0 {
		regWords = generateWords()
		fmt.Printf("Your recovery words, keep them safe: %s\n", strings.Join(regWords, " "))
	}

	words, err := json.Marshal(regWords)
	if err != nil {
		log.Fatal(err)
	}

	msg := fmt.Sprintf("REGISTER|%s|%s|%s", regUsername, regPassword, words)
	if hw := hardwareJSON(regCPU, regRAM, regDisk); hw != "" {
		msg = fmt.Sprintf("%s|%s", msg, hw)
	}

	resp, err := request(msg)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(resp)
}

// generateWords picks 5 unique short words for the recovery fallback.
func generateWords() []string {
	pool := []string{
		"cat", "dog", "sun", "moon", "tree", "rock", "fish", "bird", "car", "book",
		"leaf", "rain", "snow", "wind", "fire", "lake", "hill", "star", "sand", "wave",
		"frog", "bear", "wolf", "hawk", "corn", "mint", "plum", "pear", "kite", "drum",
	}

	words := make([]string, 0, 5)
	for len(words) < 5 {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(pool))))
		if err != nil {
			log.Fatal(err)
		}
		words = append(words, pool[n.Int64()])
		pool = append(pool[:n.Int64()], pool[n.Int64()+1:]...)
	}

	return words
}

// hardwareJSON encodes the fingerprint flags, returning an empty string when
// none were provided.
func hardwareJSON(cpu string, ram string, disk string) string {
	if cpu == "" && ram == "" && disk == "" {
		return ""
	}

	hw := struct {
		CPUID      string `json:"cpu_id"`
		RAMID      string `json:"ram_id"`
		DiskSerial string `json:"disk_serial"`
	}{
		CPUID:      cpu,
		RAMID:      ram,
		DiskSerial: disk,
	}

	data, err := json.Marshal(hw)
	if err != nil {
		return ""
	}

	return string(data)
}
