// Package cmd contains the wallet commands. Every command opens a fresh
// connection to the node, sends one framed request and prints the reply.
package cmd

import (
	"fmt"
	"net"
	"os"

	"github.com/CookieClickerdev/Vanilla-Coin-Final/foundation/frame"
	"github.com/spf13/cobra"
)

var nodeAddr string

func init() {
	rootCmd.PersistentFlags().StringVarP(&nodeAddr, "node", "n", "localhost:5050", "Address of the node.")
}

var rootCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Your simple wallet",
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// request performs a single command round trip against the node.
func request(msg string) (string, error) {
	conn, err := net.Dial("tcp", nodeAddr)
	if err != nil {
		return "", fmt.Errorf("dialing node: %w", err)
	}
	defer conn.Close()

	if err := frame.Write(conn, msg); err != nil {
		return "", fmt.Errorf("sending request: %w", err)
	}

	resp, err := frame.Read(conn)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	frame.Write(conn, frame.Disconnect)

	return resp, nil
}
