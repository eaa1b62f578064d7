// Command line wallet for talking to a running node.
package main

import "github.com/CookieClickerdev/Vanilla-Coin-Final/app/wallet/cli/cmd"

func main() {
	cmd.Execute()
}
