// This program is the command line wallet for painting pixels: it holds a
// private key, signs transfer transactions, and submits them to a node.
package main

import (
	"github.com/decentraland/stoneage-node/app/tooling/wallet/cmd"
)

func main() {
	cmd.Execute()
}
