package cmd

import (
	"encoding/hex"
	"fmt"
	"log"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"

	"github.com/decentraland/stoneage-node/foundation/blockchain/crypto"
)

// addressCmd represents the address command.
var addressCmd = &cobra.Command{
	Use:   "address",
	Short: "Print the compressed public key and Hash160 fingerprint for the wallet",
	Run:   addressRun,
}

func init() {
	rootCmd.AddCommand(addressCmd)
}

func addressRun(cmd *cobra.Command, args []string) {
	ecKey, err := ethcrypto.LoadECDSA(getPrivateKeyPath())
	if err != nil {
		log.Fatal(err)
	}

	pub := crypto.PrivateKeyFromECDSA(ecKey).Public()
	compressed := pub.Bytes()
	fingerprint := pub.Hash160()

	fmt.Println("public key:", hex.EncodeToString(compressed[:]))
	fmt.Println("fingerprint:", hex.EncodeToString(fingerprint[:]))
}
