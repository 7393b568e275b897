package cmd

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"

	"github.com/decentraland/stoneage-node/foundation/blockchain/crypto"
	"github.com/decentraland/stoneage-node/foundation/blockchain/pixel"
	"github.com/decentraland/stoneage-node/foundation/blockchain/tx"
)

var (
	paintNode  string
	paintX     int32
	paintY     int32
	paintColor uint32
	paintTo    string
)

// paintCmd represents the paint command: it spends the pixel this wallet
// currently owns at (x, y), transferring it to --to with a new color.
var paintCmd = &cobra.Command{
	Use:   "paint",
	Short: "Sign and submit a transfer transaction for a pixel",
	Run:   paintRun,
}

func init() {
	rootCmd.AddCommand(paintCmd)
	paintCmd.Flags().StringVarP(&paintNode, "node", "n", "http://localhost:8080", "Public API URL of the node.")
	paintCmd.Flags().Int32VarP(&paintX, "x", "x", 0, "Pixel x coordinate.")
	paintCmd.Flags().Int32VarP(&paintY, "y", "y", 0, "Pixel y coordinate.")
	paintCmd.Flags().Uint32VarP(&paintColor, "color", "c", 0, "New RGBA color, packed as 0xRRGGBBAA.")
	paintCmd.Flags().StringVarP(&paintTo, "to", "t", "", "Compressed hex public key of the new owner (defaults to this wallet's own key).")
}

type pixelView struct {
	X     int32  `json:"x"`
	Y     int32  `json:"y"`
	Color uint32 `json:"color"`
	Owner string `json:"owner"`
	TxID  string `json:"tx_id"`
}

func paintRun(cmd *cobra.Command, args []string) {
	ecKey, err := ethcrypto.LoadECDSA(getPrivateKeyPath())
	if err != nil {
		log.Fatal(err)
	}
	priv := crypto.PrivateKeyFromECDSA(ecKey)

	owned := fetchPixel(paintNode, paintX, paintY)
	if owned == nil {
		log.Fatalf("pixel (%d,%d) is not owned yet; mine a coinbase there first", paintX, paintY)
	}

	ownedIDBytes, err := hex.DecodeString(owned.TxID)
	if err != nil {
		log.Fatal(err)
	}
	var ownedID [32]byte
	copy(ownedID[:], ownedIDBytes)
	previousRawID := crypto.Reverse32(ownedID)

	toKeyHex := paintTo
	if toKeyHex == "" {
		pub := priv.Public()
		b := pub.Bytes()
		toKeyHex = hex.EncodeToString(b[:])
	}
	toBytes, err := hex.DecodeString(toKeyHex)
	if err != nil {
		log.Fatal(err)
	}
	toOwner, err := crypto.ParsePublicKey(toBytes)
	if err != nil {
		log.Fatal(err)
	}

	previous := fetchTransaction(paintNode, owned.TxID)
	if previous == nil {
		log.Fatal("could not fetch the transaction currently owning this pixel")
	}

	transfer := tx.New().
		From(previousRawID).
		At(paintX, paintY).
		Colored(pixel.Color(paintColor)).
		To(toOwner)

	if err := transfer.Sign(priv, previous); err != nil {
		log.Fatal(err)
	}

	raw := hex.EncodeToString(transfer.Serialize())
	submitTransaction(paintNode, raw)

	fmt.Println("submitted transaction:", transfer.ID())
}

func fetchPixel(node string, x, y int32) *pixelView {
	resp, err := http.Get(fmt.Sprintf("%s/v1/pixels/%d/%d", node, x, y))
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	var v pixelView
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		log.Fatal(err)
	}
	return &v
}

type txView struct {
	ID       string `json:"id"`
	Previous string `json:"previous"`
	X        int32  `json:"x"`
	Y        int32  `json:"y"`
	Color    uint32 `json:"color"`
	Owner    string `json:"owner"`
	Coinbase bool   `json:"coinbase"`
}

func fetchTransaction(node, id string) *tx.Transaction {
	resp, err := http.Get(fmt.Sprintf("%s/v1/tx/%s", node, id))
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	var v txView
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		log.Fatal(err)
	}

	ownerBytes, err := hex.DecodeString(v.Owner)
	if err != nil {
		log.Fatal(err)
	}
	owner, err := crypto.ParsePublicKey(ownerBytes)
	if err != nil {
		log.Fatal(err)
	}

	var previous [32]byte
	if v.Previous != "" {
		b, err := hex.DecodeString(v.Previous)
		if err != nil {
			log.Fatal(err)
		}
		copy(previous[:], b)
	}

	return &tx.Transaction{
		Version:  1,
		Previous: previous,
		Position: pixel.Position{X: v.X, Y: v.Y},
		Color:    pixel.Color(v.Color),
		Owner:    owner,
	}
}

func submitTransaction(node, raw string) {
	body := struct {
		Raw string `json:"raw"`
	}{Raw: raw}

	data, err := json.Marshal(body)
	if err != nil {
		log.Fatal(err)
	}

	resp, err := http.Post(fmt.Sprintf("%s/v1/tx/submit", node), "application/json", bytes.NewBuffer(data))
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Fatalf("node rejected transaction: %s", resp.Status)
	}
}
