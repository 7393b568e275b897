package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/spf13/cobra"
)

var statusNode string

// statusCmd represents the status command.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Query a node's current chain tip and height",
	Run:   statusRun,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().StringVarP(&statusNode, "node", "n", "http://localhost:9080", "Private API URL of the node.")
}

type nodeStatus struct {
	Tip        string   `json:"tip"`
	Height     int64    `json:"height"`
	KnownPeers []string `json:"known_peers"`
	Mempool    int      `json:"mempool"`
}

func statusRun(cmd *cobra.Command, args []string) {
	resp, err := http.Get(fmt.Sprintf("%s/v1/node/status", statusNode))
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()

	var status nodeStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		log.Fatal(err)
	}

	fmt.Println("tip:", status.Tip)
	fmt.Println("height:", status.Height)
	fmt.Println("mempool:", status.Mempool)
	fmt.Println("known peers:", status.KnownPeers)
}
