package main

import (
	"log"

	"creatorpay/services/indexer"
)

func main() {
	if err := indexer.Main(); err != nil {
		log.Fatalf("creatorpay-indexer: %v", err)
	}
}
