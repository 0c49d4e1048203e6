// Package main implements an operator utility that generates a fresh
// admin key and prints it together with its bcrypt hash. The hash goes
// into the server configuration (auth.admin_key_hash); the raw key goes
// to the operator and is never stored.
package main

import (
	"fmt"
	"log"

	"github.com/dayplan-app/dayplan-api/internal/service/auth"
)

func main() {
	rawKey, err := auth.GenerateKey(auth.MinKeyLength)
	if err != nil {
		log.Fatalf("failed to generate key: %v", err)
	}

	hash, err := auth.HashKey(rawKey)
	if err != nil {
		log.Fatalf("failed to hash key: %v", err)
	}

	fmt.Println("Store the key somewhere safe; it cannot be recovered.")
	fmt.Printf("admin key:  %s\n", rawKey)
	fmt.Printf("key hash:   %s\n", hash)
}
