package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/raine/reseller-lens/config"
	"github.com/raine/reseller-lens/internal/storage"
)

func main() {
	var unlockID, lockID int64
	var purge time.Duration

	flag.Int64Var(&unlockID, "unlock", 0, "Telegram user ID to unlock without the access code")
	flag.Int64Var(&lockID, "lock", 0, "Telegram user ID to lock out again")
	flag.DurationVar(&purge, "purge", 0, "Delete cached generations older than this (e.g. 720h)")
	flag.Parse()

	// Load env file from user config directory (same as main bot)
	config.LoadEnvFile()

	dbPath := os.Getenv("RESELLER_DB_PATH")
	if dbPath == "" {
		dbPath = config.DefaultDBPath
	}

	store, err := storage.NewSQLiteStore(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database at %s: %v\n", dbPath, err)
		os.Exit(1)
	}
	defer store.Close()

	if unlockID != 0 {
		if err := store.Unlock(unlockID); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Unlocked %d\n", unlockID)
	}

	if lockID != 0 {
		if err := store.Lock(lockID); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Locked %d\n", lockID)
	}

	if purge > 0 {
		n, err := store.PurgeGenerations(purge)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Purged %d cached generations\n", n)
	}

	users, err := store.GetUnlockedUsers()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing users: %v\n", err)
		os.Exit(1)
	}
	if len(users) == 0 {
		fmt.Println("No unlocked users")
		return
	}
	fmt.Printf("%-15s  %s\n", "TELEGRAM ID", "UNLOCKED AT")
	for _, u := range users {
		fmt.Printf("%-15d  %s\n", u.TelegramID, u.UnlockedAt.Local().Format("2006-01-02 15:04"))
	}
}
