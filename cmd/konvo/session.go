package main

import (
	"encoding/json"
	"fmt"
	"os"

	backend "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	redisAdapter "github.com/konvo/konvo/internal/adapters/redis"
	"github.com/konvo/konvo/pkg/ports"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage stored sessions",
	Long:  `List, inspect, and remove session documents from the configured store.`,
}

func getStore(cmd *cobra.Command) ports.SessionStore {
	cfg, err := loadConfig(cmd)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	client := backend.NewClient(&backend.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	return redisAdapter.NewFromClient(client,
		redisAdapter.WithTTL(cfg.Session.TTL.Std()),
		redisAdapter.WithPrefix(cfg.Session.KeyPrefix),
	)
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all live sessions",
	Run: func(cmd *cobra.Command, args []string) {
		store := getStore(cmd)
		keys, err := store.List(cmd.Context())
		if err != nil {
			fmt.Printf("Error listing sessions: %v\n", err)
			os.Exit(1)
		}

		if len(keys) == 0 {
			fmt.Println("No live sessions found.")
			return
		}

		fmt.Println("Live sessions:")
		for _, k := range keys {
			fmt.Println("- " + k)
		}
	},
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <session-key>",
	Short: "Inspect a session document",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		key := args[0]
		store := getStore(cmd)

		s, err := store.Get(cmd.Context(), key)
		if err != nil {
			fmt.Printf("Error loading session '%s': %v\n", key, err)
			os.Exit(1)
		}

		data, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			fmt.Printf("Error marshaling session: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(data))
	},
}

var sessionRmCmd = &cobra.Command{
	Use:   "rm <session-key>...",
	Short: "Remove one or more sessions",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store := getStore(cmd)
		hasError := false

		for _, key := range args {
			if err := store.Delete(cmd.Context(), key); err != nil {
				fmt.Printf("Error removing '%s': %v\n", key, err)
				hasError = true
			} else {
				fmt.Printf("Removed session '%s'\n", key)
			}
		}
		if hasError {
			os.Exit(1)
		}
	},
}

func init() {
	sessionCmd.AddCommand(sessionLsCmd)
	sessionCmd.AddCommand(sessionInspectCmd)
	sessionCmd.AddCommand(sessionRmCmd)
	rootCmd.AddCommand(sessionCmd)
}
