package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/konvo/konvo"
	"github.com/konvo/konvo/internal/adapters/memory"
	"github.com/konvo/konvo/pkg/domain"
	"github.com/konvo/konvo/pkg/flow"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Run an interactive local conversation",
	Long:  `Starts a terminal conversation against an in-memory store and a stubbed accounts API. Useful for trying out flow definitions.`,
	Run: func(cmd *cobra.Command, args []string) {
		flowsPath, _ := cmd.Flags().GetString("flows")

		var def *flow.Definition
		var err error
		if flowsPath != "" {
			def, err = flow.LoadFile(flowsPath)
		} else {
			def, err = flow.Parse([]byte(defaultFlows))
		}
		if err != nil {
			fmt.Printf("Error loading flow definition: %v\n", err)
			os.Exit(1)
		}

		engine, err := konvo.New(memory.NewStore(), demoRegistry(nil), def)
		if err != nil {
			fmt.Printf("Error initializing engine: %v\n", err)
			os.Exit(1)
		}

		ch := domain.Channel{Type: "cli", Identifier: "local"}
		reader := bufio.NewReader(os.Stdin)

		fmt.Println("--- konvo chat (type 'exit' to quit) ---")

		// First contact starts the flow.
		input := "hi"
		for {
			replies, err := engine.HandleMessage(cmd.Context(), ch, input)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				break
			}
			for _, msg := range replies {
				fmt.Println(msg.Content)
			}

			fmt.Print("> ")
			text, err := reader.ReadString('\n')
			if err != nil {
				break
			}
			input = strings.TrimSpace(text)
			if input == "exit" || input == "quit" {
				fmt.Println("Bye!")
				break
			}
		}
	},
}

func init() {
	chatCmd.Flags().String("flows", "", "Path to a flow definition YAML (default: built-in demo)")
	rootCmd.AddCommand(chatCmd)
}
