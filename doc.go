/*
Package konvo is a conversational orchestration engine: inbound chat messages
drive a multi-step interaction modeled as a path of discrete, validated
steps, with durable per-session state.

# Concept

A conversation lives in a Session document persisted under a channel-derived
key. A static transition table decides which component handles the next
message; components validate input, call the external accounts collaborator,
or render content, and their verified data is merged into the session through
a schema-enforcing state manager. Concurrent messages for the same key are
serialized, so a user's conversation can never be advanced by two racing
updates.

# Usage

	registry := component.NewRegistry()
	registry.MustRegister(
		component.NewDisplay("greeting", func(*domain.Session) (string, error) {
			return "Welcome!", nil
		}),
	)

	def, err := flow.LoadFile("flows.yaml")
	if err != nil {
		log.Fatal(err)
	}

	engine, err := konvo.New(memory.NewStore(), registry, def)
	if err != nil {
		log.Fatal(err)
	}

	replies, err := engine.HandleMessage(ctx,
		domain.Channel{Type: "whatsapp", Identifier: "+100"}, "hi")

Adapters for Redis persistence, distributed locking and the HTTP webhook
live under internal/ and are wired by the konvo command.
*/
package konvo
