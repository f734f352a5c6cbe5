package konvo_test

import (
	"context"
	"fmt"
	"log"

	"github.com/konvo/konvo"
	"github.com/konvo/konvo/internal/adapters/memory"
	"github.com/konvo/konvo/pkg/component"
	"github.com/konvo/konvo/pkg/domain"
	"github.com/konvo/konvo/pkg/flow"
)

func Example() {
	registry := component.NewRegistry()
	registry.MustRegister(
		component.NewDisplay("welcome", func(*domain.Session) (string, error) {
			return "Hello!", nil
		}),
		component.NewInput("name_input", "name",
			func(*domain.Session) (string, error) { return "What's your name?", nil },
			func(raw string) component.Result {
				if raw == "" {
					return component.Invalid("name", "Please tell me your name.", raw)
				}
				return component.OK(raw, "")
			},
		),
	)

	def, err := flow.Parse([]byte(`
entry: {path: onboarding, component: welcome}
rules:
  - from: {path: onboarding, component: welcome}
    to: {path: onboarding, component: name_input}
`))
	if err != nil {
		log.Fatal(err)
	}

	engine, err := konvo.New(memory.NewStore(), registry, def)
	if err != nil {
		log.Fatal(err)
	}

	ch := domain.Channel{Type: "whatsapp", Identifier: "+100"}
	replies, err := engine.HandleMessage(context.Background(), ch, "hi")
	if err != nil {
		log.Fatal(err)
	}
	for _, r := range replies {
		fmt.Println(r.Content)
	}
	// Output:
	// Hello!
	// What's your name?
}
