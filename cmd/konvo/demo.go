package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/konvo/konvo/pkg/component"
	"github.com/konvo/konvo/pkg/domain"
	"github.com/konvo/konvo/pkg/faults"
	"github.com/konvo/konvo/pkg/ports"
)

// defaultFlows is the built-in routing definition used when no flows file is
// configured. It exercises every component variant: display, api call,
// input, confirm.
const defaultFlows = `
entry:
  path: login
  component: greeting
rules:
  - from: {path: login, component: greeting}
    to: {path: login, component: login_api_call}
  - from: {path: login, component: login_api_call}
    when:
      send_dashboard: {path: account, component: account_dashboard}
  - from: {path: account, component: account_dashboard}
    to: {path: transfer, component: amount_input}
  - from: {path: transfer, component: amount_input}
    to: {path: transfer, component: transfer_confirm}
  - from: {path: transfer, component: transfer_confirm}
    when:
      confirmed: {path: transfer, component: transfer_api_call}
      declined: {path: account, component: account_dashboard}
  - from: {path: transfer, component: transfer_api_call}
    when:
      send_dashboard: {path: account, component: account_dashboard}
`

// demoRegistry wires the built-in components. When api is nil the api-call
// steps run against a local stub, which keeps `konvo chat` usable offline.
func demoRegistry(api ports.AccountsAPI) *component.Registry {
	reg := component.NewRegistry()

	reg.MustRegister(
		component.NewDisplay("greeting", func(*domain.Session) (string, error) {
			return "Welcome! Let me look up your account.", nil
		}),

		component.NewAPICall("login_api_call", nil, func(ctx context.Context, s *domain.Session) (component.Result, error) {
			outcome, err := callAPI(ctx, api, "login", s, map[string]any{
				"identifier": s.Identity.Channel.Identifier,
			})
			if err != nil {
				return component.Result{}, err
			}
			if outcome.Err != nil {
				return *outcome, nil
			}
			oc := outcome.Value.(*component.Outcome)
			oc.Tag = "send_dashboard"
			return component.OK(oc, oc.Tag), nil
		}),

		component.NewDisplay("account_dashboard", func(s *domain.Session) (string, error) {
			balance := s.Dashboard["balance"]
			return fmt.Sprintf("Your balance is %v. How much would you like to transfer?", balance), nil
		}),

		component.NewInput("amount_input", "amount",
			func(*domain.Session) (string, error) {
				return "Enter the amount to transfer:", nil
			},
			func(raw string) component.Result {
				clean := strings.TrimSpace(raw)
				amount, err := strconv.ParseFloat(clean, 64)
				if err != nil || amount <= 0 {
					return component.Invalid("amount", "Invalid amount format", raw)
				}
				return component.OK(amount, "")
			},
		),

		component.NewConfirm("transfer_confirm", "transfer_funds",
			func(s *domain.Session) (string, error) {
				return fmt.Sprintf("Transfer %v? (yes/no)", s.Flow.Data["amount"]), nil
			},
		),

		component.NewAPICall("transfer_api_call", []string{"amount"}, func(ctx context.Context, s *domain.Session) (component.Result, error) {
			outcome, err := callAPI(ctx, api, "transfer", s, map[string]any{
				"amount": s.Flow.Data["amount"],
			})
			if err != nil {
				return component.Result{}, err
			}
			if outcome.Err != nil {
				return *outcome, nil
			}
			oc := outcome.Value.(*component.Outcome)
			oc.Tag = "send_dashboard"
			return component.OK(oc, oc.Tag), nil
		}),
	)

	return reg
}

// callAPI performs the remote call or falls back to the local stub.
func callAPI(ctx context.Context, api ports.AccountsAPI, op string, s *domain.Session, payload map[string]any) (*component.Result, error) {
	if api == nil {
		return stubCall(op, s, payload)
	}

	result, err := api.Call(ctx, op, s.Auth.Token, payload)
	if err != nil {
		// A business rejection (4xx) is an expected outcome, not a fault.
		var ce *faults.ComponentError
		if errors.As(err, &ce) {
			res := component.Result{Err: ce}
			return &res, nil
		}
		return nil, err
	}

	res := component.OK(&component.Outcome{
		Snapshot: result.Snapshot,
		Token:    result.Token,
		Action:   result.Action,
	}, "")
	return &res, nil
}

// stubCall simulates the accounts collaborator for offline demos.
func stubCall(op string, s *domain.Session, payload map[string]any) (*component.Result, error) {
	switch op {
	case "login":
		res := component.OK(&component.Outcome{
			Snapshot: map[string]any{"balance": 100.0},
			Token:    "demo-token",
		}, "")
		return &res, nil
	case "transfer":
		amount, _ := payload["amount"].(float64)
		balance, _ := s.Dashboard["balance"].(float64)
		if amount > balance {
			res := component.Invalid("amount", "Insufficient funds", amount)
			return &res, nil
		}
		res := component.OK(&component.Outcome{
			Snapshot: map[string]any{"balance": balance - amount},
		}, "")
		return &res, nil
	}
	return nil, fmt.Errorf("stub: unknown operation %q", op)
}
