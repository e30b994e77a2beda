// Package agent orchestrates conversational turns against an LLM with
// a bounded tool loop and durable persistence.
//
// Invariants:
// - Context is hydrated from persisted history before every turn.
// - The user's message is committed before the model is invoked.
// - Tool calls route through the tools registry only, with the acting
//   user's identity injected on every call.
// - A turn makes at most ten model round trips.
// - Execute never returns an error; failures are contained and
//   reported through Result.Failed.
//
// Usage:
//
//	session, _ := agent.NewSession(agent.Config{...})
//	result := session.Execute(ctx, "user-1", "add buy milk to my list", "")
//	_ = result
package agent
