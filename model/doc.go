// Package model defines the provider-agnostic model abstraction and the
// factory that routes model names to concrete backends.
//
// Core goals:
//   - Keep the surface minimal: a name plus text-in/text-out generation
//   - Route by model name so callers never import vendor SDKs directly
//   - Facilitate lightweight mocking for tests (MockModel)
//
// Providers (Gemini, Anthropic, OpenAI) live in subpackages and implement
// the Model interface so higher layers (agents, workflows) remain decoupled
// from vendor SDKs.
package model
