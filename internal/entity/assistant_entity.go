package entity

import (
	"doc-assistant-gw/pkg/conversation"
	"doc-assistant-gw/pkg/regen"
	"doc-assistant-gw/pkg/scope"
	"doc-assistant-gw/pkg/session"
)

// Assistant is the per-user aggregate: one session machine, one conversation
// store, one document scope, and the regeneration controller wired over them.
// Created lazily on the user's first request and kept in the in-memory
// registry.
type Assistant struct {
	Ctx      session.Context
	Machine  *session.Machine
	Store    *conversation.Store
	Scope    *scope.Manager
	Feedback *regen.Controller
}
