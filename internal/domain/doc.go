// Package domain defines the core domain types and interfaces.
//
// Concept-oriented files (match.go, commentary.go, events.go, errors.go)
// hold shared types and cross-cutting interfaces. No implementation code,
// just contracts; repositories and the broadcaster are interfaces here so
// app code never imports an adapter package.
package domain
