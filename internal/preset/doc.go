// Package preset stores named sets of MCP servers and applies them as the
// target active set across clients.
//
// A preset is either saved by the user, carrying its own server
// definitions, or one of the built-ins (minimal, webdev, fullstack,
// testing), which only name servers and rely on definitions already known
// to the live configs or the disabled store.
package preset
