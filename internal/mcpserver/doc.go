// Package mcpserver exposes the session and instance operations as MCP tools,
// so an agent can log in, validate, diff and deploy an instance the same way
// the editor does.
package mcpserver
