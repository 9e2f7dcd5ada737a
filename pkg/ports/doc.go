/*
Package ports defines the driven ports (interfaces) for the hindsight engine.

These interfaces decouple the serving surfaces from external implementations,
so the same handlers run against an in-memory model registry in tests and a
Redis-backed one in production.

# Key Interfaces

  - ModelStore: persists named model documents for the registry endpoints,
    the MCP tools, and the serve command's preloading.
*/
package ports
