// Package graphql exposes the BlogStream service over GraphQL. It
// serves queries and mutations on an HTTP POST endpoint, subscriptions
// on a WebSocket endpoint, and ships a playground plus health and
// metrics endpoints alongside.
//
// The schema is built programmatically and resolvers delegate to the
// blog service, which owns all data access and notification fan-out.
package graphql
