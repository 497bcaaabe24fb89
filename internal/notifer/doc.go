// Package notifer is the HTTP client for the notifer publish API.
//
// A Client performs exactly one POST per Send against {base}/{topic},
// authenticating with the topic token header, and classifies the result as a
// decoded Response, a remote rejection (non-2xx, status and body preserved),
// or a transport failure (no status, StatusNoResponse). There are no retries.
// Every call owns its HTTP transport and releases it before returning.
//
// Sends are traced and counted through the OpenTelemetry API; without an SDK
// installed by the host these are no-ops.
package notifer
