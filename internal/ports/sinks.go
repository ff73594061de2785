package ports

// IncidentSink is the secondary best-effort channel for audit records that
// could not reach the primary store. Failures here are swallowed; the sink
// must never block the request path.
type IncidentSink interface {
	Write(line string) error
}
