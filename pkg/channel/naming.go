package channel

// regionName derives the data region's platform-local name from a
// channel's logical name. pkg/events derives its own "SHM_EVENTS_" name
// from the same logical name, so the two namespaces never collide.
func regionName(name string) string {
	return "SHM_" + name
}
