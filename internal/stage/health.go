package stage

// Health is what a stage reports when the controller or the deps command
// asks whether its external tooling is reachable.
type Health struct {
	Name   string
	Ready  bool
	Detail string
}

// Healthy marks the named stage ready to run.
func Healthy(name string) Health {
	return Health{Name: name, Ready: true}
}

// Unhealthy marks the named stage unusable, with detail for the report.
func Unhealthy(name, detail string) Health {
	return Health{Name: name, Ready: false, Detail: detail}
}
