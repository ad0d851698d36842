package config

func (x *Logger) SetForTest(level, format, output string) {
	x.level, x.format, x.output = level, format, output
}

func (x *Dataset) SetPathForTest(path string) {
	x.path = path
}

func (x *Analytics) SetPathForTest(path string) {
	x.path = path
}

func (r *Repository) SetForTest(backend, projectID string) {
	r.backend, r.projectID = backend, projectID
}
