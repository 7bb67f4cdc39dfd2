package errors

// Convenience constructors for the error taxonomy the pipeline produces.

// Content loading errors

func MalformedHeader(path string, cause error) *BuildError {
	return Wrap(cause, KindMalformedHeader, "front matter header is structurally invalid").
		WithPath(path)
}

// Template resolution errors

func UnknownLayout(name string) *BuildError {
	return New(KindUnknownLayout, "no layout registered under this name").
		WithContext("layout", name)
}

func UnknownInclude(name string) *BuildError {
	return New(KindUnknownInclude, "no include fragment registered under this name").
		WithContext("include", name)
}

func MissingParameter(include, param string) *BuildError {
	return New(KindMissingParameter, "include fragment references a parameter the directive did not supply").
		WithContext("include", include).
		WithContext("parameter", param)
}

// Pipeline errors

func RenderFailed(path string, cause error) *BuildError {
	return Wrap(cause, KindRender, "document render failed").WithPath(path)
}

func ConfigError(message string, cause error) *BuildError {
	return Wrap(cause, KindConfig, message)
}

func FileSystemError(operation string, cause error) *BuildError {
	return Wrap(cause, KindFileSystem, "filesystem operation failed").
		WithContext("operation", operation)
}
