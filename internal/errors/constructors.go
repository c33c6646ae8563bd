package errors

// Convenience functions for common error patterns

// Config errors

func ConfigInvalid(field, reason string) *BuildError {
	return New(CategoryConfig, SeverityFatal, "invalid configuration").
		WithContext("field", field).
		WithContext("reason", reason)
}

func ConfigLoadFailed(path string, cause error) *BuildError {
	return Wrap(cause, CategoryConfig, SeverityFatal, "failed to load configuration").
		WithContext("path", path)
}

// Usage errors

func InvalidArgument(arg string) *BuildError {
	return New(CategoryValidation, SeverityFatal, "Invalid argument.").
		WithContext("argument", arg)
}

func OutputExists(path string) *BuildError {
	return New(CategoryValidation, SeverityFatal, "output directory already exists; run clean first").
		WithContext("path", path)
}

// Build pipeline errors

func TemplateMissing(path string, cause error) *BuildError {
	return Wrap(cause, CategoryTemplate, SeverityFatal, "template fragment missing or unreadable").
		WithContext("path", path)
}

func FilesystemError(operation, path string, cause error) *BuildError {
	return Wrap(cause, CategoryFileSystem, SeverityFatal, "filesystem operation failed").
		WithContext("operation", operation).
		WithContext("path", path)
}

func BuildFailed(folder string, cause error) *BuildError {
	return Wrap(cause, CategoryBuild, SeverityFatal, "build failed").
		WithContext("folder", folder)
}

// Internal errors

func InternalError(message string, cause error) *BuildError {
	return Wrap(cause, CategoryInternal, SeverityFatal, message)
}
