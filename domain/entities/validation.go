package entities

// ValidationResult is the outcome of checking a document against a schema.
type ValidationResult struct {
	Valid  bool
	Errors []ValidationError
}

// ValidationError is one violation. Field is the dotted path of the
// offending value, empty for the document itself.
type ValidationError struct {
	Field   string
	Message string
}
