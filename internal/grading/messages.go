package grading

// Student-facing text.
const (
	CheckStartFormat           = "Running checks for %s..."
	IssuesAboveMessage         = "Please fix the warnings and errors in the cells above this question before checking it."
	CurrentQuestionErrorPrefix = "Your code raised an error: "
	AboveQuestionErrorPrefix   = "Error in a cell above this question: "
	AssertionFailedPrefix      = "Test case failed: "
	MissedCallFormat           = "Your code must call '%s'."
	MissedVarFormat            = "Your code must define '%s'."
	UnanalyzableFormat         = "Could not analyze your code: %s"
	SuccessMessage             = "All checks passed!"
)
