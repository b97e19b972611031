package resolver

import "github.com/nontonanime/api/internal/models"

// ResolutionFailedMessage is the user-facing message of every failed resolution.
const ResolutionFailedMessage = "failed to resolve final links from the local server"

// ToResolutionError converts a pipeline failure into the structured result reported to callers.
func ToResolutionError(err error) *models.ResolutionError {
	return &models.ResolutionError{
		Error:   ResolutionFailedMessage,
		Details: err.Error(),
	}
}
