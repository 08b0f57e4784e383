package apiclient

import (
	"encoding/json"

	"github.com/carbontrack/internal/errors"
)

// ActionResult is the single interpretation of an admin write.
// Any 2xx is a success, whatever the body says; Ambiguous records that the
// body did not confirm it.
type ActionResult struct {
	OK         bool
	StatusCode int
	Message    string
	Ambiguous  bool
	Err        error
}

func classifyAction(resp *response, err error) ActionResult {
	if err != nil {
		result := ActionResult{Err: err, Message: errors.UserMessage(err)}
		if catErr := errors.Categorize(err); catErr != nil {
			result.StatusCode = catErr.StatusCode
		}
		return result
	}

	result := ActionResult{OK: true, StatusCode: resp.status}

	var body struct {
		Success *bool  `json:"success"`
		Message string `json:"message"`
	}
	if jsonErr := json.Unmarshal(resp.body, &body); jsonErr != nil || body.Success == nil || !*body.Success {
		result.Ambiguous = true
	}
	result.Message = body.Message
	return result
}
