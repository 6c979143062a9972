package middleware

import (
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/googleapi"
)

// HandleGoogleAPIError translates Google API errors into agent-actionable
// messages. These messages tell the AI what to do next, not the end user.
func HandleGoogleAPIError(err error) error {
	if err == nil {
		return nil
	}

	var googleErr *googleapi.Error
	if errors.As(err, &googleErr) {
		switch googleErr.Code {
		case 400:
			return fmt.Errorf(
				"bad request — check that all required parameters are provided and valid. Detail: %s",
				googleErr.Message)
		case 401:
			return fmt.Errorf(
				"authentication expired — call start_google_auth to re-authenticate, " +
					"or verify the service account key / OAuth configuration is correct")
		case 403:
			if strings.Contains(googleErr.Message, "Apps Script API") {
				return fmt.Errorf(
					"the Apps Script API is disabled for this account — ask the user to enable it at " +
						"https://script.google.com/home/usersettings, then retry")
			}
			return fmt.Errorf(
				"permission denied — the required OAuth scope may not be granted, or the account "+
					"cannot access this script. Suggest re-authenticating with broader scopes. Detail: %s",
				googleErr.Message)
		case 404:
			return fmt.Errorf(
				"resource not found — verify the script ID is correct and the account has access to it")
		case 409:
			return fmt.Errorf(
				"conflict — the project was modified by another process. Re-read it and retry. Detail: %s",
				googleErr.Message)
		case 429:
			return fmt.Errorf(
				"rate limit exceeded for the Apps Script API — wait 30-60 seconds before retrying this tool call")
		case 500, 502, 503:
			return fmt.Errorf(
				"Google API server error (%d) — this is a transient issue, retry after a few seconds. Detail: %s",
				googleErr.Code, googleErr.Message)
		default:
			return fmt.Errorf("Google API error (%d): %s", googleErr.Code, googleErr.Message)
		}
	}

	return err
}
