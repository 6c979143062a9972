package auth

import (
	"fmt"
	"log/slog"
	"net/http"
)

// ClientInvalidator is called after successful OAuth to clear cached API
// service clients so the next call picks up fresh credentials.
type ClientInvalidator interface {
	InvalidateClients()
}

// OAuthCallbackHandler handles the OAuth 2.0 redirect when the server runs
// over HTTP. It exchanges the authorization code and persists the token;
// on stdio transport users supply the code through the complete_google_auth
// tool instead.
func OAuthCallbackHandler(authenticator *Authenticator, invalidator ClientInvalidator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		errMsg := r.URL.Query().Get("error")

		w.Header().Set("Content-Type", "text/html; charset=utf-8")

		if errMsg != "" {
			slog.Error("OAuth callback error", "error", errMsg)
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, renderPage("Authentication Failed", errMsg))
			return
		}
		if code == "" {
			slog.Error("OAuth callback missing code")
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, renderPage("Authentication Failed", "No authorization code received from Google."))
			return
		}

		if err := authenticator.CompleteOAuth(r.Context(), code); err != nil {
			slog.Error("OAuth token exchange failed", "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, renderPage("Authentication Failed", fmt.Sprintf("Token exchange failed: %v", err)))
			return
		}

		if invalidator != nil {
			invalidator.InvalidateClients()
		}

		slog.Info("OAuth authentication successful")
		fmt.Fprint(w, renderPage("Authentication Successful",
			"Your Google account is connected. All Apps Script tools are now available. You can close this window."))
	}
}

func renderPage(title, message string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>%s</title>
  <style>
    body { font-family: system-ui, sans-serif; background: #1a1a1a; color: #e0e0e0;
           min-height: 100vh; display: flex; align-items: center; justify-content: center; }
    .card { background: #2d2d2d; border: 1px solid #444; border-radius: 12px;
            padding: 40px; max-width: 440px; text-align: center; }
    h1 { font-size: 22px; color: #fff; margin-bottom: 16px; }
    p { font-size: 14px; color: #aaa; line-height: 1.6; word-break: break-word; }
  </style>
</head>
<body>
  <div class="card">
    <h1>%s</h1>
    <p>%s</p>
  </div>
</body>
</html>`, title, title, message)
}
