package transport

import (
	"io"
	"net/http"

	"github.com/agentstation/docsync/pkg/errors"
	"github.com/agentstation/docsync/pkg/logging"
)

// maxErrorBody bounds how much of a failed response is kept in the error.
const maxErrorBody = 512

// ReadBody reads and closes a response body, returning a TransportError
// for non-2xx statuses. operation names the remote call for the error.
func ReadBody(resp *http.Response, operation string) ([]byte, error) {
	defer func() {
		drain(resp.Body)
		if err := resp.Body.Close(); err != nil {
			logging.Debug().Err(err).Msg("Failed to close response body")
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewTransportError(operation, endpointOf(resp), 0, errors.WrapIO("read", "response body", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := string(body)
		if len(msg) > maxErrorBody {
			msg = msg[:maxErrorBody]
		}
		return nil, &errors.TransportError{
			Operation:  operation,
			Endpoint:   endpointOf(resp),
			StatusCode: resp.StatusCode,
			Message:    msg,
		}
	}
	return body, nil
}

func endpointOf(resp *http.Response) string {
	if resp.Request != nil && resp.Request.URL != nil {
		return resp.Request.URL.Redacted()
	}
	return ""
}
