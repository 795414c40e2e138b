// Package apis holds helpers shared by the remote service clients.
package apis

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-resty/resty/v2"

	"skyview/manager"
)

// StatusError wraps a non-success response as manager.ErrNetwork, keeping
// the status code and the body (indented when it is JSON).
func StatusError(response *resty.Response) error {
	body := response.Body()

	buf := &bytes.Buffer{}
	if err := json.Indent(buf, body, "", "  "); err != nil {
		buf.Reset()
		buf.Write(bytes.TrimSpace(body))
	}

	return fmt.Errorf("%w: status code: %d\n%s", manager.ErrNetwork, response.StatusCode(), buf.String())
}

// TransportError wraps err as manager.ErrNetwork.
func TransportError(err error) error {
	return fmt.Errorf("%w: %s", manager.ErrNetwork, err)
}
