package one

import (
	"fmt"
	"net/http"
	"time"

	"github.com/kolo/xmlrpc"
	"github.com/sapcc/go-bits/logg"
)

// CallObserver is notified after every RPC. internal/metrics implements it.
type CallObserver interface {
	ObserveCall(method string, duration time.Duration, err error)
}

// Client is a session against the control plane's XML-RPC endpoint.
type Client struct {
	rpc      *xmlrpc.Client
	endpoint string
	session  string
	observer CallObserver
}

// Connect creates a client for endpoint, authenticating every call as
// username:password.
//
// If timeout is zero, defaults to 60 seconds. No RPC is issued; use Ping to
// verify the connection.
func Connect(endpoint, username, password string, timeout time.Duration) (*Client, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		ResponseHeaderTimeout: timeout,
		IdleConnTimeout:       90 * time.Second,
	}
	rpc, err := xmlrpc.NewClient(endpoint, transport)
	if err != nil {
		return nil, fmt.Errorf("failed to create XML-RPC client for %s: %w", endpoint, err)
	}

	return &Client{
		rpc:      rpc,
		endpoint: endpoint,
		session:  username + ":" + password,
	}, nil
}

// SetObserver installs an observer for RPC calls.
func (c *Client) SetObserver(o CallObserver) {
	c.observer = o
}

// Endpoint returns the URL the client talks to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Close releases the underlying HTTP connections.
// It is safe to call Close multiple times.
func (c *Client) Close() error {
	if c.rpc == nil {
		return nil
	}
	err := c.rpc.Close()
	c.rpc = nil
	return err
}

// Ping verifies that the endpoint answers and the credentials are accepted.
func (c *Client) Ping() error {
	if _, err := c.Version(); err != nil {
		return fmt.Errorf("control plane connection is dead: %w", err)
	}
	return nil
}

// Version returns the backend version string.
func (c *Client) Version() (string, error) {
	value, err := c.call("one.system.version")
	if err != nil {
		return "", err
	}
	return asString(value), nil
}

// call issues method with the session prepended to args and returns the
// value element of a successful response.
func (c *Client) call(method string, args ...any) (any, error) {
	if c.rpc == nil {
		return nil, fmt.Errorf("%s: client not connected", method)
	}

	params := make([]any, 0, len(args)+1)
	params = append(params, c.session)
	params = append(params, args...)

	start := time.Now()
	var result []any
	err := c.rpc.Call(method, params, &result)
	if err == nil {
		err = checkResponse(method, result)
	} else {
		err = fmt.Errorf("%s: transport error: %w", method, err)
	}
	if c.observer != nil {
		c.observer.ObserveCall(method, time.Since(start), err)
	}
	if err != nil {
		logg.Debug("%s(%v) -> %s", method, args, err.Error())
		return nil, err
	}
	return result[1], nil
}

func checkResponse(method string, result []any) error {
	if len(result) < 2 {
		return fmt.Errorf("%s: malformed response with %d elements", method, len(result))
	}
	ok, isBool := result[0].(bool)
	if !isBool {
		return fmt.Errorf("%s: malformed response: first element is %T", method, result[0])
	}
	if ok {
		return nil
	}
	code := CodeInternal
	if len(result) >= 3 {
		code = ErrorCode(asInt(result[2]))
	}
	return &Error{Method: method, Code: code, Message: asString(result[1])}
}

func asInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case int32:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

func asString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// callID is call for methods that return the ID of the touched object.
func (c *Client) callID(method string, args ...any) (int, error) {
	value, err := c.call(method, args...)
	if err != nil {
		return -1, err
	}
	return asInt(value), nil
}

// callXML is call for info methods that return an XML document.
func (c *Client) callXML(method string, args ...any) (string, error) {
	value, err := c.call(method, args...)
	if err != nil {
		return "", err
	}
	body, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("%s: expected XML body, got %T", method, value)
	}
	return body, nil
}
