package ipc

import (
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"
)

// Client provides RPC access to the daemon.
type Client struct {
	conn   net.Conn
	client *rpc.Client
}

// Dial connects to the IPC server at the given socket path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return nil, err
	}
	rpcClient := rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))
	return &Client{conn: conn, client: rpcClient}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		_ = c.client.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Compose appends a greeting with its attachments.
func (c *Client) Compose(req ComposeRequest) (*ComposeResponse, error) {
	var resp ComposeResponse
	if err := c.client.Call("Carol.Compose", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AddReply appends a reply to an existing greeting.
func (c *Client) AddReply(req AddReplyRequest) (*AddReplyResponse, error) {
	var resp AddReplyResponse
	if err := c.client.Call("Carol.AddReply", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// List fetches the whole board, newest first.
func (c *Client) List() (*ListResponse, error) {
	var resp ListResponse
	if err := c.client.Call("Carol.List", ListRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Describe resolves one greeting by id or deep link.
func (c *Client) Describe(ref string) (*DescribeResponse, error) {
	var resp DescribeResponse
	if err := c.client.Call("Carol.Describe", DescribeRequest{Ref: ref}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Share builds the share address for a greeting.
func (c *Client) Share(greetingID string) (*ShareResponse, error) {
	var resp ShareResponse
	if err := c.client.Call("Carol.Share", ShareRequest{GreetingID: greetingID}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates an account and opens a session.
func (c *Client) Register(req RegisterRequest) (*RegisterResponse, error) {
	var resp RegisterResponse
	if err := c.client.Call("Carol.Register", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Login opens a session for an existing account.
func (c *Client) Login(req LoginRequest) (*LoginResponse, error) {
	var resp LoginResponse
	if err := c.client.Call("Carol.Login", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout closes the active session.
func (c *Client) Logout() (*LogoutResponse, error) {
	var resp LogoutResponse
	if err := c.client.Call("Carol.Logout", LogoutRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Whoami reports the active session.
func (c *Client) Whoami() (*WhoamiResponse, error) {
	var resp WhoamiResponse
	if err := c.client.Call("Carol.Whoami", WhoamiRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RecordToggle flips the capture session.
func (c *Client) RecordToggle() (*RecordToggleResponse, error) {
	var resp RecordToggleResponse
	if err := c.client.Call("Carol.RecordToggle", RecordToggleRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RecordStatus reports the capture state machine.
func (c *Client) RecordStatus() (*RecordStatusResponse, error) {
	var resp RecordStatusResponse
	if err := c.client.Call("Carol.RecordStatus", RecordStatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Status retrieves the daemon status.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.client.Call("Carol.Status", StatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Health runs the database diagnostics.
func (c *Client) Health() (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.client.Call("Carol.Health", HealthRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Ping checks daemon liveness.
func (c *Client) Ping() (*PingResponse, error) {
	var resp PingResponse
	if err := c.client.Call("Carol.Ping", PingRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
