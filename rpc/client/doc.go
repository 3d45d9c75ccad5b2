// Package client implements a small client for the miniDB line protocol.
//
// Usage:
//
//	c, err := client.Dial(common.ClientConfig{Endpoint: "127.0.0.1:8080", TimeoutSecond: 5})
//	if err != nil {
//		return err
//	}
//	defer c.Close()
//
//	_ = c.Post("foo", "bar")
//	value, found, err := c.Get("foo")
//	deleted, err := c.Delete("foo")
//
// Status 1 responses are reported as found=false / deleted=false, status 2 responses
// as ErrInvalidCommand. Do gives access to the raw protocol.
package client
