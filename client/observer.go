package client

import (
	"net/http"
	"net/url"
	"time"

	"github.com/akismet/akismetclient-go/protocol"
)

// RequestEvent describes a request about to be sent. It holds copies; changing it has
// no effect on the request.
type RequestEvent struct {
	Command protocol.AkismetCommand
	URL     string
	Header  http.Header
	Fields  url.Values
}

// ResponseEvent describes the outcome of a request. Err is set when the transport
// failed or the response was classified as an error.
type ResponseEvent struct {
	Command    protocol.AkismetCommand
	URL        string
	StatusCode int
	Header     http.Header
	Body       string
	Duration   time.Duration
	Err        error
}

// Observer is notified synchronously around every request. Observers cannot
// cancel or rewrite requests.
type Observer interface {
	BeforeSend(RequestEvent)
	AfterReceive(ResponseEvent)
}

// ObserverFuncs adapts plain functions to Observer; nil fields are skipped
type ObserverFuncs struct {
	OnRequest  func(RequestEvent)
	OnResponse func(ResponseEvent)
}

// BeforeSend implements Observer
func (f ObserverFuncs) BeforeSend(e RequestEvent) {
	if f.OnRequest != nil {
		f.OnRequest(e)
	}
}

// AfterReceive implements Observer
func (f ObserverFuncs) AfterReceive(e ResponseEvent) {
	if f.OnResponse != nil {
		f.OnResponse(e)
	}
}

func (c *Client) notifyBeforeSend(e RequestEvent) {
	for _, o := range c.observers {
		o.BeforeSend(e)
	}
}

func (c *Client) notifyAfterReceive(e ResponseEvent) {
	for _, o := range c.observers {
		o.AfterReceive(e)
	}
}
