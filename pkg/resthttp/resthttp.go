package resthttp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	// HeaderKeyRequestID request id header key
	headerKeyRequestID = "X-Request-Id"
)

var runOnce sync.Once
var restyClient *resty.Client

// client shared resty client
func client() *resty.Client {
	runOnce.Do(func() {
		restyClient = resty.New().
			SetHeader("Content-Type", "application/json").
			SetHeader("Charset", "utf-8").
			SetTimeout(10 * time.Second)
	})

	return restyClient
}

// Request new resty request
func Request(ctx context.Context) *resty.Request {
	return client().R().SetContext(ctx)
}

// WithRequestID resty request with request id
func WithRequestID(ctx context.Context, requestID string) *resty.Request {
	return Request(ctx).SetHeader(headerKeyRequestID, requestID)
}

// Error non 2xx response
type Error struct {
	Status int    `json:"-"`
	Code   int    `json:"code"`
	Msg    string `json:"msg"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("http %d: [%d] %s", e.Status, e.Code, e.Msg)
}

// ParseResponse decode the body into obj, or the {code,msg} envelope into an *Error on failure
//
// bodies wrapped as {"data": ...} are unwrapped first
func ParseResponse(r *resty.Response, obj interface{}) error {
	if !r.IsSuccess() {
		e := &Error{Status: r.StatusCode()}
		if err := json.Unmarshal(r.Body(), e); err != nil || e.Msg == "" {
			e.Msg = r.Status()
		}

		return e
	}

	if obj == nil {
		return nil
	}

	var body struct {
		Data json.RawMessage `json:"data"`
	}

	data := r.Body()
	if err := json.Unmarshal(data, &body); err == nil && len(body.Data) > 0 {
		data = body.Data
	}

	return json.Unmarshal(data, obj)
}
