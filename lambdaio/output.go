// Package lambdaio shapes API responses for Lambda behind API Gateway.
package lambdaio

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"

	"github.com/jacentio/constellation/service"
	"github.com/jacentio/constellation/store"
)

// ErrorCode classifies a failed response for clients.
type ErrorCode string

const (
	CodeBadRequest     ErrorCode = "BAD_REQUEST"
	CodeNotFound       ErrorCode = "NOT_FOUND"
	CodeSchema         ErrorCode = "SCHEMA"
	CodeDataCorruption ErrorCode = "DATA_CORRUPTION"
	CodeStore          ErrorCode = "STORE"
	CodeInternal       ErrorCode = "INTERNAL"
)

const (
	statusSuccess = "SUCCESS"
	statusError   = "ERROR"
)

var defaultHeaders = map[string]string{
	"Content-Type":                 "application/json",
	"Access-Control-Allow-Headers": "*",
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Methods": "*",
}

// LambdaOutput is an HTTP response as returned by a proxy-integrated Lambda.
type LambdaOutput struct {
	StatusCode int
	Headers    map[string]string
	Body       string
}

// LambdaContext carries invocation metadata.
type LambdaContext struct {
	AwsRequestID string
}

// ContextFrom extracts the invocation metadata set by the Lambda runtime.
func ContextFrom(ctx context.Context) (LambdaContext, bool) {
	lc, ok := lambdacontext.FromContext(ctx)
	if !ok {
		return LambdaContext{}, false
	}
	return LambdaContext{AwsRequestID: lc.AwsRequestID}, true
}

type successBody struct {
	Status string `json:"status"`
	Data   any    `json:"data"`
}

type errorBody struct {
	Status  string    `json:"status"`
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// SuccessOutput wraps data in a 200 response.
func SuccessOutput(data any) LambdaOutput {
	body, err := json.Marshal(successBody{Status: statusSuccess, Data: data})
	if err != nil {
		return ErrorOutput(err)
	}
	return newOutput(http.StatusOK, body)
}

// ErrorOutput maps err to a status code and error code.
func ErrorOutput(err error) LambdaOutput {
	status, code := Classify(err)
	body, _ := json.Marshal(errorBody{Status: statusError, Code: code, Message: err.Error()})
	return newOutput(status, body)
}

// Classify returns the HTTP status and error code for err.
func Classify(err error) (int, ErrorCode) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest, CodeBadRequest
	case errors.Is(err, store.ErrInvalidKey):
		return http.StatusBadRequest, CodeBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, CodeNotFound
	case store.IsCardinalityError(err):
		return http.StatusInternalServerError, CodeDataCorruption
	case store.IsSchemaError(err):
		return http.StatusInternalServerError, CodeSchema
	case store.IsStoreError(err):
		return http.StatusBadGateway, CodeStore
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

func newOutput(status int, body []byte) LambdaOutput {
	headers := make(map[string]string, len(defaultHeaders))
	for k, v := range defaultHeaders {
		headers[k] = v
	}
	return LambdaOutput{StatusCode: status, Headers: headers, Body: string(body)}
}

// Proxy converts the output to an API Gateway proxy response.
func (o LambdaOutput) Proxy() events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: o.StatusCode,
		Headers:    o.Headers,
		Body:       o.Body,
	}
}

// Write sends the output on an HTTP response writer.
func (o LambdaOutput) Write(w http.ResponseWriter) {
	for k, v := range o.Headers {
		w.Header().Set(k, v)
	}
	w.WriteHeader(o.StatusCode)
	_, _ = w.Write([]byte(o.Body))
}
