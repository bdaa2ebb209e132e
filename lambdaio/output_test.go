package lambdaio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aws/aws-lambda-go/lambdacontext"

	"github.com/jacentio/constellation/service"
	"github.com/jacentio/constellation/store"
)

func TestSuccessOutput(t *testing.T) {
	out := SuccessOutput(map[string]string{"name": "tester"})

	if out.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", out.StatusCode)
	}
	if out.Headers["Access-Control-Allow-Origin"] != "*" {
		t.Errorf("expected CORS header, got %v", out.Headers)
	}

	var body struct {
		Status string            `json:"status"`
		Data   map[string]string `json:"data"`
	}
	if err := json.Unmarshal([]byte(out.Body), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Status != "SUCCESS" || body.Data["name"] != "tester" {
		t.Errorf("unexpected body %s", out.Body)
	}
}

func TestSuccessOutput_Unmarshalable(t *testing.T) {
	out := SuccessOutput(make(chan int))
	if out.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", out.StatusCode)
	}
}

func TestErrorOutput(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   ErrorCode
	}{
		{"validation", &service.ValidationError{Field: "name", Message: "required"}, 400, CodeBadRequest},
		{"invalid key", store.ErrInvalidKey, 400, CodeBadRequest},
		{"not found", fmt.Errorf("quiz q1: %w", store.ErrNotFound), 404, CodeNotFound},
		{"cardinality", fmt.Errorf("get multiple users with same lineUserId: %w", &store.CardinalityError{Count: 2}), 500, CodeDataCorruption},
		{"schema", &store.SchemaError{Msg: "unregistered entity kind"}, 500, CodeSchema},
		{"store", &store.StoreError{Op: "get", Err: errors.New("timeout")}, 502, CodeStore},
		{"other", errors.New("boom"), 500, CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := ErrorOutput(tt.err)
			if out.StatusCode != tt.status {
				t.Errorf("expected %d, got %d", tt.status, out.StatusCode)
			}

			var body errorBody
			if err := json.Unmarshal([]byte(out.Body), &body); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if body.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, body.Code)
			}
			if body.Status != "ERROR" || body.Message != tt.err.Error() {
				t.Errorf("unexpected body %s", out.Body)
			}
		})
	}
}

func TestLambdaOutput_Proxy(t *testing.T) {
	out := SuccessOutput("ok")
	resp := out.Proxy()

	if resp.StatusCode != out.StatusCode || resp.Body != out.Body {
		t.Errorf("unexpected proxy response %+v", resp)
	}
	if resp.Headers["Content-Type"] != "application/json" {
		t.Errorf("expected JSON content type, got %v", resp.Headers)
	}
}

func TestLambdaOutput_Write(t *testing.T) {
	rec := httptest.NewRecorder()
	ErrorOutput(store.ErrNotFound).Write(rec)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Methods") != "*" {
		t.Errorf("expected CORS header, got %v", rec.Header())
	}
}

func TestHeadersNotShared(t *testing.T) {
	a := SuccessOutput(1)
	a.Headers["X-Extra"] = "1"

	b := SuccessOutput(2)
	if _, ok := b.Headers["X-Extra"]; ok {
		t.Error("expected independent header maps")
	}
}

func TestContextFrom(t *testing.T) {
	if _, ok := ContextFrom(context.Background()); ok {
		t.Error("expected no lambda context")
	}

	ctx := lambdacontext.NewContext(context.Background(), &lambdacontext.LambdaContext{AwsRequestID: "req-1"})
	lc, ok := ContextFrom(ctx)
	if !ok || lc.AwsRequestID != "req-1" {
		t.Errorf("expected request id 'req-1', got %+v", lc)
	}
}
