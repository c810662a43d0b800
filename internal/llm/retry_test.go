package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

type scriptedClient struct {
	errs  []error
	calls int
}

func (s *scriptedClient) ClassifyDocument(ctx context.Context, input ClassifyInput) (json.RawMessage, error) {
	s.calls++
	if idx := s.calls - 1; idx < len(s.errs) && s.errs[idx] != nil {
		return nil, s.errs[idx]
	}
	return json.RawMessage(`{"predicted_type":"scientific_publication","confidence":0.9}`), nil
}

func TestWithRetry(t *testing.T) {
	tests := []struct {
		name      string
		errs      []error
		wantCalls int
		wantErr   bool
	}{
		{name: "success", wantCalls: 1},
		{name: "transient then success", errs: []error{errors.New("openai http status 503")}, wantCalls: 2},
		{name: "permanent", errs: []error{errors.New("openai error: invalid api key")}, wantCalls: 1, wantErr: true},
		{name: "transient twice", errs: []error{errors.New("connection reset by peer"), errors.New("connection reset by peer")}, wantCalls: 2, wantErr: true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			base := &scriptedClient{errs: tt.errs}
			client := WithRetry(base, time.Millisecond)
			_, err := client.ClassifyDocument(context.Background(), ClassifyInput{FileName: "a.pdf"})
			if (err != nil) != tt.wantErr {
				t.Fatalf("unexpected error state: %v", err)
			}
			if base.calls != tt.wantCalls {
				t.Fatalf("expected %d calls, got %d", tt.wantCalls, base.calls)
			}
		})
	}
}

func TestWithRetryNilBase(t *testing.T) {
	if WithRetry(nil, 0) != nil {
		t.Fatalf("expected nil client")
	}
}
