package whatsapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/mamadbah2/salesdesk/internal/config"
)

func TestSendTextMessage(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"messages":[{"id":"wamid.1"}]}`))
	}))
	defer srv.Close()

	client := NewClient(config.WhatsAppConfig{AccessToken: "secret", PhoneNumberID: "123", BaseURL: srv.URL + "/", APIVersion: "v20.0"})
	resp, err := client.SendTextMessage(context.Background(), SendTextMessageRequest{To: "919000000000", Body: "hello"})
	if err != nil {
		t.Fatalf("SendTextMessage() error = %v", err)
	}
	if len(resp.Messages) != 1 || resp.Messages[0].ID != "wamid.1" {
		t.Errorf("response = %+v", resp)
	}
	if gotPath != "/v20.0/123/messages" {
		t.Errorf("path = %q", gotPath)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotBody["to"] != "919000000000" || gotBody["type"] != "text" {
		t.Errorf("body = %v", gotBody)
	}
}

func TestSendTextMessageAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"invalid recipient","code":131030}}`))
	}))
	defer srv.Close()

	client := NewClient(config.WhatsAppConfig{AccessToken: "t", PhoneNumberID: "1", BaseURL: srv.URL, APIVersion: "v20.0"})
	_, err := client.SendTextMessage(context.Background(), SendTextMessageRequest{To: "x", Body: "hi"})
	if err == nil || !strings.Contains(err.Error(), "131030") {
		t.Fatalf("error = %v, want api error code", err)
	}
}

func TestChunk(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		limit int
		want  []string
	}{
		{name: "fits", body: "a\nb", limit: 10, want: []string{"a\nb"}},
		{name: "split on lines", body: "aaaa\nbbbb\ncc", limit: 6, want: []string{"aaaa", "bbbb", "cc"}},
		{name: "long line cut", body: "abcdefgh", limit: 3, want: []string{"abc", "def", "gh"}},
		{name: "cut backs off to rune start", body: "aéé", limit: 2, want: []string{"a", "é", "é"}},
		{name: "rune wider than limit", body: "€x", limit: 2, want: []string{"€", "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Chunk(tt.body, tt.limit)
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("Chunk() = %q, want %q", got, tt.want)
			}
			for _, chunk := range got {
				if !utf8.ValidString(chunk) {
					t.Errorf("chunk %q is not valid UTF-8", chunk)
				}
			}
		})
	}
}
