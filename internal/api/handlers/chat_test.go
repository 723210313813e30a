package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"floe/internal/weather"
)

type chatEnvelope struct {
	Data struct {
		Reply string `json:"reply"`
		City  string `json:"city"`
		Model string `json:"model"`
	} `json:"data"`
}

func postChat(t *testing.T, composer WeatherComposer, body string) *httptest.ResponseRecorder {
	t.Helper()
	handler := NewChatHandler(composer, nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/chat", strings.NewReader(body))
	handler.HandleChat(rec, req)
	return rec
}

func TestHandleChatExplicitCity(t *testing.T) {
	composer := &fakeComposer{view: parisView()}
	rec := postChat(t, composer, `{"message":"Do I need a jacket?","city":"Paris"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp chatEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.Reply != "Take an umbrella. Obviously." {
		t.Errorf("reply = %q", resp.Data.Reply)
	}
	if resp.Data.City != "Paris" {
		t.Errorf("city = %q", resp.Data.City)
	}
	if resp.Data.Model != "gpt-4o-mini" {
		t.Errorf("model = %q", resp.Data.Model)
	}

	if composer.lastCity != "Paris" || composer.lastMode != weather.ModePenguin {
		t.Errorf("composed (%q, %q)", composer.lastCity, composer.lastMode)
	}
	if composer.lastQ != "Do I need a jacket?" {
		t.Errorf("question = %q", composer.lastQ)
	}
}

func TestHandleChatExplicitCityBeatsGazetteer(t *testing.T) {
	composer := &fakeComposer{view: parisView()}
	rec := postChat(t, composer, `{"message":"Is London rainy today?","city":"Paris"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if composer.lastCity != "Paris" {
		t.Errorf("city = %q, structured field must win over the message scan", composer.lastCity)
	}
}

func TestHandleChatGazetteerFallback(t *testing.T) {
	composer := &fakeComposer{view: parisView()}
	rec := postChat(t, composer, `{"message":"What's the weather like in paris right now?"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if composer.lastCity != "Paris" {
		t.Errorf("city = %q, want canonical Paris from message scan", composer.lastCity)
	}
}

func TestHandleChatUnresolvableCity(t *testing.T) {
	rec := postChat(t, &fakeComposer{view: parisView()}, `{"message":"Will it rain tomorrow?"}`)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "validation_missing_required_field") {
		t.Errorf("body = %s", rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "city") {
		t.Errorf("error should tell the user to supply the city field: %s", rec.Body.String())
	}
}

func TestHandleChatEmptyMessage(t *testing.T) {
	rec := postChat(t, &fakeComposer{view: parisView()}, `{"message":"  ","city":"Paris"}`)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
