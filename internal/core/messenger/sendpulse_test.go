package messenger

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RostislavDaniliv/eddy-school/internal/models"
)

func sendPulseTenant() *models.BusinessUnit {
	return &models.BusinessUnit{
		APIKey:         "0234-abcd",
		SendingService: models.SendPulse,
		SendPulseToken: "tok-1",
	}
}

func TestSendPulseTelegramSendText(t *testing.T) {
	var gotPath, gotAuth, gotContact, gotText string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, r.ParseForm())
		gotContact = r.FormValue("contact_id")
		gotText = r.FormValue("text")
		w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	p := NewSendPulseProvider(srv.URL)
	resp, err := p.SendText(context.Background(), sendPulseTenant(), "c-1", "telegram", "hello")

	require.NoError(t, err)
	assert.Equal(t, sendPulseTelegramMessage, gotPath)
	assert.Equal(t, "Bearer tok-1", gotAuth)
	assert.Equal(t, "c-1", gotContact)
	assert.Equal(t, "hello", gotText)
	assert.JSONEq(t, `{"success":true}`, resp)
}

func TestSendPulseViberSendTextNestedJSON(t *testing.T) {
	var gotPath string
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &gotBody))
		w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	p := NewSendPulseProvider(srv.URL)
	_, err := p.SendText(context.Background(), sendPulseTenant(), "c-1", "viber", "hello")

	require.NoError(t, err)
	assert.Equal(t, sendPulseViberMessage, gotPath)
	assert.Equal(t, "c-1", gotBody["contact_id"])

	messages, ok := gotBody["messages"].([]interface{})
	require.True(t, ok)
	require.Len(t, messages, 1)
	msg := messages[0].(map[string]interface{})
	assert.Equal(t, "text", msg["type"])
	assert.Equal(t, map[string]interface{}{"text": "hello"}, msg["text"])
}

func TestSendPulseRunTriggerPaths(t *testing.T) {
	cases := map[string]string{
		"telegram":  sendPulseTelegramTrigger,
		"viber":     sendPulseViberTrigger,
		"live_chat": sendPulseLiveChatTrigger,
	}

	for sourceType, wantPath := range cases {
		var gotPath, gotKeyword string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			require.NoError(t, r.ParseForm())
			gotKeyword = r.FormValue("trigger_keyword")
			w.Write([]byte(`{"success":true}`))
		}))

		p := NewSendPulseProvider(srv.URL)
		_, err := p.RunTrigger(context.Background(), sendPulseTenant(), "c-1", sourceType, "manager")
		srv.Close()

		require.NoError(t, err, sourceType)
		assert.Equal(t, wantPath, gotPath, sourceType)
		assert.Equal(t, "manager", gotKeyword, sourceType)
	}
}

func TestSendPulseUnknownSourceType(t *testing.T) {
	p := NewSendPulseProvider("http://unused")
	_, err := p.SendText(context.Background(), sendPulseTenant(), "c-1", "whatsapp", "hello")
	assert.Error(t, err)
}

func TestSmartSenderSendAndFire(t *testing.T) {
	var paths []string
	var contents, names []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		require.Equal(t, "Bearer ss-token", r.Header.Get("Authorization"))
		require.NoError(t, r.ParseForm())
		contents = append(contents, r.FormValue("content"))
		names = append(names, r.FormValue("name"))
		if r.FormValue("content") != "" {
			require.Equal(t, "text", r.FormValue("type"))
			require.NotEmpty(t, r.FormValue("watermark"))
		}
		w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	bu := &models.BusinessUnit{
		APIKey:           "0234-abcd",
		SendingService:   models.SmartSender,
		SmartSenderToken: "ss-token",
	}
	p := NewSmartSenderProvider(srv.URL)

	_, err := p.SendText(context.Background(), bu, "c-9", "", "hi there")
	require.NoError(t, err)
	_, err = p.RunTrigger(context.Background(), bu, "c-9", "", "default_text")
	require.NoError(t, err)

	require.Len(t, paths, 2)
	assert.Equal(t, "/v1/contacts/c-9/send", paths[0])
	assert.Equal(t, "/v1/contacts/c-9/fire", paths[1])
	assert.Equal(t, "hi there", contents[0])
	assert.Equal(t, "default_text", names[1])
}
