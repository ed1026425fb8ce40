package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/johnquangdev/meeting-filter/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClassifierServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok","model_loaded":true}`))
	})
	mux.HandleFunc("/predict", func(w http.ResponseWriter, r *http.Request) {
		var req predictRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		_ = json.NewEncoder(w).Encode(verdict(req.Text))
	})
	mux.HandleFunc("/predict/batch", func(w http.ResponseWriter, r *http.Request) {
		var req predictBatchRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		out := predictBatchResponse{}
		for _, text := range req.Texts {
			out.Predictions = append(out.Predictions, verdict(text))
		}
		_ = json.NewEncoder(w).Encode(out)
	})
	return httptest.NewServer(mux)
}

func verdict(text string) Prediction {
	if strings.Contains(text, "um") {
		return Prediction{Label: 1, Confidence: 0.9}
	}
	return Prediction{Label: 0, Confidence: 0.8}
}

func TestClassifierClient_Predict(t *testing.T) {
	ts := newClassifierServer(t)
	defer ts.Close()
	client := NewClassifierClient(&config.ClassifierConfig{URL: ts.URL})

	p, err := client.Predict(context.Background(), "um yeah")
	require.NoError(t, err)
	assert.Equal(t, Prediction{Label: 1, Confidence: 0.9}, p)
}

func TestClassifierClient_PredictBatch(t *testing.T) {
	ts := newClassifierServer(t)
	defer ts.Close()
	client := NewClassifierClient(&config.ClassifierConfig{URL: ts.URL})

	got, err := client.PredictBatch(context.Background(), []string{"ship it friday", "um", "budget approved"})
	require.NoError(t, err)
	assert.Equal(t, []Prediction{
		{Label: 0, Confidence: 0.8},
		{Label: 1, Confidence: 0.9},
		{Label: 0, Confidence: 0.8},
	}, got)
}

func TestClassifierClient_PredictBatchLengthMismatch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"predictions":[{"label":0,"confidence":0.7}]}`))
	}))
	defer ts.Close()
	client := NewClassifierClient(&config.ClassifierConfig{URL: ts.URL})

	_, err := client.PredictBatch(context.Background(), []string{"a", "b"})
	assert.Error(t, err)
}

func TestClassifierClient_Health(t *testing.T) {
	ts := newClassifierServer(t)
	defer ts.Close()
	assert.NoError(t, NewClassifierClient(&config.ClassifierConfig{URL: ts.URL}).Health(context.Background()))

	notLoaded := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"loading","model_loaded":false}`))
	}))
	defer notLoaded.Close()
	assert.Error(t, NewClassifierClient(&config.ClassifierConfig{URL: notLoaded.URL}).Health(context.Background()))
}

func TestClassifierClient_ServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()
	client := NewClassifierClient(&config.ClassifierConfig{URL: ts.URL})

	_, err := client.Predict(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}
