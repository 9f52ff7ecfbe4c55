package assistant

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jobtrail/jobtrail/pkg/models"
)

var filterInput = []models.MessageSummary{
	{ID: "a", Sender: "me@example.com", Subject: "Backend role", Date: "2025-06-01T10:00:00Z"},
	{ID: "b", Sender: "me@example.com", Subject: "Invoice", Date: "2025-06-02T10:00:00Z"},
}

func TestFilterEmails_ExtractsArrayFromNoise(t *testing.T) {
	fc := &fakeCompleter{response: `Sure, here you go: ["a","b"] — hope that helps!`}
	c := newTestClassifier(fc)

	ids := c.FilterEmails(context.Background(), filterInput, "emails about work")
	assert.Equal(t, []string{"a", "b"}, ids)
}

func TestFilterEmails_NoBracketsYieldsEmpty(t *testing.T) {
	fc := &fakeCompleter{response: "none of these match"}
	c := newTestClassifier(fc)

	ids := c.FilterEmails(context.Background(), filterInput, "emails about work")
	assert.Equal(t, []string{}, ids)
}

func TestFilterEmails_MalformedJSONYieldsEmpty(t *testing.T) {
	fc := &fakeCompleter{response: `[not valid json]`}
	c := newTestClassifier(fc)

	ids := c.FilterEmails(context.Background(), filterInput, "emails about work")
	assert.Equal(t, []string{}, ids)
}

func TestFilterEmails_BackendFailureYieldsEmpty(t *testing.T) {
	fc := &fakeCompleter{err: errors.New("backend down")}
	c := newTestClassifier(fc)

	ids := c.FilterEmails(context.Background(), filterInput, "emails about work")
	assert.Equal(t, []string{}, ids)
}

func TestFilterEmails_NoInputSkipsBackend(t *testing.T) {
	fc := &fakeCompleter{response: `["a"]`}
	c := newTestClassifier(fc)

	ids := c.FilterEmails(context.Background(), nil, "anything")
	assert.Equal(t, []string{}, ids)
	assert.Equal(t, 0, fc.calls)
}

func TestExtractIDArray(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     []string
	}{
		{"bare array", `["x"]`, []string{"x"}},
		{"empty array", `[]`, []string{}},
		{"commentary both sides", `Of course! ["x","y"] Let me know.`, []string{"x", "y"}},
		{"reversed brackets", `] then [`, []string{}},
		{"empty response", ``, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractIDArray(tt.response))
		})
	}
}
