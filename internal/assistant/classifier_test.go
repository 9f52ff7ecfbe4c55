package assistant

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCompleter records calls and plays back a canned response
type fakeCompleter struct {
	calls    int
	response string
	err      error
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func newTestClassifier(fc *fakeCompleter) *Classifier {
	return NewClassifier(fc, slog.New(slog.DiscardHandler))
}

func TestClassify_KeywordGatePositive(t *testing.T) {
	fc := &fakeCompleter{}
	c := newTestClassifier(fc)

	got, err := c.Classify(context.Background(), "Internship Application — Thank you for applying", "")
	require.NoError(t, err)
	assert.True(t, got)
	assert.Equal(t, 0, fc.calls, "high-confidence positive must not reach the model")
}

func TestClassify_KeywordGateNegative(t *testing.T) {
	fc := &fakeCompleter{}
	c := newTestClassifier(fc)

	got, err := c.Classify(context.Background(), "50% off sale — unsubscribe now", "")
	require.NoError(t, err)
	assert.False(t, got)
	assert.Equal(t, 0, fc.calls, "high-confidence negative must not reach the model")
}

func TestClassify_AmbiguousFallsBackToModel(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     bool
	}{
		{"affirmative token present", "YES, this looks job related.", true},
		{"lower case affirmative", "yes", true},
		{"negative answer", "NO", false},
		{"anything else", "I am not sure about this one.", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc := &fakeCompleter{response: tt.response}
			c := newTestClassifier(fc)

			// "interview" scores one job point, "unsubscribe" one trash
			// point, so neither gate fires.
			got, err := c.Classify(context.Background(), "Interview details", "unsubscribe link below")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, 1, fc.calls, "ambiguous input must invoke the model exactly once")
		})
	}
}

func TestClassify_ModelFailurePropagates(t *testing.T) {
	fc := &fakeCompleter{err: errors.New("backend down")}
	c := newTestClassifier(fc)

	_, err := c.Classify(context.Background(), "Interview details", "unsubscribe link below")
	require.Error(t, err)
	assert.Equal(t, 1, fc.calls)
}

func TestScoreKeywords_CountsRepeats(t *testing.T) {
	assert.Equal(t, 3, scoreKeywords("job job job", []string{"job"}))
	assert.Equal(t, 0, scoreKeywords("nothing here", []string{"job", "career"}))
}
