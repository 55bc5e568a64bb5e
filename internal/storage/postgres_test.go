package storage

import (
	"context"
	"testing"
	"time"

	"newsflow/internal/config"
)

func TestSplitSummaryDate(t *testing.T) {
	fallback := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		summary  string
		wantTime time.Time
		wantDesc string
	}{
		{
			name:     "slash date prefix",
			summary:  "2026/08/12 - regulator approves the merger",
			wantTime: time.Date(2026, 8, 12, 0, 0, 0, 0, time.UTC),
			wantDesc: "regulator approves the merger",
		},
		{
			name:     "long month date prefix",
			summary:  "August 5, 2026 - quarterly results beat estimates",
			wantTime: time.Date(2026, 8, 5, 0, 0, 0, 0, time.UTC),
			wantDesc: "quarterly results beat estimates",
		},
		{
			name:     "abbreviated month date prefix",
			summary:  "Aug 5, 2026 - quarterly results beat estimates",
			wantTime: time.Date(2026, 8, 5, 0, 0, 0, 0, time.UTC),
			wantDesc: "quarterly results beat estimates",
		},
		{
			name:     "no date keeps summary whole",
			summary:  "plain summary without a leading date",
			wantTime: fallback,
			wantDesc: "plain summary without a leading date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotTime, gotDesc := SplitSummaryDate(tt.summary, fallback)
			if !gotTime.Equal(tt.wantTime) {
				t.Errorf("time = %v, want %v", gotTime, tt.wantTime)
			}
			if gotDesc != tt.wantDesc {
				t.Errorf("description = %q, want %q", gotDesc, tt.wantDesc)
			}
		})
	}
}

func TestFileSource(t *testing.T) {
	src := NewFileSource([]config.Topic{
		{ID: 1, Name: "Fintech", Keywords: []string{"fintech", "banking"}, Subscribers: []string{"a@example.com"}},
		{ID: 2, Name: "AI", Keywords: []string{"llm"}, Subscribers: []string{"b@example.com", "c@example.com"}},
	})

	topics, err := src.Topics(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(topics) != 2 || topics[0].Name != "Fintech" || len(topics[0].Keywords) != 2 {
		t.Fatalf("unexpected topics: %+v", topics)
	}

	subs, err := src.ActiveSubscribers(context.Background(), 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(subs) != 2 || subs[0] != "b@example.com" {
		t.Errorf("unexpected subscribers: %v", subs)
	}

	if _, err := src.ActiveSubscribers(context.Background(), 99); err == nil {
		t.Error("expected error for unknown topic")
	}
}
