package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/adboardhq/adboard/models"
)

func TestVisible(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		publishedAt time.Time
		visible     bool
	}{
		{"published in the past", now.Add(-time.Hour), true},
		{"published exactly now", now, true},
		{"scheduled for the future", now.Add(time.Minute), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			post := &models.Post{PublishedAt: tt.publishedAt}
			assert.Equal(t, tt.visible, Visible(post, now))
		})
	}
}
