package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSession_State(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		session Session
		want    SessionState
	}{
		{"authenticated and fresh", Session{Authenticated: true, ExpiresAt: now.Add(time.Hour).UnixMilli()}, SessionLoggedIn},
		{"expired", Session{Authenticated: true, ExpiresAt: now.Add(-time.Second).UnixMilli()}, SessionLoggedOut},
		{"expiry equal to now", Session{Authenticated: true, ExpiresAt: now.UnixMilli()}, SessionLoggedOut},
		{"flag missing", Session{ExpiresAt: now.Add(time.Hour).UnixMilli()}, SessionLoggedOut},
		{"zero value", Session{}, SessionLoggedOut},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.session.State(now))
		})
	}
}

func TestEnumValidity(t *testing.T) {
	assert.True(t, ContentTypeItemLista.IsValid())
	assert.False(t, ContentType("lista").IsValid())
	assert.True(t, FieldTypeInfo.IsValid())
	assert.False(t, FieldType("checkbox").IsValid())
	assert.True(t, ItemTypePDF.IsFile())
	assert.False(t, ItemTypeURL.IsFile())
	assert.False(t, ItemType("video").IsValid())
}
