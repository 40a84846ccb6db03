package email

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendParamsValidate(t *testing.T) {
	valid := SendParams{
		To:       "alice@example.com",
		Subject:  "hi",
		BodyHTML: "<p>hi</p>",
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*SendParams)
	}{
		{"empty recipient", func(p *SendParams) { p.To = "" }},
		{"malformed recipient", func(p *SendParams) { p.To = "not-an-email" }},
		{"empty subject", func(p *SendParams) { p.Subject = "" }},
		{"empty body", func(p *SendParams) { p.BodyHTML = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			require.ErrorIs(t, p.Validate(), ErrInvalidParams)
		})
	}
}

func TestDevSenderWritesFiles(t *testing.T) {
	dir := t.TempDir()
	sender := NewDevSender(dir)

	err := sender.Send(context.Background(), SendParams{
		To:       "alice@example.com",
		Subject:  "Your post is now published",
		BodyHTML: "<p>hello</p>",
		ReplyTo:  "reply+tok@reply.test",
		Tag:      "email_update_sent",
	})
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	var htmlFile, jsonFile string
	for _, e := range entries {
		switch filepath.Ext(e.Name()) {
		case ".html":
			htmlFile = filepath.Join(dir, e.Name())
		case ".json":
			jsonFile = filepath.Join(dir, e.Name())
		}
	}
	require.NotEmpty(t, htmlFile)
	require.NotEmpty(t, jsonFile)

	body, err := os.ReadFile(htmlFile)
	require.NoError(t, err)
	assert.Equal(t, "<p>hello</p>", string(body))

	meta, err := os.ReadFile(jsonFile)
	require.NoError(t, err)
	assert.Contains(t, string(meta), `"alice@example.com"`)
	assert.Contains(t, string(meta), `"reply+tok@reply.test"`)
}

func TestDevSenderRejectsInvalidParams(t *testing.T) {
	sender := NewDevSender(t.TempDir())
	err := sender.Send(context.Background(), SendParams{To: "nope"})
	require.ErrorIs(t, err, ErrInvalidParams)
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "your_post_is_published", sanitizeFilename("Your Post is Published!"))
	long := strings.Repeat("a", 100)
	assert.Len(t, sanitizeFilename(long), 60)
}
